// Package config provides read-only configuration sources addressed by dotted
// paths such as "pigeon.message_types.welcome".
//
// Map holds a parsed YAML document in memory. Viper reads a file through
// spf13/viper, optionally applying environment overrides and reloading the
// file when it changes.
//
//	src, err := config.NewViper("pigeon.yaml", config.WithEnv(""), config.WithWatch())
//	if err != nil {
//		return err
//	}
//	layout := config.String(src, "pigeon.default.layout", "base.html")
package config
