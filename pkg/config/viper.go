package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/dmitrymomot/pigeon/pkg/logger"
)

// Viper is a Source backed by github.com/spf13/viper.
// Viper folds keys to lower case, so nested maps it returns carry lower-case keys.
// It is safe for concurrent use, including while a watched file is reloaded.
type Viper struct {
	v       *viper.Viper
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	mu sync.RWMutex
}

// ViperOption configures a Viper source.
type ViperOption func(*viperOptions)

type viperOptions struct {
	logger    *slog.Logger
	envPrefix string
	env       bool
	watch     bool
}

// WithViperLogger sets the logger used for reload events.
func WithViperLogger(l *slog.Logger) ViperOption {
	return func(o *viperOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithEnv enables environment overrides for leaf keys. Dots become
// underscores: pigeon.library is read from PIGEON_LIBRARY, or from
// PREFIX_PIGEON_LIBRARY when prefix is set.
func WithEnv(prefix string) ViperOption {
	return func(o *viperOptions) {
		o.env = true
		o.envPrefix = prefix
	}
}

// WithWatch reloads the file whenever it changes on disk. Reloads take the
// same lock as Get, so readers never see a half-replaced config. Call Close
// to stop watching.
func WithWatch() ViperOption {
	return func(o *viperOptions) {
		o.watch = true
	}
}

func newViperOptions(opts []ViperOption) viperOptions {
	o := viperOptions{logger: logger.NewNope()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func applyEnv(v *viper.Viper, o viperOptions) {
	if !o.env {
		return
	}
	if o.envPrefix != "" {
		v.SetEnvPrefix(o.envPrefix)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// NewViper loads configuration from the given file path.
// The config type is inferred from the file extension.
func NewViper(pathFile string, opts ...ViperOption) (*Viper, error) {
	if pathFile == "" {
		return nil, ErrEmptyPath
	}
	o := newViperOptions(opts)

	v := viper.New()
	filename := path.Base(pathFile)
	v.AddConfigPath(path.Dir(pathFile))
	v.SetConfigName(strings.TrimSuffix(filename, path.Ext(filename)))
	applyEnv(v, o)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}

	vc := &Viper{v: v, logger: o.logger}
	if o.watch {
		if err := vc.watch(); err != nil {
			return nil, err
		}
	}
	return vc, nil
}

// watch reloads the config file on writes. The directory is watched so
// editors that replace the file on save are covered.
func (vc *Viper) watch() error {
	file, err := filepath.Abs(vc.v.ConfigFileUsed())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWatchFailed, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWatchFailed, err)
	}
	if err := w.Add(filepath.Dir(file)); err != nil {
		_ = w.Close()
		return fmt.Errorf("%w: %w", ErrWatchFailed, err)
	}
	vc.watcher = w

	go func() {
		for {
			select {
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(e.Name) != file || !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
					continue
				}
				vc.reload(e)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				vc.logger.Warn("config watcher error", slog.Any("error", err))
			}
		}
	}()
	return nil
}

func (vc *Viper) reload(e fsnotify.Event) {
	vc.mu.Lock()
	err := vc.v.ReadInConfig()
	vc.mu.Unlock()

	if err != nil {
		vc.logger.Warn("config reload failed", slog.String("path", e.Name), slog.Any("error", err))
		return
	}
	vc.logger.Info("config reloaded", slog.String("path", e.Name), slog.String("op", e.Op.String()))
}

// Close stops watching the config file. It is a no-op without WithWatch.
func (vc *Viper) Close() error {
	if vc.watcher == nil {
		return nil
	}
	return vc.watcher.Close()
}

// NewViperFromBytes loads configuration from memory.
// configType is a format supported by viper ("yaml", "json", "toml").
func NewViperFromBytes(configType string, data []byte, opts ...ViperOption) (*Viper, error) {
	if strings.TrimSpace(configType) == "" {
		return nil, ErrEmptyConfigType
	}
	o := newViperOptions(opts)

	v := viper.New()
	v.SetConfigType(configType)
	applyEnv(v, o)

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}

	return &Viper{v: v, logger: o.logger}, nil
}

// Get implements Source.
func (vc *Viper) Get(key string) any {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.v.Get(key)
}

// Set overrides a value, taking precedence over the file and environment.
func (vc *Viper) Set(key string, value any) {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.v.Set(key, value)
}

// ConfigFile returns the file the source was loaded from, if any.
func (vc *Viper) ConfigFile() string {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.v.ConfigFileUsed()
}
