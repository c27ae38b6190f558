package main

import (
	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "pigeon.yaml"

var rootLong = dedent.Dedent(`
	pigeon composes emails from message presets and delivers them through
	SMTP, Resend or the terminal.

	Presets, templates and transport settings are read from a YAML config
	file. Leaf settings can be overridden with environment variables:
	pigeon.smtp.password is read from PIGEON_SMTP_PASSWORD.`)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pigeon",
		Short:         "Compose and deliver emails from message presets",
		Long:          rootLong,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringP("config", "c", defaultConfigPath, "Path to config file")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output")

	cmd.AddCommand(newSendCmd(), newPresetsCmd(), newPreviewCmd())
	return cmd
}
