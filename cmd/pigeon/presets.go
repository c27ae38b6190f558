package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/lithammer/dedent"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/pigeon"
	"github.com/dmitrymomot/pigeon/pkg/config"
	"github.com/dmitrymomot/pigeon/pkg/mailer"
)

var errInvalidPresets = errors.New("some presets are invalid")

var presetsExample = dedent.Dedent(`
	# List message types
	pigeon presets

	# Apply every preset and report problems
	pigeon presets --check`)

func newPresetsCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:     "presets",
		Short:   "List configured message types",
		Example: presetsExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, false)
			if err != nil {
				return err
			}
			names := presetNames(a.presets)
			out := cmd.OutOrStdout()

			if !check {
				for _, name := range names {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			failed := 0
			for _, name := range names {
				p, err := a.newPigeon(noopTransport{}, a.presets)
				if err == nil {
					_, err = p.Type(name)
				}
				switch {
				case err != nil:
					failed++
					red.Fprintf(out, "%-24s %v\n", name, err)
				case len(p.SkippedFields()) > 0:
					yellow.Fprintf(out, "%-24s skipped: %s\n", name, strings.Join(p.SkippedFields(), ", "))
				default:
					green.Fprintf(out, "%-24s ok\n", name)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d", errInvalidPresets, failed, len(names))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Apply each preset and report errors and skipped fields")
	return cmd
}

// presetNames returns the default preset followed by the sorted message types.
func presetNames(src config.Source) []string {
	names := []string{pigeon.DefaultPreset}
	types, err := cast.ToStringMapE(src.Get("pigeon.message_types"))
	if err != nil {
		return names
	}
	keys := lo.Keys(types)
	slices.Sort(keys)
	return append(names, keys...)
}

// noopTransport satisfies pigeon.Transport for commands that never send.
type noopTransport struct{}

func (noopTransport) Deliver(context.Context, *mailer.Message) error { return nil }

func (noopTransport) DeliverRaw(context.Context, string, *mailer.Message) error { return nil }
