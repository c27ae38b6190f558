package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/pigeon"
	"github.com/dmitrymomot/pigeon/pkg/config"
	"github.com/dmitrymomot/pigeon/pkg/health"
	"github.com/dmitrymomot/pigeon/pkg/mailer"
)

var errNotRendered = errors.New("message was not rendered, the preset enables pretend")

const (
	previewRecipient = "preview@localhost"
	shutdownTimeout  = 5 * time.Second
)

var previewExample = dedent.Dedent(`
	# Print the rendered HTML of a message type
	pigeon preview user_welcome --var name=John > welcome.html

	# Print the plain text part
	pigeon preview user_welcome --text

	# Serve previews at http://localhost:8025/user_welcome?name=John
	pigeon preview --serve :8025`)

func newPreviewCmd() *cobra.Command {
	var (
		vars  []string
		text  bool
		serve string
	)

	cmd := &cobra.Command{
		Use:     "preview [MESSAGE_TYPE]",
		Short:   "Render a message without sending it",
		Example: previewExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, serve != "")
			if err != nil {
				return err
			}

			if serve != "" {
				return runPreviewServer(cmd.Context(), a, serve)
			}

			name := pigeon.DefaultPreset
			if len(args) == 1 {
				name = args[0]
			}
			parsed, err := parseVars(vars)
			if err != nil {
				return err
			}

			email, err := a.render(cmd.Context(), a.presets, name, parsed)
			if err != nil {
				return err
			}
			if text {
				_, err = io.WriteString(cmd.OutOrStdout(), email.Text)
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), email.HTML)
			return err
		},
	}

	cmd.Flags().StringArrayVar(&vars, "var", nil, "Template variable as key=value (repeatable)")
	cmd.Flags().BoolVar(&text, "text", false, "Print the plain text part instead of HTML")
	cmd.Flags().StringVar(&serve, "serve", "", "Serve previews over HTTP on this address")
	return cmd
}

// captureSender keeps the last email instead of delivering it.
type captureSender struct {
	email *mailer.Email
}

func (s *captureSender) Send(_ context.Context, email *mailer.Email) error {
	s.email = email
	return nil
}

// render runs the preset through the regular send path and captures the result.
func (a *app) render(ctx context.Context, presets config.Source, name string, vars map[string]any) (*mailer.Email, error) {
	capture := &captureSender{}
	m, err := a.newMailer(capture)
	if err != nil {
		return nil, err
	}
	m.SetDryRun(false)

	transport := &recordingTransport{Transport: m}
	p, err := a.newPigeon(transport, presets)
	if err != nil {
		return nil, err
	}
	if name != pigeon.DefaultPreset {
		if _, err := p.Type(name); err != nil {
			return nil, err
		}
	}
	p.Pass(vars)
	if len(p.Draft().To) == 0 {
		p.To(previewRecipient)
	}

	if !p.Send(ctx) {
		if transport.err != nil {
			return nil, transport.err
		}
		return nil, errNotSent
	}
	if capture.email == nil {
		return nil, errNotRendered
	}
	return capture.email, nil
}

var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html><head><title>pigeon previews</title></head>
<body><h1>Message types</h1><ul>
{{range .}}<li><a href="/{{.}}">{{.}}</a> (<a href="/{{.}}/text">text</a>)</li>
{{end}}</ul></body></html>`))

// newPreviewRouter serves rendered presets. Presets are reloaded from disk on
// every request so template and config edits show up on refresh.
func newPreviewRouter(a *app) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)

	r.Get("/healthz", health.LivenessHandler())
	r.Get("/readyz", health.ReadinessHandler(a.readinessChecks(), health.WithLogger(a.logger)))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		presets, err := config.LoadFile(a.configPath)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := indexTemplate.Execute(w, presetNames(presets)); err != nil {
			a.logger.ErrorContext(r.Context(), "render preview index", slog.Any("error", err))
		}
	})

	previewHandler := func(text bool) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			presets, err := config.LoadFile(a.configPath)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}

			vars := make(map[string]any)
			for k, v := range r.URL.Query() {
				if len(v) > 0 {
					vars[k] = v[0]
				}
			}

			email, err := a.render(r.Context(), presets, chi.URLParam(r, "preset"), vars)
			switch {
			case errors.Is(err, pigeon.ErrUnknownPreset):
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			case err != nil:
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}

			if text {
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				_, _ = io.WriteString(w, email.Text)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, email.HTML)
		}
	}
	r.Get("/{preset}", previewHandler(false))
	r.Get("/{preset}/text", previewHandler(true))

	return r
}

func (a *app) readinessChecks() health.Checks {
	return health.Checks{
		"config": func(context.Context) error {
			_, err := config.LoadFile(a.configPath)
			return err
		},
		"templates": func(context.Context) error {
			for _, dir := range []string{"layouts", "templates"} {
				info, err := os.Stat(filepath.Join(a.templatesDir(), dir))
				if err != nil {
					return err
				}
				if !info.IsDir() {
					return fmt.Errorf("%s is not a directory", info.Name())
				}
			}
			return nil
		},
	}
}

func runPreviewServer(ctx context.Context, a *app, addr string) error {
	defer func() {
		if err := a.settings.Close(); err != nil {
			a.logger.WarnContext(ctx, "stop config watcher", slog.Any("error", err))
		}
	}()

	srv := &http.Server{
		Addr:              addr,
		Handler:           newPreviewRouter(a),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		cyanBold.Fprintf(a.out, "Serving previews on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown preview server: %w", err)
	}
	return nil
}
