package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/pigeon/pkg/logger"
)

const (
	defaultTimeout = 5 * time.Second

	// StatusHealthy reports that every check passed.
	StatusHealthy = "healthy"
	// StatusUnhealthy reports that at least one check failed.
	StatusUnhealthy = "unhealthy"
)

// CheckFunc verifies one dependency, such as the config file or the template directory.
type CheckFunc func(ctx context.Context) error

// Checks maps check names to their functions.
type Checks map[string]CheckFunc

// Report is the aggregated result of a probe.
type Report struct {
	Checks map[string]Result `json:"checks,omitempty"`
	Status string            `json:"status"`
}

// Result is the outcome of a single check.
type Result struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Healthy reports whether every check passed.
func (r *Report) Healthy() bool {
	return r.Status == StatusHealthy
}

type options struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures a probe.
type Option func(*options)

// WithTimeout bounds the whole probe. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the logger for failed checks.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts ...Option) *options {
	o := &options{timeout: defaultTimeout, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes all checks concurrently under a shared timeout.
func Run(ctx context.Context, checks Checks, opts ...Option) *Report {
	if len(checks) == 0 {
		return &Report{Status: StatusHealthy}
	}
	o := newOptions(opts...)

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		g       errgroup.Group
		results = make(map[string]Result, len(checks))
		status  = StatusHealthy
	)

	for name, check := range checks {
		g.Go(func() error {
			res := Result{Status: StatusHealthy}
			if err := check(ctx); err != nil {
				res = Result{Status: StatusUnhealthy, Error: err.Error()}
				o.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.Any("error", err),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			results[name] = res
			if res.Status == StatusUnhealthy {
				status = StatusUnhealthy
			}
			return nil
		})
	}
	_ = g.Wait()

	return &Report{Status: status, Checks: results}
}
