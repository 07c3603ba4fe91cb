package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/jzx17/endure/internal/runner"
	"github.com/jzx17/endure/pkg/metrics"
	"github.com/jzx17/endure/pkg/retry"
)

// RunOptions configures the run command
type RunOptions struct {
	Policy PolicyOptions

	// ExitCodes restricts retries to these exit codes; empty retries any failure
	ExitCodes []int

	// MetricsAddr serves Prometheus metrics while the command runs
	MetricsAddr string

	Command []string
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  logr.Logger
}

// Run executes a command, retrying it according to the resolved policy
func Run(ctx context.Context, opts RunOptions) error {
	if len(opts.Command) == 0 {
		return errors.New("no command given")
	}

	cfg, err := opts.Policy.Resolve()
	if err != nil {
		return err
	}
	if cfg.Name == "" {
		cfg.Name = opts.Command[0]
	}

	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	executor, err := cfg.Apply(retry.NewPolicyBuilder()).
		WithExpectedError(runner.ExitCodeKind(opts.ExitCodes...)).
		Build(append(cfg.ExecutorOptions(),
			retry.WithLogger(opts.Logger),
			retry.WithEventHandler(collector))...)
	if err != nil {
		return err
	}

	serveCtx, stopServing := context.WithCancel(ctx)
	defer stopServing()

	var g errgroup.Group
	if opts.MetricsAddr != "" {
		if err := serveMetrics(serveCtx, &g, opts.MetricsAddr, reg, opts.Logger); err != nil {
			return err
		}
	}

	r := runner.New(executor,
		runner.WithOutput(opts.Stdout, opts.Stderr),
		runner.WithLogger(opts.Logger))

	result, err := r.Run(ctx, opts.Command[0], opts.Command[1:]...)

	stopServing()
	if serveErr := g.Wait(); serveErr != nil {
		opts.Logger.Error(serveErr, "Metrics server stopped")
	}

	opts.Logger.V(1).Info("Command finished", "attempts", result.Attempts, "exitCode", result.ExitCode)
	if err != nil {
		return fmt.Errorf("%s failed after %d attempts: %w", opts.Command[0], result.Attempts, err)
	}
	return nil
}

// serveMetrics serves reg on addr within g until ctx is done
func serveMetrics(ctx context.Context, g *errgroup.Group, addr string, reg *prometheus.Registry, logger logr.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve metrics: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	logger.Info("Serving metrics", "addr", ln.Addr().String())

	return nil
}
