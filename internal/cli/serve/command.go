package serve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rajithacharith/thunder-sub007/internal/cli/common"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

type options struct {
	metricsAddr string
	noWatch     bool
}

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var opts options

	command := &cobra.Command{
		Use:   "serve",
		Short: "Run the engine, reload declarative files on change and expose metrics",
		Long: "Run the engine until SIGINT or SIGTERM. Declarative directories are watched when " +
			"declarative.watch is set, and SIGHUP forces an immediate reload.",
		Args: cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(command.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			hangup := make(chan os.Signal, 1)
			signal.Notify(hangup, syscall.SIGHUP)
			defer signal.Stop(hangup)

			return run(ctx, command, deps, globalFlags, opts, hangup)
		},
	}
	command.Flags().StringVar(&opts.metricsAddr, "metrics-addr", ":9090", "address for the Prometheus /metrics endpoint (empty disables it)")
	command.Flags().BoolVar(&opts.noWatch, "no-watch", false, "do not watch declarative directories even when enabled in config")
	return command
}

// run serves until ctx ends. Every value received on hangup triggers a
// declarative reload.
func run(
	ctx context.Context,
	command *cobra.Command,
	deps common.CommandDependencies,
	globalFlags *common.GlobalFlags,
	opts options,
	hangup <-chan os.Signal,
) error {
	logger := logr.FromContextOrDiscard(ctx).WithName("serve")

	cfg, err := common.RequireConfig(ctx, deps, globalFlags)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	engine, err := common.OpenEngine(ctx, deps, cfg, registry)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := engine.Close(); closeErr != nil {
			logger.Error(closeErr, "failed to close engine")
		}
	}()

	if cfg.Declarative.Watch && !opts.noWatch {
		if err := engine.WatchDeclarative(ctx); err != nil {
			return err
		}
	}

	summary := engine.DeclarativeSummary()
	logger.Info("engine started", "resourceTypes", cfg.Resources.Types(), "declarativeDigest", summary.Digest)

	errCh := make(chan error, 1)
	var server *http.Server
	if opts.metricsAddr != "" {
		listener, err := net.Listen("tcp", opts.metricsAddr)
		if err != nil {
			return common.ValidationError("cannot listen on metrics address", err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
		server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				errCh <- serveErr
			}
		}()
		logger.Info("serving metrics", "addr", listener.Addr().String())
		_, _ = fmt.Fprintf(command.OutOrStdout(), "metrics listening on %s\n", listener.Addr())
	}

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			break loop
		case <-hangup:
			if _, err := engine.ReloadDeclarative(ctx); err != nil {
				logger.Error(err, "declarative reload on SIGHUP failed")
			}
		case runErr = <-errCh:
			logger.Error(runErr, "metrics server failed")
			break loop
		}
	}

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error(err, "metrics server shutdown failed")
		}
	}
	return runErr
}
