package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vango-dev/vtree/internal/config"
	"github.com/vango-dev/vtree/internal/demo"
	"github.com/vango-dev/vtree/pkg/metrics"
	"github.com/vango-dev/vtree/pkg/remote"
	"github.com/vango-dev/vtree/pkg/tracing"
	"github.com/vango-dev/vtree/pkg/vdom"
)

func serveCmd(g *globalFlags) *cobra.Command {
	var (
		addr        string
		app         string
		withMetrics bool
		withTracing bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a demo app to remote replicas",
		Long: `Serve a demo app over WebSocket. Every connection gets its own session
with its own component tree; replicas receive the host operations of each
render and send events back.

Routes:
  /ws                  WebSocket endpoint (serve.path)
  /healthz             health and session count
  /sessions            open session IDs
  /snapshot/{session}  snapshot of a session's tree (?format=json|yaml)
  /metrics             Prometheus metrics (with --metrics)

Examples:
  vtree serve
  vtree serve --addr :8080 --app todo --metrics
  vtree watch ws://localhost:7070/ws`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Serve.Addr = addr
			}
			if app != "" {
				cfg.Demo.App = app
			}
			if cmd.Flags().Changed("metrics") {
				cfg.Metrics.Enabled = withMetrics
			}
			if cmd.Flags().Changed("tracing") {
				cfg.Tracing.Enabled = withTracing
			}

			logger := cfg.Log.NewLogger(cmd.ErrOrStderr())
			srv, err := newServer(cfg, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printBanner(out)
			success(out, "Serving %s on ws://%s%s", cfg.Demo.App, cfg.Serve.Addr, cfg.Serve.Path)
			if cfg.Metrics.Enabled {
				info(out, "Metrics at http://%s%s", cfg.Serve.Addr, cfg.Metrics.Path)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from serve.addr)")
	cmd.Flags().StringVar(&app, "app", "", "Demo app to serve (default from demo.app)")
	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "Expose Prometheus metrics (default from metrics.enabled)")
	cmd.Flags().BoolVar(&withTracing, "tracing", false, "Record OpenTelemetry spans (default from tracing.enabled)")

	return cmd
}

// newServer builds the remote server described by cfg. Metrics are shared
// by all sessions; every session gets its own tracing observer.
func newServer(cfg *config.Config, logger *slog.Logger) (*remote.Server, error) {
	app, err := demo.Lookup(cfg.Demo.App)
	if err != nil {
		return nil, err
	}

	sc := &remote.ServerConfig{
		Addr:         cfg.Serve.Addr,
		Path:         cfg.Serve.Path,
		App:          func() *vdom.Element { return app.New(logger) },
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
		ReadLimit:    cfg.Serve.ReadLimit,
		Logger:       logger,
	}

	var observer *metrics.Observer
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		observer = metrics.New(
			metrics.WithNamespace(cfg.Metrics.Namespace),
			metrics.WithRegistry(reg),
		)
		sc.Stats = observer
		sc.MetricsPath = cfg.Metrics.Path
		sc.MetricsHandler = metrics.Handler(reg)
	}

	debug := logger.Enabled(context.Background(), slog.LevelDebug)
	sc.NewObserver = func(sessionID string) vdom.Observer {
		var list []vdom.Observer
		if observer != nil {
			list = append(list, observer)
		}
		if cfg.Tracing.Enabled {
			list = append(list, tracing.New(
				tracing.WithTracerName(cfg.Tracing.TracerName),
				tracing.WithAttributes(attribute.String("session.id", sessionID)),
			))
		}
		if debug {
			list = append(list, vdom.NewLogObserver(logger.With("session_id", sessionID)))
		}
		return vdom.Observers(list...)
	}

	return remote.NewServer(sc), nil
}
