package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mercator-hq/nlpolicy/pkg/cli"
	"mercator-hq/nlpolicy/pkg/config"
	"mercator-hq/nlpolicy/pkg/history"
	"mercator-hq/nlpolicy/pkg/server"
	"mercator-hq/nlpolicy/pkg/telemetry/health"
)

var serveFlags struct {
	address  string
	offline  bool
	watch    string
	scope    string
	debounce time.Duration
}

var serveCmd = &cobra.Command{
	Use:     "serve-metrics",
	Aliases: []string{"serve"},
	Short:   "Serve Prometheus metrics and health checks",
	Long: `Run an HTTP server exposing:

  GET /metrics   Prometheus metrics (telemetry.metrics.path)
  GET /healthz   liveness
  GET /readyz    readiness of the schema, probe database and history store

With --watch, policy files under the path are compiled on start and on
every change, feeding the compile metrics. History pruning runs on its cron
schedule while the server is up.

Examples:
  nlpolicy serve-metrics
  nlpolicy serve-metrics --address :9090 --watch policies/ --offline`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveFlags.address, "address", "", "listen address (default telemetry.metrics.address)")
	serveCmd.Flags().BoolVar(&serveFlags.offline, "offline", false, "use only the local dictionary parser")
	serveCmd.Flags().StringVar(&serveFlags.watch, "watch", "", "policy file or directory to compile and watch")
	serveCmd.Flags().StringVar(&serveFlags.scope, "scope", "", "scope (company) ID used for data checks")
	serveCmd.Flags().DurationVar(&serveFlags.debounce, "debounce", 200*time.Millisecond, "quiet period before recompiling")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.MustGetConfig()
	if !cfg.Telemetry.Metrics.Enabled {
		slog.Warn("telemetry.metrics.enabled is false, /metrics will expose no compile series")
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := cli.SetupSignalHandler(parent)
	defer stop()

	a, err := newApp(ctx, cfg, appOptions{Offline: serveFlags.offline, History: true})
	if err != nil {
		return cli.NewCommandError("serve-metrics", err)
	}
	defer a.Close()

	if a.history != nil {
		sched := history.NewScheduler(a.history, cfg.History.RetentionDays, cfg.History.PruneSchedule)
		if err := sched.Start(ctx); err != nil {
			return cli.NewCommandError("serve-metrics", err)
		}
		defer sched.Stop()
	}

	handler := server.NewHandler(server.Routes{
		Metrics:     a.metrics.Handler(),
		MetricsPath: cfg.Telemetry.Metrics.Path,
		Health:      a.healthChecker(),
		Logger:      a.logger.With("component", "server"),
	})

	address := serveFlags.address
	if address == "" {
		address = cfg.Telemetry.Metrics.Address
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.New(server.Config{Address: address}, handler).Start(gctx)
	})
	if serveFlags.watch != "" {
		g.Go(func() error {
			return a.watchPolicies(gctx, serveFlags.watch, serveFlags.debounce, serveFlags.scope, nil)
		})
	}
	if err := g.Wait(); err != nil {
		return cli.NewCommandError("serve-metrics", err)
	}
	return nil
}

// healthChecker registers a readiness check per collaborator. Disabled
// collaborators get a nil check.
func (a *app) healthChecker() *health.Checker {
	c := health.New(5 * time.Second)

	c.Register("schema", func(context.Context) error {
		if a.schema.Catalog().IsEmpty() {
			return errors.New("schema catalog is empty")
		}
		return nil
	})

	var probeCheck health.CheckFunc
	if a.probe != nil {
		probeCheck = a.probe.Ping
	}
	c.Register("probe", probeCheck)

	var historyCheck health.CheckFunc
	if a.history != nil {
		historyCheck = func(ctx context.Context) error {
			_, err := a.history.Count(ctx)
			return err
		}
	}
	c.Register("history", historyCheck)

	return c
}
