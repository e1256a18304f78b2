package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/M1tsumi/MatchForge-SDK/internal/config"
	"github.com/M1tsumi/MatchForge-SDK/ioc"
	party_services "github.com/M1tsumi/MatchForge-SDK/pkg/party/services"
	queue_manager "github.com/M1tsumi/MatchForge-SDK/pkg/queue/manager"
	rating_services "github.com/M1tsumi/MatchForge-SDK/pkg/rating/services"
	"github.com/M1tsumi/MatchForge-SDK/pkg/runner"
)

var (
	flagMetricsAddr string
	flagEloK        float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Runner tick loop against a config file",
	Long: `Load the YAML config at --config, wire persistence and the manager
set, register every configured queue, and drive the Runner's tick loop
until interrupted.

Examples:
  matchd run --config matchd.yaml
  matchd run --config matchd.yaml --metrics :9090`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagMetricsAddr, "metrics", "", "Address to serve /metrics on (empty disables)")
	runCmd.Flags().Float64Var(&flagEloK, "elo-k", 32, "K-factor for the default Elo rating algorithm")
}

func runRun(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return fmt.Errorf("matchd run: %w", err)
	}

	builder := ioc.NewContainerBuilder()
	switch cfg.Persistence {
	case config.PersistenceSQLite:
		builder = builder.WithSQLitePersistence(cfg.SQLitePath)
	default:
		builder = builder.WithMemoryPersistence()
	}

	builder = builder.
		WithRatingAlgorithm(rating_services.NewEloAlgorithm(flagEloK)).
		WithPartyRatingPolicy(party_services.NewAveragePolicy()).
		WithManagers().
		WithRunner(cfg.Runner.ToRunnerConfig())

	container := builder.Build()

	var queues *queue_manager.Manager
	if err := container.Resolve(&queues); err != nil {
		return fmt.Errorf("matchd run: resolve queue manager: %w", err)
	}
	for _, qc := range cfg.Queues {
		if err := queues.RegisterQueue(qc); err != nil {
			return fmt.Errorf("matchd run: register queue %q: %w", qc.Name, err)
		}
	}

	var r *runner.Runner
	if err := container.Resolve(&r); err != nil {
		return fmt.Errorf("matchd run: resolve runner: %w", err)
	}

	if flagMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(r.Registry(), promhttp.HandlerOpts{}))
		server := &http.Server{Addr: flagMetricsAddr, Handler: mux}
		go func() {
			slog.Info("matchd: serving metrics", "addr", flagMetricsAddr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("matchd: metrics server failed", "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("matchd: starting runner", "queues", len(cfg.Queues), "tick_interval_ms", cfg.Runner.TickIntervalMS)
	r.Start(ctx)
	slog.Info("matchd: runner stopped")
	return nil
}
