// Package runner implements the Runner (C13): the tick loop that
// drives QueueManager.findMatches/consume and LobbyManager.createFromMatch
// across every registered queue, subject to per-tick budgets.
package runner

import (
	"context"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	lobby_entities "github.com/M1tsumi/MatchForge-SDK/pkg/lobby/entities"
	queue_entities "github.com/M1tsumi/MatchForge-SDK/pkg/queue/entities"
)

// QueueManager is the slice of queue_manager.Manager the Runner drives.
type QueueManager interface {
	QueueNames() []queue_entities.QueueConfig
	FindMatches(queueName string) ([]queue_entities.MatchResult, error)
	Consume(ctx context.Context, queueName string, matches []queue_entities.MatchResult) error
	Depth(queueName string) (int, error)
}

// LobbyManager is the slice of lobby_manager.Manager the Runner drives.
type LobbyManager interface {
	CreateFromMatch(ctx context.Context, result queue_entities.MatchResult, format queue_entities.MatchFormat, metadata map[string]string) (*lobby_entities.Lobby, error)
	BeginWaitingForReady(ctx context.Context, lobbyID string) (*lobby_entities.Lobby, error)
	MarkReady(ctx context.Context, lobbyID, playerID string) (*lobby_entities.Lobby, error)
	Dispatch(ctx context.Context, lobbyID, serverID string) (*lobby_entities.Lobby, error)
}

// Config governs tick pacing and the global per-tick budget.
// The per-queue budget lives on QueueConfig.MaxConcurrentPerTick.
type Config struct {
	TickInterval      time.Duration `yaml:"tick_interval_ms"`
	MaxMatchesPerTick int           `yaml:"max_matches_per_tick"`
	AutoDispatch      bool          `yaml:"auto_dispatch"`
}

// metrics are registered against a Runner-local registry rather than
// the global default, so repeated NewRunner construction in tests
// doesn't panic on duplicate registration.
type metrics struct {
	registry      *prometheus.Registry
	tickDuration  prometheus.Histogram
	matchesFormed *prometheus.CounterVec
	queueDepth    *prometheus.GaugeVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	return &metrics{
		registry: reg,
		tickDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "matchforge_tick_duration_seconds",
			Help:    "Duration of a single Runner tick across all queues",
			Buckets: prometheus.DefBuckets,
		}),
		matchesFormed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "matchforge_matches_formed_total",
			Help: "Total matches formed, labeled by queue",
		}, []string{"queue"}),
		queueDepth: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "matchforge_queue_depth",
			Help: "Queue depth sampled once per tick, labeled by queue",
		}, []string{"queue"}),
	}
}

// Registry exposes the Runner-local Prometheus registry for an
// embedding application's own /metrics endpoint.
func (m *metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Runner drives the tick loop. It owns no domain state — QueueManager
// and LobbyManager are the authorities; Runner owns only its loop flag.
type Runner struct {
	config  Config
	queues  QueueManager
	lobbies LobbyManager
	metrics *metrics

	running atomic.Bool
	stopCh  chan struct{}
}

func NewRunner(config Config, queues QueueManager, lobbies LobbyManager) *Runner {
	if config.TickInterval <= 0 {
		config.TickInterval = time.Second
	}
	return &Runner{
		config:  config,
		queues:  queues,
		lobbies: lobbies,
		metrics: newMetrics(),
	}
}

// Registry exposes the Runner's local Prometheus registry.
func (r *Runner) Registry() *prometheus.Registry {
	return r.metrics.Registry()
}

// Start runs the tick loop until ctx is cancelled or Stop is called.
// It blocks the calling goroutine.
func (r *Runner) Start(ctx context.Context) {
	r.running.Store(true)
	r.stopCh = make(chan struct{})

	ticker := time.NewTicker(r.config.TickInterval)
	defer ticker.Stop()

	for r.running.Load() {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// Stop is cooperative: the loop exits at the next tick boundary.
func (r *Runner) Stop() {
	r.running.Store(false)
	if r.stopCh != nil {
		close(r.stopCh)
	}
}

// Tick runs a single scan over every enabled queue, ascending by
// priority, enforcing both tick budgets. Exposed directly so embedders
// and tests can drive ticks without a real-time sleep loop.
func (r *Runner) Tick(ctx context.Context) {
	r.tick(ctx)
}

func (r *Runner) tick(ctx context.Context) {
	start := time.Now()
	defer func() {
		r.metrics.tickDuration.Observe(time.Since(start).Seconds())
	}()

	configs := r.queues.QueueNames()
	sort.SliceStable(configs, func(i, j int) bool {
		return configs[i].Priority < configs[j].Priority
	})

	formedThisTick := 0

	for _, config := range configs {
		if !config.Enabled {
			continue
		}
		if formedThisTick >= r.config.MaxMatchesPerTick {
			break
		}

		if depth, err := r.queues.Depth(config.Name); err == nil {
			r.metrics.queueDepth.WithLabelValues(config.Name).Set(float64(depth))
		}

		matches, err := r.queues.FindMatches(config.Name)
		if err != nil {
			slog.ErrorContext(ctx, "tick: findMatches failed", "queue", config.Name, "error", err)
			continue
		}
		if len(matches) == 0 {
			continue
		}

		limit := len(matches)
		if config.MaxConcurrentPerTick > 0 && config.MaxConcurrentPerTick < limit {
			limit = config.MaxConcurrentPerTick
		}
		if remaining := r.config.MaxMatchesPerTick - formedThisTick; remaining < limit {
			limit = remaining
		}
		accepted := matches[:limit]

		if err := r.queues.Consume(ctx, config.Name, accepted); err != nil {
			slog.ErrorContext(ctx, "tick: consume failed, queue state unchanged", "queue", config.Name, "error", err)
			continue
		}

		for _, match := range accepted {
			lobby, err := r.lobbies.CreateFromMatch(ctx, match, config.Format, nil)
			if err != nil {
				slog.ErrorContext(ctx, "tick: createFromMatch failed", "queue", config.Name, "match_id", match.MatchID, "error", err)
				continue
			}

			if r.config.AutoDispatch {
				r.autoDispatch(ctx, lobby)
			}
		}

		formedThisTick += len(accepted)
		r.metrics.matchesFormed.WithLabelValues(config.Name).Add(float64(len(accepted)))
	}
}

// autoDispatch synthesizes Forming -> WaitingForReady -> Ready ->
// Dispatched immediately, for headless workflows with no readiness
// gating.
func (r *Runner) autoDispatch(ctx context.Context, lobby *lobby_entities.Lobby) {
	lobbyID := lobby.ID

	updated, err := r.lobbies.BeginWaitingForReady(ctx, lobbyID)
	if err != nil {
		slog.ErrorContext(ctx, "autoDispatch: BeginWaitingForReady failed", "lobby_id", lobbyID, "error", err)
		return
	}

	for _, playerID := range updated.PlayerIDs {
		updated, err = r.lobbies.MarkReady(ctx, lobbyID, playerID)
		if err != nil {
			slog.ErrorContext(ctx, "autoDispatch: MarkReady failed", "lobby_id", lobbyID, "player_id", playerID, "error", err)
			return
		}
	}

	if _, err := r.lobbies.Dispatch(ctx, lobbyID, "auto"); err != nil {
		slog.ErrorContext(ctx, "autoDispatch: Dispatch failed", "lobby_id", lobbyID, "error", err)
	}
}
