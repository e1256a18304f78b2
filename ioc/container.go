// Package ioc wires persistence, rating algorithms, party policies,
// and the manager set into a golobby/container/v3 ContainerBuilder:
// chained With* methods register singletons that resolve their own
// dependencies.
package ioc

import (
	"log/slog"

	container "github.com/golobby/container/v3"

	lobby_manager "github.com/M1tsumi/MatchForge-SDK/pkg/lobby/manager"
	party_manager "github.com/M1tsumi/MatchForge-SDK/pkg/party/manager"
	party_ports "github.com/M1tsumi/MatchForge-SDK/pkg/party/ports"
	persistence_memory "github.com/M1tsumi/MatchForge-SDK/pkg/persistence/memory"
	persistence_ports "github.com/M1tsumi/MatchForge-SDK/pkg/persistence/ports"
	persistence_sqlite "github.com/M1tsumi/MatchForge-SDK/pkg/persistence/sqlite"
	queue_manager "github.com/M1tsumi/MatchForge-SDK/pkg/queue/manager"
	rating_ports "github.com/M1tsumi/MatchForge-SDK/pkg/rating/ports"
	"github.com/M1tsumi/MatchForge-SDK/pkg/runner"
)

// ContainerBuilder accumulates singleton registrations, panicking at
// registration time if a binding is malformed — failures here are
// startup bugs, not runtime conditions.
type ContainerBuilder struct {
	Container container.Container
}

func NewContainerBuilder() *ContainerBuilder {
	c := container.New()
	b := &ContainerBuilder{Container: c}

	if err := c.Singleton(func() container.Container { return b.Container }); err != nil {
		slog.Error("ioc: failed to register container.Container in NewContainerBuilder")
		panic(err)
	}
	return b
}

func (b *ContainerBuilder) Build() container.Container {
	return b.Container
}

// WithMemoryPersistence registers the in-memory reference adapter as
// persistence_ports.Store — the default for tests and single-process
// embedding.
func (b *ContainerBuilder) WithMemoryPersistence() *ContainerBuilder {
	c := b.Container
	store := persistence_memory.NewStore()

	if err := c.Singleton(func() persistence_ports.Store { return store }); err != nil {
		slog.Error("ioc: failed to register persistence_ports.Store (memory)")
		panic(err)
	}
	return b
}

// WithSQLitePersistence registers the durable modernc.org/sqlite
// adapter at dbPath as persistence_ports.Store.
func (b *ContainerBuilder) WithSQLitePersistence(dbPath string) *ContainerBuilder {
	c := b.Container

	store, err := persistence_sqlite.Open(dbPath)
	if err != nil {
		slog.Error("ioc: failed to open sqlite store", "path", dbPath, "error", err)
		panic(err)
	}

	if err := c.Singleton(func() persistence_ports.Store { return store }); err != nil {
		slog.Error("ioc: failed to register persistence_ports.Store (sqlite)")
		panic(err)
	}
	return b
}

// WithRatingAlgorithm registers a pre-built rating_ports.RatingAlgorithm
// singleton (e.g. rating_services.NewEloAlgorithm, ...Glicko2Algorithm).
func (b *ContainerBuilder) WithRatingAlgorithm(algorithm rating_ports.RatingAlgorithm) *ContainerBuilder {
	c := b.Container
	if err := c.Singleton(func() rating_ports.RatingAlgorithm { return algorithm }); err != nil {
		slog.Error("ioc: failed to register rating_ports.RatingAlgorithm")
		panic(err)
	}
	return b
}

// WithPartyRatingPolicy registers a pre-built party_ports.PartyRatingPolicy.
func (b *ContainerBuilder) WithPartyRatingPolicy(policy party_ports.PartyRatingPolicy) *ContainerBuilder {
	c := b.Container
	if err := c.Singleton(func() party_ports.PartyRatingPolicy { return policy }); err != nil {
		slog.Error("ioc: failed to register party_ports.PartyRatingPolicy")
		panic(err)
	}
	return b
}

// WithManagers resolves persistence_ports.Store and registers
// QueueManager, PartyManager, and LobbyManager against it. Must run
// after a WithXPersistence call.
func (b *ContainerBuilder) WithManagers() *ContainerBuilder {
	c := b.Container

	var store persistence_ports.Store
	if err := c.Resolve(&store); err != nil {
		slog.Error("ioc: failed to resolve persistence_ports.Store for managers", "error", err)
		panic(err)
	}

	if err := c.Singleton(func() *queue_manager.Manager {
		return queue_manager.NewManager(store)
	}); err != nil {
		slog.Error("ioc: failed to register queue_manager.Manager")
		panic(err)
	}

	if err := c.Singleton(func() *party_manager.Manager {
		return party_manager.NewManager(store)
	}); err != nil {
		slog.Error("ioc: failed to register party_manager.Manager")
		panic(err)
	}

	if err := c.Singleton(func() *lobby_manager.Manager {
		return lobby_manager.NewManager(store)
	}); err != nil {
		slog.Error("ioc: failed to register lobby_manager.Manager")
		panic(err)
	}

	return b
}

// WithRunner resolves QueueManager and LobbyManager and registers a
// *runner.Runner configured with config. Must run after WithManagers.
func (b *ContainerBuilder) WithRunner(config runner.Config) *ContainerBuilder {
	c := b.Container

	var queues *queue_manager.Manager
	if err := c.Resolve(&queues); err != nil {
		slog.Error("ioc: failed to resolve queue_manager.Manager for runner", "error", err)
		panic(err)
	}

	var lobbies *lobby_manager.Manager
	if err := c.Resolve(&lobbies); err != nil {
		slog.Error("ioc: failed to resolve lobby_manager.Manager for runner", "error", err)
		panic(err)
	}

	if err := c.Singleton(func() *runner.Runner {
		return runner.NewRunner(config, queues, lobbies)
	}); err != nil {
		slog.Error("ioc: failed to register runner.Runner")
		panic(err)
	}

	return b
}
