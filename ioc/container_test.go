package ioc_test

import (
	"testing"
	"time"

	"github.com/M1tsumi/MatchForge-SDK/ioc"
	lobby_manager "github.com/M1tsumi/MatchForge-SDK/pkg/lobby/manager"
	party_manager "github.com/M1tsumi/MatchForge-SDK/pkg/party/manager"
	party_services "github.com/M1tsumi/MatchForge-SDK/pkg/party/services"
	queue_manager "github.com/M1tsumi/MatchForge-SDK/pkg/queue/manager"
	rating_services "github.com/M1tsumi/MatchForge-SDK/pkg/rating/services"
	"github.com/M1tsumi/MatchForge-SDK/pkg/runner"
	"github.com/stretchr/testify/require"
)

func TestContainerBuilder_WiresFullStack(t *testing.T) {
	b := ioc.NewContainerBuilder().
		WithMemoryPersistence().
		WithRatingAlgorithm(rating_services.NewEloAlgorithm(32)).
		WithPartyRatingPolicy(party_services.NewAveragePolicy()).
		WithManagers().
		WithRunner(runner.Config{TickInterval: time.Second, MaxMatchesPerTick: 10})

	c := b.Build()

	var queues *queue_manager.Manager
	require.NoError(t, c.Resolve(&queues))
	require.NotNil(t, queues)

	var parties *party_manager.Manager
	require.NoError(t, c.Resolve(&parties))
	require.NotNil(t, parties)

	var lobbies *lobby_manager.Manager
	require.NoError(t, c.Resolve(&lobbies))
	require.NotNil(t, lobbies)

	var r *runner.Runner
	require.NoError(t, c.Resolve(&r))
	require.NotNil(t, r)
}

func TestContainerBuilder_SQLitePersistence(t *testing.T) {
	b := ioc.NewContainerBuilder().
		WithSQLitePersistence(":memory:").
		WithManagers()

	c := b.Build()

	var queues *queue_manager.Manager
	require.NoError(t, c.Resolve(&queues))
	require.NotNil(t, queues)
}
