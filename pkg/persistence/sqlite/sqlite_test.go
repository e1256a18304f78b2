package persistence_sqlite_test

import (
	"context"
	"testing"

	lobby_entities "github.com/M1tsumi/MatchForge-SDK/pkg/lobby/entities"
	party_entities "github.com/M1tsumi/MatchForge-SDK/pkg/party/entities"
	persistence_sqlite "github.com/M1tsumi/MatchForge-SDK/pkg/persistence/sqlite"
	queue_entities "github.com/M1tsumi/MatchForge-SDK/pkg/queue/entities"
	rating_entities "github.com/M1tsumi/MatchForge-SDK/pkg/rating/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *persistence_sqlite.Store {
	t.Helper()
	s, err := persistence_sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSqliteStore_PlayerRatingRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, found, err := s.LoadPlayerRating(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, found)

	r := rating_entities.NewRating(1600, 120, 0.06)
	require.NoError(t, s.SavePlayerRating(ctx, "A", r))

	got, found, err := s.LoadPlayerRating(ctx, "A")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, r, got)

	// upsert overwrites rather than duplicating
	r2 := rating_entities.NewRating(1700, 100, 0.06)
	require.NoError(t, s.SavePlayerRating(ctx, "A", r2))
	got, _, err = s.LoadPlayerRating(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, r2, got)
}

func TestSqliteStore_QueueEntryRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	region := "eu"
	entry := queue_entities.QueueEntry{
		ID:        "e1",
		QueueName: "q1",
		PlayerIDs: []string{"A", "B"},
		Rating:    rating_entities.NewRating(1500, 200, 0.06),
		Metadata:  queue_entities.Metadata{Roles: []string{"tank"}, Region: &region},
	}
	require.NoError(t, s.SaveQueueEntry(ctx, entry))

	entries, err := s.LoadQueueEntries(ctx, "q1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
	assert.Equal(t, []string{"A", "B"}, entries[0].PlayerIDs)
	require.NotNil(t, entries[0].Metadata.Region)
	assert.Equal(t, "eu", *entries[0].Metadata.Region)

	require.NoError(t, s.DeleteQueueEntry(ctx, "A"))
	entries, err = s.LoadQueueEntries(ctx, "q1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSqliteStore_PartyRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	party, err := party_entities.NewParty("p1", "leader", 4)
	require.NoError(t, err)
	require.NoError(t, s.SaveParty(ctx, party))

	got, err := s.LoadParty(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "leader", got.LeaderID)

	require.NoError(t, s.DeleteParty(ctx, "p1"))
	got, err = s.LoadParty(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSqliteStore_LobbyRoundTripAndArchival(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	lobby := &lobby_entities.Lobby{
		ID:           "l1",
		State:        lobby_entities.Forming,
		PlayerIDs:    []string{"A"},
		ReadyPlayers: map[string]bool{},
		Teams:        []lobby_entities.Team{{Index: 0, Members: []string{"A"}}},
		Metadata:     map[string]string{},
	}
	require.NoError(t, s.SaveLobby(ctx, lobby))

	got, err := s.LoadLobby(ctx, "l1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, lobby_entities.Forming, got.State)
	assert.Equal(t, []string{"A"}, got.Teams[0].Members)

	require.NoError(t, s.SaveMatchResult(ctx, lobby))

	require.NoError(t, s.DeleteLobby(ctx, "l1"))
	got, err = s.LoadLobby(ctx, "l1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
