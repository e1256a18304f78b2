// Package persistence_ports defines the full storage contract:
// every method may fail with a *merr.PersistenceError; missing-row
// lookups return a nil/false zero value rather than a NotFound error —
// callers decide whether absence is meaningful.
package persistence_ports

import (
	"context"

	lobby_entities "github.com/M1tsumi/MatchForge-SDK/pkg/lobby/entities"
	party_entities "github.com/M1tsumi/MatchForge-SDK/pkg/party/entities"
	queue_entities "github.com/M1tsumi/MatchForge-SDK/pkg/queue/entities"
	rating_entities "github.com/M1tsumi/MatchForge-SDK/pkg/rating/entities"
)

// Store is the complete persistence contract every adapter satisfies.
// Package managers (queue_manager.Store, party_manager.Store,
// lobby_manager.Store) each depend on the narrow slice they need —
// Store exists so a single adapter instance can back all of them.
type Store interface {
	SavePlayerRating(ctx context.Context, playerID string, r rating_entities.Rating) error
	LoadPlayerRating(ctx context.Context, playerID string) (rating_entities.Rating, bool, error)

	SaveQueueEntry(ctx context.Context, entry queue_entities.QueueEntry) error
	LoadQueueEntries(ctx context.Context, queueName string) ([]queue_entities.QueueEntry, error)
	DeleteQueueEntry(ctx context.Context, playerID string) error

	SaveParty(ctx context.Context, party *party_entities.Party) error
	LoadParty(ctx context.Context, partyID string) (*party_entities.Party, error)
	DeleteParty(ctx context.Context, partyID string) error

	SaveLobby(ctx context.Context, lobby *lobby_entities.Lobby) error
	LoadLobby(ctx context.Context, lobbyID string) (*lobby_entities.Lobby, error)
	DeleteLobby(ctx context.Context, lobbyID string) error

	// SaveMatchResult archives a closed lobby to match history. Write-only.
	SaveMatchResult(ctx context.Context, lobby *lobby_entities.Lobby) error
}
