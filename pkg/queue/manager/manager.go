// Package queue_manager implements QueueManager (C10): named queues
// with join/leave, at-most-once global membership, and find+consume
// against the Matcher.
package queue_manager

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/M1tsumi/MatchForge-SDK/pkg/merr"
	queue_entities "github.com/M1tsumi/MatchForge-SDK/pkg/queue/entities"
	"github.com/M1tsumi/MatchForge-SDK/pkg/queue/matcher"
	rating_entities "github.com/M1tsumi/MatchForge-SDK/pkg/rating/entities"
)

// Store is the slice of the persistence contract QueueManager needs:
// saveQueueEntry/loadQueueEntries/deleteQueueEntry.
type Store interface {
	SaveQueueEntry(ctx context.Context, entry queue_entities.QueueEntry) error
	LoadQueueEntries(ctx context.Context, queueName string) ([]queue_entities.QueueEntry, error)
	DeleteQueueEntry(ctx context.Context, playerID string) error
}

// queueState holds one queue's live entry list and its own lock, so
// operations on independent queues never contend.
type queueState struct {
	mu      sync.RWMutex
	config  queue_entities.QueueConfig
	entries []queue_entities.QueueEntry
}

// Manager maintains queues, their configs, and a process-wide
// playerToEntry index enforcing global at-most-once membership.
type Manager struct {
	store Store

	queuesMu sync.RWMutex
	queues   map[string]*queueState

	indexMu       sync.Mutex
	playerToEntry map[string]string // playerID -> queueName
}

func NewManager(store Store) *Manager {
	return &Manager{
		store:         store,
		queues:        make(map[string]*queueState),
		playerToEntry: make(map[string]string),
	}
}

// RegisterQueue creates a named queue. Fails with DuplicateQueue if
// the name is already registered.
func (m *Manager) RegisterQueue(config queue_entities.QueueConfig) error {
	m.queuesMu.Lock()
	defer m.queuesMu.Unlock()

	if _, ok := m.queues[config.Name]; ok {
		return merr.NewDuplicate("queue", config.Name)
	}

	m.queues[config.Name] = &queueState{config: config}
	return nil
}

func (m *Manager) getQueue(queueName string) (*queueState, error) {
	m.queuesMu.RLock()
	defer m.queuesMu.RUnlock()

	q, ok := m.queues[queueName]
	if !ok {
		return nil, merr.NewNotFound("queue", queueName)
	}
	return q, nil
}

// Config returns the registered config for a queue.
func (m *Manager) Config(queueName string) (queue_entities.QueueConfig, error) {
	q, err := m.getQueue(queueName)
	if err != nil {
		return queue_entities.QueueConfig{}, err
	}
	return q.config, nil
}

// QueueNames returns the config of every registered queue, in no
// defined order; the Runner sorts them by ascending priority itself.
func (m *Manager) QueueNames() []queue_entities.QueueConfig {
	m.queuesMu.RLock()
	defer m.queuesMu.RUnlock()

	configs := make([]queue_entities.QueueConfig, 0, len(m.queues))
	for _, q := range m.queues {
		q.mu.RLock()
		configs = append(configs, q.config)
		q.mu.RUnlock()
	}
	return configs
}

// JoinSolo constructs and persists a solo entry for playerID. Fails
// with AlreadyInQueue if the player appears in any queue globally.
func (m *Manager) JoinSolo(ctx context.Context, queueName, playerID string, rating rating_entities.Rating, metadata queue_entities.Metadata) (queue_entities.QueueEntry, error) {
	return m.join(ctx, queueName, []string{playerID}, nil, rating, metadata)
}

// JoinParty constructs and persists a party entry. If any member is
// already queued anywhere, the whole operation fails with no state
// mutated (all-or-nothing).
func (m *Manager) JoinParty(ctx context.Context, queueName, partyID string, members []string, partyRating rating_entities.Rating, metadata queue_entities.Metadata) (queue_entities.QueueEntry, error) {
	return m.join(ctx, queueName, members, &partyID, partyRating, metadata)
}

func (m *Manager) join(ctx context.Context, queueName string, playerIDs []string, partyID *string, rating rating_entities.Rating, metadata queue_entities.Metadata) (queue_entities.QueueEntry, error) {
	q, err := m.getQueue(queueName)
	if err != nil {
		return queue_entities.QueueEntry{}, err
	}

	// Reserve the cross-queue index first: a brief lock across all
	// queues, released before any persistence call.
	if err := m.reserveIndex(queueName, playerIDs); err != nil {
		return queue_entities.QueueEntry{}, err
	}

	entry := queue_entities.QueueEntry{
		ID:        uuid.NewString(),
		QueueName: queueName,
		PlayerIDs: append([]string(nil), playerIDs...),
		PartyID:   partyID,
		Rating:    rating,
		JoinedAt:  time.Now().UTC(),
		Metadata:  metadata,
	}

	q.mu.Lock()
	err = func() error {
		defer q.mu.Unlock()
		if err := m.store.SaveQueueEntry(ctx, entry); err != nil {
			return merr.NewPersistence("JoinQueue", err)
		}
		q.entries = append(q.entries, entry)
		return nil
	}()

	if err != nil {
		m.releaseIndex(playerIDs)
		return queue_entities.QueueEntry{}, err
	}

	slog.InfoContext(ctx, "queue entry joined", "queue", queueName, "entry_id", entry.ID, "players", playerIDs)
	return entry, nil
}

func (m *Manager) reserveIndex(queueName string, playerIDs []string) error {
	m.indexMu.Lock()
	defer m.indexMu.Unlock()

	for _, id := range playerIDs {
		if _, ok := m.playerToEntry[id]; ok {
			return merr.NewDuplicate("queue membership", id)
		}
	}
	for _, id := range playerIDs {
		m.playerToEntry[id] = queueName
	}
	return nil
}

func (m *Manager) releaseIndex(playerIDs []string) {
	m.indexMu.Lock()
	defer m.indexMu.Unlock()
	for _, id := range playerIDs {
		delete(m.playerToEntry, id)
	}
}

// Leave removes the entry containing playerID. For a party entry this
// removes the whole party's entry — partial departures are not
// supported in the core.
func (m *Manager) Leave(ctx context.Context, queueName, playerID string) error {
	q, err := m.getQueue(queueName)
	if err != nil {
		return err
	}

	q.mu.Lock()
	var removed *queue_entities.QueueEntry
	idx := -1
	for i, e := range q.entries {
		if e.HasPlayer(playerID) {
			removed = &q.entries[i]
			idx = i
			break
		}
	}
	if idx == -1 {
		q.mu.Unlock()
		return merr.NewNotFound("queue entry for player", playerID)
	}

	entry := *removed
	q.entries = append(q.entries[:idx], q.entries[idx+1:]...)
	q.mu.Unlock()

	if err := m.store.DeleteQueueEntry(ctx, playerID); err != nil {
		return merr.NewPersistence("Leave", err)
	}

	m.releaseIndex(entry.PlayerIDs)

	slog.InfoContext(ctx, "queue entry left", "queue", queueName, "entry_id", entry.ID, "players", entry.PlayerIDs)
	return nil
}

// FindMatches takes a read lock over a monotonic snapshot of the
// queue's current entries and invokes the Matcher. It never mutates
// queue state.
func (m *Manager) FindMatches(queueName string) ([]queue_entities.MatchResult, error) {
	q, err := m.getQueue(queueName)
	if err != nil {
		return nil, err
	}

	q.mu.RLock()
	snapshot := make([]queue_entities.QueueEntry, len(q.entries))
	copy(snapshot, q.entries)
	config := q.config
	q.mu.RUnlock()

	return matcher.FindMatches(snapshot, config.Format, config.Constraints, time.Now().UTC()), nil
}

// Depth returns the current number of entries waiting in queueName, for
// Runner's per-tick gauge sample.
func (m *Manager) Depth(queueName string) (int, error) {
	q, err := m.getQueue(queueName)
	if err != nil {
		return 0, err
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.entries), nil
}

// Consume atomically removes every entry appearing in matches from the
// queue's live state. Already-absent entries are silently skipped
// (idempotent); persistence deletions are best-effort per entry.
func (m *Manager) Consume(ctx context.Context, queueName string, matches []queue_entities.MatchResult) error {
	q, err := m.getQueue(queueName)
	if err != nil {
		return err
	}

	consumedIDs := make(map[string]bool)
	var allPlayerIDs []string
	for _, result := range matches {
		for _, e := range result.Entries {
			consumedIDs[e.ID] = true
			allPlayerIDs = append(allPlayerIDs, e.PlayerIDs...)
		}
	}

	q.mu.Lock()
	remaining := q.entries[:0:0]
	for _, e := range q.entries {
		if !consumedIDs[e.ID] {
			remaining = append(remaining, e)
		}
	}
	q.entries = remaining
	q.mu.Unlock()

	for playerID := range playerSet(allPlayerIDs) {
		if err := m.store.DeleteQueueEntry(ctx, playerID); err != nil {
			slog.WarnContext(ctx, "best-effort queue entry deletion failed", "queue", queueName, "player_id", playerID, "error", err)
		}
	}

	m.releaseIndex(allPlayerIDs)

	slog.InfoContext(ctx, "queue entries consumed", "queue", queueName, "matches", len(matches))
	return nil
}

func playerSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
