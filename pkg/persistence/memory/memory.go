// Package persistence_memory is the map-backed reference adapter:
// the default in-process wiring and the contract every other adapter
// (notably persistence/sqlite) is tested against.
package persistence_memory

import (
	"context"
	"sync"

	lobby_entities "github.com/M1tsumi/MatchForge-SDK/pkg/lobby/entities"
	party_entities "github.com/M1tsumi/MatchForge-SDK/pkg/party/entities"
	queue_entities "github.com/M1tsumi/MatchForge-SDK/pkg/queue/entities"
	rating_entities "github.com/M1tsumi/MatchForge-SDK/pkg/rating/entities"
)

// Store is a concurrency-safe, in-memory implementation of
// persistence_ports.Store. Every method is total: it never fails.
type Store struct {
	mu sync.RWMutex

	ratings map[string]rating_entities.Rating
	entries map[string]queue_entities.QueueEntry // keyed by player ID
	parties map[string]*party_entities.Party
	lobbies map[string]*lobby_entities.Lobby
	history []*lobby_entities.Lobby
}

func NewStore() *Store {
	return &Store{
		ratings: make(map[string]rating_entities.Rating),
		entries: make(map[string]queue_entities.QueueEntry),
		parties: make(map[string]*party_entities.Party),
		lobbies: make(map[string]*lobby_entities.Lobby),
	}
}

func (s *Store) SavePlayerRating(ctx context.Context, playerID string, r rating_entities.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings[playerID] = r
	return nil
}

func (s *Store) LoadPlayerRating(ctx context.Context, playerID string) (rating_entities.Rating, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.ratings[playerID]
	return r, ok, nil
}

func (s *Store) SaveQueueEntry(ctx context.Context, entry queue_entities.QueueEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, playerID := range entry.PlayerIDs {
		s.entries[playerID] = entry
	}
	return nil
}

func (s *Store) LoadQueueEntries(ctx context.Context, queueName string) ([]queue_entities.QueueEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var out []queue_entities.QueueEntry
	for _, e := range s.entries {
		if e.QueueName != queueName || seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) DeleteQueueEntry(ctx context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[playerID]
	if !ok {
		return nil
	}
	for _, id := range entry.PlayerIDs {
		if e, ok := s.entries[id]; ok && e.ID == entry.ID {
			delete(s.entries, id)
		}
	}
	return nil
}

func (s *Store) SaveParty(ctx context.Context, p *party_entities.Party) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.parties[p.ID] = &cp
	return nil
}

func (s *Store) LoadParty(ctx context.Context, partyID string) (*party_entities.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.parties[partyID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *Store) DeleteParty(ctx context.Context, partyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.parties, partyID)
	return nil
}

func (s *Store) SaveLobby(ctx context.Context, lobby *lobby_entities.Lobby) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *lobby
	s.lobbies[lobby.ID] = &cp
	return nil
}

func (s *Store) LoadLobby(ctx context.Context, lobbyID string) (*lobby_entities.Lobby, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lobbies[lobbyID]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (s *Store) DeleteLobby(ctx context.Context, lobbyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lobbies, lobbyID)
	return nil
}

func (s *Store) SaveMatchResult(ctx context.Context, lobby *lobby_entities.Lobby) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *lobby
	s.history = append(s.history, &cp)
	return nil
}

// History returns every archived lobby, oldest first. Exposed for
// tests and for an embedding application that wants a quick read-model
// without standing up the sqlite adapter.
func (s *Store) History() []*lobby_entities.Lobby {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*lobby_entities.Lobby, len(s.history))
	copy(out, s.history)
	return out
}
