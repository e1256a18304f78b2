// Package party_manager implements PartyManager (C6): lifecycle and
// membership invariants for parties, enforced via a reverse
// player->party index.
package party_manager

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/M1tsumi/MatchForge-SDK/pkg/merr"
	party_entities "github.com/M1tsumi/MatchForge-SDK/pkg/party/entities"
	party_ports "github.com/M1tsumi/MatchForge-SDK/pkg/party/ports"
	rating_entities "github.com/M1tsumi/MatchForge-SDK/pkg/rating/entities"
)

// Store is the slice of the persistence contract PartyManager needs:
// saveParty/deleteParty.
type Store interface {
	SaveParty(ctx context.Context, p *party_entities.Party) error
	DeleteParty(ctx context.Context, partyID string) error
}

// Manager owns the live party index (parties + playerToParty) and
// guards it with a single mutex — party operations are infrequent
// relative to queue joins, so one lock for the whole index is
// sufficient.
type Manager struct {
	mu            sync.Mutex
	parties       map[string]*party_entities.Party
	playerToParty map[string]string
	store         Store
}

func NewManager(store Store) *Manager {
	return &Manager{
		parties:       make(map[string]*party_entities.Party),
		playerToParty: make(map[string]string),
		store:         store,
	}
}

// Create builds a new party led by leaderID. Fails with AlreadyInParty
// if the leader is already a member of any party.
func (m *Manager) Create(ctx context.Context, leaderID string, maxSize int) (*party_entities.Party, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.playerToParty[leaderID]; ok {
		return nil, merr.NewDuplicate("party membership", leaderID)
	}

	p, err := party_entities.NewParty(uuid.NewString(), leaderID, maxSize)
	if err != nil {
		return nil, merr.NewInvalidConfiguration("maxSize", err.Error())
	}

	if err := m.store.SaveParty(ctx, p); err != nil {
		return nil, merr.NewPersistence("Create", err)
	}

	m.parties[p.ID] = p
	m.playerToParty[leaderID] = p.ID

	slog.InfoContext(ctx, "party created", "party_id", p.ID, "leader_id", leaderID, "max_size", maxSize)
	return p, nil
}

// AddMember adds playerID to the party. idempotent=false surfaces
// AlreadyMember if the player is already in this exact party;
// idempotent=true silently succeeds in that case instead.
func (m *Manager) AddMember(ctx context.Context, partyID, playerID string, idempotent bool) (*party_entities.Party, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.parties[partyID]
	if !ok {
		return nil, merr.NewNotFound("party", partyID)
	}

	if existing, inParty := m.playerToParty[playerID]; inParty {
		if existing == partyID {
			if idempotent {
				return p, nil
			}
			return nil, merr.NewDuplicate("party member", playerID)
		}
		return nil, merr.NewDuplicate("party membership", playerID)
	}

	if p.IsFull() {
		return nil, merr.NewPartyFull(partyID, p.MaxSize)
	}

	p.Members = append(p.Members, playerID)
	m.playerToParty[playerID] = partyID

	if err := m.store.SaveParty(ctx, p); err != nil {
		return nil, merr.NewPersistence("AddMember", err)
	}

	slog.InfoContext(ctx, "party member added", "party_id", partyID, "player_id", playerID)
	return p, nil
}

// RemoveMember removes playerID from its party. If the leader leaves,
// or the party becomes empty, the party disbands: it is deleted and
// every reverse-index entry for its former members is cleared.
func (m *Manager) RemoveMember(ctx context.Context, partyID, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.parties[partyID]
	if !ok {
		return merr.NewNotFound("party", partyID)
	}

	if !p.HasMember(playerID) {
		return merr.NewNotFound("party member", playerID)
	}

	if playerID == p.LeaderID {
		return m.disband(ctx, p)
	}

	filtered := make([]string, 0, len(p.Members)-1)
	for _, m := range p.Members {
		if m != playerID {
			filtered = append(filtered, m)
		}
	}
	p.Members = filtered
	delete(m.playerToParty, playerID)

	if len(p.Members) == 0 {
		return m.disband(ctx, p)
	}

	if err := m.store.SaveParty(ctx, p); err != nil {
		return merr.NewPersistence("RemoveMember", err)
	}

	slog.InfoContext(ctx, "party member removed", "party_id", partyID, "player_id", playerID)
	return nil
}

// disband deletes the party and clears every remaining reverse-index
// entry. Caller must hold m.mu.
func (m *Manager) disband(ctx context.Context, p *party_entities.Party) error {
	for _, member := range p.Members {
		delete(m.playerToParty, member)
	}
	delete(m.parties, p.ID)

	if err := m.store.DeleteParty(ctx, p.ID); err != nil {
		return merr.NewPersistence("disband", err)
	}

	slog.InfoContext(ctx, "party disbanded", "party_id", p.ID)
	return nil
}

// Get returns the live Party by ID.
func (m *Manager) Get(partyID string) (*party_entities.Party, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.parties[partyID]
	if !ok {
		return nil, merr.NewNotFound("party", partyID)
	}
	return p, nil
}

// PartyOf returns the party ID a player currently belongs to, if any.
func (m *Manager) PartyOf(playerID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.playerToParty[playerID]
	return id, ok
}

// PartyRating applies policy to the party's current member ratings.
func (m *Manager) PartyRating(partyID string, policy party_ports.PartyRatingPolicy, lookup party_ports.RatingLookup) (rating_entities.Rating, error) {
	p, err := m.Get(partyID)
	if err != nil {
		return rating_entities.Rating{}, err
	}
	return policy.Aggregate(p.Snapshot(), lookup), nil
}
