// Package party_entities defines Party, the persistent cross-queue
// group of players that queues as a unit (C4).
package party_entities

import "fmt"

// Party is mutated only through PartyManager's add/remove operations;
// it is destroyed (not just emptied) when it becomes empty or its
// leader leaves.
type Party struct {
	ID       string
	LeaderID string
	Members  []string // ordered, unique
	MaxSize  int
}

// NewParty constructs a Party with the leader as its sole initial
// member. Returns a plain error for a non-positive maxSize; PartyManager
// reports it as InvalidConfiguration.
func NewParty(id, leaderID string, maxSize int) (*Party, error) {
	if maxSize < 1 {
		return nil, fmt.Errorf("party maxSize must be positive, got %d", maxSize)
	}
	return &Party{
		ID:       id,
		LeaderID: leaderID,
		Members:  []string{leaderID},
		MaxSize:  maxSize,
	}, nil
}

// HasMember reports whether playerID is currently a member.
func (p *Party) HasMember(playerID string) bool {
	for _, m := range p.Members {
		if m == playerID {
			return true
		}
	}
	return false
}

// IsFull reports whether the party has reached MaxSize.
func (p *Party) IsFull() bool {
	return len(p.Members) >= p.MaxSize
}

// Snapshot returns a copy of the current member list, safe for a
// QueueEntry to retain as an immutable join-time snapshot.
func (p *Party) Snapshot() []string {
	out := make([]string, len(p.Members))
	copy(out, p.Members)
	return out
}
