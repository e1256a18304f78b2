// Package lobby_entities defines the Lobby (C11) and its bounded state
// machine: a post-match grouping tracked through readiness and dispatch.
package lobby_entities

import "time"

// State is one node of the lobby lifecycle DAG.
type State string

const (
	Forming         State = "forming"
	WaitingForReady State = "waiting_for_ready"
	Ready           State = "ready"
	Dispatched      State = "dispatched"
	Closed          State = "closed"
)

// edges enumerates the legal transitions; any state may also go
// directly to Closed (cancellation), checked separately in CanTransition.
var edges = map[State]State{
	Forming:         WaitingForReady,
	WaitingForReady: Ready,
	Ready:           Dispatched,
}

// CanTransition reports whether from -> to is a legal explicit move.
// Closed is reachable from any non-terminal state.
func CanTransition(from, to State) bool {
	if to == Closed {
		return from != Closed
	}
	return edges[from] == to
}

// Team is an ordered list of player IDs sharing a team slot.
type Team struct {
	Index   int
	Members []string
}

// Lobby is a group of matched players tracked through readiness and
// dispatch. Teams partition playerIDs with no overlap; readyPlayers is
// always a subset of playerIDs.
type Lobby struct {
	ID            string
	MatchID       string
	State         State
	Teams         []Team
	PlayerIDs     []string
	ReadyPlayers  map[string]bool
	CreatedAt     time.Time
	ServerID      *string
	Metadata      map[string]string
}

// HasPlayer reports whether playerID is a member of this lobby.
func (l *Lobby) HasPlayer(playerID string) bool {
	for _, id := range l.PlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

// TeamOf returns the team index containing playerID, or -1 if absent.
func (l *Lobby) TeamOf(playerID string) int {
	for _, t := range l.Teams {
		for _, m := range t.Members {
			if m == playerID {
				return t.Index
			}
		}
	}
	return -1
}

// AllReady reports whether every player in the lobby has marked ready.
func (l *Lobby) AllReady() bool {
	if len(l.ReadyPlayers) < len(l.PlayerIDs) {
		return false
	}
	for _, id := range l.PlayerIDs {
		if !l.ReadyPlayers[id] {
			return false
		}
	}
	return true
}
