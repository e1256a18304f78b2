// Package queue_entities defines the data model the Matcher and
// QueueManager operate over: QueueEntry, MatchFormat, MatchConstraints,
// and the ephemeral MatchResult (C7, C8).
package queue_entities

import (
	"time"

	rating_entities "github.com/M1tsumi/MatchForge-SDK/pkg/rating/entities"
)

// RoleRequirement is one (role, count) pair in a MatchConstraints.
type RoleRequirement struct {
	Role  string `yaml:"role"`
	Count int    `yaml:"count"`
}

// Metadata carries roles, an optional region, and arbitrary custom
// data for a QueueEntry. Region uses a pointer so "no region" (nil) is
// distinct from "empty-string region" (non-nil).
type Metadata struct {
	Roles  []string
	Region *string
	Custom map[string]string
}

// QueueEntry is an immutable row describing a waiting solo or party.
// Once created it is never mutated; a new entry replaces it on rejoin.
type QueueEntry struct {
	ID        string
	QueueName string
	PlayerIDs []string // non-empty, unique
	PartyID   *string
	Rating    rating_entities.Rating
	JoinedAt  time.Time
	Metadata  Metadata
}

// WaitSeconds returns how long the entry has waited as of now.
func (e QueueEntry) WaitSeconds(now time.Time) float64 {
	d := now.Sub(e.JoinedAt)
	if d < 0 {
		return 0
	}
	return d.Seconds()
}

// PlayerCount returns the number of players this entry represents.
func (e QueueEntry) PlayerCount() int {
	return len(e.PlayerIDs)
}

// HasPlayer reports whether playerID is one of this entry's players.
func (e QueueEntry) HasPlayer(playerID string) bool {
	for _, id := range e.PlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

// MatchFormat describes the shape of a match: ordered team sizes.
type MatchFormat struct {
	Name      string `yaml:"name"`
	TeamSizes []int  `yaml:"team_sizes"` // non-empty, all positive
}

// TotalPlayers returns the sum of all team sizes.
func (f MatchFormat) TotalPlayers() int {
	total := 0
	for _, size := range f.TeamSizes {
		total += size
	}
	return total
}

// MatchConstraints is the policy object governing whether two entries
// may co-match and how the tolerance window relaxes over time (C8).
type MatchConstraints struct {
	MaxRatingDelta     float64           `yaml:"max_rating_delta"`
	SameRegionRequired bool              `yaml:"same_region_required"`
	RoleRequirements   []RoleRequirement `yaml:"role_requirements"`
	MaxWaitTimeSeconds float64           `yaml:"max_wait_time_seconds"`
	ExpansionRate      float64           `yaml:"expansion_rate"`
}

// EffectiveRatingDelta returns the wait-time-adjusted tolerance for the
// given entry at the given wall time: base + waitSeconds*expansionRate.
func (c MatchConstraints) EffectiveRatingDelta(entry QueueEntry, now time.Time) float64 {
	return c.MaxRatingDelta + entry.WaitSeconds(now)*c.ExpansionRate
}

// MatchResult is the ephemeral output of the Matcher: a set of entries
// assigned to teams. It is never persisted as-is — LobbyManager
// consumes it to build a durable Lobby.
type MatchResult struct {
	MatchID         string
	Entries         []QueueEntry
	TeamAssignments []int // parallel to Entries: entry index -> team index
}

// TeamMembers returns the player IDs assigned to teamIndex, in the
// order their entries were admitted.
func (r MatchResult) TeamMembers(teamIndex int) []string {
	var members []string
	for i, entry := range r.Entries {
		if r.TeamAssignments[i] == teamIndex {
			members = append(members, entry.PlayerIDs...)
		}
	}
	return members
}
