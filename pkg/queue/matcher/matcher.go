// Package matcher implements the Matcher (C9): a pure function that
// scans a queue's entries and produces disjoint match sets satisfying
// a format and its fairness constraints.
package matcher

import (
	"math"
	"sort"
	"time"

	queue_entities "github.com/M1tsumi/MatchForge-SDK/pkg/queue/entities"
)

// FindMatches scans entries (for one queue) and returns every disjoint
// match it can assemble against format/constraints as of now. It never
// mutates entries and never fails — rejected candidates are simply
// dropped.
func FindMatches(entries []queue_entities.QueueEntry, format queue_entities.MatchFormat, constraints queue_entities.MatchConstraints, now time.Time) []queue_entities.MatchResult {
	total := format.TotalPlayers()
	if len(entries) == 0 || total == 0 {
		return nil
	}

	ordered := orderedByWait(entries)

	used := make(map[string]bool, len(ordered))
	var results []queue_entities.MatchResult

	for seedIdx := range ordered {
		seed := ordered[seedIdx]
		if used[seed.ID] {
			continue
		}

		candidate := assemble(seed, ordered, used, format, constraints, now)
		if candidate == nil {
			continue
		}

		for _, e := range candidate.Entries {
			used[e.ID] = true
		}
		results = append(results, *candidate)
	}

	return results
}

// orderedByWait returns entries sorted oldest-first, tie-broken by
// entry ID (a stable tie-break for identical JoinedAt).
func orderedByWait(entries []queue_entities.QueueEntry) []queue_entities.QueueEntry {
	out := make([]queue_entities.QueueEntry, len(entries))
	copy(out, entries)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})

	return out
}

// assemble runs the greedy assembly starting at seed: admit every
// remaining compatible entry in age order until totalPlayers is
// reached, then team-assign. Returns nil if the seed cannot fill a
// match this tick (it remains eligible for a future tick).
func assemble(seed queue_entities.QueueEntry, ordered []queue_entities.QueueEntry, used map[string]bool, format queue_entities.MatchFormat, constraints queue_entities.MatchConstraints, now time.Time) *queue_entities.MatchResult {
	total := format.TotalPlayers()

	selected := []queue_entities.QueueEntry{seed}
	playerCount := seed.PlayerCount()

	if playerCount > total {
		return nil
	}

	for _, candidate := range ordered {
		if candidate.ID == seed.ID || used[candidate.ID] {
			continue
		}
		if playerCount >= total {
			break
		}
		if candidate.PlayerCount()+playerCount > total {
			continue
		}
		if !compatibleWithAll(candidate, selected, constraints, now) {
			continue
		}

		selected = append(selected, candidate)
		playerCount += candidate.PlayerCount()
	}

	if playerCount != total {
		return nil
	}

	if !satisfiesRoles(selected, constraints) {
		return nil
	}

	assignments := assignTeams(selected, format.TeamSizes)
	if assignments == nil {
		return nil
	}

	return &queue_entities.MatchResult{
		MatchID:         seed.ID + ":" + format.Name,
		Entries:         selected,
		TeamAssignments: assignments,
	}
}

// compatibleWithAll checks candidate against every already-selected
// entry: pairwise rating window and region gate.
func compatibleWithAll(candidate queue_entities.QueueEntry, selected []queue_entities.QueueEntry, constraints queue_entities.MatchConstraints, now time.Time) bool {
	for _, s := range selected {
		if !pairwiseCompatible(s, candidate, constraints, now) {
			return false
		}
	}
	return true
}

func pairwiseCompatible(a, b queue_entities.QueueEntry, constraints queue_entities.MatchConstraints, now time.Time) bool {
	deltaA := constraints.EffectiveRatingDelta(a, now)
	deltaB := constraints.EffectiveRatingDelta(b, now)
	window := math.Max(deltaA, deltaB)

	if math.Abs(a.Rating.Value-b.Rating.Value) > window {
		return false
	}

	if constraints.SameRegionRequired && !sameRegion(a, b) {
		return false
	}

	return true
}

func sameRegion(a, b queue_entities.QueueEntry) bool {
	switch {
	case a.Metadata.Region == nil && b.Metadata.Region == nil:
		return true
	case a.Metadata.Region == nil || b.Metadata.Region == nil:
		return false
	default:
		return *a.Metadata.Region == *b.Metadata.Region
	}
}

// satisfiesRoles checks the multiset union of candidate roles against
// every required (role, count) pair. Role requirements fail closed if
// entries carry no roles at all.
func satisfiesRoles(selected []queue_entities.QueueEntry, constraints queue_entities.MatchConstraints) bool {
	if len(constraints.RoleRequirements) == 0 {
		return true
	}

	counts := make(map[string]int)
	for _, e := range selected {
		for _, role := range e.Metadata.Roles {
			counts[role]++
		}
	}

	for _, req := range constraints.RoleRequirements {
		if counts[req.Role] < req.Count {
			return false
		}
	}
	return true
}

// assignTeams places each selected entry, in admission order, into the
// lowest-indexed team with remaining capacity for its player count.
// An entry must fit entirely within one team; if none can hold it the
// whole candidate set is rejected (parties never split).
func assignTeams(selected []queue_entities.QueueEntry, teamSizes []int) []int {
	remaining := make([]int, len(teamSizes))
	copy(remaining, teamSizes)

	assignments := make([]int, len(selected))

	for i, entry := range selected {
		placed := false
		for team, capacity := range remaining {
			if capacity >= entry.PlayerCount() {
				assignments[i] = team
				remaining[team] -= entry.PlayerCount()
				placed = true
				break
			}
		}
		if !placed {
			return nil
		}
	}

	return assignments
}
