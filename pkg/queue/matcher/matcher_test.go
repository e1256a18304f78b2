package matcher_test

import (
	"testing"
	"time"

	queue_entities "github.com/M1tsumi/MatchForge-SDK/pkg/queue/entities"
	"github.com/M1tsumi/MatchForge-SDK/pkg/queue/matcher"
	rating_entities "github.com/M1tsumi/MatchForge-SDK/pkg/rating/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id string, playerIDs []string, value float64, joinedAt time.Time) queue_entities.QueueEntry {
	return queue_entities.QueueEntry{
		ID:        id,
		QueueName: "q",
		PlayerIDs: playerIDs,
		Rating:    rating_entities.NewRating(value, 100, 0.06),
		JoinedAt:  joinedAt,
	}
}

func permissiveConstraints() queue_entities.MatchConstraints {
	return queue_entities.MatchConstraints{MaxRatingDelta: 1_000_000, ExpansionRate: 0}
}

func TestFindMatches_EmptyQueueReturnsNil(t *testing.T) {
	format := queue_entities.MatchFormat{Name: "1v1", TeamSizes: []int{1, 1}}
	results := matcher.FindMatches(nil, format, permissiveConstraints(), time.Now())
	assert.Empty(t, results)
}

func TestFindMatches_QueueTooSmall(t *testing.T) {
	format := queue_entities.MatchFormat{Name: "1v1", TeamSizes: []int{1, 1}}
	now := time.Now()
	entries := []queue_entities.QueueEntry{entry("a", []string{"p1"}, 1500, now)}

	results := matcher.FindMatches(entries, format, permissiveConstraints(), now)
	assert.Empty(t, results)
}

// S1: Basic 1v1 — oldest-first ordering, A -> team 0, B -> team 1.
func TestFindMatches_Basic1v1(t *testing.T) {
	format := queue_entities.MatchFormat{Name: "1v1", TeamSizes: []int{1, 1}}
	now := time.Now()
	a := entry("a", []string{"A"}, 1500, now)
	b := entry("b", []string{"B"}, 1500, now.Add(time.Second))

	results := matcher.FindMatches([]queue_entities.QueueEntry{b, a}, format, permissiveConstraints(), now.Add(2*time.Second))

	require.Len(t, results, 1)
	result := results[0]
	require.Len(t, result.Entries, 2)
	assert.Equal(t, "a", result.Entries[0].ID) // oldest-first seed
	assert.Equal(t, "b", result.Entries[1].ID)
	assert.Equal(t, 0, result.TeamAssignments[0])
	assert.Equal(t, 1, result.TeamAssignments[1])
}

// S2: Wait-time relaxation.
func TestFindMatches_WaitTimeRelaxation(t *testing.T) {
	format := queue_entities.MatchFormat{Name: "1v1", TeamSizes: []int{1, 1}}
	constraints := queue_entities.MatchConstraints{MaxRatingDelta: 100, ExpansionRate: 10}
	t0 := time.Now()
	a := entry("a", []string{"A"}, 1500, t0)
	b := entry("b", []string{"B"}, 1700, t0)

	results := matcher.FindMatches([]queue_entities.QueueEntry{a, b}, format, constraints, t0)
	assert.Empty(t, results, "delta 200 > 100 at t0")

	later := t0.Add(11 * time.Second)
	results = matcher.FindMatches([]queue_entities.QueueEntry{a, b}, format, constraints, later)
	require.Len(t, results, 1)
}

// S3: Party respects team size — never splits across teams.
func TestFindMatches_PartyNeverSplits(t *testing.T) {
	format := queue_entities.MatchFormat{Name: "2v2", TeamSizes: []int{2, 2}}
	now := time.Now()
	party := entry("party", []string{"P1", "P2"}, 1500, now)
	s1 := entry("s1", []string{"S1"}, 1500, now.Add(time.Second))
	s2 := entry("s2", []string{"S2"}, 1500, now.Add(2*time.Second))

	results := matcher.FindMatches([]queue_entities.QueueEntry{party, s1, s2}, format, permissiveConstraints(), now.Add(3*time.Second))

	require.Len(t, results, 1)
	result := results[0]

	var partyTeam int
	for i, e := range result.Entries {
		if e.ID == "party" {
			partyTeam = result.TeamAssignments[i]
		}
	}
	teamMembers := result.TeamMembers(partyTeam)
	assert.ElementsMatch(t, []string{"P1", "P2"}, teamMembers)
}

func TestFindMatches_DisjointAcrossResults(t *testing.T) {
	format := queue_entities.MatchFormat{Name: "1v1", TeamSizes: []int{1, 1}}
	now := time.Now()
	var entries []queue_entities.QueueEntry
	for i := 0; i < 6; i++ {
		entries = append(entries, entry(string(rune('a'+i)), []string{string(rune('A' + i))}, 1500, now.Add(time.Duration(i)*time.Second)))
	}

	results := matcher.FindMatches(entries, format, permissiveConstraints(), now.Add(10*time.Second))

	require.Len(t, results, 3)
	seen := make(map[string]bool)
	for _, r := range results {
		for _, e := range r.Entries {
			assert.False(t, seen[e.ID], "entry reused across results: %s", e.ID)
			seen[e.ID] = true
		}
	}
}

func TestFindMatches_IncompatibleSeedIsSkipped(t *testing.T) {
	format := queue_entities.MatchFormat{Name: "1v1", TeamSizes: []int{1, 1}}
	constraints := queue_entities.MatchConstraints{MaxRatingDelta: 10, ExpansionRate: 0}
	now := time.Now()
	a := entry("a", []string{"A"}, 1500, now)
	b := entry("b", []string{"B"}, 2500, now.Add(time.Second))

	results := matcher.FindMatches([]queue_entities.QueueEntry{a, b}, format, constraints, now)
	assert.Empty(t, results)
}

func TestFindMatches_RoleRequirementsFailClosedWithoutRoles(t *testing.T) {
	format := queue_entities.MatchFormat{Name: "1v1", TeamSizes: []int{1, 1}}
	constraints := queue_entities.MatchConstraints{
		MaxRatingDelta:   1_000_000,
		RoleRequirements: []queue_entities.RoleRequirement{{Role: "tank", Count: 1}},
	}
	now := time.Now()
	a := entry("a", []string{"A"}, 1500, now)
	b := entry("b", []string{"B"}, 1500, now.Add(time.Second))

	results := matcher.FindMatches([]queue_entities.QueueEntry{a, b}, format, constraints, now)
	assert.Empty(t, results)
}

func TestFindMatches_RoleRequirementsSatisfiedAcrossEntries(t *testing.T) {
	format := queue_entities.MatchFormat{Name: "1v1", TeamSizes: []int{1, 1}}
	constraints := queue_entities.MatchConstraints{
		MaxRatingDelta:   1_000_000,
		RoleRequirements: []queue_entities.RoleRequirement{{Role: "tank", Count: 1}, {Role: "dps", Count: 1}},
	}
	now := time.Now()
	a := entry("a", []string{"A"}, 1500, now)
	a.Metadata.Roles = []string{"tank"}
	b := entry("b", []string{"B"}, 1500, now.Add(time.Second))
	b.Metadata.Roles = []string{"dps"}

	results := matcher.FindMatches([]queue_entities.QueueEntry{a, b}, format, constraints, now)
	require.Len(t, results, 1)
}

func TestFindMatches_TieBreakByEntryID(t *testing.T) {
	format := queue_entities.MatchFormat{Name: "1v1", TeamSizes: []int{1, 1}}
	now := time.Now()
	// identical JoinedAt: "a" should sort before "z"
	z := entry("z", []string{"Z"}, 1500, now)
	a := entry("a", []string{"A"}, 1500, now)

	results := matcher.FindMatches([]queue_entities.QueueEntry{z, a}, format, permissiveConstraints(), now)

	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Entries[0].ID)
}
