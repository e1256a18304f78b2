// Package lobby_manager implements LobbyManager (C12): lobby creation
// from a MatchResult, readiness tracking, dispatch, close, and the
// rating-update orchestration that runs at close.
package lobby_manager

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	lobby_entities "github.com/M1tsumi/MatchForge-SDK/pkg/lobby/entities"
	"github.com/M1tsumi/MatchForge-SDK/pkg/merr"
	queue_entities "github.com/M1tsumi/MatchForge-SDK/pkg/queue/entities"
	rating_entities "github.com/M1tsumi/MatchForge-SDK/pkg/rating/entities"
	rating_ports "github.com/M1tsumi/MatchForge-SDK/pkg/rating/ports"
)

// Store is the slice of the persistence contract LobbyManager needs:
// lobby CRUD, player rating CRUD, and write-only match archival.
type Store interface {
	SaveLobby(ctx context.Context, lobby *lobby_entities.Lobby) error
	LoadLobby(ctx context.Context, lobbyID string) (*lobby_entities.Lobby, error)
	DeleteLobby(ctx context.Context, lobbyID string) error

	LoadPlayerRating(ctx context.Context, playerID string) (rating_entities.Rating, bool, error)
	SavePlayerRating(ctx context.Context, playerID string, r rating_entities.Rating) error

	SaveMatchResult(ctx context.Context, lobby *lobby_entities.Lobby) error
}

// Manager operates entirely via Store — it owns no in-memory state
// of its own.
type Manager struct {
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// CreateFromMatch assembles a Lobby's player list and teams from a
// MatchResult in team-assignment order, persists it, and returns it.
func (m *Manager) CreateFromMatch(ctx context.Context, result queue_entities.MatchResult, format queue_entities.MatchFormat, metadata map[string]string) (*lobby_entities.Lobby, error) {
	teams := make([]lobby_entities.Team, len(format.TeamSizes))
	for i := range teams {
		teams[i] = lobby_entities.Team{Index: i}
	}

	var playerIDs []string
	for i, entry := range result.Entries {
		team := result.TeamAssignments[i]
		teams[team].Members = append(teams[team].Members, entry.PlayerIDs...)
		playerIDs = append(playerIDs, entry.PlayerIDs...)
	}

	lobby := &lobby_entities.Lobby{
		ID:           uuid.NewString(),
		MatchID:      result.MatchID,
		State:        lobby_entities.Forming,
		Teams:        teams,
		PlayerIDs:    playerIDs,
		ReadyPlayers: make(map[string]bool),
		CreatedAt:    time.Now().UTC(),
		Metadata:     metadata,
	}

	if err := m.store.SaveLobby(ctx, lobby); err != nil {
		return nil, merr.NewPersistence("CreateFromMatch", err)
	}

	slog.InfoContext(ctx, "lobby created", "lobby_id", lobby.ID, "match_id", lobby.MatchID, "players", len(playerIDs))
	return lobby, nil
}

func (m *Manager) load(ctx context.Context, lobbyID string) (*lobby_entities.Lobby, error) {
	lobby, err := m.store.LoadLobby(ctx, lobbyID)
	if err != nil {
		return nil, merr.NewPersistence("LoadLobby", err)
	}
	if lobby == nil {
		return nil, merr.NewNotFound("lobby", lobbyID)
	}
	return lobby, nil
}

// BeginWaitingForReady transitions Forming -> WaitingForReady.
func (m *Manager) BeginWaitingForReady(ctx context.Context, lobbyID string) (*lobby_entities.Lobby, error) {
	lobby, err := m.load(ctx, lobbyID)
	if err != nil {
		return nil, err
	}
	if !lobby_entities.CanTransition(lobby.State, lobby_entities.WaitingForReady) {
		return nil, merr.NewIllegalStateTransition(string(lobby.State), string(lobby_entities.WaitingForReady))
	}
	lobby.State = lobby_entities.WaitingForReady
	if err := m.store.SaveLobby(ctx, lobby); err != nil {
		return nil, merr.NewPersistence("BeginWaitingForReady", err)
	}
	return lobby, nil
}

// MarkReady records playerID as ready (idempotent). If the lobby is in
// WaitingForReady and every player is now ready, it auto-transitions to
// Ready. Marking ready outside WaitingForReady is accepted into the set
// without a state transition (pre-ready signaling).
func (m *Manager) MarkReady(ctx context.Context, lobbyID, playerID string) (*lobby_entities.Lobby, error) {
	lobby, err := m.load(ctx, lobbyID)
	if err != nil {
		return nil, err
	}
	if !lobby.HasPlayer(playerID) {
		return nil, merr.NewNotFound("player in lobby", playerID)
	}

	lobby.ReadyPlayers[playerID] = true

	if lobby.State == lobby_entities.WaitingForReady && lobby.AllReady() {
		lobby.State = lobby_entities.Ready
	}

	if err := m.store.SaveLobby(ctx, lobby); err != nil {
		return nil, merr.NewPersistence("MarkReady", err)
	}
	return lobby, nil
}

// Dispatch transitions Ready -> Dispatched, recording serverID.
func (m *Manager) Dispatch(ctx context.Context, lobbyID, serverID string) (*lobby_entities.Lobby, error) {
	lobby, err := m.load(ctx, lobbyID)
	if err != nil {
		return nil, err
	}
	if !lobby_entities.CanTransition(lobby.State, lobby_entities.Dispatched) {
		return nil, merr.NewIllegalStateTransition(string(lobby.State), string(lobby_entities.Dispatched))
	}
	lobby.State = lobby_entities.Dispatched
	lobby.ServerID = &serverID
	if err := m.store.SaveLobby(ctx, lobby); err != nil {
		return nil, merr.NewPersistence("Dispatch", err)
	}
	return lobby, nil
}

// Close transitions the lobby to Closed from any non-terminal state,
// archives it to match history, and deletes it from live storage. No
// rating update is performed — when outcomes are known, use
// UpdateRatings instead, which closes the lobby itself.
func (m *Manager) Close(ctx context.Context, lobbyID string) error {
	lobby, err := m.load(ctx, lobbyID)
	if err != nil {
		return err
	}
	if !lobby_entities.CanTransition(lobby.State, lobby_entities.Closed) {
		return merr.NewIllegalStateTransition(string(lobby.State), string(lobby_entities.Closed))
	}
	lobby.State = lobby_entities.Closed

	if err := m.store.SaveMatchResult(ctx, lobby); err != nil {
		return merr.NewPersistence("Close/archive", err)
	}
	if err := m.store.DeleteLobby(ctx, lobby.ID); err != nil {
		return merr.NewPersistence("Close/delete", err)
	}

	slog.InfoContext(ctx, "lobby closed", "lobby_id", lobby.ID)
	return nil
}

// UpdateRatings applies the rating-update algorithm for every
// cross-team pair of players given their per-player outcomes, persists
// the resulting ratings, then closes the lobby. A missing player rating
// in persistence is treated as a default beginner rating, never a failure.
func (m *Manager) UpdateRatings(ctx context.Context, lobbyID string, outcomes map[string]rating_entities.Outcome, algorithm rating_ports.RatingAlgorithm) error {
	lobby, err := m.load(ctx, lobbyID)
	if err != nil {
		return err
	}

	preRatings := make(map[string]rating_entities.Rating, len(lobby.PlayerIDs))
	for _, playerID := range lobby.PlayerIDs {
		r, found, err := m.store.LoadPlayerRating(ctx, playerID)
		if err != nil {
			return merr.NewPersistence("UpdateRatings/load", err)
		}
		if !found {
			r = rating_entities.Default()
		}
		preRatings[playerID] = r
	}

	teamOutcome := make(map[int]rating_entities.Outcome, len(lobby.Teams))
	for _, team := range lobby.Teams {
		teamOutcome[team.Index] = majorityOutcome(team.Members, outcomes)
	}

	// Accumulate deltas against the pre-match rating across every
	// opposing pair, then apply once — chaining sequential updates
	// would double-count.
	deltas := make(map[string]ratingDelta, len(lobby.PlayerIDs))

	for i, teamA := range lobby.Teams {
		for _, teamB := range lobby.Teams[i+1:] {
			outcomeA := teamOutcome[teamA.Index]
			outcomeB := teamOutcome[teamB.Index]

			for _, a := range teamA.Members {
				for _, b := range teamB.Members {
					aNew := algorithm.NewRating(preRatings[a], preRatings[b], outcomeA)
					bNew := algorithm.NewRating(preRatings[b], preRatings[a], outcomeB)
					accumulate(deltas, a, preRatings[a], aNew)
					accumulate(deltas, b, preRatings[b], bNew)
				}
			}
		}
	}

	for _, playerID := range lobby.PlayerIDs {
		final := applyDelta(preRatings[playerID], deltas[playerID])
		if err := m.store.SavePlayerRating(ctx, playerID, final); err != nil {
			return merr.NewPersistence("UpdateRatings/save", err)
		}
	}

	return m.Close(ctx, lobbyID)
}

// ratingDelta accumulates Value/Deviation/Volatility offsets from the
// pre-match rating across every opposing-player comparison.
type ratingDelta struct {
	value, deviation, volatility float64
	count                        int
}

func accumulate(deltas map[string]ratingDelta, playerID string, pre, updated rating_entities.Rating) {
	d := deltas[playerID]
	d.value += updated.Value - pre.Value
	d.deviation += updated.Deviation - pre.Deviation
	d.volatility += updated.Volatility - pre.Volatility
	d.count++
	deltas[playerID] = d
}

func applyDelta(pre rating_entities.Rating, d ratingDelta) rating_entities.Rating {
	if d.count == 0 {
		return pre
	}
	return rating_entities.NewRating(pre.Value+d.value, pre.Deviation+d.deviation, pre.Volatility+d.volatility)
}

// majorityOutcome derives a team's outcome from the majority of its
// players' individual outcomes; an even split is a Draw. Using only
// the first player's outcome for the whole team is a bug this avoids.
func majorityOutcome(members []string, outcomes map[string]rating_entities.Outcome) rating_entities.Outcome {
	var wins, draws, losses int
	for _, playerID := range members {
		switch outcomes[playerID] {
		case rating_entities.Win:
			wins++
		case rating_entities.Loss:
			losses++
		default:
			draws++
		}
	}

	switch {
	case wins > losses && wins > draws:
		return rating_entities.Win
	case losses > wins && losses > draws:
		return rating_entities.Loss
	default:
		return rating_entities.Draw
	}
}
