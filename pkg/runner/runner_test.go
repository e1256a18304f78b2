package runner_test

import (
	"context"
	"testing"
	"time"

	lobby_entities "github.com/M1tsumi/MatchForge-SDK/pkg/lobby/entities"
	queue_entities "github.com/M1tsumi/MatchForge-SDK/pkg/queue/entities"
	"github.com/M1tsumi/MatchForge-SDK/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueues struct {
	configs       []queue_entities.QueueConfig
	matches       map[string][]queue_entities.MatchResult
	consumedCalls []string
}

func (f *fakeQueues) QueueNames() []queue_entities.QueueConfig { return f.configs }

func (f *fakeQueues) FindMatches(queueName string) ([]queue_entities.MatchResult, error) {
	return f.matches[queueName], nil
}

func (f *fakeQueues) Consume(ctx context.Context, queueName string, matches []queue_entities.MatchResult) error {
	f.consumedCalls = append(f.consumedCalls, queueName)
	return nil
}

func (f *fakeQueues) Depth(queueName string) (int, error) {
	return len(f.matches[queueName]) * 2, nil
}

type fakeLobbies struct {
	created []string
	lobbies map[string]*lobby_entities.Lobby
}

func newFakeLobbies() *fakeLobbies {
	return &fakeLobbies{lobbies: make(map[string]*lobby_entities.Lobby)}
}

func (f *fakeLobbies) CreateFromMatch(ctx context.Context, result queue_entities.MatchResult, format queue_entities.MatchFormat, metadata map[string]string) (*lobby_entities.Lobby, error) {
	f.created = append(f.created, result.MatchID)
	var playerIDs []string
	for _, e := range result.Entries {
		playerIDs = append(playerIDs, e.PlayerIDs...)
	}
	lobby := &lobby_entities.Lobby{
		ID:           result.MatchID,
		State:        lobby_entities.Forming,
		PlayerIDs:    playerIDs,
		ReadyPlayers: make(map[string]bool),
	}
	f.lobbies[lobby.ID] = lobby
	return lobby, nil
}

func (f *fakeLobbies) BeginWaitingForReady(ctx context.Context, lobbyID string) (*lobby_entities.Lobby, error) {
	l := f.lobbies[lobbyID]
	l.State = lobby_entities.WaitingForReady
	return l, nil
}

func (f *fakeLobbies) MarkReady(ctx context.Context, lobbyID, playerID string) (*lobby_entities.Lobby, error) {
	l := f.lobbies[lobbyID]
	l.ReadyPlayers[playerID] = true
	if l.AllReady() {
		l.State = lobby_entities.Ready
	}
	return l, nil
}

func (f *fakeLobbies) Dispatch(ctx context.Context, lobbyID, serverID string) (*lobby_entities.Lobby, error) {
	l := f.lobbies[lobbyID]
	l.State = lobby_entities.Dispatched
	l.ServerID = &serverID
	return l, nil
}

func oneMatch(matchID string) queue_entities.MatchResult {
	return queue_entities.MatchResult{
		MatchID:         matchID,
		Entries:         []queue_entities.QueueEntry{{ID: matchID + "-e1", PlayerIDs: []string{"A"}}, {ID: matchID + "-e2", PlayerIDs: []string{"B"}}},
		TeamAssignments: []int{0, 1},
	}
}

func TestRunner_TickFormsLobbiesAndConsumes(t *testing.T) {
	queues := &fakeQueues{
		configs: []queue_entities.QueueConfig{{Name: "q1", Enabled: true, Priority: 0}},
		matches: map[string][]queue_entities.MatchResult{"q1": {oneMatch("m1")}},
	}
	lobbies := newFakeLobbies()

	r := runner.NewRunner(runner.Config{MaxMatchesPerTick: 10}, queues, lobbies)
	r.Tick(context.Background())

	assert.Equal(t, []string{"m1"}, lobbies.created)
	assert.Equal(t, []string{"q1"}, queues.consumedCalls)
	assert.Equal(t, lobby_entities.Forming, lobbies.lobbies["m1"].State, "no auto-dispatch by default")
}

func TestRunner_AutoDispatchAdvancesToDispatched(t *testing.T) {
	queues := &fakeQueues{
		configs: []queue_entities.QueueConfig{{Name: "q1", Enabled: true, Priority: 0}},
		matches: map[string][]queue_entities.MatchResult{"q1": {oneMatch("m1")}},
	}
	lobbies := newFakeLobbies()

	r := runner.NewRunner(runner.Config{MaxMatchesPerTick: 10, AutoDispatch: true}, queues, lobbies)
	r.Tick(context.Background())

	assert.Equal(t, lobby_entities.Dispatched, lobbies.lobbies["m1"].State)
}

func TestRunner_DisabledQueueIsSkipped(t *testing.T) {
	queues := &fakeQueues{
		configs: []queue_entities.QueueConfig{{Name: "q1", Enabled: false, Priority: 0}},
		matches: map[string][]queue_entities.MatchResult{"q1": {oneMatch("m1")}},
	}
	lobbies := newFakeLobbies()

	r := runner.NewRunner(runner.Config{MaxMatchesPerTick: 10}, queues, lobbies)
	r.Tick(context.Background())

	assert.Empty(t, lobbies.created)
	assert.Empty(t, queues.consumedCalls)
}

func TestRunner_MaxMatchesPerTickCapsAcrossQueues(t *testing.T) {
	queues := &fakeQueues{
		configs: []queue_entities.QueueConfig{
			{Name: "q1", Enabled: true, Priority: 0},
			{Name: "q2", Enabled: true, Priority: 1},
		},
		matches: map[string][]queue_entities.MatchResult{
			"q1": {oneMatch("m1"), oneMatch("m2")},
			"q2": {oneMatch("m3")},
		},
	}
	lobbies := newFakeLobbies()

	r := runner.NewRunner(runner.Config{MaxMatchesPerTick: 1}, queues, lobbies)
	r.Tick(context.Background())

	assert.Equal(t, []string{"m1"}, lobbies.created)
}

func TestRunner_StartStopIsCooperative(t *testing.T) {
	queues := &fakeQueues{configs: nil, matches: map[string][]queue_entities.MatchResult{}}
	lobbies := newFakeLobbies()

	r := runner.NewRunner(runner.Config{TickInterval: 5 * time.Millisecond, MaxMatchesPerTick: 10}, queues, lobbies)

	done := make(chan struct{})
	go func() {
		r.Start(context.Background())
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	r.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestNewRunner_RepeatedConstructionDoesNotPanic(t *testing.T) {
	queues := &fakeQueues{}
	lobbies := newFakeLobbies()

	require.NotPanics(t, func() {
		for i := 0; i < 5; i++ {
			runner.NewRunner(runner.Config{}, queues, lobbies)
		}
	})
}
