// Package persistence_sqlite is the durable adapter over
// modernc.org/sqlite (pure Go, no cgo), satisfying the same
// persistence_ports.Store contract as persistence/memory.
package persistence_sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	lobby_entities "github.com/M1tsumi/MatchForge-SDK/pkg/lobby/entities"
	"github.com/M1tsumi/MatchForge-SDK/pkg/merr"
	party_entities "github.com/M1tsumi/MatchForge-SDK/pkg/party/entities"
	queue_entities "github.com/M1tsumi/MatchForge-SDK/pkg/queue/entities"
	rating_entities "github.com/M1tsumi/MatchForge-SDK/pkg/rating/entities"
)

// Store wraps a *sql.DB against the matchforge schema.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS player_ratings (
	player_id  TEXT PRIMARY KEY,
	value      REAL NOT NULL,
	deviation  REAL NOT NULL,
	volatility REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS queue_entries (
	id                 TEXT PRIMARY KEY,
	queue_name         TEXT NOT NULL,
	player_ids         TEXT NOT NULL,
	party_id           TEXT,
	rating_value       REAL NOT NULL,
	rating_deviation   REAL NOT NULL,
	rating_volatility  REAL NOT NULL,
	joined_at          DATETIME NOT NULL,
	metadata           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_queue_entries_queue_joined ON queue_entries(queue_name, joined_at);

CREATE TABLE IF NOT EXISTS parties (
	id        TEXT PRIMARY KEY,
	leader_id TEXT NOT NULL,
	members   TEXT NOT NULL,
	max_size  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS lobbies (
	id            TEXT PRIMARY KEY,
	match_id      TEXT NOT NULL,
	state         TEXT NOT NULL,
	teams         TEXT NOT NULL,
	player_ids    TEXT NOT NULL,
	ready_players TEXT NOT NULL,
	created_at    DATETIME NOT NULL,
	server_id     TEXT,
	metadata      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS match_history (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	lobby_id  TEXT NOT NULL,
	snapshot  TEXT NOT NULL,
	closed_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_match_history_lobby_id ON match_history(lobby_id);
`

// Open creates or opens a SQLite database at path, creating parent
// directories if needed, and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("persistence_sqlite: cannot create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("persistence_sqlite: cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("persistence_sqlite: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("persistence_sqlite: migration failed: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SavePlayerRating(ctx context.Context, playerID string, r rating_entities.Rating) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO player_ratings (player_id, value, deviation, volatility) VALUES (?, ?, ?, ?)
		 ON CONFLICT(player_id) DO UPDATE SET value = excluded.value, deviation = excluded.deviation, volatility = excluded.volatility`,
		playerID, r.Value, r.Deviation, r.Volatility,
	)
	if err != nil {
		return merr.NewPersistence("SavePlayerRating", err)
	}
	return nil
}

func (s *Store) LoadPlayerRating(ctx context.Context, playerID string) (rating_entities.Rating, bool, error) {
	var r rating_entities.Rating
	err := s.db.QueryRowContext(ctx,
		`SELECT value, deviation, volatility FROM player_ratings WHERE player_id = ?`, playerID,
	).Scan(&r.Value, &r.Deviation, &r.Volatility)

	if err == sql.ErrNoRows {
		return rating_entities.Rating{}, false, nil
	}
	if err != nil {
		return rating_entities.Rating{}, false, merr.NewPersistence("LoadPlayerRating", err)
	}
	return r, true, nil
}

func (s *Store) SaveQueueEntry(ctx context.Context, entry queue_entities.QueueEntry) error {
	playerIDs, err := json.Marshal(entry.PlayerIDs)
	if err != nil {
		return merr.NewPersistence("SaveQueueEntry/marshal", err)
	}
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return merr.NewPersistence("SaveQueueEntry/marshal", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO queue_entries (id, queue_name, player_ids, party_id, rating_value, rating_deviation, rating_volatility, joined_at, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET queue_name=excluded.queue_name, player_ids=excluded.player_ids,
		   party_id=excluded.party_id, rating_value=excluded.rating_value, rating_deviation=excluded.rating_deviation,
		   rating_volatility=excluded.rating_volatility, joined_at=excluded.joined_at, metadata=excluded.metadata`,
		entry.ID, entry.QueueName, string(playerIDs), entry.PartyID,
		entry.Rating.Value, entry.Rating.Deviation, entry.Rating.Volatility,
		entry.JoinedAt, string(metadata),
	)
	if err != nil {
		return merr.NewPersistence("SaveQueueEntry", err)
	}
	return nil
}

func (s *Store) LoadQueueEntries(ctx context.Context, queueName string) ([]queue_entities.QueueEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, queue_name, player_ids, party_id, rating_value, rating_deviation, rating_volatility, joined_at, metadata
		 FROM queue_entries WHERE queue_name = ? ORDER BY joined_at ASC`, queueName,
	)
	if err != nil {
		return nil, merr.NewPersistence("LoadQueueEntries", err)
	}
	defer rows.Close()

	var out []queue_entities.QueueEntry
	for rows.Next() {
		entry, err := scanQueueEntry(rows)
		if err != nil {
			return nil, merr.NewPersistence("LoadQueueEntries/scan", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, merr.NewPersistence("LoadQueueEntries/iterate", err)
	}
	return out, nil
}

func scanQueueEntry(rows *sql.Rows) (queue_entities.QueueEntry, error) {
	var entry queue_entities.QueueEntry
	var playerIDsJSON, metadataJSON string
	var partyID sql.NullString

	if err := rows.Scan(&entry.ID, &entry.QueueName, &playerIDsJSON, &partyID,
		&entry.Rating.Value, &entry.Rating.Deviation, &entry.Rating.Volatility,
		&entry.JoinedAt, &metadataJSON); err != nil {
		return queue_entities.QueueEntry{}, err
	}

	if err := json.Unmarshal([]byte(playerIDsJSON), &entry.PlayerIDs); err != nil {
		return queue_entities.QueueEntry{}, err
	}
	if err := json.Unmarshal([]byte(metadataJSON), &entry.Metadata); err != nil {
		return queue_entities.QueueEntry{}, err
	}
	if partyID.Valid {
		entry.PartyID = &partyID.String
	}
	return entry, nil
}

// DeleteQueueEntry removes the row whose player_ids JSON array contains
// playerID. Entries are keyed by entry ID, not player ID, so this
// requires a scan rather than a single indexed delete.
func (s *Store) DeleteQueueEntry(ctx context.Context, playerID string) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, player_ids FROM queue_entries`)
	if err != nil {
		return merr.NewPersistence("DeleteQueueEntry/scan", err)
	}

	var matchID string
	for rows.Next() {
		var id, playerIDsJSON string
		if err := rows.Scan(&id, &playerIDsJSON); err != nil {
			rows.Close()
			return merr.NewPersistence("DeleteQueueEntry/scan", err)
		}
		var playerIDs []string
		if err := json.Unmarshal([]byte(playerIDsJSON), &playerIDs); err != nil {
			rows.Close()
			return merr.NewPersistence("DeleteQueueEntry/unmarshal", err)
		}
		for _, id2 := range playerIDs {
			if id2 == playerID {
				matchID = id
				break
			}
		}
		if matchID != "" {
			break
		}
	}
	rows.Close()

	if matchID == "" {
		return nil
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM queue_entries WHERE id = ?`, matchID); err != nil {
		return merr.NewPersistence("DeleteQueueEntry", err)
	}
	return nil
}

func (s *Store) SaveParty(ctx context.Context, p *party_entities.Party) error {
	members, err := json.Marshal(p.Members)
	if err != nil {
		return merr.NewPersistence("SaveParty/marshal", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO parties (id, leader_id, members, max_size) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET leader_id=excluded.leader_id, members=excluded.members, max_size=excluded.max_size`,
		p.ID, p.LeaderID, string(members), p.MaxSize,
	)
	if err != nil {
		return merr.NewPersistence("SaveParty", err)
	}
	return nil
}

func (s *Store) LoadParty(ctx context.Context, partyID string) (*party_entities.Party, error) {
	var p party_entities.Party
	var membersJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, leader_id, members, max_size FROM parties WHERE id = ?`, partyID,
	).Scan(&p.ID, &p.LeaderID, &membersJSON, &p.MaxSize)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, merr.NewPersistence("LoadParty", err)
	}
	if err := json.Unmarshal([]byte(membersJSON), &p.Members); err != nil {
		return nil, merr.NewPersistence("LoadParty/unmarshal", err)
	}
	return &p, nil
}

func (s *Store) DeleteParty(ctx context.Context, partyID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM parties WHERE id = ?`, partyID); err != nil {
		return merr.NewPersistence("DeleteParty", err)
	}
	return nil
}

func (s *Store) SaveLobby(ctx context.Context, lobby *lobby_entities.Lobby) error {
	teams, err := json.Marshal(lobby.Teams)
	if err != nil {
		return merr.NewPersistence("SaveLobby/marshal", err)
	}
	playerIDs, err := json.Marshal(lobby.PlayerIDs)
	if err != nil {
		return merr.NewPersistence("SaveLobby/marshal", err)
	}
	readyPlayers, err := json.Marshal(lobby.ReadyPlayers)
	if err != nil {
		return merr.NewPersistence("SaveLobby/marshal", err)
	}
	metadata, err := json.Marshal(lobby.Metadata)
	if err != nil {
		return merr.NewPersistence("SaveLobby/marshal", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO lobbies (id, match_id, state, teams, player_ids, ready_players, created_at, server_id, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET match_id=excluded.match_id, state=excluded.state, teams=excluded.teams,
		   player_ids=excluded.player_ids, ready_players=excluded.ready_players, created_at=excluded.created_at,
		   server_id=excluded.server_id, metadata=excluded.metadata`,
		lobby.ID, lobby.MatchID, string(lobby.State), string(teams), string(playerIDs),
		string(readyPlayers), lobby.CreatedAt, lobby.ServerID, string(metadata),
	)
	if err != nil {
		return merr.NewPersistence("SaveLobby", err)
	}
	return nil
}

func (s *Store) LoadLobby(ctx context.Context, lobbyID string) (*lobby_entities.Lobby, error) {
	var l lobby_entities.Lobby
	var state, teamsJSON, playerIDsJSON, readyPlayersJSON, metadataJSON string
	var serverID sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, match_id, state, teams, player_ids, ready_players, created_at, server_id, metadata
		 FROM lobbies WHERE id = ?`, lobbyID,
	).Scan(&l.ID, &l.MatchID, &state, &teamsJSON, &playerIDsJSON, &readyPlayersJSON, &l.CreatedAt, &serverID, &metadataJSON)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, merr.NewPersistence("LoadLobby", err)
	}

	l.State = lobby_entities.State(state)
	if err := json.Unmarshal([]byte(teamsJSON), &l.Teams); err != nil {
		return nil, merr.NewPersistence("LoadLobby/unmarshal", err)
	}
	if err := json.Unmarshal([]byte(playerIDsJSON), &l.PlayerIDs); err != nil {
		return nil, merr.NewPersistence("LoadLobby/unmarshal", err)
	}
	if err := json.Unmarshal([]byte(readyPlayersJSON), &l.ReadyPlayers); err != nil {
		return nil, merr.NewPersistence("LoadLobby/unmarshal", err)
	}
	if err := json.Unmarshal([]byte(metadataJSON), &l.Metadata); err != nil {
		return nil, merr.NewPersistence("LoadLobby/unmarshal", err)
	}
	if serverID.Valid {
		l.ServerID = &serverID.String
	}
	return &l, nil
}

func (s *Store) DeleteLobby(ctx context.Context, lobbyID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM lobbies WHERE id = ?`, lobbyID); err != nil {
		return merr.NewPersistence("DeleteLobby", err)
	}
	return nil
}

func (s *Store) SaveMatchResult(ctx context.Context, lobby *lobby_entities.Lobby) error {
	snapshot, err := json.Marshal(lobby)
	if err != nil {
		return merr.NewPersistence("SaveMatchResult/marshal", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO match_history (lobby_id, snapshot, closed_at) VALUES (?, ?, ?)`,
		lobby.ID, string(snapshot), time.Now().UTC(),
	)
	if err != nil {
		return merr.NewPersistence("SaveMatchResult", err)
	}
	return nil
}
