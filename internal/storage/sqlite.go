// Package storage keeps finished matches and their shot logs in SQLite so
// they can be listed, replayed and verified later. Uses the pure-Go
// modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/tomcoolpxl/tank-wars/internal/multiplayer"
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// MatchRecord is one finished round.
type MatchRecord struct {
	ID           int64
	MatchID      string
	Mode         string // "hotseat", "ssh" or "network"
	Seed         uint32
	HostSession  string
	GuestSession string
	Winner       int // Player index, or a sim.Winner* sentinel
	Turns        int
	Ticks        int
	FinalHash    uint32
	EndReason    string
	Duration     int // Seconds
	CreatedAt    time.Time
}

// Shot is one entry of a stored shot log.
type Shot struct {
	Turn   int
	Player int
	Angle  int
	Power  int
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			mode TEXT NOT NULL,
			seed INTEGER NOT NULL,
			host_session TEXT NOT NULL DEFAULT '',
			guest_session TEXT NOT NULL DEFAULT '',
			winner INTEGER NOT NULL,
			turns INTEGER NOT NULL DEFAULT 0,
			ticks INTEGER NOT NULL DEFAULT 0,
			final_hash INTEGER NOT NULL DEFAULT 0,
			end_reason TEXT NOT NULL,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_matches_created ON matches(created_at DESC);

		CREATE TABLE IF NOT EXISTS match_shots (
			match_id TEXT NOT NULL,
			turn INTEGER NOT NULL,
			player INTEGER NOT NULL,
			angle INTEGER NOT NULL,
			power INTEGER NOT NULL,
			PRIMARY KEY (match_id, turn)
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveMatch stores a round and its shot log atomically.
// Returns the row ID of the match.
func (s *Store) SaveMatch(rec MatchRecord, shots []Shot) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.Exec(
		`INSERT INTO matches
		 (match_id, mode, seed, host_session, guest_session, winner, turns, ticks, final_hash, end_reason, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.MatchID,
		rec.Mode,
		int64(rec.Seed),
		rec.HostSession,
		rec.GuestSession,
		rec.Winner,
		rec.Turns,
		rec.Ticks,
		int64(rec.FinalHash),
		rec.EndReason,
		rec.Duration,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save match %s: %w", rec.MatchID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO match_shots (match_id, turn, player, angle, power) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot prepare shot insert: %w", err)
	}
	defer stmt.Close()

	for _, sh := range shots {
		if _, err := stmt.Exec(rec.MatchID, sh.Turn, sh.Player, sh.Angle, sh.Power); err != nil {
			return 0, fmt.Errorf("storage: cannot save shot for turn %d: %w", sh.Turn, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit match %s: %w", rec.MatchID, err)
	}
	return id, nil
}

const matchColumns = `id, match_id, mode, seed, host_session, guest_session,
	winner, turns, ticks, final_hash, end_reason, duration_secs, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (MatchRecord, error) {
	var rec MatchRecord
	var seed, hash int64
	var createdAt any

	err := row.Scan(
		&rec.ID,
		&rec.MatchID,
		&rec.Mode,
		&seed,
		&rec.HostSession,
		&rec.GuestSession,
		&rec.Winner,
		&rec.Turns,
		&rec.Ticks,
		&hash,
		&rec.EndReason,
		&rec.Duration,
		&createdAt,
	)
	if err != nil {
		return rec, err
	}
	rec.Seed = uint32(seed)      //#nosec G115 -- stored from a uint32
	rec.FinalHash = uint32(hash) //#nosec G115 -- stored from a uint32
	rec.CreatedAt = parseTime(createdAt)
	return rec, nil
}

func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// MatchByID returns a stored match, or nil if there is none.
func (s *Store) MatchByID(matchID string) (*MatchRecord, error) {
	rec, err := scanMatch(s.db.QueryRow(`SELECT `+matchColumns+` FROM matches WHERE match_id = ?`, matchID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match %s: %w", matchID, err)
	}
	return &rec, nil
}

// RecentMatches returns the newest matches first.
func (s *Store) RecentMatches(limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`SELECT `+matchColumns+` FROM matches ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	defer rows.Close()

	var out []MatchRecord
	for rows.Next() {
		rec, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan match: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: error iterating matches: %w", err)
	}
	return out, nil
}

// Shots returns a match's shot log in turn order.
func (s *Store) Shots(matchID string) ([]Shot, error) {
	rows, err := s.db.Query(
		`SELECT turn, player, angle, power FROM match_shots WHERE match_id = ? ORDER BY turn`,
		matchID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query shots: %w", err)
	}
	defer rows.Close()

	var out []Shot
	for rows.Next() {
		var sh Shot
		if err := rows.Scan(&sh.Turn, &sh.Player, &sh.Angle, &sh.Power); err != nil {
			return nil, fmt.Errorf("storage: cannot scan shot: %w", err)
		}
		out = append(out, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: error iterating shots: %w", err)
	}
	return out, nil
}

// DeleteMatch removes a match and its shots.
func (s *Store) DeleteMatch(matchID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(`DELETE FROM match_shots WHERE match_id = ?`, matchID); err != nil {
		return fmt.Errorf("storage: cannot delete shots: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM matches WHERE match_id = ?`, matchID); err != nil {
		return fmt.Errorf("storage: cannot delete match: %w", err)
	}
	return tx.Commit()
}

// Stats aggregates every stored match.
type Stats struct {
	Matches   int
	HostWins  int
	GuestWins int
	Draws     int
	Aborted   int
	AvgTurns  float64
}

// Stats returns totals over all stored matches. Winner values follow the
// simulation: 0 and 1 are players, -1 a draw, -2 an aborted match.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	var avg sql.NullFloat64
	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN winner = 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN winner = 1 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN winner = -1 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN winner = -2 THEN 1 ELSE 0 END), 0),
		       AVG(turns)
		FROM matches`,
	).Scan(&st.Matches, &st.HostWins, &st.GuestWins, &st.Draws, &st.Aborted, &avg)
	if err != nil {
		return st, fmt.Errorf("storage: cannot query stats: %w", err)
	}
	if avg.Valid {
		st.AvgTurns = avg.Float64
	}
	return st, nil
}

// SaveMatchResult implements multiplayer.MatchResultSaver.
func (s *Store) SaveMatchResult(data multiplayer.MatchResultData) error {
	shots := make([]Shot, len(data.Shots))
	for i, sh := range data.Shots {
		shots[i] = Shot{Turn: sh.Turn, Player: sh.Player, Angle: sh.Angle, Power: sh.Power}
	}
	_, err := s.SaveMatch(MatchRecord{
		MatchID:      data.MatchID,
		Mode:         data.Mode,
		Seed:         data.Seed,
		HostSession:  data.HostSession,
		GuestSession: data.GuestSession,
		Winner:       data.Winner,
		Turns:        data.Turns,
		Ticks:        data.Ticks,
		FinalHash:    data.FinalHash,
		EndReason:    data.EndReason,
		Duration:     data.DurationSecs,
	}, shots)
	return err
}

var _ multiplayer.MatchResultSaver = (*Store)(nil)
