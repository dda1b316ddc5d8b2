// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/verte-zerg/combodash/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Envelope store keys.
const (
	KeySettings      = "settings"
	KeyStats         = "stats"
	KeyAchievements  = "achievements"
	KeyLeaderboard   = "leaderboard"
	KeyCustomPresets = "custom_presets"
)

// sessionRetention caps the sessions table at the most recent rows.
const sessionRetention = 100

// Store wraps SQLite access for session history and the versioned
// key-value envelopes. Envelope writes are read-modify-write under a
// per-store mutex so a multi-goroutine host keeps the single-writer
// semantics.
type Store struct {
	db *sql.DB

	mu struct {
		sync.Mutex
		locks map[string]*sync.Mutex
	}
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	store.mu.locks = map[string]*sync.Mutex{}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			mode TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			attempts INTEGER NOT NULL,
			successes INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			score INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			best_streak INTEGER NOT NULL,
			avg_success_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS envelopes (
			store TEXT PRIMARY KEY,
			version INTEGER NOT NULL,
			data TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_mode ON sessions(mode);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) storeLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.mu.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.mu.locks[key] = lock
	}
	return lock
}

// InsertSession stores a session summary and trims history beyond the
// retention cap. Old rows are dropped silently.
func (s *Store) InsertSession(ctx context.Context, sum model.SessionSummary) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (mode, started_at, ended_at, duration_ms, attempts, successes, errors, score, accuracy, best_streak, avg_success_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(sum.Mode),
		sum.StartedAt.Format(time.RFC3339Nano),
		sum.EndedAt.Format(time.RFC3339Nano),
		sum.DurationMs,
		sum.Attempts,
		sum.Successes,
		sum.Errors,
		sum.TotalScore,
		sum.Accuracy,
		sum.BestStreak,
		sum.AverageSuccessTimeMs,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM sessions WHERE id NOT IN (
			SELECT id FROM sessions ORDER BY id DESC LIMIT ?
		)`, sessionRetention); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListSessions returns the most recent sessions, newest first. A
// non-positive limit returns everything retained.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]model.SessionSummary, error) {
	if limit <= 0 {
		limit = sessionRetention
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT mode, started_at, ended_at, duration_ms, attempts, successes, errors, score, accuracy, best_streak, avg_success_ms
		 FROM sessions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionSummary
	for rows.Next() {
		var sum model.SessionSummary
		var mode, startedAt, endedAt string
		if err := rows.Scan(&mode, &startedAt, &endedAt, &sum.DurationMs, &sum.Attempts, &sum.Successes, &sum.Errors, &sum.TotalScore, &sum.Accuracy, &sum.BestStreak, &sum.AverageSuccessTimeMs); err != nil {
			return nil, err
		}
		sum.Mode = model.Mode(mode)
		if sum.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if sum.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// CountSessionsOn reports how many sessions of a mode ended on the
// given UTC calendar day. The daily challenge uses this to enforce one
// attempt per day.
func (s *Store) CountSessionsOn(ctx context.Context, mode model.Mode, day time.Time) (int, error) {
	start := time.Date(day.UTC().Year(), day.UTC().Month(), day.UTC().Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE mode = ? AND ended_at >= ? AND ended_at < ?`,
		string(mode),
		start.Format(time.RFC3339Nano),
		end.Format(time.RFC3339Nano),
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// LoadEnvelope reads one versioned store into out. An absent row is
// version 0 with out untouched; a corrupt payload also reports version
// 0 so the caller falls back to defaults instead of failing.
func (s *Store) LoadEnvelope(ctx context.Context, key string, out any) (int, error) {
	var version int
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT version, data FROM envelopes WHERE store = ?`, key,
	).Scan(&version, &data)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return 0, nil
	}
	return version, nil
}

// SaveEnvelope writes one versioned store.
func (s *Store) SaveEnvelope(ctx context.Context, key string, version int, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO envelopes (store, version, data) VALUES (?, ?, ?)
		 ON CONFLICT(store) DO UPDATE SET version = excluded.version, data = excluded.data`,
		key, version, string(data))
	return err
}

// UpdateEnvelope runs a read-modify-write cycle on one store under its
// mutex. The modify callback receives the loaded version and value
// bytes (nil when absent/corrupt) and returns the new version/value.
func (s *Store) UpdateEnvelope(ctx context.Context, key string, modify func(version int, data []byte) (int, any, error)) error {
	lock := s.storeLock(key)
	lock.Lock()
	defer lock.Unlock()

	var version int
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT version, data FROM envelopes WHERE store = ?`, key,
	).Scan(&version, &data)
	var raw []byte
	switch {
	case err == sql.ErrNoRows:
		version = 0
	case err != nil:
		return err
	default:
		raw = []byte(data)
	}

	newVersion, value, err := modify(version, raw)
	if err != nil {
		return err
	}
	return s.SaveEnvelope(ctx, key, newVersion, value)
}
