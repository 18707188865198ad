package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/hinter/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db         *sql.DB
	sessionTTL time.Duration
	now        func() time.Time
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection would get its own empty in-memory database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS coh_sessions (
		user_id TEXT NOT NULL,
		problem_id TEXT NOT NULL,
		preset TEXT NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (user_id, problem_id)
	);

	CREATE TABLE IF NOT EXISTS hint_history (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		user_id TEXT NOT NULL,
		problem_id TEXT NOT NULL,
		preset TEXT NOT NULL,
		hint_level INTEGER NOT NULL,
		hint_text TEXT NOT NULL,
		code_hash TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_hint_history_session ON hint_history (user_id, problem_id, seq);

	CREATE TABLE IF NOT EXISTS metric_snapshots (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL DEFAULT '',
		problem_id TEXT NOT NULL DEFAULT '',
		total_score REAL NOT NULL,
		snapshot TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveSnapshot stores a scored submission and returns its ID.
func (s *Store) SaveSnapshot(ctx context.Context, userID, problemID string, snap model.MetricSnapshot) (string, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO metric_snapshots (id, user_id, problem_id, total_score, snapshot, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, userID, problemID, snap.TotalScore, string(data), s.now().UTC(),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListSnapshots returns stored snapshots, oldest first. Empty filters match everything.
func (s *Store) ListSnapshots(ctx context.Context, userID, problemID string) ([]model.StoredSnapshot, error) {
	query := `SELECT id, user_id, problem_id, snapshot, created_at FROM metric_snapshots WHERE 1=1`
	var args []any
	if userID != "" {
		query += ` AND user_id = ?`
		args = append(args, userID)
	}
	if problemID != "" {
		query += ` AND problem_id = ?`
		args = append(args, problemID)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.StoredSnapshot
	for rows.Next() {
		var ss model.StoredSnapshot
		var raw string
		if err := rows.Scan(&ss.ID, &ss.UserID, &ss.ProblemID, &raw, &ss.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &ss.Snapshot); err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", ss.ID, err)
		}
		out = append(out, ss)
	}
	return out, rows.Err()
}
