package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pavelanni/hinter/internal/model"
)

// SetSessionTTL makes sessions idle for longer than ttl read as empty.
// Zero keeps sessions forever.
func (s *Store) SetSessionTTL(ttl time.Duration) {
	s.sessionTTL = ttl
}

func (s *Store) expired(updatedAt time.Time) bool {
	return s.sessionTTL > 0 && s.now().After(updatedAt.Add(s.sessionTTL))
}

// SelectPreset records the preset of a session. Choosing a different preset
// than the stored one clears the session's hints and reports reset=true.
func (s *Store) SelectPreset(ctx context.Context, userID, problemID string, p model.Preset) (bool, error) {
	if !p.Valid() {
		return false, fmt.Errorf("%w: %q", model.ErrInvalidPreset, p)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var current string
	var updatedAt time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT preset, updated_at FROM coh_sessions WHERE user_id = ? AND problem_id = ?`,
		userID, problemID,
	).Scan(&current, &updatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		current = ""
	case err != nil:
		return false, err
	}

	reset := current != "" && model.Preset(current) != p
	if reset || (current != "" && s.expired(updatedAt)) {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM hint_history WHERE user_id = ? AND problem_id = ?`, userID, problemID,
		); err != nil {
			return false, err
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO coh_sessions (user_id, problem_id, preset, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, problem_id) DO UPDATE SET preset = excluded.preset, updated_at = excluded.updated_at`,
		userID, problemID, string(p), s.now().UTC(),
	)
	if err != nil {
		return false, err
	}
	return reset, tx.Commit()
}

// GetSession returns the session's preset and hints in issue order.
// A missing or expired session is returned empty.
func (s *Store) GetSession(ctx context.Context, userID, problemID string) (model.SessionHistory, error) {
	sess := model.SessionHistory{UserID: userID, ProblemID: problemID, Hints: []model.HistoryEntry{}}

	var preset string
	var updatedAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT preset, updated_at FROM coh_sessions WHERE user_id = ? AND problem_id = ?`,
		userID, problemID,
	).Scan(&preset, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return sess, nil
	}
	if err != nil {
		return sess, err
	}
	if s.expired(updatedAt) {
		if err := s.ResetHistory(ctx, userID, problemID); err != nil {
			slog.Warn("failed to drop expired session", "user_id", userID, "problem_id", problemID, "error", err)
		}
		return sess, nil
	}
	sess.Preset = model.Preset(preset)

	sess.Hints, err = s.listHints(ctx, userID, problemID)
	return sess, err
}

func (s *Store) listHints(ctx context.Context, userID, problemID string) ([]model.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, preset, hint_level, hint_text, code_hash, created_at
		 FROM hint_history WHERE user_id = ? AND problem_id = ? ORDER BY seq`,
		userID, problemID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hints := []model.HistoryEntry{}
	for rows.Next() {
		var e model.HistoryEntry
		var preset string
		if err := rows.Scan(&e.ID, &preset, &e.HintLevel, &e.HintText, &e.CodeHash, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Preset = model.Preset(preset)
		hints = append(hints, e)
	}
	return hints, rows.Err()
}

// AppendHint records an issued hint and refreshes the session.
func (s *Store) AppendHint(ctx context.Context, userID, problemID string, e model.HistoryEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO hint_history (id, user_id, problem_id, preset, hint_level, hint_text, code_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, userID, problemID, string(e.Preset), e.HintLevel, e.HintText, e.CodeHash, e.Timestamp.UTC(),
	)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO coh_sessions (user_id, problem_id, preset, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, problem_id) DO UPDATE SET updated_at = excluded.updated_at`,
		userID, problemID, string(e.Preset), s.now().UTC(),
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// ResetHistory removes a session and its hints.
func (s *Store) ResetHistory(ctx context.Context, userID, problemID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM hint_history WHERE user_id = ? AND problem_id = ?`, userID, problemID,
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM coh_sessions WHERE user_id = ? AND problem_id = ?`, userID, problemID,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// CleanupExpiredSessions removes every session idle for longer than the TTL.
func (s *Store) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	if s.sessionTTL <= 0 {
		return 0, nil
	}
	cutoff := s.now().UTC().Add(-s.sessionTTL)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM hint_history WHERE EXISTS (
			SELECT 1 FROM coh_sessions c
			WHERE c.user_id = hint_history.user_id AND c.problem_id = hint_history.problem_id
			AND c.updated_at < ?)`, cutoff,
	); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM coh_sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}
