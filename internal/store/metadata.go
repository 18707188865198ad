package store

import (
	"context"
	"database/sql"
	"errors"
)

// Metadata keys.
const (
	MetaPolicyHash    = "policy_hash"
	MetaPromptVariant = "prompt_variant"
)

// SetMetadata upserts a key-value pair in the metadata table.
func (s *Store) SetMetadata(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, value, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// RecordPolicy stores the fingerprint of the scoring policy in use and reports
// whether it differs from the one recorded before. The first recording is not a change.
func (s *Store) RecordPolicy(ctx context.Context, hash string) (changed bool, err error) {
	prev, err := s.GetMetadata(ctx, MetaPolicyHash)
	if err != nil {
		return false, err
	}
	if err := s.SetMetadata(ctx, MetaPolicyHash, hash); err != nil {
		return false, err
	}
	return prev != "" && prev != hash, nil
}
