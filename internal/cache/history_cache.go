package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pavelanni/hinter/internal/model"
)

// DefaultTTL is how long an idle session survives.
const DefaultTTL = 24 * time.Hour

// HistoryCache keeps Chain-of-Hints sessions in Redis. Each session is a
// preset string and a list of JSON-encoded hints, both expiring together.
type HistoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewHistoryCache creates a Redis-backed history store. A non-positive ttl uses DefaultTTL.
func NewHistoryCache(client *redis.Client, ttl time.Duration) *HistoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &HistoryCache{client: client, ttl: ttl}
}

func sessionKey(userID, problemID string) string {
	return fmt.Sprintf("coh:%s:%s", userID, problemID)
}

func presetKey(userID, problemID string) string {
	return sessionKey(userID, problemID) + ":preset"
}

func hintsKey(userID, problemID string) string {
	return sessionKey(userID, problemID) + ":hints"
}

// SelectPreset records the preset of a session. Choosing a different preset
// than the stored one clears the session's hints and reports reset=true.
func (c *HistoryCache) SelectPreset(ctx context.Context, userID, problemID string, p model.Preset) (bool, error) {
	if !p.Valid() {
		return false, fmt.Errorf("%w: %q", model.ErrInvalidPreset, p)
	}

	current, err := c.client.Get(ctx, presetKey(userID, problemID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, err
	}
	reset := current != "" && model.Preset(current) != p

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if reset {
			pipe.Del(ctx, hintsKey(userID, problemID))
		}
		pipe.Set(ctx, presetKey(userID, problemID), string(p), c.ttl)
		pipe.Expire(ctx, hintsKey(userID, problemID), c.ttl)
		return nil
	})
	if err != nil {
		return false, err
	}
	return reset, nil
}

// GetSession returns the session's preset and hints in issue order.
func (c *HistoryCache) GetSession(ctx context.Context, userID, problemID string) (model.SessionHistory, error) {
	sess := model.SessionHistory{UserID: userID, ProblemID: problemID, Hints: []model.HistoryEntry{}}

	preset, err := c.client.Get(ctx, presetKey(userID, problemID)).Result()
	if errors.Is(err, redis.Nil) {
		return sess, nil
	}
	if err != nil {
		return sess, err
	}
	sess.Preset = model.Preset(preset)

	raw, err := c.client.LRange(ctx, hintsKey(userID, problemID), 0, -1).Result()
	if err != nil {
		return sess, err
	}
	sess.Hints, err = decodeHints(raw)
	return sess, err
}

// AppendHint records an issued hint and refreshes the session TTL.
func (c *HistoryCache) AppendHint(ctx context.Context, userID, problemID string, e model.HistoryEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, hintsKey(userID, problemID), data)
		pipe.SetNX(ctx, presetKey(userID, problemID), string(e.Preset), c.ttl)
		pipe.Expire(ctx, hintsKey(userID, problemID), c.ttl)
		pipe.Expire(ctx, presetKey(userID, problemID), c.ttl)
		return nil
	})
	return err
}

// ResetHistory removes a session and its hints.
func (c *HistoryCache) ResetHistory(ctx context.Context, userID, problemID string) error {
	return c.client.Del(ctx, presetKey(userID, problemID), hintsKey(userID, problemID)).Err()
}

func decodeHints(raw []string) ([]model.HistoryEntry, error) {
	hints := make([]model.HistoryEntry, 0, len(raw))
	for i, r := range raw {
		var e model.HistoryEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			return nil, fmt.Errorf("decode hint %d: %w", i, err)
		}
		hints = append(hints, e)
	}
	return hints, nil
}
