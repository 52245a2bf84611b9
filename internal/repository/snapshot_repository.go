package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prepiq/quiz-backend/internal/config"
	"github.com/prepiq/quiz-backend/internal/model"
)

// SnapshotRepository stores in-progress session snapshots in Redis, keyed
// per session ID with last-write-wins SET semantics. The TTL stands in for
// the lifetime of the browsing context that owns the session.
type SnapshotRepository struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// NewSnapshotRepository creates a SnapshotRepository.
func NewSnapshotRepository(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		rdb: rdb,
		ttl: ttl,
		log: log.With().Str("component", "snapshot_repository").Logger(),
	}
}

// Save overwrites the snapshot for sessionID.
func (r *SnapshotRepository) Save(ctx context.Context, sessionID string, snap model.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := r.rdb.Set(ctx, config.CacheKey.SessionSnapshotKey(sessionID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}

// Load returns the last-saved snapshot for sessionID, or (nil, nil) when
// none exists. A snapshot that fails to parse is treated as absent — the
// session degrades to a fresh start instead of crashing on corrupt data.
func (r *SnapshotRepository) Load(ctx context.Context, sessionID string) (*model.Snapshot, error) {
	raw, err := r.rdb.Get(ctx, config.CacheKey.SessionSnapshotKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		r.log.Warn().Err(err).Str("session_id", sessionID).Msg("Corrupt snapshot discarded")
		return nil, nil
	}
	return &snap, nil
}

// Clear removes the snapshot for sessionID. Deleting a missing key is not
// an error.
func (r *SnapshotRepository) Clear(ctx context.Context, sessionID string) error {
	if err := r.rdb.Del(ctx, config.CacheKey.SessionSnapshotKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("del snapshot: %w", err)
	}
	return nil
}
