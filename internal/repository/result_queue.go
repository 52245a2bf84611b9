package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prepiq/quiz-backend/internal/config"
	"github.com/prepiq/quiz-backend/internal/model"
)

// ResultQueue delivers submitted ResultRecords onto the Redis persistence
// queue consumed by worker.ResultWorker. It decouples the synchronous
// submission path from the PostgreSQL archive.
type ResultQueue struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewResultQueue creates a ResultQueue.
func NewResultQueue(rdb *redis.Client, log zerolog.Logger) *ResultQueue {
	return &ResultQueue{
		rdb: rdb,
		log: log.With().Str("component", "result_queue").Logger(),
	}
}

// Deliver pushes the record for archival.
func (q *ResultQueue) Deliver(ctx context.Context, rec model.ResultRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := q.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw).Err(); err != nil {
		return fmt.Errorf("enqueue result: %w", err)
	}
	return nil
}
