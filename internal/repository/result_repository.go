package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prepiq/quiz-backend/internal/model"
)

// ArchivedResult is a ResultRecord with its archival timestamp, as read
// back for the results/performance pages.
type ArchivedResult struct {
	model.ResultRecord
	SubmittedAt time.Time `json:"submitted_at"`
}

// ResultRepository archives submitted quiz results in PostgreSQL.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Insert upserts a result by session ID. Submission happens at most once
// per session, but the worker may requeue on transient failure, so the
// write must be idempotent.
func (r *ResultRepository) Insert(ctx context.Context, rec *model.ResultRecord) error {
	answers, err := json.Marshal(rec.Answers)
	if err != nil {
		return err
	}
	correct, err := json.Marshal(rec.CorrectAnswers)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO quiz_results
		     (session_id, total_questions, attempted_count, time_taken_seconds,
		      score_percentage, answers, correct_answers, bookmarked_questions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (session_id) DO UPDATE
		 SET total_questions = EXCLUDED.total_questions,
		     attempted_count = EXCLUDED.attempted_count,
		     time_taken_seconds = EXCLUDED.time_taken_seconds,
		     score_percentage = EXCLUDED.score_percentage,
		     answers = EXCLUDED.answers,
		     correct_answers = EXCLUDED.correct_answers,
		     bookmarked_questions = EXCLUDED.bookmarked_questions`,
		rec.SessionID, rec.TotalQuestions, rec.AttemptedCount, rec.TimeTakenSeconds,
		rec.ScorePercentage, answers, correct, rec.BookmarkedPositions,
	)
	return err
}

// GetBySessionID retrieves one archived result, or pgx.ErrNoRows.
func (r *ResultRepository) GetBySessionID(ctx context.Context, sessionID string) (*ArchivedResult, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT session_id, total_questions, attempted_count, time_taken_seconds,
		        score_percentage, answers, correct_answers, bookmarked_questions, submitted_at
		 FROM quiz_results
		 WHERE session_id = $1`, sessionID,
	)
	return scanResult(row)
}

// List retrieves archived results, newest first, with pagination.
func (r *ResultRepository) List(ctx context.Context, page, perPage int) ([]ArchivedResult, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quiz_results`).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	rows, err := r.pool.Query(ctx,
		`SELECT session_id, total_questions, attempted_count, time_taken_seconds,
		        score_percentage, answers, correct_answers, bookmarked_questions, submitted_at
		 FROM quiz_results
		 ORDER BY submitted_at DESC
		 LIMIT $1 OFFSET $2`, perPage, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []ArchivedResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, *res)
	}
	return results, total, rows.Err()
}

func scanResult(row pgx.Row) (*ArchivedResult, error) {
	var (
		res     ArchivedResult
		answers []byte
		correct []byte
	)
	if err := row.Scan(
		&res.SessionID, &res.TotalQuestions, &res.AttemptedCount, &res.TimeTakenSeconds,
		&res.ScorePercentage, &answers, &correct, &res.BookmarkedPositions, &res.SubmittedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &res.Answers); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(correct, &res.CorrectAnswers); err != nil {
		return nil, err
	}
	return &res, nil
}
