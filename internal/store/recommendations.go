package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobmate/jobboard-service/internal/model"
)

// Recommendations is the recommendation_results repository.
type Recommendations struct {
	pool *pgxpool.Pool
}

// NewRecommendations returns a Recommendations repository over pool.
func NewRecommendations(pool *pgxpool.Pool) *Recommendations {
	return &Recommendations{pool: pool}
}

var recommendationColumns = []string{
	"id", "user_id", "job_id", "total_score", "role_score", "location_score",
	"seniority_score", "keyword_score", "explanation", "computed_at",
}

const recommendationSelect = `SELECT id, user_id, job_id, total_score, role_score, location_score,
		       seniority_score, keyword_score, explanation, computed_at
		FROM recommendation_results`

// SaveBatch replaces the user's whole set in one transaction. Concurrent
// saves for the same user are serialised by an advisory lock, so readers
// only ever see the old or the new set.
func (r *Recommendations) SaveBatch(ctx context.Context, userID string, results []model.RecommendationResult) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
			return fmt.Errorf("lock recommendations %s: %w", userID, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM recommendation_results WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("delete recommendations %s: %w", userID, err)
		}
		if len(results) == 0 {
			return nil
		}
		_, err := tx.CopyFrom(ctx, pgx.Identifier{"recommendation_results"}, recommendationColumns,
			pgx.CopyFromSlice(len(results), func(i int) ([]any, error) {
				res := results[i]
				return []any{
					res.ID, userID, res.JobID, res.TotalScore, res.RoleScore, res.LocationScore,
					res.SeniorityScore, res.KeywordScore, res.Explanation, res.ComputedAt,
				}, nil
			}))
		if err != nil {
			return fmt.Errorf("copy recommendations %s: %w", userID, err)
		}
		return nil
	})
}

// FindByUserID returns the user's set, highest total score first.
func (r *Recommendations) FindByUserID(ctx context.Context, userID string) ([]model.RecommendationResult, error) {
	rows, err := r.pool.Query(ctx, recommendationSelect+`
		WHERE user_id = $1
		ORDER BY total_score DESC, job_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("find recommendations %s: %w", userID, err)
	}
	defer rows.Close()

	out := make([]model.RecommendationResult, 0)
	for rows.Next() {
		res, err := scanRecommendation(rows)
		if err != nil {
			return nil, fmt.Errorf("find recommendations scan: %w", err)
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// FindSpecificMatch returns model.ErrRecommendationNotFound when jobID is not
// in the user's set.
func (r *Recommendations) FindSpecificMatch(ctx context.Context, userID, jobID string) (*model.RecommendationResult, error) {
	if !validID(jobID) {
		return nil, model.ErrRecommendationNotFound
	}
	res, err := scanRecommendation(r.pool.QueryRow(ctx, recommendationSelect+`
		WHERE user_id = $1 AND job_id = $2`, userID, jobID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrRecommendationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find recommendation %s/%s: %w", userID, jobID, err)
	}
	return res, nil
}

func scanRecommendation(row pgx.Row) (*model.RecommendationResult, error) {
	var res model.RecommendationResult
	err := row.Scan(&res.ID, &res.UserID, &res.JobID, &res.TotalScore, &res.RoleScore, &res.LocationScore,
		&res.SeniorityScore, &res.KeywordScore, &res.Explanation, &res.ComputedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
