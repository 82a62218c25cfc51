package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobmate/jobboard-service/internal/model"
)

// Profiles is the search_profiles repository.
type Profiles struct {
	pool *pgxpool.Pool
}

// NewProfiles returns a Profiles repository over pool.
func NewProfiles(pool *pgxpool.Pool) *Profiles {
	return &Profiles{pool: pool}
}

// FindByUserID returns model.ErrProfileNotFound when the user has no profile.
func (r *Profiles) FindByUserID(ctx context.Context, userID string) (*model.SearchProfile, error) {
	var p model.SearchProfile
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, categories, locations, minimum_salary, alerts_enabled, updated_at
		 FROM search_profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.Categories, &p.Locations, &p.MinimumSalary, &p.AlertsEnabled, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find profile %s: %w", userID, err)
	}
	return &p, nil
}

// FindAlertUserIDs returns the users that opted in to recommendation alerts.
func (r *Profiles) FindAlertUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id FROM search_profiles WHERE alerts_enabled ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("alert users: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("alert users scan: %w", err)
	}
	return ids, nil
}

// Create fails with model.ErrDuplicateProfile when the user already has one.
func (r *Profiles) Create(ctx context.Context, p *model.SearchProfile) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO search_profiles (user_id, categories, locations, minimum_salary, alerts_enabled, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.UserID, p.Categories, p.Locations, p.MinimumSalary, p.AlertsEnabled, p.UpdatedAt,
	)
	if pgCode(err) == pgUniqueViolation {
		return model.ErrDuplicateProfile
	}
	if err != nil {
		return fmt.Errorf("create profile %s: %w", p.UserID, err)
	}
	return nil
}

// Update overwrites an existing profile.
func (r *Profiles) Update(ctx context.Context, p *model.SearchProfile) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE search_profiles
		 SET categories = $2, locations = $3, minimum_salary = $4, alerts_enabled = $5, updated_at = $6
		 WHERE user_id = $1`,
		p.UserID, p.Categories, p.Locations, p.MinimumSalary, p.AlertsEnabled, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update profile %s: %w", p.UserID, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProfileNotFound
	}
	return nil
}
