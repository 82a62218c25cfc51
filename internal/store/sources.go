package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobmate/jobboard-service/internal/model"
)

// Sources is the job_sources repository.
type Sources struct {
	pool *pgxpool.Pool
}

// NewSources returns a Sources repository over pool.
func NewSources(pool *pgxpool.Pool) *Sources {
	return &Sources{pool: pool}
}

const sourceColumns = `id, name, feed_kind, provider, base_url, enabled, last_ingested_at, created_at, updated_at`

func scanSource(row pgx.Row) (*model.JobSource, error) {
	var s model.JobSource
	var kind string
	if err := row.Scan(&s.ID, &s.Name, &kind, &s.Provider, &s.BaseURL, &s.Enabled,
		&s.LastIngestedAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.FeedKind = model.FeedKind(kind)
	return &s, nil
}

func (r *Sources) findOne(ctx context.Context, where string, arg any) (*model.JobSource, error) {
	s, err := scanSource(r.pool.QueryRow(ctx, `SELECT `+sourceColumns+` FROM job_sources WHERE `+where, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrSourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find source: %w", err)
	}
	return s, nil
}

// FindByID returns model.ErrSourceNotFound when no source has id.
func (r *Sources) FindByID(ctx context.Context, id string) (*model.JobSource, error) {
	if !validID(id) {
		return nil, model.ErrSourceNotFound
	}
	return r.findOne(ctx, `id = $1`, id)
}

// FindByURL returns model.ErrSourceNotFound when no source has baseURL.
func (r *Sources) FindByURL(ctx context.Context, baseURL string) (*model.JobSource, error) {
	return r.findOne(ctx, `base_url = $1`, baseURL)
}

// FindAll returns every source, oldest first.
func (r *Sources) FindAll(ctx context.Context) ([]model.JobSource, error) {
	return r.list(ctx, `SELECT `+sourceColumns+` FROM job_sources ORDER BY created_at, id`)
}

// FindAllEnabled returns the enabled sources, oldest first.
func (r *Sources) FindAllEnabled(ctx context.Context) ([]model.JobSource, error) {
	return r.list(ctx, `SELECT `+sourceColumns+` FROM job_sources WHERE enabled ORDER BY created_at, id`)
}

func (r *Sources) list(ctx context.Context, query string) ([]model.JobSource, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	out := make([]model.JobSource, 0)
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("list sources scan: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// Save inserts or updates source. A second source with the same base URL
// fails with model.ErrDuplicateSource.
func (r *Sources) Save(ctx context.Context, s *model.JobSource) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO job_sources (`+sourceColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
		   name             = EXCLUDED.name,
		   feed_kind        = EXCLUDED.feed_kind,
		   provider         = EXCLUDED.provider,
		   base_url         = EXCLUDED.base_url,
		   enabled          = EXCLUDED.enabled,
		   last_ingested_at = EXCLUDED.last_ingested_at,
		   updated_at       = EXCLUDED.updated_at`,
		s.ID, s.Name, string(s.FeedKind), s.Provider, s.BaseURL, s.Enabled,
		s.LastIngestedAt, s.CreatedAt, s.UpdatedAt,
	)
	if pgCode(err) == pgUniqueViolation {
		return model.ErrDuplicateSource
	}
	if err != nil {
		return fmt.Errorf("save source %s: %w", s.ID, err)
	}
	return nil
}
