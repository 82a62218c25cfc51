package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"jobmate/jobboard-service/internal/catalog"
	"jobmate/jobboard-service/internal/model"
)

// Listings is the job_listings repository.
type Listings struct {
	pool *pgxpool.Pool
}

// NewListings returns a Listings repository over pool.
func NewListings(pool *pgxpool.Pool) *Listings {
	return &Listings{pool: pool}
}

// Exists reports whether sourceID already has a listing with externalID.
func (r *Listings) Exists(ctx context.Context, sourceID, externalID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM job_listings WHERE source_id = $1 AND external_id = $2)`,
		sourceID, externalID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("listing exists: %w", err)
	}
	return exists, nil
}

// Save inserts listing. When a concurrent run stored the same
// (source, external id) first, the display fields are refreshed instead and
// the original id is kept.
func (r *Listings) Save(ctx context.Context, l *model.JobListing) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO job_listings
		   (id, source_id, external_id, title, company, location, category, salary, url, work_mode, posted_at, ingested_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (source_id, external_id) DO UPDATE SET
		   title     = EXCLUDED.title,
		   company   = EXCLUDED.company,
		   location  = EXCLUDED.location,
		   category  = EXCLUDED.category,
		   salary    = EXCLUDED.salary,
		   url       = EXCLUDED.url,
		   work_mode = EXCLUDED.work_mode`,
		l.ID, l.SourceID, l.ExternalID, l.Title, l.Company, l.Location, l.Category, l.Salary,
		l.URL, string(l.WorkMode), l.PostedAt, l.IngestedAt,
	)
	if err != nil {
		return fmt.Errorf("save listing %s/%s: %w", l.SourceID, l.ExternalID, err)
	}
	return nil
}

// Find returns listings matching filter with their source's name, newest
// posting first.
func (r *Listings) Find(ctx context.Context, f catalog.JobFilter, offset, limit int) ([]model.ListingView, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Category != "" {
		add("l.category = $%d", f.Category)
	}
	if f.Location != "" {
		add("l.location ILIKE $%d", containsPattern(f.Location))
	}
	if f.Salary != "" {
		add("l.salary ILIKE $%d", containsPattern(f.Salary))
	}
	if f.SourceID != "" {
		if !validID(f.SourceID) {
			return []model.ListingView{}, nil
		}
		add("l.source_id = $%d", f.SourceID)
	}

	query := `
		SELECT l.id, l.source_id, l.external_id, l.title, l.company, l.location,
		       l.category, l.salary, l.url, l.work_mode, l.posted_at, l.ingested_at, s.name
		FROM job_listings l
		JOIN job_sources s ON s.id = l.source_id`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf("\n\t\tORDER BY l.posted_at DESC, l.id\n\t\tLIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find listings: %w", err)
	}
	defer rows.Close()

	out := make([]model.ListingView, 0, limit)
	for rows.Next() {
		var v model.ListingView
		var mode string
		if err := rows.Scan(&v.ID, &v.SourceID, &v.ExternalID, &v.Title, &v.Company, &v.Location,
			&v.Category, &v.Salary, &v.URL, &mode, &v.PostedAt, &v.IngestedAt, &v.SourceName); err != nil {
			return nil, fmt.Errorf("find listings scan: %w", err)
		}
		v.WorkMode = model.WorkMode(mode)
		out = append(out, v)
	}
	return out, rows.Err()
}

// FindCandidates returns the most recently ingested listings that have a
// category.
func (r *Listings) FindCandidates(ctx context.Context, limit int) ([]model.Candidate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, category, location
		 FROM job_listings
		 WHERE category IS NOT NULL
		 ORDER BY ingested_at DESC, id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}
	defer rows.Close()

	out := make([]model.Candidate, 0, limit)
	for rows.Next() {
		var c model.Candidate
		if err := rows.Scan(&c.JobID, &c.Category, &c.Location); err != nil {
			return nil, fmt.Errorf("find candidates scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
