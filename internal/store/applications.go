package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobmate/jobboard-service/internal/model"
	"jobmate/jobboard-service/internal/tracker"
)

// Applications is the applications / application_notes repository.
type Applications struct {
	pool *pgxpool.Pool
}

// NewApplications returns an Applications repository over pool.
func NewApplications(pool *pgxpool.Pool) *Applications {
	return &Applications{pool: pool}
}

const applicationSelect = `SELECT id, user_id, job_id, status::text, applied_at, history_log, created_at, last_updated_at
		FROM applications`

func scanApplication(row pgx.Row) (*tracker.Application, error) {
	var (
		a       tracker.Application
		status  string
		history []byte
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.JobID, &status, &a.AppliedAt, &history,
		&a.CreatedAt, &a.LastUpdatedAt); err != nil {
		return nil, err
	}
	a.Status = tracker.Status(status)
	a.History = []tracker.StatusChange{}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &a.History); err != nil {
			return nil, fmt.Errorf("decode history of %s: %w", a.ID, err)
		}
	}
	a.Notes = []tracker.Note{}
	return &a, nil
}

func (r *Applications) findOne(ctx context.Context, where string, args ...any) (*tracker.Application, error) {
	a, err := scanApplication(r.pool.QueryRow(ctx, applicationSelect+` WHERE `+where, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrApplicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find application: %w", err)
	}
	if err := r.loadNotes(ctx, []*tracker.Application{a}); err != nil {
		return nil, err
	}
	return a, nil
}

// FindByID returns the application with its notes, oldest note first.
func (r *Applications) FindByID(ctx context.Context, id string) (*tracker.Application, error) {
	if !validID(id) {
		return nil, model.ErrApplicationNotFound
	}
	return r.findOne(ctx, `id = $1`, id)
}

// FindByUserAndJob returns the user's application for jobID.
func (r *Applications) FindByUserAndJob(ctx context.Context, userID, jobID string) (*tracker.Application, error) {
	if !validID(jobID) {
		return nil, model.ErrApplicationNotFound
	}
	return r.findOne(ctx, `user_id = $1 AND job_id = $2`, userID, jobID)
}

// ListByUser returns the user's applications, most recently updated first.
// An empty status returns every column of the board.
func (r *Applications) ListByUser(ctx context.Context, userID string, status tracker.Status) ([]tracker.Application, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status != "" {
		rows, err = r.pool.Query(ctx, applicationSelect+`
		WHERE user_id = $1 AND status = $2::application_status
		ORDER BY last_updated_at DESC`, userID, string(status))
	} else {
		rows, err = r.pool.Query(ctx, applicationSelect+`
		WHERE user_id = $1
		ORDER BY last_updated_at DESC`, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps := make([]*tracker.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("list applications scan: %w", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	rows.Close()

	if err := r.loadNotes(ctx, apps); err != nil {
		return nil, err
	}
	out := make([]tracker.Application, len(apps))
	for i, a := range apps {
		out[i] = *a
	}
	return out, nil
}

func (r *Applications) loadNotes(ctx context.Context, apps []*tracker.Application) error {
	if len(apps) == 0 {
		return nil
	}
	byID := make(map[string]*tracker.Application, len(apps))
	ids := make([]string, 0, len(apps))
	for _, a := range apps {
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, application_id, content, created_at
		 FROM application_notes
		 WHERE application_id = ANY($1::uuid[])
		 ORDER BY created_at, id`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("load notes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			n     tracker.Note
			appID string
		)
		if err := rows.Scan(&n.ID, &appID, &n.Content, &n.CreatedAt); err != nil {
			return fmt.Errorf("load notes scan: %w", err)
		}
		if a, ok := byID[appID]; ok {
			a.Notes = append(a.Notes, n)
		}
	}
	return rows.Err()
}

// Create inserts a new application. A second application for the same
// (user, job) fails with an error wrapping model.ErrDuplicate; an unknown job
// fails with model.ErrListingNotFound.
func (r *Applications) Create(ctx context.Context, a *tracker.Application) error {
	history, err := json.Marshal(a.History)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO applications (id, user_id, job_id, status, applied_at, history_log, created_at, last_updated_at)
		 VALUES ($1, $2, $3, $4::application_status, $5, $6::jsonb, $7, $8)`,
		a.ID, a.UserID, a.JobID, string(a.Status), a.AppliedAt, string(history), a.CreatedAt, a.LastUpdatedAt,
	)
	if err != nil {
		switch pgCode(err) {
		case pgUniqueViolation:
			return fmt.Errorf("application for job %s %w", a.JobID, model.ErrDuplicate)
		case pgForeignKeyViolation:
			return model.ErrListingNotFound
		}
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// UpdateStatus stores the new status and appends change to the history log.
func (r *Applications) UpdateStatus(ctx context.Context, a *tracker.Application, change tracker.StatusChange) error {
	entry, err := json.Marshal([]tracker.StatusChange{change})
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE applications
		 SET status          = $1::application_status,
		     applied_at      = $2,
		     history_log     = history_log || $3::jsonb,
		     last_updated_at = $4
		 WHERE id = $5`,
		string(a.Status), a.AppliedAt, string(entry), a.LastUpdatedAt, a.ID,
	)
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrApplicationNotFound
	}
	return nil
}

// AddNote inserts note and bumps the application's last update time.
func (r *Applications) AddNote(ctx context.Context, appID string, note tracker.Note, at time.Time) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE applications SET last_updated_at = $1 WHERE id = $2`, at, appID)
		if err != nil {
			return fmt.Errorf("touch application: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrApplicationNotFound
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO application_notes (id, application_id, content, created_at) VALUES ($1, $2, $3, $4)`,
			note.ID, appID, note.Content, note.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert note: %w", err)
		}
		return nil
	})
}
