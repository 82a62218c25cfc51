package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobmate/jobboard-service/internal/events"
	"jobmate/jobboard-service/internal/model"
)

// Repository persists applications. Lookups report a missing application
// with model.ErrApplicationNotFound and Create reports an existing
// (user, job) pair with an error wrapping model.ErrDuplicate.
type Repository interface {
	FindByID(ctx context.Context, id string) (*Application, error)
	FindByUserAndJob(ctx context.Context, userID, jobID string) (*Application, error)
	ListByUser(ctx context.Context, userID string, status Status) ([]Application, error)
	Create(ctx context.Context, app *Application) error
	UpdateStatus(ctx context.Context, app *Application, change StatusChange) error
	AddNote(ctx context.Context, appID string, note Note, at time.Time) error
}

// ─── Service ─────────────────────────────────────────────────────────────────

// Service encapsulates the Kanban business logic. It is transport-agnostic:
// used by both the HTTP API and the gRPC server.
type Service struct {
	repo      Repository
	publisher events.Publisher
	log       *zap.Logger
	now       func() time.Time
}

// NewService returns a configured Service. publisher and log may be nil.
func NewService(repo Repository, publisher events.Publisher, log *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, publisher: publisher, log: log.Named("tracker"), now: time.Now}
}

// ─── Business logic ──────────────────────────────────────────────────────────

// Track starts following jobID for userID in the SAVED column. Tracking the
// same job twice returns the existing application; created reports which
// case happened.
func (s *Service) Track(ctx context.Context, userID, jobID string) (app *Application, created bool, err error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, false, &model.ValidationError{Msg: "jobId is required"}
	}
	if _, err := uuid.Parse(jobID); err != nil {
		return nil, false, &model.ValidationError{Msg: fmt.Sprintf("jobId %q is not a valid id", jobID)}
	}

	existing, err := s.repo.FindByUserAndJob(ctx, userID, jobID)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, model.ErrNotFound):
		return nil, false, fmt.Errorf("track %s: %w", jobID, err)
	}

	app = newApplication(userID, jobID, s.now())
	if err := s.repo.Create(ctx, app); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			existing, ferr := s.repo.FindByUserAndJob(ctx, userID, jobID)
			if ferr != nil {
				return nil, false, fmt.Errorf("track %s: %w", jobID, ferr)
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	s.log.Info("application tracked", zap.String("user_id", userID), zap.String("job_id", jobID))
	return app, true, nil
}

// MoveStatus transitions an application to a new Kanban status.
// Returns model.ErrApplicationNotFound if the application does not exist,
// model.ErrForbidden if it belongs to someone else and a
// *model.ValidationError if the state machine rejects the transition.
func (s *Service) MoveStatus(ctx context.Context, userID, appID, newStatusStr string) (*Application, error) {
	newStatus, err := ParseStatus(newStatusStr)
	if err != nil {
		return nil, &model.ValidationError{Msg: err.Error()}
	}

	app, err := s.owned(ctx, userID, appID)
	if err != nil {
		return nil, err
	}

	if !IsTransitionAllowed(app.Status, newStatus) {
		return nil, &model.ValidationError{
			Msg: fmt.Sprintf("transition %s → %s is not allowed", app.Status, newStatus),
		}
	}

	change := app.moveTo(newStatus, s.now())
	if err := s.repo.UpdateStatus(ctx, app, change); err != nil {
		return nil, fmt.Errorf("move application %s: %w", appID, err)
	}

	events.Emit(ctx, s.publisher, s.log, events.CardMoved, map[string]any{
		"applicationId": app.ID,
		"userId":        userID,
		"from":          string(change.From),
		"to":            string(change.To),
	})
	return app, nil
}

// AddNote appends a note to an application.
func (s *Service) AddNote(ctx context.Context, userID, appID, content string) (*Application, error) {
	content = strings.TrimSpace(content)
	if len([]rune(content)) < MinNoteLength {
		return nil, &model.ValidationError{Msg: fmt.Sprintf("note must be at least %d characters", MinNoteLength)}
	}

	app, err := s.owned(ctx, userID, appID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	note := Note{ID: uuid.NewString(), Content: content, CreatedAt: now}
	if err := s.repo.AddNote(ctx, app.ID, note, now); err != nil {
		return nil, fmt.Errorf("add note to %s: %w", appID, err)
	}
	app.Notes = append(app.Notes, note)
	app.LastUpdatedAt = now
	return app, nil
}

// List returns the user's applications, most recently updated first. A
// non-empty statusFilter restricts the result to one column.
func (s *Service) List(ctx context.Context, userID, statusFilter string) ([]Application, error) {
	var status Status
	if statusFilter != "" {
		st, err := ParseStatus(statusFilter)
		if err != nil {
			return nil, &model.ValidationError{Msg: err.Error()}
		}
		status = st
	}
	apps, err := s.repo.ListByUser(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// Get returns a single application with its notes.
func (s *Service) Get(ctx context.Context, userID, appID string) (*Application, error) {
	return s.owned(ctx, userID, appID)
}

func (s *Service) owned(ctx context.Context, userID, appID string) (*Application, error) {
	app, err := s.repo.FindByID(ctx, appID)
	if err != nil {
		return nil, err
	}
	if app.UserID != userID {
		return nil, model.ErrForbidden
	}
	return app, nil
}
