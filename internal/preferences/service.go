// Package preferences manages users' search profiles.
package preferences

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"jobmate/jobboard-service/internal/model"
)

// Repository persists search profiles. FindByUserID reports a missing profile
// with model.ErrProfileNotFound; Create reports an existing one with
// model.ErrDuplicateProfile.
type Repository interface {
	FindByUserID(ctx context.Context, userID string) (*model.SearchProfile, error)
	Create(ctx context.Context, p *model.SearchProfile) error
	Update(ctx context.Context, p *model.SearchProfile) error
}

// ProfileInput carries a create or update request. Nil fields are left
// unchanged on update; an empty non-nil slice clears the list.
type ProfileInput struct {
	Categories    []string `json:"categories"`
	Locations     []string `json:"locations"`
	MinimumSalary *int     `json:"minimumSalary"`
	AlertsEnabled *bool    `json:"alertsEnabled"`
}

func (in ProfileInput) applyTo(p *model.SearchProfile) {
	if in.Categories != nil {
		p.Categories = in.Categories
	}
	if in.Locations != nil {
		p.Locations = in.Locations
	}
	if in.MinimumSalary != nil {
		p.MinimumSalary = *in.MinimumSalary
	}
	if in.AlertsEnabled != nil {
		p.AlertsEnabled = *in.AlertsEnabled
	}
}

// Service implements the profile use cases.
type Service struct {
	repo Repository
	log  *zap.Logger
	now  func() time.Time
}

// NewService returns a Service over repo.
func NewService(repo Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log.Named("preferences"), now: time.Now}
}

// Get returns the user's profile, or an empty profile with alerts off when
// none has been saved.
func (s *Service) Get(ctx context.Context, userID string) (model.SearchProfile, error) {
	p, err := s.repo.FindByUserID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.EmptyProfile(userID), nil
	}
	if err != nil {
		return model.SearchProfile{}, fmt.Errorf("get profile %s: %w", userID, err)
	}
	return *p, nil
}

// Create stores a first profile for userID.
func (s *Service) Create(ctx context.Context, userID string, in ProfileInput) (model.SearchProfile, error) {
	p := model.EmptyProfile(userID)
	in.applyTo(&p)
	if err := s.prepare(&p); err != nil {
		return model.SearchProfile{}, err
	}
	if err := s.repo.Create(ctx, &p); err != nil {
		return model.SearchProfile{}, err
	}
	s.log.Info("profile created", zap.String("user_id", userID))
	return p, nil
}

// Update merges in into the user's existing profile.
func (s *Service) Update(ctx context.Context, userID string, in ProfileInput) (model.SearchProfile, error) {
	p, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return model.SearchProfile{}, err
	}
	in.applyTo(p)
	if err := s.prepare(p); err != nil {
		return model.SearchProfile{}, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return model.SearchProfile{}, err
	}
	return *p, nil
}

// ToggleAlerts switches recommendation alerts for an existing profile.
// Enabling alerts requires at least one category or location.
func (s *Service) ToggleAlerts(ctx context.Context, userID string, enabled bool) (model.SearchProfile, error) {
	return s.Update(ctx, userID, ProfileInput{AlertsEnabled: &enabled})
}

func (s *Service) prepare(p *model.SearchProfile) error {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}
	p.UpdatedAt = s.now().UTC()
	return nil
}
