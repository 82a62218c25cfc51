package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"jobmate/jobboard-service/internal/model"
)

// RegisterSourceInput is the admin request to add a feed.
type RegisterSourceInput struct {
	Name     string `json:"name"`
	FeedKind string `json:"feedKind"`
	Provider string `json:"provider"`
	BaseURL  string `json:"baseUrl"`
	AdminID  string `json:"-"`
}

// Register creates an enabled source. The base url must not be registered yet.
func (s *Service) Register(ctx context.Context, in RegisterSourceInput) (*model.JobSource, error) {
	if strings.TrimSpace(in.AdminID) == "" {
		return nil, fmt.Errorf("register source: %w", model.ErrUnauthorized)
	}

	kind, err := model.ParseFeedKind(in.FeedKind)
	if err != nil {
		return nil, err
	}
	source, err := model.NewJobSource(in.Name, kind, in.Provider, in.BaseURL, s.now())
	if err != nil {
		return nil, err
	}

	existing, err := s.sources.FindByURL(ctx, source.BaseURL)
	switch {
	case err == nil && existing != nil:
		return nil, model.ErrDuplicateSource
	case err != nil && !errors.Is(err, model.ErrNotFound):
		return nil, fmt.Errorf("lookup source by url: %w", err)
	}

	if err := s.sources.Save(ctx, source); err != nil {
		return nil, err
	}

	s.log.Info("job source registered",
		zap.String("source_id", source.ID),
		zap.String("provider", source.Provider),
		zap.String("admin_id", in.AdminID))
	return source, nil
}

// SetEnabled turns a source on or off. Repeating the current state still saves.
func (s *Service) SetEnabled(ctx context.Context, sourceID string, enabled bool) (*model.JobSource, error) {
	source, err := s.sources.FindByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	source.SetEnabled(enabled, s.now())
	if err := s.sources.Save(ctx, source); err != nil {
		return nil, err
	}
	s.log.Info("job source toggled", zap.String("source_id", source.ID), zap.Bool("enabled", enabled))
	return source, nil
}

// ListSources returns every registered source.
func (s *Service) ListSources(ctx context.Context) ([]model.JobSource, error) {
	return s.sources.FindAll(ctx)
}
