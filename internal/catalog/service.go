// Package catalog serves paginated searches over ingested job listings.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"jobmate/jobboard-service/internal/model"
)

// JobFilter narrows a search. Empty fields are ignored. Category matches
// exactly; Location and Salary match case-insensitive substrings.
type JobFilter struct {
	Category string `form:"category" json:"category,omitempty"`
	Location string `form:"location" json:"location,omitempty"`
	Salary   string `form:"salary" json:"salary,omitempty"`
	SourceID string `form:"sourceId" json:"sourceId,omitempty"`
}

// Trimmed returns f with surrounding whitespace removed from every field.
func (f JobFilter) Trimmed() JobFilter {
	return JobFilter{
		Category: strings.TrimSpace(f.Category),
		Location: strings.TrimSpace(f.Location),
		Salary:   strings.TrimSpace(f.Salary),
		SourceID: strings.TrimSpace(f.SourceID),
	}
}

// ListingFinder returns listings matching filter, newest posting first.
type ListingFinder interface {
	Find(ctx context.Context, filter JobFilter, offset, limit int) ([]model.ListingView, error)
}

// Service answers job searches.
type Service struct {
	finder ListingFinder
	log    *zap.Logger
}

// NewService returns a Service reading from finder.
func NewService(finder ListingFinder, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{finder: finder, log: log.Named("catalog")}
}

// FindJobs returns one page of listings. Pages below 1 are treated as 1.
func (s *Service) FindJobs(ctx context.Context, filter JobFilter, page int) (model.Page[model.ListingView], error) {
	page = model.NormalizePage(page)
	items, err := s.finder.Find(ctx, filter.Trimmed(), model.Offset(page), model.PageSize)
	if err != nil {
		return model.Page[model.ListingView]{}, fmt.Errorf("find jobs: %w", err)
	}
	if items == nil {
		items = []model.ListingView{}
	}
	s.log.Debug("jobs searched", zap.Int("page", page), zap.Int("results", len(items)))
	return model.Page[model.ListingView]{Items: items, Page: page, PageSize: model.PageSize}, nil
}
