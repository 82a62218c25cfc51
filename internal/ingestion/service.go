// Package ingestion registers job sources and pulls their feeds into the
// listing catalogue.
//
// A run fetches the whole feed through a feed.Fetcher, then walks the batch
// in feed order: postings already stored for the source are skipped, invalid
// postings are skipped and logged, the rest are saved. The source's
// LastIngestedAt is stamped at the end of every run whose fetch succeeded,
// even when nothing was saved. A feed that could not be read at all leaves
// the stamp untouched.
package ingestion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"jobmate/jobboard-service/internal/events"
	"jobmate/jobboard-service/internal/feed"
	"jobmate/jobboard-service/internal/model"
)

// SourceRepository persists job sources. Lookups of missing sources return an
// error wrapping model.ErrNotFound.
type SourceRepository interface {
	FindByID(ctx context.Context, id string) (*model.JobSource, error)
	FindByURL(ctx context.Context, baseURL string) (*model.JobSource, error)
	FindAll(ctx context.Context) ([]model.JobSource, error)
	FindAllEnabled(ctx context.Context) ([]model.JobSource, error)
	Save(ctx context.Context, source *model.JobSource) error
}

// ListingRepository persists job listings keyed by (source, external id).
type ListingRepository interface {
	Exists(ctx context.Context, sourceID, externalID string) (bool, error)
	Save(ctx context.Context, listing *model.JobListing) error
}

// FetcherResolver finds the adapter for a provider key.
type FetcherResolver interface {
	Get(provider string) (feed.Fetcher, error)
}

// Recorder receives ingestion metrics.
type Recorder interface {
	RecordListings(provider, outcome string, n int)
	RecordIngestRun(err error)
}

type nopRecorder struct{}

func (nopRecorder) RecordListings(string, string, int) {}
func (nopRecorder) RecordIngestRun(error)              {}

// Deps groups the collaborators of a Service. Sources and Listings are
// required; the rest fall back to no-op implementations.
type Deps struct {
	Sources   SourceRepository
	Listings  ListingRepository
	Fetchers  FetcherResolver
	Publisher events.Publisher
	Recorder  Recorder
	Logger    *zap.Logger
	RedFlags  []string
	Now       func() time.Time
}

// Service implements source registration and feed ingestion.
type Service struct {
	sources   SourceRepository
	listings  ListingRepository
	fetchers  FetcherResolver
	publisher events.Publisher
	recorder  Recorder
	log       *zap.Logger
	redFlags  []string
	now       func() time.Time
}

// NewService returns a configured Service.
func NewService(d Deps) *Service {
	s := &Service{
		sources:   d.Sources,
		listings:  d.Listings,
		fetchers:  d.Fetchers,
		publisher: d.Publisher,
		recorder:  d.Recorder,
		log:       d.Logger,
		redFlags:  d.RedFlags,
		now:       d.Now,
	}
	if s.publisher == nil {
		s.publisher = events.Nop{}
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.log = s.log.Named("ingestion")
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// IngestSummary reports what a single run did.
type IngestSummary struct {
	SourceID string `json:"sourceId"`
	Provider string `json:"provider"`
	Fetched  int    `json:"fetched"`
	Saved    int    `json:"saved"`
	Skipped  int    `json:"skipped"`
	Filtered int    `json:"filtered"` // red-flag matches, included in Skipped

	// FetchFailed is set when the feed could not be read at all. The source
	// keeps its previous LastIngestedAt.
	FetchFailed bool `json:"fetchFailed"`
}

// Ingest runs one ingestion of sourceID using fetcher.
func (s *Service) Ingest(ctx context.Context, sourceID string, fetcher feed.Fetcher) (IngestSummary, error) {
	summary, err := s.ingest(ctx, sourceID, fetcher)
	s.recorder.RecordIngestRun(err)
	return summary, err
}

func (s *Service) ingest(ctx context.Context, sourceID string, fetcher feed.Fetcher) (IngestSummary, error) {
	summary := IngestSummary{SourceID: sourceID}

	source, err := s.sources.FindByID(ctx, sourceID)
	if err != nil {
		return summary, err
	}
	if !source.Enabled {
		return summary, fmt.Errorf("source %s: %w", source.ID, model.ErrSourceDisabled)
	}
	summary.Provider = source.Provider
	log := s.log.With(zap.String("source_id", source.ID), zap.String("provider", source.Provider))

	batch := fetcher.FetchJobs(ctx, source.BaseURL)
	summary.Fetched = len(batch.Jobs)
	if batch.Failed {
		summary.FetchFailed = true
		log.Warn("feed fetch failed, source not marked as ingested")
		return summary, nil
	}

	for _, raw := range batch.Jobs {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		raw.ExternalID = strings.TrimSpace(raw.ExternalID)

		exists, err := s.listings.Exists(ctx, source.ID, raw.ExternalID)
		if err != nil {
			log.Warn("existence check failed, skipping", zap.String("external_id", raw.ExternalID), zap.Error(err))
			summary.Skipped++
			continue
		}
		if exists {
			summary.Skipped++
			continue
		}

		if ContainsRedFlag(raw, s.redFlags) {
			log.Debug("red flag match, skipping", zap.String("external_id", raw.ExternalID))
			summary.Filtered++
			summary.Skipped++
			continue
		}

		listing, err := model.NewJobListing(source.ID, raw, s.now())
		if err != nil {
			log.Warn("invalid listing, skipping", zap.String("external_id", raw.ExternalID), zap.Error(err))
			summary.Skipped++
			continue
		}

		if err := s.listings.Save(ctx, listing); err != nil {
			log.Warn("listing save failed, skipping", zap.String("external_id", raw.ExternalID), zap.Error(err))
			summary.Skipped++
			continue
		}
		summary.Saved++
	}

	source.MarkIngested(s.now())
	if err := s.sources.Save(ctx, source); err != nil {
		return summary, fmt.Errorf("save source %s: %w", source.ID, err)
	}

	s.recorder.RecordListings(source.Provider, "saved", summary.Saved)
	s.recorder.RecordListings(source.Provider, "skipped", summary.Skipped-summary.Filtered)
	s.recorder.RecordListings(source.Provider, "filtered", summary.Filtered)

	log.Info(fmt.Sprintf("Ingested %d saved, %d skipped", summary.Saved, summary.Skipped),
		zap.Int("fetched", summary.Fetched),
		zap.Int("filtered", summary.Filtered))

	if summary.Saved > 0 {
		events.Emit(ctx, s.publisher, s.log, events.JobsIngested, map[string]any{
			"sourceId": source.ID,
			"provider": source.Provider,
			"saved":    summary.Saved,
		})
	}
	return summary, nil
}

// IngestSource resolves the fetcher for the source's provider and ingests it.
func (s *Service) IngestSource(ctx context.Context, sourceID string) (IngestSummary, error) {
	source, err := s.sources.FindByID(ctx, sourceID)
	if err != nil {
		return IngestSummary{SourceID: sourceID}, err
	}
	fetcher, err := s.resolve(source.Provider)
	if err != nil {
		return IngestSummary{SourceID: sourceID, Provider: source.Provider}, err
	}
	return s.Ingest(ctx, sourceID, fetcher)
}

// RunResult is the outcome of one source within IngestAllEnabled.
type RunResult struct {
	IngestSummary
	Err error `json:"-"`
}

// IngestAllEnabled ingests every enabled source in turn. A failing source is
// logged and does not stop the loop.
func (s *Service) IngestAllEnabled(ctx context.Context) ([]RunResult, error) {
	sources, err := s.sources.FindAllEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("load enabled sources: %w", err)
	}
	if len(sources) == 0 {
		s.log.Info("no enabled job sources, nothing to ingest")
		return nil, nil
	}

	s.log.Info("ingestion cycle started", zap.Int("sources", len(sources)))
	results := make([]RunResult, 0, len(sources))
	for _, src := range sources {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		res := RunResult{IngestSummary: IngestSummary{SourceID: src.ID, Provider: src.Provider}}

		fetcher, err := s.resolve(src.Provider)
		if err != nil {
			s.log.Error("no fetcher for source", zap.String("source_id", src.ID), zap.Error(err))
			s.recorder.RecordIngestRun(err)
			res.Err = err
			results = append(results, res)
			continue
		}

		summary, err := s.Ingest(ctx, src.ID, fetcher)
		if err != nil {
			s.log.Error("source ingestion failed", zap.String("source_id", src.ID), zap.Error(err))
		}
		res.IngestSummary, res.Err = summary, err
		results = append(results, res)
	}
	s.log.Info("ingestion cycle complete", zap.Int("sources", len(results)))
	return results, nil
}

func (s *Service) resolve(provider string) (feed.Fetcher, error) {
	if s.fetchers == nil {
		return nil, fmt.Errorf("no fetcher registry configured: %w", model.ErrNotFound)
	}
	return s.fetchers.Get(provider)
}
