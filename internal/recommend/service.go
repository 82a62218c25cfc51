package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"jobmate/jobboard-service/internal/events"
	"jobmate/jobboard-service/internal/model"
)

// DefaultCandidateLimit caps how many recent listings are scored per user.
const DefaultCandidateLimit = 100

// ProfileReader reads search profiles. A missing profile is reported with an
// error wrapping model.ErrNotFound.
type ProfileReader interface {
	FindByUserID(ctx context.Context, userID string) (*model.SearchProfile, error)
	FindAlertUserIDs(ctx context.Context) ([]string, error)
}

// CandidateReader returns the most recently ingested categorised listings.
type CandidateReader interface {
	FindCandidates(ctx context.Context, limit int) ([]model.Candidate, error)
}

// ResultRepository stores recommendation sets. SaveBatch replaces the user's
// whole set atomically; FindByUserID orders by total score, highest first.
type ResultRepository interface {
	SaveBatch(ctx context.Context, userID string, results []model.RecommendationResult) error
	FindByUserID(ctx context.Context, userID string) ([]model.RecommendationResult, error)
	FindSpecificMatch(ctx context.Context, userID, jobID string) (*model.RecommendationResult, error)
}

// Cache is a read-through cache of FindByUserID.
type Cache interface {
	Get(ctx context.Context, userID string) ([]model.RecommendationResult, bool, error)
	Set(ctx context.Context, userID string, results []model.RecommendationResult) error
	Invalidate(ctx context.Context, userID string) error
}

// Recorder receives recomputation metrics.
type Recorder interface {
	RecordRecompute(succeeded, failed int, took time.Duration)
}

// Deps groups the collaborators of a Service. Cache, Publisher, Recorder and
// Logger are optional.
type Deps struct {
	Engine         *Engine
	Profiles       ProfileReader
	Candidates     CandidateReader
	Results        ResultRepository
	Cache          Cache
	Publisher      events.Publisher
	Recorder       Recorder
	Logger         *zap.Logger
	CandidateLimit int
}

// Service generates, recomputes and serves recommendations.
type Service struct {
	engine     *Engine
	profiles   ProfileReader
	candidates CandidateReader
	results    ResultRepository
	cache      Cache
	publisher  events.Publisher
	recorder   Recorder
	log        *zap.Logger
	limit      int

	// generations counts cache invalidations per user. findAll skips its
	// write-back when the count moved during the read.
	genMu       sync.Mutex
	generations map[string]uint64
}

// NewService returns a configured Service.
func NewService(d Deps) *Service {
	s := &Service{
		engine:     d.Engine,
		profiles:   d.Profiles,
		candidates: d.Candidates,
		results:    d.Results,
		cache:      d.Cache,
		publisher:  d.Publisher,
		recorder:   d.Recorder,
		log:        d.Logger,
		limit:      d.CandidateLimit,

		generations: make(map[string]uint64),
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.log = s.log.Named("recommend")
	if s.publisher == nil {
		s.publisher = events.Nop{}
	}
	if s.limit <= 0 {
		s.limit = DefaultCandidateLimit
	}
	return s
}

// Generate scores the current candidates for userID and replaces the user's
// stored set with the result.
func (s *Service) Generate(ctx context.Context, userID string) ([]model.RecommendationResult, error) {
	candidates, err := s.candidates.FindCandidates(ctx, s.limit)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	return s.generateFor(ctx, userID, candidates)
}

func (s *Service) generateFor(ctx context.Context, userID string, candidates []model.Candidate) ([]model.RecommendationResult, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	results, err := s.engine.Score(userID, profile, candidates)
	if err != nil {
		return nil, fmt.Errorf("score user %s: %w", userID, err)
	}

	if err := s.results.SaveBatch(ctx, userID, results); err != nil {
		return nil, fmt.Errorf("save recommendations for %s: %w", userID, err)
	}
	s.invalidate(ctx, userID)

	events.Emit(ctx, s.publisher, s.log, events.RecommendationsUpdated, map[string]any{
		"userId": userID,
		"count":  len(results),
	})
	return results, nil
}

// loadProfile falls back to an empty profile when the user has none.
func (s *Service) loadProfile(ctx context.Context, userID string) (model.SearchProfile, error) {
	p, err := s.profiles.FindByUserID(ctx, userID)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return model.EmptyProfile(userID), nil
	case err != nil:
		return model.SearchProfile{}, fmt.Errorf("load profile %s: %w", userID, err)
	case p == nil:
		return model.EmptyProfile(userID), nil
	}
	return *p, nil
}

// RecomputeSummary reports a full recomputation. ProcessedUsers counts every
// user that was attempted, including failures.
type RecomputeSummary struct {
	ProcessedUsers int           `json:"processedUsers"`
	Succeeded      int           `json:"succeeded"`
	Failed         int           `json:"failed"`
	Took           time.Duration `json:"took"`
}

// RecomputeAll regenerates recommendations for every user with alerts
// enabled. Candidates are loaded once and users are processed one at a time;
// a failing user is logged and the loop moves on.
func (s *Service) RecomputeAll(ctx context.Context) (RecomputeSummary, error) {
	start := time.Now()
	var summary RecomputeSummary

	candidates, err := s.candidates.FindCandidates(ctx, s.limit)
	if err != nil {
		return summary, fmt.Errorf("load candidates: %w", err)
	}
	if len(candidates) == 0 {
		s.log.Info("no candidate listings, skipping recomputation")
		return summary, nil
	}

	userIDs, err := s.profiles.FindAlertUserIDs(ctx)
	if err != nil {
		return summary, fmt.Errorf("load opted-in users: %w", err)
	}

	s.log.Info("recomputation started", zap.Int("users", len(userIDs)), zap.Int("candidates", len(candidates)))
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			s.finish(&summary, start)
			return summary, err
		}
		summary.ProcessedUsers++
		if _, err := s.generateFor(ctx, userID, candidates); err != nil {
			summary.Failed++
			s.log.Error("recommendation generation failed", zap.String("user_id", userID), zap.Error(err))
			continue
		}
		summary.Succeeded++
	}
	s.finish(&summary, start)

	s.log.Info("recomputation complete",
		zap.Int("processed", summary.ProcessedUsers),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Duration("took", summary.Took))
	return summary, nil
}

func (s *Service) finish(summary *RecomputeSummary, start time.Time) {
	summary.Took = time.Since(start)
	if s.recorder != nil {
		s.recorder.RecordRecompute(summary.Succeeded, summary.Failed, summary.Took)
	}
}

// GetUserRecommendations returns one page of the user's set, best first.
func (s *Service) GetUserRecommendations(ctx context.Context, userID string, page int) (model.Page[model.RecommendationResult], error) {
	all, err := s.findAll(ctx, userID)
	if err != nil {
		return model.Page[model.RecommendationResult]{}, err
	}
	return model.Paginate(all, page), nil
}

func (s *Service) findAll(ctx context.Context, userID string) ([]model.RecommendationResult, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.log.Warn("recommendation cache read failed", zap.String("user_id", userID), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	gen := s.generation(userID)
	all, err := s.results.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load recommendations for %s: %w", userID, err)
	}

	if s.cache != nil && s.generation(userID) == gen {
		if err := s.cache.Set(ctx, userID, all); err != nil {
			s.log.Warn("recommendation cache write failed", zap.String("user_id", userID), zap.Error(err))
		}
		// An invalidation that landed while Set was in flight may have run
		// before it; drop the entry again.
		if s.generation(userID) != gen {
			s.dropCached(ctx, userID)
		}
	}
	return all, nil
}

// GetRecommendationReason explains why jobID was recommended to userID.
func (s *Service) GetRecommendationReason(ctx context.Context, userID, jobID string) (model.RecommendationReason, error) {
	r, err := s.results.FindSpecificMatch(ctx, userID, jobID)
	if err != nil {
		return model.RecommendationReason{}, err
	}
	return r.Reason(), nil
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	s.genMu.Lock()
	s.generations[userID]++
	s.genMu.Unlock()
	s.dropCached(ctx, userID)
}

func (s *Service) generation(userID string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[userID]
}

func (s *Service) dropCached(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warn("recommendation cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
}
