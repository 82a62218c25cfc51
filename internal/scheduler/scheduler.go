// Package scheduler wires up the cron jobs that periodically ingest every
// enabled job source and recompute recommendations for opted-in users.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"jobmate/jobboard-service/internal/ingestion"
	"jobmate/jobboard-service/internal/recommend"
)

// Ingester runs one ingestion cycle over all enabled sources.
type Ingester interface {
	IngestAllEnabled(ctx context.Context) ([]ingestion.RunResult, error)
}

// Recomputer regenerates recommendations for every opted-in user.
type Recomputer interface {
	RecomputeAll(ctx context.Context) (recommend.RecomputeSummary, error)
}

// Scheduler wraps robfig/cron and manages the ingest and recompute loops.
// There are no retries: a failed cycle is retried by the next tick.
type Scheduler struct {
	cron          *cron.Cron
	ingester      Ingester
	recomputer    Recomputer
	ingestSpec    string // cron spec, e.g. "@every 6h"
	recomputeSpec string
	log           *zap.Logger
}

// New creates a Scheduler that ingests every ingestHours hours and
// recomputes every recomputeHours hours.
func New(ingester Ingester, recomputer Recomputer, ingestHours, recomputeHours int, log *zap.Logger) (*Scheduler, error) {
	if ingestHours <= 0 || recomputeHours <= 0 {
		return nil, fmt.Errorf("scheduler intervals must be positive, got %dh and %dh", ingestHours, recomputeHours)
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("scheduler")
	cl := cronLogger{log.Sugar()}
	return &Scheduler{
		cron:          cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		ingester:      ingester,
		recomputer:    recomputer,
		ingestSpec:    fmt.Sprintf("@every %dh", ingestHours),
		recomputeSpec: fmt.Sprintf("@every %dh", recomputeHours),
		log:           log,
	}, nil
}

// Start registers the jobs and starts the scheduler. Also runs one ingestion
// immediately so the catalogue is populated without waiting for the first
// tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.ingestSpec, func() { s.RunIngest(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc ingest: %w", err)
	}
	if _, err := s.cron.AddFunc(s.recomputeSpec, func() { s.RunRecompute(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc recompute: %w", err)
	}

	s.cron.Start()
	s.log.Info("cron started", zap.String("ingest", s.ingestSpec), zap.String("recompute", s.recomputeSpec))

	go s.RunIngest(ctx)
	return nil
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("cron stopped")
}

// RunIngest runs one ingestion cycle and logs its outcome.
func (s *Scheduler) RunIngest(ctx context.Context) {
	results, err := s.ingester.IngestAllEnabled(ctx)
	if err != nil {
		s.log.Error("ingestion cycle failed", zap.Error(err))
		return
	}
	var saved, failed int
	for _, r := range results {
		saved += r.Saved
		if r.Err != nil {
			failed++
		}
	}
	s.log.Info("ingestion cycle done",
		zap.Int("sources", len(results)),
		zap.Int("failed_sources", failed),
		zap.Int("saved", saved))
}

// RunRecompute runs one recomputation pass and logs its outcome.
func (s *Scheduler) RunRecompute(ctx context.Context) {
	summary, err := s.recomputer.RecomputeAll(ctx)
	if err != nil {
		s.log.Error("recomputation failed", zap.Error(err))
		return
	}
	s.log.Info("recomputation done",
		zap.Int("processed", summary.ProcessedUsers),
		zap.Int("failed", summary.Failed))
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
