package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"jobmate/jobboard-service/internal/cache"
	"jobmate/jobboard-service/internal/catalog"
	"jobmate/jobboard-service/internal/config"
	"jobmate/jobboard-service/internal/db"
	"jobmate/jobboard-service/internal/events"
	"jobmate/jobboard-service/internal/feed"
	"jobmate/jobboard-service/internal/ingestion"
	"jobmate/jobboard-service/internal/metrics"
	"jobmate/jobboard-service/internal/preferences"
	"jobmate/jobboard-service/internal/recommend"
	"jobmate/jobboard-service/internal/store"
	"jobmate/jobboard-service/internal/tracker"
)

// app holds the connections and services shared by every command.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	pool    *pgxpool.Pool
	rdb     *redis.Client
	metrics *metrics.Metrics

	ingestion   *ingestion.Service
	recommend   *recommend.Service
	catalog     *catalog.Service
	preferences *preferences.Service
	tracker     *tracker.Service
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log, metrics: metrics.New()}

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Info("connecting to PostgreSQL")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	a.pool = pool
	log.Info("PostgreSQL connected")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Info("connecting to Redis")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	a.rdb = rdb
	log.Info("Redis connected")

	engine, err := recommend.NewEngine(recommend.Weights{
		Role:     cfg.WeightRole,
		Location: cfg.WeightLocation,
		Keywords: cfg.WeightKeywords,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("scoring weights: %w", err)
	}

	publisher := events.NewRedisPublisher(rdb)
	sources := store.NewSources(pool)
	listings := store.NewListings(pool)
	profiles := store.NewProfiles(pool)

	fetchers := feed.NewDefaultRegistry(feed.Options{
		Timeout:   cfg.FetchTimeout,
		UserAgent: cfg.UserAgent,
		Logger:    log,
		Recorder:  a.metrics,
	}, feed.AdzunaCredentials{
		AppID:   cfg.AdzunaAppID,
		AppKey:  cfg.AdzunaAppKey,
		Country: cfg.AdzunaCountry,
	})
	log.Debug("feed providers registered", zap.Strings("providers", fetchers.Providers()))

	a.ingestion = ingestion.NewService(ingestion.Deps{
		Sources:   sources,
		Listings:  listings,
		Fetchers:  fetchers,
		Publisher: publisher,
		Recorder:  a.metrics,
		Logger:    log,
		RedFlags:  cfg.RedFlags,
	})
	a.recommend = recommend.NewService(recommend.Deps{
		Engine:         engine,
		Profiles:       profiles,
		Candidates:     listings,
		Results:        store.NewRecommendations(pool),
		Cache:          cache.NewRecommendations(rdb, cfg.RecommendationCacheTTL),
		Publisher:      publisher,
		Recorder:       a.metrics,
		Logger:         log,
		CandidateLimit: cfg.CandidateLimit,
	})
	a.catalog = catalog.NewService(listings, log)
	a.preferences = preferences.NewService(profiles, log)
	a.tracker = tracker.NewService(store.NewApplications(pool), publisher, log)
	return a, nil
}

// Close releases the database and Redis connections.
func (a *app) Close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Warn("redis close failed", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func (a *app) pingPostgres(ctx context.Context) error { return a.pool.Ping(ctx) }

func (a *app) pingRedis(ctx context.Context) error { return a.rdb.Ping(ctx).Err() }
