// Package httpapi exposes the jobboard services over a gin REST API.
package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobmate/jobboard-service/internal/catalog"
	"jobmate/jobboard-service/internal/ingestion"
	"jobmate/jobboard-service/internal/metrics"
	"jobmate/jobboard-service/internal/model"
	"jobmate/jobboard-service/internal/preferences"
	"jobmate/jobboard-service/internal/recommend"
	"jobmate/jobboard-service/internal/tracker"
)

// ─── Ports ───────────────────────────────────────────────────────────────────

// SourceAdmin manages job sources.
type SourceAdmin interface {
	ListSources(ctx context.Context) ([]model.JobSource, error)
	Register(ctx context.Context, in ingestion.RegisterSourceInput) (*model.JobSource, error)
	SetEnabled(ctx context.Context, sourceID string, enabled bool) (*model.JobSource, error)
	IngestSource(ctx context.Context, sourceID string) (ingestion.IngestSummary, error)
}

// JobFinder searches the listing catalogue.
type JobFinder interface {
	FindJobs(ctx context.Context, filter catalog.JobFilter, page int) (model.Page[model.ListingView], error)
}

// ProfileManager reads and writes search profiles.
type ProfileManager interface {
	Get(ctx context.Context, userID string) (model.SearchProfile, error)
	Create(ctx context.Context, userID string, in preferences.ProfileInput) (model.SearchProfile, error)
	Update(ctx context.Context, userID string, in preferences.ProfileInput) (model.SearchProfile, error)
	ToggleAlerts(ctx context.Context, userID string, enabled bool) (model.SearchProfile, error)
}

// Recommender computes and serves recommendations.
type Recommender interface {
	Generate(ctx context.Context, userID string) ([]model.RecommendationResult, error)
	RecomputeAll(ctx context.Context) (recommend.RecomputeSummary, error)
	GetUserRecommendations(ctx context.Context, userID string, page int) (model.Page[model.RecommendationResult], error)
	GetRecommendationReason(ctx context.Context, userID, jobID string) (model.RecommendationReason, error)
}

// ApplicationTracker drives the application board.
type ApplicationTracker interface {
	Track(ctx context.Context, userID, jobID string) (*tracker.Application, bool, error)
	MoveStatus(ctx context.Context, userID, appID, newStatus string) (*tracker.Application, error)
	AddNote(ctx context.Context, userID, appID, content string) (*tracker.Application, error)
	List(ctx context.Context, userID, statusFilter string) ([]tracker.Application, error)
	Get(ctx context.Context, userID, appID string) (*tracker.Application, error)
}

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

// Deps groups everything the router serves. Metrics and Checks are optional.
type Deps struct {
	Sources      SourceAdmin
	Jobs         JobFinder
	Profiles     ProfileManager
	Recommender  Recommender
	Applications ApplicationTracker
	Metrics      *metrics.Metrics
	Checks       map[string]HealthCheck
	JWTSecret    string
	Version      string
	Logger       *zap.Logger
}

type handler struct {
	Deps
	log *zap.Logger
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	h := &handler{Deps: d, log: d.Logger.Named("http")}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.log))
	if d.Metrics != nil {
		r.Use(d.Metrics.GinMiddleware())
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	r.GET("/health", h.health)

	api := r.Group("/api/v1", authenticate(d.JWTSecret))

	admin := api.Group("", requireAdmin())
	admin.GET("/job-sources", h.listSources)
	admin.POST("/job-sources", h.registerSource)
	admin.PATCH("/job-sources/:id/enable", h.setSourceEnabled(true))
	admin.PATCH("/job-sources/:id/disable", h.setSourceEnabled(false))
	admin.POST("/job-sources/:id/ingest", h.ingestSource)
	admin.POST("/recommendations/recompute", h.recompute)

	api.GET("/jobs", h.findJobs)

	api.GET("/preferences", h.getPreferences)
	api.POST("/preferences", h.createPreferences)
	api.PUT("/preferences", h.updatePreferences)
	api.PATCH("/preferences/alerts", h.toggleAlerts)

	api.POST("/recommendations/generate", h.generate)
	api.GET("/recommendations", h.listRecommendations)
	api.GET("/recommendations/:jobId/reason", h.recommendationReason)

	api.GET("/applications", h.listApplications)
	api.POST("/applications", h.trackApplication)
	api.GET("/applications/:id", h.getApplication)
	api.POST("/applications/:id/status", h.moveApplication)
	api.POST("/applications/:id/notes", h.addNote)

	return r
}

// health reports liveness plus the state of every registered dependency.
func (h *handler) health(c *gin.Context) {
	checks := make(map[string]string, len(h.Checks))
	healthy := true
	for name, check := range h.Checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		err := check(ctx)
		cancel()
		if err != nil {
			healthy = false
			checks[name] = err.Error()
			continue
		}
		checks[name] = "ok"
	}

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":  status,
		"service": "jobboard-service",
		"version": h.Version,
		"checks":  checks,
	})
}

// requestLogger logs one line per request.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			log.Error("HTTP request with errors", append(fields, zap.Strings("errors", c.Errors.Errors()))...)
			return
		}
		if strings.HasPrefix(c.Request.URL.Path, "/health") || c.Request.URL.Path == "/metrics" {
			log.Debug("HTTP request", fields...)
			return
		}
		log.Info("HTTP request", fields...)
	}
}
