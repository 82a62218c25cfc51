// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, Load returns an
// error and the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the jobboard service.
type Config struct {
	Port        string
	GRPCPort    string
	DatabaseURL string
	RedisURL    string
	JWTSecret   string // empty: trust gateway-forwarded x-user-id headers

	LogLevel       string
	LogDevelopment bool

	IngestIntervalHours    int
	RecomputeIntervalHours int
	FetchTimeout           time.Duration
	UserAgent              string
	RedFlags               []string // ingestion blocklist, case-insensitive

	RecommendationCacheTTL time.Duration
	CandidateLimit         int
	WeightRole             float64
	WeightLocation         float64
	WeightKeywords         float64

	AdzunaAppID   string
	AdzunaAppKey  string
	AdzunaCountry string // e.g. "fr", "gb", "us"
}

// Load reads an optional .env file, then the environment, and returns a
// validated Config.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from the given lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	dbURL := getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	p := parser{getenv: getenv}
	cfg := &Config{
		Port:        orDefault(getenv("JOBBOARD_PORT"), "8080"),
		GRPCPort:    orDefault(getenv("GRPC_PORT"), "9090"),
		DatabaseURL: dbURL,
		RedisURL:    redisURL,
		JWTSecret:   getenv("JWT_SECRET"),

		LogLevel:       orDefault(getenv("LOG_LEVEL"), "info"),
		LogDevelopment: p.boolean("LOG_DEVELOPMENT", false),

		IngestIntervalHours:    p.positiveInt("INGEST_INTERVAL_HOURS", 6),
		RecomputeIntervalHours: p.positiveInt("RECOMPUTE_INTERVAL_HOURS", 24),
		FetchTimeout:           time.Duration(p.positiveInt("FETCH_TIMEOUT_SECONDS", 15)) * time.Second,
		UserAgent:              getenv("USER_AGENT"),
		RedFlags:               splitList(getenv("INGEST_RED_FLAGS")),

		RecommendationCacheTTL: time.Duration(p.positiveInt("RECOMMENDATION_CACHE_TTL_MINUTES", 30)) * time.Minute,
		CandidateLimit:         p.positiveInt("CANDIDATE_LIMIT", 100),
		WeightRole:             p.float("SCORING_WEIGHT_ROLE", 0.5),
		WeightLocation:         p.float("SCORING_WEIGHT_LOCATION", 0.5),
		WeightKeywords:         p.float("SCORING_WEIGHT_KEYWORDS", 0),

		AdzunaAppID:   getenv("ADZUNA_APP_ID"),
		AdzunaAppKey:  getenv("ADZUNA_APP_KEY"),
		AdzunaCountry: orDefault(getenv("ADZUNA_COUNTRY"), "fr"),
	}
	if p.err != nil {
		return nil, p.err
	}
	return cfg, nil
}

// parser keeps the first conversion error so Load reports one problem at a time.
type parser struct {
	getenv func(string) string
	err    error
}

func (p *parser) positiveInt(key string, def int) int {
	s := p.getenv(key)
	if s == "" || p.err != nil {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		p.err = fmt.Errorf("%s must be a positive integer, got %q", key, s)
		return def
	}
	return v
}

func (p *parser) float(key string, def float64) float64 {
	s := p.getenv(key)
	if s == "" || p.err != nil {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		p.err = fmt.Errorf("%s must be a non-negative number, got %q", key, s)
		return def
	}
	return v
}

func (p *parser) boolean(key string, def bool) bool {
	s := p.getenv(key)
	if s == "" || p.err != nil {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		p.err = fmt.Errorf("%s must be a boolean, got %q", key, s)
		return def
	}
	return v
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
