// Package recommend scores candidate listings against a user's search profile
// and maintains the per-user recommendation sets.
package recommend

import (
	"fmt"
	"math"
	"slices"
	"time"

	"jobmate/jobboard-service/internal/model"
)

const weightTolerance = 0.0001

// Weights are the per-dimension multipliers of the total score.
type Weights struct {
	Role     float64
	Location float64
	Keywords float64
}

// DefaultWeights splits the score evenly between role and location.
var DefaultWeights = Weights{Role: 0.5, Location: 0.5, Keywords: 0}

// Engine is a stateless scorer for a fixed set of weights.
type Engine struct {
	weights Weights
	now     func() time.Time
}

// NewEngine fails with model.ErrInvalidWeights unless the weights sum to 1
// within 0.0001.
func NewEngine(w Weights) (*Engine, error) {
	if w.Role < 0 || w.Location < 0 || w.Keywords < 0 {
		return nil, fmt.Errorf("negative weight in %+v: %w", w, model.ErrInvalidWeights)
	}
	if sum := w.Role + w.Location + w.Keywords; math.Abs(sum-1) > weightTolerance {
		return nil, fmt.Errorf("weights sum to %.4f: %w", sum, model.ErrInvalidWeights)
	}
	return &Engine{weights: w, now: time.Now}, nil
}

// Weights returns the engine's weights.
func (e *Engine) Weights() Weights { return e.weights }

// Score produces one result per candidate, in candidate order. Seniority and
// keyword scores are always 0.
func (e *Engine) Score(userID string, profile model.SearchProfile, candidates []model.Candidate) ([]model.RecommendationResult, error) {
	now := e.now()
	results := make([]model.RecommendationResult, 0, len(candidates))
	for _, c := range candidates {
		var role, loc float64
		if slices.Contains(profile.Categories, c.Category) {
			role = 1
		}
		if slices.Contains(profile.Locations, c.Location) {
			loc = 1
		}

		breakdown := model.ScoreBreakdown{
			Total:    round4(role*e.weights.Role + loc*e.weights.Location),
			Role:     role,
			Location: loc,
		}
		r, err := model.NewRecommendationResult(userID, c.JobID, breakdown, explain(role, loc, c), now)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", c.JobID, err)
		}
		results = append(results, *r)
	}
	return results, nil
}

func explain(role, loc float64, c model.Candidate) string {
	switch {
	case role == 1 && loc == 1:
		return fmt.Sprintf("Perfect match for your role in %s.", c.Location)
	case role == 1:
		return fmt.Sprintf("Strong match for your career as a %s.", c.Category)
	default:
		return fmt.Sprintf("Relevant job in %s.", c.Location)
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
