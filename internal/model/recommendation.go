package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Candidate is the slice of a listing the scoring engine looks at.
type Candidate struct {
	JobID    string `json:"jobId"`
	Category string `json:"category"`
	Location string `json:"location"`
}

// RecommendationResult is one scored (user, job) pair.
type RecommendationResult struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	JobID          string    `json:"jobId"`
	TotalScore     float64   `json:"totalScore"`
	RoleScore      float64   `json:"roleScore"`
	LocationScore  float64   `json:"locationScore"`
	SeniorityScore float64   `json:"seniorityScore"`
	KeywordScore   float64   `json:"keywordScore"`
	Explanation    string    `json:"explanation"`
	ComputedAt     time.Time `json:"computedAt"`
}

// ScoreBreakdown carries the component scores of a recommendation.
type ScoreBreakdown struct {
	Total     float64
	Role      float64
	Location  float64
	Seniority float64
	Keyword   float64
}

// NewRecommendationResult enforces 0 <= total <= 1 and a non-empty explanation.
func NewRecommendationResult(userID, jobID string, s ScoreBreakdown, explanation string, now time.Time) (*RecommendationResult, error) {
	if s.Total < 0 || s.Total > 1 {
		return nil, ErrInvalidRecommendation
	}
	if strings.TrimSpace(explanation) == "" {
		return nil, ErrInvalidRecommendation
	}
	return &RecommendationResult{
		ID:             uuid.NewString(),
		UserID:         userID,
		JobID:          jobID,
		TotalScore:     s.Total,
		RoleScore:      s.Role,
		LocationScore:  s.Location,
		SeniorityScore: s.Seniority,
		KeywordScore:   s.Keyword,
		Explanation:    explanation,
		ComputedAt:     now.UTC(),
	}, nil
}

// RecommendationReason explains a single stored recommendation.
type RecommendationReason struct {
	JobID         string  `json:"jobId"`
	Explanation   string  `json:"explanation"`
	TotalScore    float64 `json:"totalScore"`
	RoleScore     float64 `json:"roleScore"`
	LocationScore float64 `json:"locationScore"`
}

// Reason projects the result onto its explanation view.
func (r RecommendationResult) Reason() RecommendationReason {
	return RecommendationReason{
		JobID:         r.JobID,
		Explanation:   r.Explanation,
		TotalScore:    r.TotalScore,
		RoleScore:     r.RoleScore,
		LocationScore: r.LocationScore,
	}
}
