package model

import (
	"strings"
	"time"
)

const MaxProfileCategories = 10

// SearchProfile holds a user's matching criteria.
type SearchProfile struct {
	UserID        string    `json:"userId"`
	Categories    []string  `json:"categories"`
	Locations     []string  `json:"locations"`
	MinimumSalary int       `json:"minimumSalary"`
	AlertsEnabled bool      `json:"alertsEnabled"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// EmptyProfile is used wherever a user has not saved criteria yet.
func EmptyProfile(userID string) SearchProfile {
	return SearchProfile{UserID: userID, Categories: []string{}, Locations: []string{}}
}

// HasCriteria reports whether the profile names at least one category or location.
func (p SearchProfile) HasCriteria() bool {
	return len(p.Categories) > 0 || len(p.Locations) > 0
}

// Validate enforces the profile invariants.
func (p SearchProfile) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return invalid("profile has no user id")
	}
	if len(p.Categories) > MaxProfileCategories {
		return invalid("at most %d categories are allowed, got %d", MaxProfileCategories, len(p.Categories))
	}
	if p.MinimumSalary < 0 {
		return invalid("minimum salary cannot be negative")
	}
	if p.AlertsEnabled && !p.HasCriteria() {
		return invalid("alerts need at least one category or location")
	}
	return nil
}

// Normalize trims entries and drops blanks and duplicates, keeping order.
func (p *SearchProfile) Normalize() {
	p.Categories = cleanList(p.Categories)
	p.Locations = cleanList(p.Locations)
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
