package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RawJob is a normalised posting as produced by a feed adapter, before
// validation. Optional fields are empty strings when the feed omits them.
type RawJob struct {
	ExternalID  string    `json:"externalId"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	URL         string    `json:"url"`
	Location    string    `json:"location"`
	Category    string    `json:"category,omitempty"`
	Salary      string    `json:"salary,omitempty"`
	WorkMode    string    `json:"workMode,omitempty"`
	Description string    `json:"description,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

// WorkMode is where the job is performed.
type WorkMode string

const (
	WorkModeRemote WorkMode = "REMOTE"
	WorkModeHybrid WorkMode = "HYBRID"
	WorkModeOnsite WorkMode = "ONSITE"
)

const (
	DefaultCompany  = "Unknown"
	DefaultLocation = "Remote"
)

// JobListing is a validated, persisted posting.
type JobListing struct {
	ID         string    `json:"id"`
	SourceID   string    `json:"sourceId"`
	ExternalID string    `json:"externalId"`
	Title      string    `json:"title"`
	Company    string    `json:"company"`
	Location   string    `json:"location"`
	Category   *string   `json:"category"`
	Salary     *string   `json:"salary"`
	URL        string    `json:"url"`
	WorkMode   WorkMode  `json:"workMode"`
	PostedAt   time.Time `json:"postedAt"`
	IngestedAt time.Time `json:"ingestedAt"`
}

// NewJobListing validates raw and turns it into a listing owned by sourceID.
// A missing or zero publication date falls back to the ingestion time.
func NewJobListing(sourceID string, raw RawJob, now time.Time) (*JobListing, error) {
	externalID := strings.TrimSpace(raw.ExternalID)
	if externalID == "" {
		return nil, invalid("listing has no external id")
	}
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return nil, invalid("listing %s has an empty title", externalID)
	}
	link := strings.TrimSpace(raw.URL)
	if !IsHTTPURL(link) {
		return nil, invalid("listing %s has an invalid url %q", externalID, raw.URL)
	}

	posted := raw.PublishedAt
	if posted.IsZero() {
		posted = now
	}
	location := orDefault(raw.Location, DefaultLocation)

	return &JobListing{
		ID:         uuid.NewString(),
		SourceID:   sourceID,
		ExternalID: externalID,
		Title:      title,
		Company:    orDefault(raw.Company, DefaultCompany),
		Location:   location,
		Category:   optional(raw.Category),
		Salary:     optional(raw.Salary),
		URL:        link,
		WorkMode:   inferWorkMode(raw.WorkMode, location),
		PostedAt:   posted.UTC(),
		IngestedAt: now.UTC(),
	}, nil
}

func inferWorkMode(explicit, location string) WorkMode {
	for _, s := range []string{explicit, location} {
		l := strings.ToLower(s)
		switch {
		case strings.Contains(l, "hybrid"):
			return WorkModeHybrid
		case strings.Contains(l, "remote"), strings.Contains(l, "anywhere"):
			return WorkModeRemote
		case strings.Contains(l, "onsite"), strings.Contains(l, "on-site"), strings.Contains(l, "office"):
			return WorkModeOnsite
		}
	}
	return WorkModeOnsite
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// ListingView is the read model served by job searches.
type ListingView struct {
	JobListing
	SourceName string `json:"sourceName"`
}
