// Package model defines the domain types shared by the jobboard services,
// together with the constructors that enforce their invariants.
package model

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FeedKind is the wire format a job source publishes.
type FeedKind string

const (
	FeedKindJSON FeedKind = "JSON"
	FeedKindXML  FeedKind = "XML"
)

// ParseFeedKind accepts JSON or XML (case-insensitive). RSS is an alias of XML.
func ParseFeedKind(s string) (FeedKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "JSON":
		return FeedKindJSON, nil
	case "XML", "RSS":
		return FeedKindXML, nil
	}
	return "", invalid("unknown feed kind %q", s)
}

// JobSource is an external feed registered by an administrator.
type JobSource struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	FeedKind       FeedKind   `json:"feedKind"`
	Provider       string     `json:"provider"`
	BaseURL        string     `json:"baseUrl"`
	Enabled        bool       `json:"enabled"`
	LastIngestedAt *time.Time `json:"lastIngestedAt"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// NewJobSource builds an enabled source with a fresh id and an uppercased
// provider key.
func NewJobSource(name string, kind FeedKind, provider, baseURL string, now time.Time) (*JobSource, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("source name is required")
	}
	if kind != FeedKindJSON && kind != FeedKindXML {
		return nil, invalid("unknown feed kind %q", kind)
	}
	provider = strings.ToUpper(strings.TrimSpace(provider))
	if provider == "" {
		return nil, invalid("source provider is required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if !IsHTTPURL(baseURL) {
		return nil, invalid("source url %q is not a valid http(s) url", baseURL)
	}
	return &JobSource{
		ID:        uuid.NewString(),
		Name:      name,
		FeedKind:  kind,
		Provider:  provider,
		BaseURL:   baseURL,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SetEnabled flips the enabled flag. Setting the same state is allowed.
func (s *JobSource) SetEnabled(enabled bool, now time.Time) {
	s.Enabled = enabled
	s.UpdatedAt = now
}

// MarkIngested records the end of an ingestion run.
func (s *JobSource) MarkIngested(now time.Time) {
	s.LastIngestedAt = &now
	s.UpdatedAt = now
}

// IsHTTPURL reports whether raw is an absolute http or https URL with a host.
func IsHTTPURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
