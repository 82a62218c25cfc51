package feed

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"jobmate/jobboard-service/internal/model"
)

const (
	ProviderRemotive   = "REMOTIVE"
	remotiveDefaultURL = "https://remotive.com/api/remote-jobs"
)

// JSONFetcher reads the Remotive remote-jobs API.
type JSONFetcher struct {
	http httpGetter
}

// NewJSONFetcher constructs a fetcher with a shared HTTP client.
func NewJSONFetcher(opts Options) *JSONFetcher {
	return &JSONFetcher{http: newGetter(ProviderRemotive, opts)}
}

// remotiveResponse mirrors the top-level Remotive JSON response.
type remotiveResponse struct {
	JobCount int           `json:"job-count"`
	Jobs     []remotiveJob `json:"jobs"`
}

type remotiveJob struct {
	ID                        flexString `json:"id"`
	URL                       string     `json:"url"`
	Title                     string     `json:"title"`
	CompanyName               string     `json:"company_name"`
	Category                  string     `json:"category"`
	JobType                   string     `json:"job_type"`
	Location                  string     `json:"location"`
	CandidateRequiredLocation string     `json:"candidate_required_location"`
	Salary                    string     `json:"salary"`
	Description               string     `json:"description"`
	PublicationDate           string     `json:"publication_date"`
}

// FetchJobs returns the postings at url, or at the public API when url is empty.
func (f *JSONFetcher) FetchJobs(ctx context.Context, url string) Batch {
	url = cmp.Or(strings.TrimSpace(url), remotiveDefaultURL)

	body, err := f.http.get(ctx, url, "application/json")
	if err != nil {
		return f.http.fail(url, err)
	}

	var resp remotiveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return f.http.fail(url, fmt.Errorf("%w: json unmarshal: %v", model.ErrFetchFailed, err))
	}

	jobs := make([]model.RawJob, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		jobs = append(jobs, model.RawJob{
			ExternalID:  string(j.ID),
			Title:       j.Title,
			Company:     j.CompanyName,
			URL:         j.URL,
			Location:    cmp.Or(strings.TrimSpace(j.Location), strings.TrimSpace(j.CandidateRequiredLocation), model.DefaultLocation),
			Category:    j.Category,
			Salary:      j.Salary,
			WorkMode:    j.JobType,
			Description: j.Description,
			PublishedAt: parseFeedTime(j.PublicationDate),
		})
	}
	return Batch{Jobs: jobs}
}

// flexString accepts both JSON strings and JSON numbers.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

var feedTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// parseFeedTime returns the zero time when s matches none of the known layouts.
func parseFeedTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range feedTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
