package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"jobmate/jobboard-service/internal/model"
)

const (
	ProviderAdzuna = "ADZUNA"

	adzunaBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	adzunaPageSize = 50
	adzunaMaxPages = 3 // max 150 results per source per run
)

// AdzunaCredentials identify the application against the Adzuna API.
type AdzunaCredentials struct {
	AppID   string
	AppKey  string
	Country string // "fr", "gb", "us", …
}

// AdzunaFetcher pages through the Adzuna search API. The source url is the
// search endpoint without the page segment, optionally carrying what/where
// query parameters, e.g. https://api.adzuna.com/v1/api/jobs/gb/search?what=golang.
// Without credentials FetchJobs returns a failed batch and logs a warning.
type AdzunaFetcher struct {
	creds AdzunaCredentials
	http  httpGetter
}

// NewAdzunaFetcher constructs a fetcher with a shared HTTP client.
func NewAdzunaFetcher(creds AdzunaCredentials, opts Options) *AdzunaFetcher {
	if creds.Country == "" {
		creds.Country = "fr"
	}
	return &AdzunaFetcher{creds: creds, http: newGetter(ProviderAdzuna, opts)}
}

// adzunaResponse mirrors the top-level Adzuna JSON response.
type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
	Count   int            `json:"count"`
}

type adzunaResult struct {
	ID           flexString     `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Company      adzunaName     `json:"company"`
	Location     adzunaName     `json:"location"`
	Category     adzunaCategory `json:"category"`
	SalaryMin    float64        `json:"salary_min"`
	SalaryMax    float64        `json:"salary_max"`
	RedirectURL  string         `json:"redirect_url"`
	Created      string         `json:"created"`
	ContractTime string         `json:"contract_time"`
}

type adzunaName struct {
	DisplayName string `json:"display_name"`
}

type adzunaCategory struct {
	Label string `json:"label"`
}

// FetchJobs retrieves up to adzunaMaxPages pages, stopping at the first short page.
// A failing page ends the run but keeps what earlier pages returned.
func (f *AdzunaFetcher) FetchJobs(ctx context.Context, searchURL string) Batch {
	if f.creds.AppID == "" || f.creds.AppKey == "" {
		f.http.log.Warn("ADZUNA_APP_ID / ADZUNA_APP_KEY not set, skipping fetch")
		return Batch{Jobs: []model.RawJob{}, Failed: true}
	}

	jobs := make([]model.RawJob, 0)
	for page := 1; page <= adzunaMaxPages; page++ {
		endpoint, err := f.pageURL(searchURL, page)
		if err != nil {
			return f.http.fail(searchURL, err)
		}

		batch, err := f.fetchPage(ctx, endpoint)
		if err != nil {
			if page == 1 {
				return f.http.fail(searchURL, err)
			}
			f.http.log.Warn("adzuna page failed, keeping earlier pages",
				zap.Int("page", page), zap.Error(err))
			break
		}
		jobs = append(jobs, batch...)
		if len(batch) < adzunaPageSize {
			break
		}
	}
	return Batch{Jobs: jobs}
}

func (f *AdzunaFetcher) pageURL(searchURL string, page int) (string, error) {
	base := strings.TrimSpace(searchURL)
	if base == "" {
		base = fmt.Sprintf("%s/%s/search", adzunaBaseURL, f.creds.Country)
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: parse url: %v", model.ErrFetchFailed, err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strconv.Itoa(page)

	params := u.Query()
	params.Set("app_id", f.creds.AppID)
	params.Set("app_key", f.creds.AppKey)
	params.Set("results_per_page", strconv.Itoa(adzunaPageSize))
	params.Set("content-type", "application/json")
	if params.Get("sort_by") == "" {
		params.Set("sort_by", "date")
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

func (f *AdzunaFetcher) fetchPage(ctx context.Context, endpoint string) ([]model.RawJob, error) {
	body, err := f.http.get(ctx, endpoint, "application/json")
	if err != nil {
		return nil, err
	}

	var apiResp adzunaResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: json unmarshal: %v", model.ErrFetchFailed, err)
	}

	jobs := make([]model.RawJob, 0, len(apiResp.Results))
	for _, r := range apiResp.Results {
		jobs = append(jobs, model.RawJob{
			ExternalID:  string(r.ID),
			Title:       r.Title,
			Company:     r.Company.DisplayName,
			URL:         r.RedirectURL,
			Location:    r.Location.DisplayName,
			Category:    r.Category.Label,
			Salary:      formatSalary(r.SalaryMin, r.SalaryMax),
			Description: r.Description,
			PublishedAt: parseFeedTime(r.Created),
		})
	}
	return jobs, nil
}

func formatSalary(lo, hi float64) string {
	switch {
	case lo > 0 && hi > 0 && hi != lo:
		return fmt.Sprintf("%.0f - %.0f", lo, hi)
	case lo > 0:
		return fmt.Sprintf("%.0f", lo)
	case hi > 0:
		return fmt.Sprintf("%.0f", hi)
	}
	return ""
}
