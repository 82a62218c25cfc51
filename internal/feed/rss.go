package feed

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"jobmate/jobboard-service/internal/model"
)

const ProviderWWR = "WWR"

// RSSFetcher reads WeWorkRemotely-style RSS feeds (rss > channel > item).
type RSSFetcher struct {
	http httpGetter
}

// NewRSSFetcher constructs a fetcher with a shared HTTP client.
func NewRSSFetcher(opts Options) *RSSFetcher {
	return &RSSFetcher{http: newGetter(ProviderWWR, opts)}
}

// FetchJobs parses every item of the feed at url.
func (f *RSSFetcher) FetchJobs(ctx context.Context, url string) Batch {
	body, err := f.http.get(ctx, url, "application/rss+xml, application/xml, text/xml")
	if err != nil {
		return f.http.fail(url, err)
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return f.http.fail(url, fmt.Errorf("%w: parse feed: %v", model.ErrFetchFailed, err))
	}

	jobs := make([]model.RawJob, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		job := model.RawJob{
			ExternalID:  cmp.Or(strings.TrimSpace(item.GUID), strings.TrimSpace(item.Link)),
			Title:       strings.TrimSpace(item.Title),
			Company:     cmp.Or(CompanyFromTitle(item.Title), model.DefaultCompany),
			URL:         strings.TrimSpace(item.Link),
			Location:    model.DefaultLocation,
			Description: item.Description,
		}
		if len(item.Categories) > 0 {
			job.Category = strings.TrimSpace(item.Categories[0])
		}
		if item.PublishedParsed != nil {
			job.PublishedAt = item.PublishedParsed.UTC()
		} else {
			job.PublishedAt = parseFeedTime(item.Published)
		}
		jobs = append(jobs, job)
	}
	return Batch{Jobs: jobs}
}

// CompanyFromTitle returns the text after the last " at " in title, trimmed.
// Titles like "Senior Dev at Acme" yield "Acme"; titles without the marker
// yield "".
func CompanyFromTitle(title string) string {
	i := strings.LastIndex(title, " at ")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(title[i+len(" at "):])
}
