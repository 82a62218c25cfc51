package ingestion_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"jobmate/jobboard-service/internal/feed"
	"jobmate/jobboard-service/internal/model"
)

type memSources struct {
	mu    sync.Mutex
	byID  map[string]model.JobSource
	saves int
}

func newMemSources(sources ...model.JobSource) *memSources {
	m := &memSources{byID: map[string]model.JobSource{}}
	for _, s := range sources {
		m.byID[s.ID] = s
	}
	return m
}

func (m *memSources) FindByID(_ context.Context, id string) (*model.JobSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return nil, model.ErrSourceNotFound
	}
	return &s, nil
}

func (m *memSources) FindByURL(_ context.Context, url string) (*model.JobSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.byID {
		if s.BaseURL == url {
			s := s
			return &s, nil
		}
	}
	return nil, model.ErrSourceNotFound
}

func (m *memSources) FindAll(context.Context) ([]model.JobSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.JobSource, 0, len(m.byID))
	for _, s := range m.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memSources) FindAllEnabled(ctx context.Context) ([]model.JobSource, error) {
	all, _ := m.FindAll(ctx)
	out := all[:0]
	for _, s := range all {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSources) Save(_ context.Context, s *model.JobSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[s.ID] = *s
	m.saves++
	return nil
}

func (m *memSources) get(id string) model.JobSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id]
}

type memListings struct {
	mu       sync.Mutex
	rows     map[string]model.JobListing
	failSave map[string]bool
}

func newMemListings() *memListings {
	return &memListings{rows: map[string]model.JobListing{}, failSave: map[string]bool{}}
}

func listingKey(sourceID, externalID string) string { return sourceID + "|" + externalID }

func (m *memListings) Exists(_ context.Context, sourceID, externalID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[listingKey(sourceID, externalID)]
	return ok, nil
}

func (m *memListings) Save(_ context.Context, l *model.JobListing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave[l.ExternalID] {
		return errors.New("insert failed")
	}
	m.rows[listingKey(l.SourceID, l.ExternalID)] = *l
	return nil
}

func (m *memListings) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// staticFetcher returns the same batch for every url. With failed set it
// reports an unreadable feed.
type staticFetcher struct {
	jobs   []model.RawJob
	failed bool
	calls  []string
}

func (f *staticFetcher) FetchJobs(_ context.Context, url string) feed.Batch {
	f.calls = append(f.calls, url)
	if f.failed {
		return feed.Batch{Jobs: []model.RawJob{}, Failed: true}
	}
	out := make([]model.RawJob, len(f.jobs))
	copy(out, f.jobs)
	return feed.Batch{Jobs: out}
}

type mapResolver map[string]feed.Fetcher

func (r mapResolver) Get(provider string) (feed.Fetcher, error) {
	f, ok := r[provider]
	if !ok {
		return nil, fmt.Errorf("no fetcher for %s: %w", provider, model.ErrNotFound)
	}
	return f, nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	channels []string
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, _ map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	return nil
}
