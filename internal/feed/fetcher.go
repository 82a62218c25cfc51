// Package feed implements the adapters that turn external job feeds into
// model.RawJob values.
//
// Fetchers never return errors: a network, status or parse failure is logged,
// recorded, and reported as an empty batch. Ingestion treats "nothing fetched"
// and "fetch failed" the same way.
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"jobmate/jobboard-service/internal/model"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "jobboard-service/1.0 (+https://jobmate.dev)"
	maxBodyBytes     = 10 << 20
)

// Fetcher fetches every posting currently published at url.
type Fetcher interface {
	FetchJobs(ctx context.Context, url string) Batch
}

// Batch is the outcome of one fetch. Failed is set when the feed could not be
// retrieved or parsed at all; Jobs is then empty. The failure has already
// been logged and recorded by the fetcher.
type Batch struct {
	Jobs   []model.RawJob
	Failed bool
}

// FailureRecorder is notified whenever a provider fails to deliver a batch.
type FailureRecorder interface {
	FetchFailed(provider string)
}

type nopRecorder struct{}

func (nopRecorder) FetchFailed(string) {}

// Options configure the HTTP behaviour shared by all fetchers.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Logger    *zap.Logger
	Recorder  FailureRecorder
	Client    *http.Client
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
	if o.Client == nil {
		o.Client = &http.Client{Timeout: o.Timeout}
	}
	return o
}

// httpGetter performs the GET requests of a single provider.
type httpGetter struct {
	provider  string
	client    *http.Client
	userAgent string
	log       *zap.Logger
	recorder  FailureRecorder
}

func newGetter(provider string, opts Options) httpGetter {
	opts = opts.withDefaults()
	return httpGetter{
		provider:  provider,
		client:    opts.Client,
		userAgent: opts.UserAgent,
		log:       opts.Logger.Named("feed").With(zap.String("provider", provider)),
		recorder:  opts.Recorder,
	}
}

func (g httpGetter) get(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", model.ErrFetchFailed, err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: http GET: %v", model.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", model.ErrFetchFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", model.ErrFetchFailed, url, resp.StatusCode)
	}
	return body, nil
}

// fail logs err, records it and returns the failed batch fetchers hand back.
func (g httpGetter) fail(url string, err error) Batch {
	g.log.Warn("feed fetch failed", zap.String("url", url), zap.Error(err))
	g.recorder.FetchFailed(g.provider)
	return Batch{Jobs: []model.RawJob{}, Failed: true}
}

// ─── Registry ────────────────────────────────────────────────────────────────

// Registry resolves the fetcher for a source's provider key.
type Registry struct {
	mu       sync.RWMutex
	fetchers map[string]Fetcher
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: make(map[string]Fetcher)}
}

// NewDefaultRegistry wires the built-in providers.
func NewDefaultRegistry(opts Options, adzuna AdzunaCredentials) *Registry {
	r := NewRegistry()
	remotive := NewJSONFetcher(opts)
	wwr := NewRSSFetcher(opts)
	r.Register(ProviderRemotive, remotive)
	r.Register(ProviderWWR, wwr)
	r.Register("WEWORKREMOTELY", wwr)
	r.Register(ProviderAdzuna, NewAdzunaFetcher(adzuna, opts))
	return r
}

// Register binds provider (case-insensitive) to f, replacing any previous binding.
func (r *Registry) Register(provider string, f Fetcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchers[strings.ToUpper(provider)] = f
}

// Get returns the fetcher bound to provider.
func (r *Registry) Get(provider string) (Fetcher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fetchers[strings.ToUpper(provider)]
	if !ok {
		return nil, fmt.Errorf("no fetcher for provider %q: %w", provider, model.ErrNotFound)
	}
	return f, nil
}

// Providers lists the registered provider keys in sorted order.
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.fetchers))
	for k := range r.fetchers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
