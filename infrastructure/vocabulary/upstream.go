package vocabulary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/aiera-inc/aiera-mcp/domain/vocabulary"
	"github.com/aiera-inc/aiera-mcp/infrastructure/aiera"
)

// Endpoints serving the open company-document vocabularies.
const (
	CategoriesEndpoint = "/chat-support/get-company-doc-categories"
	KeywordsEndpoint   = "/chat-support/get-company-doc-keywords"
)

// Upstream paging defaults.
const (
	DefaultPageSize    = 100
	DefaultMaxPages    = 20
	DefaultConcurrency = 4
)

// Fetcher performs one raw API request.
type Fetcher interface {
	Fetch(ctx context.Context, req aiera.Request) (json.RawMessage, error)
}

// UpstreamSource loads categories and keywords from the Aiera API. Each
// endpoint returns a page of name to document-count pairs; values are
// ordered by descending count, then by name.
type UpstreamSource struct {
	fetcher     Fetcher
	pageSize    int
	maxPages    int
	concurrency int
}

// UpstreamOption configures an UpstreamSource.
type UpstreamOption func(*UpstreamSource)

// WithPageSize sets the page size requested from the API.
func WithPageSize(n int) UpstreamOption {
	return func(s *UpstreamSource) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithMaxPages bounds the pages read per endpoint.
func WithMaxPages(n int) UpstreamOption {
	return func(s *UpstreamSource) {
		if n > 0 {
			s.maxPages = n
		}
	}
}

// WithConcurrency bounds in-flight page requests.
func WithConcurrency(n int) UpstreamOption {
	return func(s *UpstreamSource) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewUpstreamSource creates a source over the given fetcher.
func NewUpstreamSource(fetcher Fetcher, opts ...UpstreamOption) *UpstreamSource {
	s := &UpstreamSource{
		fetcher:     fetcher,
		pageSize:    DefaultPageSize,
		maxPages:    DefaultMaxPages,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name identifies the source.
func (s *UpstreamSource) Name() string {
	return "upstream"
}

// Load fetches both vocabularies concurrently. Either failing fails the load.
func (s *UpstreamSource) Load(ctx context.Context) (map[vocabulary.Kind][]string, error) {
	var categories, keywords []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = s.loadEndpoint(gctx, CategoriesEndpoint)
		return err
	})
	g.Go(func() error {
		var err error
		keywords, err = s.loadEndpoint(gctx, KeywordsEndpoint)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: upstream: %w", vocabulary.ErrSourceUnavailable, err)
	}

	return map[vocabulary.Kind][]string{
		vocabulary.KindCategory: categories,
		vocabulary.KindKeyword:  keywords,
	}, nil
}

type countPage struct {
	Response struct {
		Pagination struct {
			TotalPages int `json:"total_pages"`
		} `json:"pagination"`
		Data json.RawMessage `json:"data"`
	} `json:"response"`
}

// loadEndpoint reads page 1 to learn the page count, then the remaining
// pages in parallel.
func (s *UpstreamSource) loadEndpoint(ctx context.Context, endpoint string) ([]string, error) {
	counts := make(map[string]int)
	var mu sync.Mutex

	first, err := s.fetchPage(ctx, endpoint, 1)
	if err != nil {
		return nil, err
	}
	mergeCounts(counts, first.counts)

	pages := min(first.totalPages, s.maxPages)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for page := 2; page <= pages; page++ {
		g.Go(func() error {
			p, err := s.fetchPage(gctx, endpoint, page)
			if err != nil {
				return err
			}
			mu.Lock()
			mergeCounts(counts, p.counts)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return rankByCount(counts), nil
}

type page struct {
	totalPages int
	counts     map[string]int
}

func (s *UpstreamSource) fetchPage(ctx context.Context, endpoint string, n int) (page, error) {
	body, err := s.fetcher.Fetch(ctx, aiera.Request{
		Method:   http.MethodGet,
		Endpoint: endpoint,
		Query: url.Values{
			"page":      {strconv.Itoa(n)},
			"page_size": {strconv.Itoa(s.pageSize)},
		},
	})
	if err != nil {
		return page{}, err
	}

	var doc countPage
	if err := json.Unmarshal(body, &doc); err != nil {
		return page{}, fmt.Errorf("%w: %s: %w", aiera.ErrInvalidResponse, endpoint, err)
	}

	out := page{totalPages: doc.Response.Pagination.TotalPages, counts: map[string]int{}}
	data := bytes.TrimSpace(doc.Response.Data)
	// An empty result set is sent as a list rather than an object.
	if len(data) == 0 || data[0] != '{' {
		return out, nil
	}
	if err := json.Unmarshal(data, &out.counts); err != nil {
		return page{}, fmt.Errorf("%w: %s: %w", aiera.ErrInvalidResponse, endpoint, err)
	}
	return out, nil
}

func mergeCounts(dst, src map[string]int) {
	for name, n := range src {
		dst[name] += n
	}
}

func rankByCount(counts map[string]int) []string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

var _ vocabulary.Source = (*UpstreamSource)(nil)
