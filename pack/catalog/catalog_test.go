package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/aiera-inc/aiera-mcp/domain/correction"
	"github.com/aiera-inc/aiera-mcp/domain/tool"
	"github.com/aiera-inc/aiera-mcp/domain/vocabulary"
	"github.com/aiera-inc/aiera-mcp/infrastructure/aiera"
	"github.com/aiera-inc/aiera-mcp/pack/catalog"
)

type recordingFetcher struct {
	body json.RawMessage
	reqs []aiera.Request
}

func (f *recordingFetcher) Do(ctx context.Context, req aiera.Request) (json.RawMessage, error) {
	body, err := f.Fetch(ctx, req)
	if err != nil || req.SkipInstructions {
		return body, err
	}
	return f.Wrap(body, req.AdditionalInstructions...)
}

func (f *recordingFetcher) Fetch(_ context.Context, req aiera.Request) (json.RawMessage, error) {
	f.reqs = append(f.reqs, req)
	return f.body, nil
}

func (f *recordingFetcher) Wrap(body json.RawMessage, additional ...string) (json.RawMessage, error) {
	return aiera.Wrap(body, time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC), additional...)
}

func newCatalog(t *testing.T, f aiera.Fetcher) *catalog.Catalog {
	t.Helper()

	store := vocabulary.NewStore(vocabulary.NewSnapshot(map[vocabulary.Kind][]string{
		vocabulary.KindTicker:   {"AAPL:US", "MSFT:US", "AMZN:US"},
		vocabulary.KindCategory: {"Annual Report", "Press Release"},
		vocabulary.KindKeyword:  {"guidance", "buyback"},
	}))
	c, err := catalog.New(catalog.Config{
		Client:    f,
		Corrector: correction.NewEngine(store),
	})
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return c
}

func TestCatalog_Table(t *testing.T) {
	t.Parallel()

	c := newCatalog(t, &recordingFetcher{})

	if got := c.Registry.Len(); got != 24 {
		t.Errorf("Registry.Len() = %d, want 24", got)
	}

	var groups []string
	for _, g := range c.Groups {
		groups = append(groups, g.Name)
		if len(g.Members) == 0 {
			t.Errorf("group %q is empty", g.Name)
		}
		for _, m := range g.Members {
			def, ok := c.Registry.Describe(m)
			if !ok {
				t.Fatalf("group %q names unknown tool %q", g.Name, m)
			}
			if string(def.Category()) != g.Name {
				t.Errorf("tool %q in group %q has category %q", m, g.Name, def.Category())
			}
		}
	}
	var categories []string
	for _, cat := range tool.Categories() {
		categories = append(categories, string(cat))
	}
	sort.Strings(groups)
	sort.Strings(categories)
	if diff := cmp.Diff(categories, groups); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}

	var writes, destructive []string
	for _, def := range c.Registry.List() {
		if def.Annotations().Writes() {
			writes = append(writes, def.Name())
		}
		if def.Annotations().Destructive {
			destructive = append(destructive, def.Name())
		}
		if def.InputSchema().IsEmpty() {
			t.Errorf("tool %q has an empty schema", def.Name())
		}
		if def.Description() == "" {
			t.Errorf("tool %q has no description", def.Name())
		}
	}
	if diff := cmp.Diff([]string{"create_transcrippet", "delete_transcrippet"}, writes); diff != "" {
		t.Errorf("writing tools mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"delete_transcrippet"}, destructive); diff != "" {
		t.Errorf("destructive tools mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalog_Schemas(t *testing.T) {
	t.Parallel()

	c := newCatalog(t, &recordingFetcher{})

	tests := []struct {
		tool string
		want []string
	}{
		{"find_events", []string{"exclude_instructions", "start_date", "end_date", "bloomberg_ticker", "watchlist_id", "index_id", "sector_id", "subsector_id", "event_type", "page", "page_size"}},
		{"get_event", []string{"exclude_instructions", "event_id", "transcript_section"}},
		{"get_available_indexes", []string{"exclude_instructions"}},
		{"get_third_bridge_event", []string{"exclude_instructions", "thirdbridge_event_id"}},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			t.Parallel()

			def, ok := c.Registry.Describe(tt.tool)
			if !ok {
				t.Fatalf("tool %q not registered", tt.tool)
			}
			if diff := cmp.Diff(tt.want, def.InputSchema().Properties()); diff != "" {
				t.Errorf("properties mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCatalog_Requests(t *testing.T) {
	t.Parallel()

	dates := `"start_date":"2026-01-01","end_date":"2026-03-31"`

	tests := []struct {
		tool         string
		input        string
		wantMethod   string
		wantEndpoint string
		wantQuery    map[string]string
		wantBody     string
	}{
		{
			tool:         "find_events",
			input:        `{` + dates + `,"bloomberg_ticker":"aapl","event_type":"conference"}`,
			wantMethod:   http.MethodGet,
			wantEndpoint: "/chat-support/find-events",
			wantQuery:    map[string]string{"start_date": "2026-01-01", "end_date": "2026-03-31", "bloomberg_ticker": "AAPL:US", "event_type": "presentation", "page": "1", "page_size": "50", "include_transcripts": "false"},
		},
		{
			tool:         "find_conferences",
			input:        `{` + dates + `,"search":"tech"}`,
			wantMethod:   http.MethodGet,
			wantEndpoint: "/chat-support/find-conferences",
			wantQuery:    map[string]string{"start_date": "2026-01-01", "end_date": "2026-03-31", "search": "tech", "page": "1", "page_size": "50"},
		},
		{
			tool:         "get_event",
			input:        `{"event_id":" 2456 ","transcript_section":"Q&A"}`,
			wantMethod:   http.MethodGet,
			wantEndpoint: "/chat-support/find-events",
			wantQuery:    map[string]string{"event_ids": "2456", "transcript_section": "q_and_a", "include_transcripts": "true"},
		},
		{
			tool:         "get_upcoming_events",
			input:        `{` + dates + `,"watchlist_id":"12"}`,
			wantMethod:   http.MethodGet,
			wantEndpoint: "/chat-support/estimated-and-upcoming-events",
			wantQuery:    map[string]string{"start_date": "2026-01-01", "end_date": "2026-03-31", "watchlist_id": "12"},
		},
		{
			tool:         "find_filings",
			input:        `{` + dates + `,"form_number":"10-K","page":2}`,
			wantMethod:   http.MethodGet,
			wantEndpoint: "/chat-support/find-filings",
			wantQuery:    map[string]string{"start_date": "2026-01-01", "end_date": "2026-03-31", "form_number": "10-K", "page": "2", "page_size": "50"},
		},
		{
			tool:         "get_filing",
			input:        `{"filing_id":"991"}`,
			wantMethod:   http.MethodGet,
			wantEndpoint: "/chat-support/find-filings",
			wantQuery:    map[string]string{"filing_ids": "991", "include_content": "true"},
		},
		{
			tool:         "find_equities",
			input:        `{"search":"apple","page_size":10}`,
			wantMethod:   http.MethodGet,
			wantEndpoint: "/chat-support/find-equities",
			wantQuery:    map[string]string{"search": "apple", "page": "1", "page_size": "10", "include_company_metadata": "true"},
		},
		{
			tool:         "get_equity_summaries",
			input:        `{"bloomberg_ticker":"MSFT US Equity"}`,
			wantMethod:   http.MethodGet,
			wantEndpoint: "/chat-support/equity-summaries",
			wantQuery:    map[string]string{"bloomberg_ticker": "MSFT:US", "lookback": "90"},
		},
		{
			tool:         "get_sectors_and_subsectors",
			input:        `{}`,
			wantMethod:   http.MethodGet,
			wantEndpoint: "/chat-support/get-sectors-and-subsectors",
			wantQuery:    map[string]string{"page": "1", "page_size": "50"},
		},
		{
			tool:         "get_available_indexes",
			input:        `{}`,
			wantMethod:   http.MethodGet,
			wantEndpoint: "/chat-support/available-indexes",
			wantQuery:    map[string]string{},
		},
		{
			tool:         "get_index_constituents",
			input:        `{"index":"SP500"}`,
			wantMethod:   http.MethodGet,
			wantEndpoint: "/chat-support/index-constituents/SP500",
			wantQuery:    map[string]string{"page": "1", "page_size": "50"},
		},
		{
			tool:         "get_available_watchlists",
			input:        `{}`,
			wantMethod:   http.MethodGet,
			wantEndpoint: "/chat-support/available-watchlists",
			wantQuery:    map[string]string{},
		},
		{
			tool:         "get_watchlist_constituents",
			input:        `{"watchlist_id":77}`,
			wantMethod:   http.MethodGet,
			wantEndpoint: "/chat-support/watchlist-constituents/77",
			wantQuery:    map[string]string{"page": "1", "page_size": "50"},
		},
		{
			tool:         "find_company_docs",
			input:        `{` + dates + `,"categories":"annual report","keywords":"guidance"}`,
			wantMethod:   http.MethodGet,
			wantEndpoint: "/chat-support/find-company-docs",
			wantQuery:    map[string]string{"start_date": "2026-01-01", "end_date": "2026-03-31", "categories": "Annual Report", "keywords": "guidance", "page": "1", "page_size": "50"},
		},
		{
			tool:         "get_company_doc",
			input:        `{"company_doc_id":"31"}`,
			wantMethod:   http.MethodGet,
			wantEndpoint: "/chat-support/find-company-docs",
			wantQuery:    map[string]string{"company_doc_ids": "31", "include_content": "true"},
		},
		{
			tool:         "get_company_doc_categories",
			input:        `{"search":"report"}`,
			wantMethod:   http.MethodGet,
			wantEndpoint: "/chat-support/get-company-doc-categories",
			wantQuery:    map[string]string{"search": "report", "page": "1", "page_size": "50"},
		},
		{
			tool:         "get_company_doc_keywords",
			input:        `{}`,
			wantMethod:   http.MethodGet,
			wantEndpoint: "/chat-support/get-company-doc-keywords",
			wantQuery:    map[string]string{"page": "1", "page_size": "50"},
		},
		{
			tool:         "find_third_bridge_events",
			input:        `{` + dates + `}`,
			wantMethod:   http.MethodGet,
			wantEndpoint: "/chat-support/find-third-bridge",
			wantQuery:    map[string]string{"start_date": "2026-01-01", "end_date": "2026-03-31", "page": "1", "page_size": "50", "include_transcripts": "false"},
		},
		{
			tool:         "get_third_bridge_event",
			input:        `{"thirdbridge_event_id":"tb-1"}`,
			wantMethod:   http.MethodGet,
			wantEndpoint: "/chat-support/find-third-bridge",
			wantQuery:    map[string]string{"event_ids": "tb-1", "include_transcripts": "true"},
		},
		{
			tool:         "find_transcrippets",
			input:        `{"event_id":"5,6","created_start_date":"2026-01-01"}`,
			wantMethod:   http.MethodGet,
			wantEndpoint: "/transcrippets/",
			wantQuery:    map[string]string{"event_id": "5,6", "created_start_date": "2026-01-01"},
		},
		{
			tool:         "create_transcrippet",
			input:        `{"event_id":1,"transcript":"hello","transcript_item_id":2,"transcript_item_offset":0,"transcript_end_item_id":3,"transcript_end_item_offset":4}`,
			wantMethod:   http.MethodPost,
			wantEndpoint: "/transcrippets/create",
			wantQuery:    map[string]string{},
			wantBody:     `{"event_id":1,"transcript":"hello","transcript_item_id":2,"transcript_item_offset":0,"transcript_end_item_id":3,"transcript_end_item_offset":4}`,
		},
		{
			tool:         "delete_transcrippet",
			input:        `{"transcrippet_id":"88"}`,
			wantMethod:   http.MethodPost,
			wantEndpoint: "/transcrippets/88/delete",
			wantQuery:    map[string]string{},
		},
		{
			tool:         "search_transcripts",
			input:        `{"search":" margins ","event_ids":"1,2","transcript_section":"qa"}`,
			wantMethod:   http.MethodPost,
			wantEndpoint: "/chat-support/search/transcripts",
			wantQuery:    map[string]string{},
			wantBody:     `{"search":"margins","event_ids":[1,2],"transcript_section":"q_and_a","event_type":"earnings","page":1,"page_size":50}`,
		},
		{
			tool:         "search_filings",
			input:        `{"search":"risk factors","filing_types":"10-k, 8-k"}`,
			wantMethod:   http.MethodPost,
			wantEndpoint: "/chat-support/search/filings",
			wantQuery:    map[string]string{},
			wantBody:     `{"search":"risk factors","filing_types":["10-K","8-K"],"page":1,"page_size":50}`,
		},
	}

	seen := make(map[string]bool)
	for _, tt := range tests {
		seen[tt.tool] = true
		t.Run(tt.tool, func(t *testing.T) {
			t.Parallel()

			fetcher := &recordingFetcher{body: json.RawMessage(`{"ok":true}`)}
			c := newCatalog(t, fetcher)
			def, ok := c.Registry.Describe(tt.tool)
			if !ok {
				t.Fatalf("tool %q not registered", tt.tool)
			}

			if _, err := def.Execute(context.Background(), json.RawMessage(tt.input)); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if len(fetcher.reqs) != 1 {
				t.Fatalf("requests = %d, want 1", len(fetcher.reqs))
			}
			req := fetcher.reqs[0]
			if req.Method != tt.wantMethod {
				t.Errorf("Method = %q, want %q", req.Method, tt.wantMethod)
			}
			if req.Endpoint != tt.wantEndpoint {
				t.Errorf("Endpoint = %q, want %q", req.Endpoint, tt.wantEndpoint)
			}

			got := map[string]string{}
			for k := range req.Query {
				got[k] = req.Query.Get(k)
			}
			if diff := cmp.Diff(tt.wantQuery, got); diff != "" {
				t.Errorf("query mismatch (-want +got):\n%s", diff)
			}

			if tt.wantBody != "" {
				body, err := json.Marshal(req.Body)
				if err != nil {
					t.Fatalf("marshal body: %v", err)
				}
				if string(body) != tt.wantBody {
					t.Errorf("Body = %s, want %s", body, tt.wantBody)
				}
			}
		})
	}

	c := newCatalog(t, &recordingFetcher{})
	for _, name := range c.Registry.Names() {
		if !seen[name] {
			t.Errorf("tool %q has no request case", name)
		}
	}
}

func TestCatalog_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tool  string
		input string
	}{
		{"find_events", `{"start_date":"2026-01-01","end_date":"2026-03-31","page_size":500}`},
		{"find_events", `{"start_date":"2026-01-01","end_date":"2026-03-31","event_type":"webinar"}`},
		{"find_events", `{"end_date":"2026-03-31"}`},
		{"get_event", `{}`},
		{"get_event", `{"event_id":"abc"}`},
		{"get_watchlist_constituents", `{"watchlist_id":"twelve"}`},
		{"search_transcripts", `{"event_ids":"1"}`},
		{"find_transcrippets", `{"created_start_date":"March 1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.tool+"/"+tt.input, func(t *testing.T) {
			t.Parallel()

			fetcher := &recordingFetcher{}
			def, _ := newCatalog(t, fetcher).Registry.Describe(tt.tool)
			_, err := def.Execute(context.Background(), json.RawMessage(tt.input))
			if !errors.Is(err, tool.ErrInvalidInput) {
				t.Fatalf("Execute() error = %v, want ErrInvalidInput", err)
			}
			if len(fetcher.reqs) != 0 {
				t.Errorf("invalid input reached the upstream client")
			}
		})
	}
}

func TestCatalog_ExcludeInstructions(t *testing.T) {
	t.Parallel()

	fetcher := &recordingFetcher{body: json.RawMessage(`{"data":[]}`)}
	def, _ := newCatalog(t, fetcher).Registry.Describe("get_available_indexes")

	res, err := def.Execute(context.Background(), json.RawMessage(`{"exclude_instructions":true}`))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.OutputString() != `{"data":[]}` {
		t.Errorf("Output = %s, want the raw body", res.Output)
	}
}
