// Package search provides semantic search over transcripts and filings.
package search

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aiera-inc/aiera-mcp/domain/correction"
	"github.com/aiera-inc/aiera-mcp/domain/pack"
	"github.com/aiera-inc/aiera-mcp/domain/tool"
	"github.com/aiera-inc/aiera-mcp/infrastructure/aiera"
	"github.com/aiera-inc/aiera-mcp/pack/internal/toolkit"
)

// Upstream endpoints.
const (
	TranscriptsEndpoint = "/chat-support/search/transcripts"
	FilingsEndpoint     = "/chat-support/search/filings"
)

// New creates the search pack.
func New(deps toolkit.Deps) *pack.Pack {
	return pack.NewBuilder(string(tool.CategorySearch)).
		WithDescription("Semantic search over event transcripts and SEC filings").
		AddTools(
			searchTranscriptsTool(deps),
			searchFilingsTool(deps),
		).
		Build()
}

type transcriptsArgs struct {
	toolkit.Envelope
	Search            string `json:"search" jsonschema:"required" jsonschema_description:"Search query text for semantic search against transcripts." validate:"required"`
	EventIDs          string `json:"event_ids,omitempty" jsonschema_description:"Comma-separated event IDs to search within. Use find_events to obtain valid IDs."`
	EquityIDs         string `json:"equity_ids,omitempty" jsonschema_description:"Comma-separated equity IDs to filter by. Use find_equities to obtain valid IDs."`
	toolkit.OptionalDates
	TranscriptSection string `json:"transcript_section,omitempty" jsonschema:"enum=presentation,enum=q_and_a" jsonschema_description:"Filter by transcript section."`
	EventType         string `json:"event_type,omitempty" jsonschema:"enum=earnings,enum=presentation,enum=shareholder_meeting,enum=investor_meeting,enum=special_situation,default=earnings" jsonschema_description:"Filter by event type."`
	toolkit.Page
}

type transcriptsBody struct {
	Search            string  `json:"search"`
	EventIDs          []int64 `json:"event_ids,omitempty"`
	EquityIDs         []int64 `json:"equity_ids,omitempty"`
	StartDate         string  `json:"start_date,omitempty"`
	EndDate           string  `json:"end_date,omitempty"`
	TranscriptSection string  `json:"transcript_section,omitempty"`
	EventType         string  `json:"event_type,omitempty"`
	Page              int     `json:"page"`
	PageSize          int     `json:"page_size"`
}

func searchTranscriptsTool(deps toolkit.Deps) tool.Tool {
	return tool.NewBuilder("search_transcripts").
		WithDisplayName("Search Transcripts").
		WithDescription("Perform a semantic search against event transcripts. Results carry speaker attribution and transcript-level citations.").
		WithCategory(tool.CategorySearch).
		WithInputSchema(tool.SchemaFor[transcriptsArgs]()).
		ReadOnly().
		WithTimeout(90).
		WithHandler(toolkit.Handler(deps, "search_transcripts", func(ctx context.Context, call *toolkit.Call, input json.RawMessage) (tool.Result, error) {
			args := transcriptsArgs{EventType: "earnings", Page: call.DefaultPage()}
			if err := toolkit.Decode(input, &args); err != nil {
				return tool.Result{}, err
			}
			eventIDs, err := call.CorrectIDs("event_ids", args.EventIDs)
			if err != nil {
				return tool.Result{}, err
			}
			equityIDs, err := call.CorrectIDs("equity_ids", args.EquityIDs)
			if err != nil {
				return tool.Result{}, err
			}
			if err := call.Correct(correction.KindTranscriptSection, "transcript_section", &args.TranscriptSection); err != nil {
				return tool.Result{}, err
			}
			if err := call.Correct(correction.KindEventType, "event_type", &args.EventType); err != nil {
				return tool.Result{}, err
			}

			return call.Forward(ctx, aiera.Request{
				Method:   http.MethodPost,
				Endpoint: TranscriptsEndpoint,
				Body: transcriptsBody{
					Search:            strings.TrimSpace(args.Search),
					EventIDs:          eventIDs,
					EquityIDs:         equityIDs,
					StartDate:         args.StartDate,
					EndDate:           args.EndDate,
					TranscriptSection: args.TranscriptSection,
					EventType:         args.EventType,
					Page:              args.Page.Page,
					PageSize:          args.PageSize,
				},
				SkipInstructions: args.ExcludeInstructions,
			})
		})).
		MustBuild()
}

type filingsArgs struct {
	toolkit.Envelope
	Search      string `json:"search" jsonschema:"required" jsonschema_description:"Search query text for semantic search against SEC filings." validate:"required"`
	FilingIDs   string `json:"filing_ids,omitempty" jsonschema_description:"Comma-separated filing IDs to search within. Use find_filings to obtain valid IDs."`
	EquityIDs   string `json:"equity_ids,omitempty" jsonschema_description:"Comma-separated equity IDs to filter by. Use find_equities to obtain valid IDs."`
	FilingTypes string `json:"filing_types,omitempty" jsonschema_description:"Comma-separated filing types to filter by (e.g. '10-K,10-Q,8-K')."`
	toolkit.OptionalDates
	toolkit.Page
}

type filingsBody struct {
	Search      string   `json:"search"`
	FilingIDs   []int64  `json:"filing_ids,omitempty"`
	EquityIDs   []int64  `json:"equity_ids,omitempty"`
	FilingTypes []string `json:"filing_types,omitempty"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	Page        int      `json:"page"`
	PageSize    int      `json:"page_size"`
}

func searchFilingsTool(deps toolkit.Deps) tool.Tool {
	return tool.NewBuilder("search_filings").
		WithDisplayName("Search Filings").
		WithDescription("Perform a semantic search against SEC filings, optionally narrowed to specific filings, equities, filing types or dates.").
		WithCategory(tool.CategorySearch).
		WithInputSchema(tool.SchemaFor[filingsArgs]()).
		ReadOnly().
		WithTimeout(90).
		WithHandler(toolkit.Handler(deps, "search_filings", func(ctx context.Context, call *toolkit.Call, input json.RawMessage) (tool.Result, error) {
			args := filingsArgs{Page: call.DefaultPage()}
			if err := toolkit.Decode(input, &args); err != nil {
				return tool.Result{}, err
			}
			filingIDs, err := call.CorrectIDs("filing_ids", args.FilingIDs)
			if err != nil {
				return tool.Result{}, err
			}
			equityIDs, err := call.CorrectIDs("equity_ids", args.EquityIDs)
			if err != nil {
				return tool.Result{}, err
			}

			return call.Forward(ctx, aiera.Request{
				Method:   http.MethodPost,
				Endpoint: FilingsEndpoint,
				Body: filingsBody{
					Search:      strings.TrimSpace(args.Search),
					FilingIDs:   filingIDs,
					EquityIDs:   equityIDs,
					FilingTypes: splitTypes(args.FilingTypes),
					StartDate:   args.StartDate,
					EndDate:     args.EndDate,
					Page:        args.Page.Page,
					PageSize:    args.PageSize,
				},
				SkipInstructions: args.ExcludeInstructions,
			})
		})).
		MustBuild()
}

func splitTypes(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
