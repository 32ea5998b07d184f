// Package events provides the earnings call, conference and corporate event tools.
package events

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aiera-inc/aiera-mcp/domain/correction"
	"github.com/aiera-inc/aiera-mcp/domain/pack"
	"github.com/aiera-inc/aiera-mcp/domain/tool"
	"github.com/aiera-inc/aiera-mcp/infrastructure/aiera"
	"github.com/aiera-inc/aiera-mcp/pack/internal/toolkit"
)

// Upstream endpoints.
const (
	FindEventsEndpoint      = "/chat-support/find-events"
	FindConferencesEndpoint = "/chat-support/find-conferences"
	UpcomingEventsEndpoint  = "/chat-support/estimated-and-upcoming-events"
)

// DefaultEventType is used when the caller omits event_type.
const DefaultEventType = "earnings"

// New creates the events pack.
func New(deps toolkit.Deps) *pack.Pack {
	return pack.NewBuilder(string(tool.CategoryEvents)).
		WithDescription("Earnings calls, conferences and other corporate events").
		AddTools(
			findEventsTool(deps),
			findConferencesTool(deps),
			getEventTool(deps),
			getUpcomingEventsTool(deps),
		).
		Build()
}

type findEventsArgs struct {
	toolkit.Envelope
	toolkit.DateRange
	toolkit.Filters
	EventType string `json:"event_type,omitempty" jsonschema:"enum=earnings,enum=presentation,enum=shareholder_meeting,enum=investor_meeting,enum=special_situation,default=earnings" jsonschema_description:"Type of event to search for. 'presentation' covers conferences and 'special_situation' covers M&A and corporate actions."`
	toolkit.Page
}

func findEventsTool(deps toolkit.Deps) tool.Tool {
	return tool.NewBuilder("find_events").
		WithDisplayName("Find Events").
		WithDescription("Find events filtered by date range and optional company or entity filters. To find events for multiple companies provide a comma-separated list of bloomberg_tickers; you do not need to make multiple calls.").
		WithCategory(tool.CategoryEvents).
		WithInputSchema(tool.SchemaFor[findEventsArgs]()).
		ReadOnly().
		WithHandler(toolkit.Handler(deps, "find_events", func(ctx context.Context, call *toolkit.Call, input json.RawMessage) (tool.Result, error) {
			args := findEventsArgs{EventType: DefaultEventType, Page: call.DefaultPage()}
			if err := toolkit.Decode(input, &args); err != nil {
				return tool.Result{}, err
			}
			if err := args.Filters.Correct(call); err != nil {
				return tool.Result{}, err
			}
			if err := call.Correct(correction.KindEventType, "event_type", &args.EventType); err != nil {
				return tool.Result{}, err
			}

			q := toolkit.NewQuery().
				Dates(args.DateRange).
				Filters(args.Filters).
				Set("event_type", args.EventType).
				Page(args.Page).
				SetBool("include_transcripts", false)

			return call.Forward(ctx, aiera.Request{
				Method:           http.MethodGet,
				Endpoint:         FindEventsEndpoint,
				Query:            q.Values(),
				SkipInstructions: args.ExcludeInstructions,
			})
		})).
		MustBuild()
}

type findConferencesArgs struct {
	toolkit.Envelope
	toolkit.DateRange
	BloombergTicker string `json:"bloomberg_ticker,omitempty" jsonschema_description:"Bloomberg ticker(s) of presenting companies in format 'TICKER:COUNTRY'. For multiple tickers use a comma-separated list without spaces."`
	Search          string `json:"search,omitempty" jsonschema_description:"Text to match against conference titles."`
	toolkit.Page
}

func findConferencesTool(deps toolkit.Deps) tool.Tool {
	return tool.NewBuilder("find_conferences").
		WithDisplayName("Find Conferences").
		WithDescription("Find industry conferences within a date range, optionally filtered by presenting company or title.").
		WithCategory(tool.CategoryEvents).
		WithInputSchema(tool.SchemaFor[findConferencesArgs]()).
		ReadOnly().
		WithHandler(toolkit.Handler(deps, "find_conferences", func(ctx context.Context, call *toolkit.Call, input json.RawMessage) (tool.Result, error) {
			args := findConferencesArgs{Page: call.DefaultPage()}
			if err := toolkit.Decode(input, &args); err != nil {
				return tool.Result{}, err
			}
			if err := call.Correct(correction.KindTicker, "bloomberg_ticker", &args.BloombergTicker); err != nil {
				return tool.Result{}, err
			}

			q := toolkit.NewQuery().
				Dates(args.DateRange).
				Set("bloomberg_ticker", args.BloombergTicker).
				Set("search", args.Search).
				Page(args.Page)

			return call.Forward(ctx, aiera.Request{
				Method:           http.MethodGet,
				Endpoint:         FindConferencesEndpoint,
				Query:            q.Values(),
				SkipInstructions: args.ExcludeInstructions,
			})
		})).
		MustBuild()
}

type getEventArgs struct {
	toolkit.Envelope
	EventID           string `json:"event_id" jsonschema:"required" jsonschema_description:"Unique identifier for the event. Obtained from find_events results." validate:"required"`
	TranscriptSection string `json:"transcript_section,omitempty" jsonschema:"enum=presentation,enum=q_and_a" jsonschema_description:"Filter transcripts by section. Only applicable for earnings events."`
}

func getEventTool(deps toolkit.Deps) tool.Tool {
	return tool.NewBuilder("get_event").
		WithDisplayName("Get Event").
		WithDescription("Get detailed information about a specific event including its transcript. If you need more than one event make multiple sequential calls.").
		WithCategory(tool.CategoryEvents).
		WithInputSchema(tool.SchemaFor[getEventArgs]()).
		ReadOnly().
		WithTimeout(120).
		WithHandler(toolkit.Handler(deps, "get_event", func(ctx context.Context, call *toolkit.Call, input json.RawMessage) (tool.Result, error) {
			var args getEventArgs
			if err := toolkit.Decode(input, &args); err != nil {
				return tool.Result{}, err
			}
			if err := call.Correct(correction.KindProvidedIDs, "event_id", &args.EventID); err != nil {
				return tool.Result{}, err
			}
			if err := call.Correct(correction.KindTranscriptSection, "transcript_section", &args.TranscriptSection); err != nil {
				return tool.Result{}, err
			}

			q := toolkit.NewQuery().
				Set("event_ids", args.EventID).
				Set("transcript_section", args.TranscriptSection).
				SetBool("include_transcripts", true)

			return call.Forward(ctx, aiera.Request{
				Method:           http.MethodGet,
				Endpoint:         FindEventsEndpoint,
				Query:            q.Values(),
				SkipInstructions: args.ExcludeInstructions,
			})
		})).
		MustBuild()
}

type getUpcomingEventsArgs struct {
	toolkit.Envelope
	toolkit.DateRange
	toolkit.Filters
}

func getUpcomingEventsTool(deps toolkit.Deps) tool.Tool {
	return tool.NewBuilder("get_upcoming_events").
		WithDisplayName("Get Upcoming Events").
		WithDescription("Get confirmed and estimated upcoming events within a date range.").
		WithCategory(tool.CategoryEvents).
		WithInputSchema(tool.SchemaFor[getUpcomingEventsArgs]()).
		ReadOnly().
		WithHandler(toolkit.Handler(deps, "get_upcoming_events", func(ctx context.Context, call *toolkit.Call, input json.RawMessage) (tool.Result, error) {
			var args getUpcomingEventsArgs
			if err := toolkit.Decode(input, &args); err != nil {
				return tool.Result{}, err
			}
			if err := args.Filters.Correct(call); err != nil {
				return tool.Result{}, err
			}

			q := toolkit.NewQuery().
				Dates(args.DateRange).
				Filters(args.Filters)

			return call.Forward(ctx, aiera.Request{
				Method:           http.MethodGet,
				Endpoint:         UpcomingEventsEndpoint,
				Query:            q.Values(),
				SkipInstructions: args.ExcludeInstructions,
			})
		})).
		MustBuild()
}
