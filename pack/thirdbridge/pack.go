// Package thirdbridge provides the Third Bridge expert insight tools.
package thirdbridge

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aiera-inc/aiera-mcp/domain/pack"
	"github.com/aiera-inc/aiera-mcp/domain/tool"
	"github.com/aiera-inc/aiera-mcp/infrastructure/aiera"
	"github.com/aiera-inc/aiera-mcp/pack/internal/toolkit"
)

// FindThirdBridgeEndpoint serves both Third Bridge tools.
const FindThirdBridgeEndpoint = "/chat-support/find-third-bridge"

// New creates the Third Bridge pack.
func New(deps toolkit.Deps) *pack.Pack {
	return pack.NewBuilder(string(tool.CategoryThirdBridge)).
		WithDescription("Third Bridge expert insight events").
		AddTools(
			findEventsTool(deps),
			getEventTool(deps),
		).
		Build()
}

type findEventsArgs struct {
	toolkit.Envelope
	toolkit.DateRange
	toolkit.Filters
	toolkit.Page
}

func findEventsTool(deps toolkit.Deps) tool.Tool {
	return tool.NewBuilder("find_third_bridge_events").
		WithDisplayName("Find Third Bridge Events").
		WithDescription("Find expert insight events from Third Bridge filtered by date range and optional filters. To find events for multiple companies provide a comma-separated list of bloomberg_tickers; you do not need to make multiple calls.").
		WithCategory(tool.CategoryThirdBridge).
		WithInputSchema(tool.SchemaFor[findEventsArgs]()).
		ReadOnly().
		WithHandler(toolkit.Handler(deps, "find_third_bridge_events", func(ctx context.Context, call *toolkit.Call, input json.RawMessage) (tool.Result, error) {
			args := findEventsArgs{Page: call.DefaultPage()}
			if err := toolkit.Decode(input, &args); err != nil {
				return tool.Result{}, err
			}
			if err := args.Filters.Correct(call); err != nil {
				return tool.Result{}, err
			}

			q := toolkit.NewQuery().
				Dates(args.DateRange).
				Filters(args.Filters).
				Page(args.Page).
				SetBool("include_transcripts", false)

			return call.Forward(ctx, aiera.Request{
				Method:           http.MethodGet,
				Endpoint:         FindThirdBridgeEndpoint,
				Query:            q.Values(),
				SkipInstructions: args.ExcludeInstructions,
			})
		})).
		MustBuild()
}

type getEventArgs struct {
	toolkit.Envelope
	EventID string `json:"thirdbridge_event_id" jsonschema:"required" jsonschema_description:"Unique identifier for the Third Bridge event. Obtained from find_third_bridge_events results." validate:"required"`
}

func getEventTool(deps toolkit.Deps) tool.Tool {
	return tool.NewBuilder("get_third_bridge_event").
		WithDisplayName("Get Third Bridge Event").
		WithDescription("Get detailed information about a specific Third Bridge expert insight event including its transcript. If you need more than one event make multiple sequential calls.").
		WithCategory(tool.CategoryThirdBridge).
		WithInputSchema(tool.SchemaFor[getEventArgs]()).
		ReadOnly().
		WithTimeout(120).
		WithHandler(toolkit.Handler(deps, "get_third_bridge_event", func(ctx context.Context, call *toolkit.Call, input json.RawMessage) (tool.Result, error) {
			var args getEventArgs
			if err := toolkit.Decode(input, &args); err != nil {
				return tool.Result{}, err
			}

			q := toolkit.NewQuery().
				Set("event_ids", args.EventID).
				SetBool("include_transcripts", true)

			return call.Forward(ctx, aiera.Request{
				Method:           http.MethodGet,
				Endpoint:         FindThirdBridgeEndpoint,
				Query:            q.Values(),
				SkipInstructions: args.ExcludeInstructions,
			})
		})).
		MustBuild()
}
