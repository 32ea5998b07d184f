// Package indexes provides the stock index and watchlist tools.
package indexes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/aiera-inc/aiera-mcp/domain/pack"
	"github.com/aiera-inc/aiera-mcp/domain/tool"
	"github.com/aiera-inc/aiera-mcp/infrastructure/aiera"
	"github.com/aiera-inc/aiera-mcp/pack/internal/toolkit"
)

// Upstream endpoints. The constituent endpoints take the id as a path suffix.
const (
	AvailableIndexesEndpoint      = "/chat-support/available-indexes"
	IndexConstituentsEndpoint     = "/chat-support/index-constituents/"
	AvailableWatchlistsEndpoint   = "/chat-support/available-watchlists"
	WatchlistConstituentsEndpoint = "/chat-support/watchlist-constituents/"
)

// New creates the indexes and watchlists pack.
func New(deps toolkit.Deps) *pack.Pack {
	return pack.NewBuilder(string(tool.CategoryIndexesWatchlists)).
		WithDescription("Stock market indexes and watchlists").
		AddTools(
			listTool(deps, "get_available_indexes", "Get Available Indexes",
				"Retrieve all available stock market indexes with their IDs, names and descriptions. Use this to find valid index_id values for other tools.",
				AvailableIndexesEndpoint),
			getIndexConstituentsTool(deps),
			listTool(deps, "get_available_watchlists", "Get Available Watchlists",
				"Retrieve all available watchlists with their IDs, names and descriptions. Use this to find valid watchlist_id values for other tools.",
				AvailableWatchlistsEndpoint),
			getWatchlistConstituentsTool(deps),
		).
		Build()
}

type listArgs struct {
	toolkit.Envelope
}

func listTool(deps toolkit.Deps, name, title, desc, endpoint string) tool.Tool {
	return tool.NewBuilder(name).
		WithDisplayName(title).
		WithDescription(desc).
		WithCategory(tool.CategoryIndexesWatchlists).
		WithInputSchema(tool.SchemaFor[listArgs]()).
		ReadOnly().
		WithHandler(toolkit.Handler(deps, name, func(ctx context.Context, call *toolkit.Call, input json.RawMessage) (tool.Result, error) {
			var args listArgs
			if err := toolkit.Decode(input, &args); err != nil {
				return tool.Result{}, err
			}
			return call.Forward(ctx, aiera.Request{
				Method:           http.MethodGet,
				Endpoint:         endpoint,
				SkipInstructions: args.ExcludeInstructions,
			})
		})).
		MustBuild()
}

type indexConstituentsArgs struct {
	toolkit.Envelope
	Index string `json:"index" jsonschema:"required" jsonschema_description:"Index ID or short name (e.g. 'SP500'). Use get_available_indexes to find valid values." validate:"required"`
	toolkit.Page
}

func getIndexConstituentsTool(deps toolkit.Deps) tool.Tool {
	return tool.NewBuilder("get_index_constituents").
		WithDisplayName("Get Index Constituents").
		WithDescription("Get all equities within a specific stock market index.").
		WithCategory(tool.CategoryIndexesWatchlists).
		WithInputSchema(tool.SchemaFor[indexConstituentsArgs]()).
		ReadOnly().
		WithHandler(toolkit.Handler(deps, "get_index_constituents", func(ctx context.Context, call *toolkit.Call, input json.RawMessage) (tool.Result, error) {
			args := indexConstituentsArgs{Page: call.DefaultPage()}
			if err := toolkit.Decode(input, &args); err != nil {
				return tool.Result{}, err
			}
			return call.Forward(ctx, aiera.Request{
				Method:           http.MethodGet,
				Endpoint:         IndexConstituentsEndpoint + url.PathEscape(args.Index),
				Query:            toolkit.NewQuery().Page(args.Page).Values(),
				SkipInstructions: args.ExcludeInstructions,
			})
		})).
		MustBuild()
}

type watchlistConstituentsArgs struct {
	toolkit.Envelope
	WatchlistID toolkit.ID `json:"watchlist_id" jsonschema:"required" jsonschema_description:"ID of the watchlist. Use get_available_watchlists to find valid IDs." validate:"required"`
	toolkit.Page
}

func getWatchlistConstituentsTool(deps toolkit.Deps) tool.Tool {
	return tool.NewBuilder("get_watchlist_constituents").
		WithDisplayName("Get Watchlist Constituents").
		WithDescription("Get all equities within a specific watchlist.").
		WithCategory(tool.CategoryIndexesWatchlists).
		WithInputSchema(tool.SchemaFor[watchlistConstituentsArgs]()).
		ReadOnly().
		WithHandler(toolkit.Handler(deps, "get_watchlist_constituents", func(ctx context.Context, call *toolkit.Call, input json.RawMessage) (tool.Result, error) {
			args := watchlistConstituentsArgs{Page: call.DefaultPage()}
			if err := toolkit.Decode(input, &args); err != nil {
				return tool.Result{}, err
			}
			return call.Forward(ctx, aiera.Request{
				Method:           http.MethodGet,
				Endpoint:         WatchlistConstituentsEndpoint + args.WatchlistID.String(),
				Query:            toolkit.NewQuery().Page(args.Page).Values(),
				SkipInstructions: args.ExcludeInstructions,
			})
		})).
		MustBuild()
}
