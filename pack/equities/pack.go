// Package equities provides the company and equity lookup tools.
package equities

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
	FindEquitiesEndpoint    = "/chat-support/find-equities"
	EquitySummariesEndpoint = "/chat-support/equity-summaries"
	SectorsEndpoint         = "/chat-support/get-sectors-and-subsectors"
	summaryLookbackDays     = 90
)

// New creates the equities pack.
func New(deps toolkit.Deps) *pack.Pack {
	return pack.NewBuilder(string(tool.CategoryEquities)).
		WithDescription("Companies, equities, sectors and subsectors").
		AddTools(
			findEquitiesTool(deps),
			getEquitySummariesTool(deps),
			getSectorsTool(deps),
		).
		Build()
}

type findEquitiesArgs struct {
	toolkit.Envelope
	BloombergTicker string `json:"bloomberg_ticker,omitempty" jsonschema_description:"Bloomberg ticker(s) in format 'TICKER:COUNTRY' (e.g. 'AAPL:US'). For multiple tickers use a comma-separated list without spaces."`
	ISIN            string `json:"isin,omitempty" jsonschema_description:"International Securities Identification Number(s), comma-separated."`
	RIC             string `json:"ric,omitempty" jsonschema_description:"Reuters Instrument Code(s), comma-separated."`
	Ticker          string `json:"ticker,omitempty" jsonschema_description:"Exchange ticker symbol without country code."`
	PermID          string `json:"permid,omitempty" jsonschema_description:"Refinitiv PermID(s), comma-separated."`
	Search          string `json:"search,omitempty" jsonschema_description:"Company name or partial name to search for."`
	toolkit.Page
}

func findEquitiesTool(deps toolkit.Deps) tool.Tool {
	return tool.NewBuilder("find_equities").
		WithDisplayName("Find Equities").
		WithDescription("Find companies and equities using various identifiers or a search term. To find equities for multiple companies provide a comma-separated list of bloomberg_tickers, isins or rics; you do not need to make multiple calls.").
		WithCategory(tool.CategoryEquities).
		WithInputSchema(tool.SchemaFor[findEquitiesArgs]()).
		ReadOnly().
		WithHandler(toolkit.Handler(deps, "find_equities", func(ctx context.Context, call *toolkit.Call, input json.RawMessage) (tool.Result, error) {
			args := findEquitiesArgs{Page: call.DefaultPage()}
			if err := toolkit.Decode(input, &args); err != nil {
				return tool.Result{}, err
			}
			if err := call.Correct(correction.KindTicker, "bloomberg_ticker", &args.BloombergTicker); err != nil {
				return tool.Result{}, err
			}

			q := toolkit.NewQuery().
				Set("bloomberg_ticker", args.BloombergTicker).
				Set("isin", args.ISIN).
				Set("ric", args.RIC).
				Set("ticker", args.Ticker).
				Set("permid", args.PermID).
				Set("search", args.Search).
				Page(args.Page).
				SetBool("include_company_metadata", true)

			return call.Forward(ctx, aiera.Request{
				Method:           http.MethodGet,
				Endpoint:         FindEquitiesEndpoint,
				Query:            q.Values(),
				SkipInstructions: args.ExcludeInstructions,
			})
		})).
		MustBuild()
}

type getEquitySummariesArgs struct {
	toolkit.Envelope
	BloombergTicker string `json:"bloomberg_ticker" jsonschema:"required" jsonschema_description:"Bloomberg ticker(s) in format 'TICKER:COUNTRY' (e.g. 'AAPL:US'). For multiple tickers use a comma-separated list without spaces." validate:"required"`
}

func getEquitySummariesTool(deps toolkit.Deps) tool.Tool {
	return tool.NewBuilder("get_equity_summaries").
		WithDisplayName("Get Equity Summaries").
		WithDescription("Retrieve detailed summaries of one or more equities: past and upcoming events, company leadership, recent financials and index membership. Provide a comma-separated list of bloomberg_tickers instead of making multiple calls.").
		WithCategory(tool.CategoryEquities).
		WithInputSchema(tool.SchemaFor[getEquitySummariesArgs]()).
		ReadOnly().
		WithHandler(toolkit.Handler(deps, "get_equity_summaries", func(ctx context.Context, call *toolkit.Call, input json.RawMessage) (tool.Result, error) {
			var args getEquitySummariesArgs
			if err := toolkit.Decode(input, &args); err != nil {
				return tool.Result{}, err
			}
			if err := call.Correct(correction.KindTicker, "bloomberg_ticker", &args.BloombergTicker); err != nil {
				return tool.Result{}, err
			}

			q := toolkit.NewQuery().
				Set("bloomberg_ticker", args.BloombergTicker).
				SetInt("lookback", summaryLookbackDays)

			return call.Forward(ctx, aiera.Request{
				Method:           http.MethodGet,
				Endpoint:         EquitySummariesEndpoint,
				Query:            q.Values(),
				SkipInstructions: args.ExcludeInstructions,
			})
		})).
		MustBuild()
}

type getSectorsArgs struct {
	toolkit.Envelope
	Search string `json:"search,omitempty" jsonschema_description:"Text to match against sector and subsector names."`
	toolkit.Page
}

func getSectorsTool(deps toolkit.Deps) tool.Tool {
	return tool.NewBuilder("get_sectors_and_subsectors").
		WithDisplayName("Get Sectors and Subsectors").
		WithDescription("Retrieve sectors and subsectors with their IDs, names and hierarchy. Use this to find valid sector_id and subsector_id values for other tools.").
		WithCategory(tool.CategoryEquities).
		WithInputSchema(tool.SchemaFor[getSectorsArgs]()).
		ReadOnly().
		WithHandler(toolkit.Handler(deps, "get_sectors_and_subsectors", func(ctx context.Context, call *toolkit.Call, input json.RawMessage) (tool.Result, error) {
			args := getSectorsArgs{Page: call.DefaultPage()}
			if err := toolkit.Decode(input, &args); err != nil {
				return tool.Result{}, err
			}

			q := toolkit.NewQuery().
				Set("search", args.Search).
				Page(args.Page)

			return call.Forward(ctx, aiera.Request{
				Method:           http.MethodGet,
				Endpoint:         SectorsEndpoint,
				Query:            q.Values(),
				SkipInstructions: args.ExcludeInstructions,
			})
		})).
		MustBuild()
}
