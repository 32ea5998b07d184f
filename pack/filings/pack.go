// Package filings provides the SEC filing tools.
package filings

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

// FindFilingsEndpoint serves both filing tools.
const FindFilingsEndpoint = "/chat-support/find-filings"

// New creates the filings pack.
func New(deps toolkit.Deps) *pack.Pack {
	return pack.NewBuilder(string(tool.CategoryFilings)).
		WithDescription("SEC filings").
		AddTools(
			findFilingsTool(deps),
			getFilingTool(deps),
		).
		Build()
}

type findFilingsArgs struct {
	toolkit.Envelope
	toolkit.DateRange
	toolkit.Filters
	FormNumber string `json:"form_number,omitempty" jsonschema_description:"SEC form number to filter by (e.g. '10-K' or '8-K')."`
	toolkit.Page
}

func findFilingsTool(deps toolkit.Deps) tool.Tool {
	return tool.NewBuilder("find_filings").
		WithDisplayName("Find Filings").
		WithDescription("Find SEC filings filtered by date range and optional filters. To find filings for multiple companies provide a comma-separated list of bloomberg_tickers; you do not need to make multiple calls.").
		WithCategory(tool.CategoryFilings).
		WithInputSchema(tool.SchemaFor[findFilingsArgs]()).
		ReadOnly().
		WithHandler(toolkit.Handler(deps, "find_filings", func(ctx context.Context, call *toolkit.Call, input json.RawMessage) (tool.Result, error) {
			args := findFilingsArgs{Page: call.DefaultPage()}
			if err := toolkit.Decode(input, &args); err != nil {
				return tool.Result{}, err
			}
			if err := args.Filters.Correct(call); err != nil {
				return tool.Result{}, err
			}

			q := toolkit.NewQuery().
				Dates(args.DateRange).
				Filters(args.Filters).
				Set("form_number", args.FormNumber).
				Page(args.Page)

			return call.Forward(ctx, aiera.Request{
				Method:           http.MethodGet,
				Endpoint:         FindFilingsEndpoint,
				Query:            q.Values(),
				SkipInstructions: args.ExcludeInstructions,
			})
		})).
		MustBuild()
}

type getFilingArgs struct {
	toolkit.Envelope
	FilingID string `json:"filing_id" jsonschema:"required" jsonschema_description:"Unique identifier for the filing. Obtained from find_filings results." validate:"required"`
}

func getFilingTool(deps toolkit.Deps) tool.Tool {
	return tool.NewBuilder("get_filing").
		WithDisplayName("Get Filing").
		WithDescription("Get detailed information about a specific SEC filing including its content.").
		WithCategory(tool.CategoryFilings).
		WithInputSchema(tool.SchemaFor[getFilingArgs]()).
		ReadOnly().
		WithTimeout(120).
		WithHandler(toolkit.Handler(deps, "get_filing", func(ctx context.Context, call *toolkit.Call, input json.RawMessage) (tool.Result, error) {
			var args getFilingArgs
			if err := toolkit.Decode(input, &args); err != nil {
				return tool.Result{}, err
			}
			if err := call.Correct(correction.KindProvidedIDs, "filing_id", &args.FilingID); err != nil {
				return tool.Result{}, err
			}

			q := toolkit.NewQuery().
				Set("filing_ids", args.FilingID).
				SetBool("include_content", true)

			return call.Forward(ctx, aiera.Request{
				Method:           http.MethodGet,
				Endpoint:         FindFilingsEndpoint,
				Query:            q.Values(),
				SkipInstructions: args.ExcludeInstructions,
			})
		})).
		MustBuild()
}
