// Package companydocs provides the tools for company-published documents.
package companydocs

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aiera-inc/aiera-mcp/domain/correction"
	"github.com/aiera-inc/aiera-mcp/domain/pack"
	"github.com/aiera-inc/aiera-mcp/domain/tool"
	"github.com/aiera-inc/aiera-mcp/infrastructure/aiera"
	"github.com/aiera-inc/aiera-mcp/infrastructure/vocabulary"
	"github.com/aiera-inc/aiera-mcp/pack/internal/toolkit"
)

// FindCompanyDocsEndpoint serves both document tools.
const FindCompanyDocsEndpoint = "/chat-support/find-company-docs"

// New creates the company documents pack.
func New(deps toolkit.Deps) *pack.Pack {
	return pack.NewBuilder(string(tool.CategoryCompanyDocs)).
		WithDescription("Company-published documents, their categories and keywords").
		AddTools(
			findCompanyDocsTool(deps),
			getCompanyDocTool(deps),
			searchTool(deps, "get_company_doc_categories", "Get Company Doc Categories",
				"Retrieve the categories that can be used to filter company documents, with document counts. Use the results as the categories argument of find_company_docs.",
				vocabulary.CategoriesEndpoint),
			searchTool(deps, "get_company_doc_keywords", "Get Company Doc Keywords",
				"Retrieve the keywords that can be used to filter company documents, with document counts. Use the results as the keywords argument of find_company_docs.",
				vocabulary.KeywordsEndpoint),
		).
		Build()
}

type findCompanyDocsArgs struct {
	toolkit.Envelope
	toolkit.DateRange
	toolkit.Filters
	Categories string `json:"categories,omitempty" jsonschema_description:"Comma-separated document categories (e.g. 'annual_report,press_release'). Use get_company_doc_categories to find valid values."`
	Keywords   string `json:"keywords,omitempty" jsonschema_description:"Comma-separated keywords to filter by. Use get_company_doc_keywords to find valid values."`
	toolkit.Page
}

func findCompanyDocsTool(deps toolkit.Deps) tool.Tool {
	return tool.NewBuilder("find_company_docs").
		WithDisplayName("Find Company Docs").
		WithDescription("Find company-published documents filtered by date range and optional company, category or keyword filters.").
		WithCategory(tool.CategoryCompanyDocs).
		WithInputSchema(tool.SchemaFor[findCompanyDocsArgs]()).
		ReadOnly().
		WithHandler(toolkit.Handler(deps, "find_company_docs", func(ctx context.Context, call *toolkit.Call, input json.RawMessage) (tool.Result, error) {
			args := findCompanyDocsArgs{Page: call.DefaultPage()}
			if err := toolkit.Decode(input, &args); err != nil {
				return tool.Result{}, err
			}
			if err := args.Filters.Correct(call); err != nil {
				return tool.Result{}, err
			}
			if err := call.Correct(correction.KindCategory, "categories", &args.Categories); err != nil {
				return tool.Result{}, err
			}
			if err := call.Correct(correction.KindKeyword, "keywords", &args.Keywords); err != nil {
				return tool.Result{}, err
			}

			q := toolkit.NewQuery().
				Dates(args.DateRange).
				Filters(args.Filters).
				Set("categories", args.Categories).
				Set("keywords", args.Keywords).
				Page(args.Page)

			return call.Forward(ctx, aiera.Request{
				Method:           http.MethodGet,
				Endpoint:         FindCompanyDocsEndpoint,
				Query:            q.Values(),
				SkipInstructions: args.ExcludeInstructions,
			})
		})).
		MustBuild()
}

type getCompanyDocArgs struct {
	toolkit.Envelope
	CompanyDocID string `json:"company_doc_id" jsonschema:"required" jsonschema_description:"Unique identifier for the document. Obtained from find_company_docs results." validate:"required"`
}

func getCompanyDocTool(deps toolkit.Deps) tool.Tool {
	return tool.NewBuilder("get_company_doc").
		WithDisplayName("Get Company Doc").
		WithDescription("Get detailed information about a specific company document including its content.").
		WithCategory(tool.CategoryCompanyDocs).
		WithInputSchema(tool.SchemaFor[getCompanyDocArgs]()).
		ReadOnly().
		WithTimeout(120).
		WithHandler(toolkit.Handler(deps, "get_company_doc", func(ctx context.Context, call *toolkit.Call, input json.RawMessage) (tool.Result, error) {
			var args getCompanyDocArgs
			if err := toolkit.Decode(input, &args); err != nil {
				return tool.Result{}, err
			}
			if err := call.Correct(correction.KindProvidedIDs, "company_doc_id", &args.CompanyDocID); err != nil {
				return tool.Result{}, err
			}

			q := toolkit.NewQuery().
				Set("company_doc_ids", args.CompanyDocID).
				SetBool("include_content", true)

			return call.Forward(ctx, aiera.Request{
				Method:           http.MethodGet,
				Endpoint:         FindCompanyDocsEndpoint,
				Query:            q.Values(),
				SkipInstructions: args.ExcludeInstructions,
			})
		})).
		MustBuild()
}

type searchArgs struct {
	toolkit.Envelope
	Search string `json:"search,omitempty" jsonschema_description:"Text to match against names."`
	toolkit.Page
}

func searchTool(deps toolkit.Deps, name, title, desc, endpoint string) tool.Tool {
	return tool.NewBuilder(name).
		WithDisplayName(title).
		WithDescription(desc).
		WithCategory(tool.CategoryCompanyDocs).
		WithInputSchema(tool.SchemaFor[searchArgs]()).
		ReadOnly().
		WithHandler(toolkit.Handler(deps, name, func(ctx context.Context, call *toolkit.Call, input json.RawMessage) (tool.Result, error) {
			args := searchArgs{Page: call.DefaultPage()}
			if err := toolkit.Decode(input, &args); err != nil {
				return tool.Result{}, err
			}

			q := toolkit.NewQuery().
				Set("search", args.Search).
				Page(args.Page)

			return call.Forward(ctx, aiera.Request{
				Method:           http.MethodGet,
				Endpoint:         endpoint,
				Query:            q.Values(),
				SkipInstructions: args.ExcludeInstructions,
			})
		})).
		MustBuild()
}
