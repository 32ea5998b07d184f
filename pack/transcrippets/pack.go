// Package transcrippets provides the tools for shareable transcript clips.
package transcrippets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/aiera-inc/aiera-mcp/domain/correction"
	"github.com/aiera-inc/aiera-mcp/domain/pack"
	"github.com/aiera-inc/aiera-mcp/domain/tool"
	"github.com/aiera-inc/aiera-mcp/infrastructure/aiera"
	"github.com/aiera-inc/aiera-mcp/pack/internal/toolkit"
)

// Upstream endpoints.
const (
	FindEndpoint   = "/transcrippets/"
	CreateEndpoint = "/transcrippets/create"
)

// PublicURLBase is the shareable viewer for a transcrippet guid.
const PublicURLBase = "https://public.aiera.com/shared/transcrippet.html?id="

// New creates the transcrippets pack.
func New(deps toolkit.Deps) *pack.Pack {
	return pack.NewBuilder(string(tool.CategoryTranscrippets)).
		WithDescription("Transcrippets: shareable transcript segments").
		AddTools(
			findTool(deps),
			createTool(deps),
			deleteTool(deps),
		).
		Build()
}

type findArgs struct {
	toolkit.Envelope
	TranscrippetID   string `json:"transcrippet_id,omitempty" jsonschema_description:"Transcrippet ID(s), comma-separated."`
	EventID          string `json:"event_id,omitempty" jsonschema_description:"Event ID(s), comma-separated. Use find_events to obtain valid IDs."`
	EquityID         string `json:"equity_id,omitempty" jsonschema_description:"Equity ID(s), comma-separated. Use find_equities to obtain valid IDs."`
	SpeakerID        string `json:"speaker_id,omitempty" jsonschema_description:"Speaker ID(s), comma-separated."`
	TranscriptItemID string `json:"transcript_item_id,omitempty" jsonschema_description:"Transcript item ID(s), comma-separated."`
	CreatedStartDate string `json:"created_start_date,omitempty" jsonschema:"format=date" jsonschema_description:"Only transcrippets created on or after this date (YYYY-MM-DD)." validate:"omitempty,datetime=2006-01-02"`
	CreatedEndDate   string `json:"created_end_date,omitempty" jsonschema:"format=date" jsonschema_description:"Only transcrippets created on or before this date (YYYY-MM-DD)." validate:"omitempty,datetime=2006-01-02"`
}

func (a *findArgs) correct(call *toolkit.Call) error {
	fields := []struct {
		name  string
		value *string
	}{
		{"transcrippet_id", &a.TranscrippetID},
		{"event_id", &a.EventID},
		{"equity_id", &a.EquityID},
		{"speaker_id", &a.SpeakerID},
		{"transcript_item_id", &a.TranscriptItemID},
	}
	for _, f := range fields {
		if err := call.Correct(correction.KindProvidedIDs, f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

func findTool(deps toolkit.Deps) tool.Tool {
	return tool.NewBuilder("find_transcrippets").
		WithDisplayName("Find Transcrippets").
		WithDescription("Find Transcrippets filtered by transcrippet, event, equity, speaker or transcript item IDs and by creation date. Each result carries a public_url that can be shared.").
		WithCategory(tool.CategoryTranscrippets).
		WithInputSchema(tool.SchemaFor[findArgs]()).
		ReadOnly().
		WithHandler(toolkit.Handler(deps, "find_transcrippets", func(ctx context.Context, call *toolkit.Call, input json.RawMessage) (tool.Result, error) {
			var args findArgs
			if err := toolkit.Decode(input, &args); err != nil {
				return tool.Result{}, err
			}
			if err := args.correct(call); err != nil {
				return tool.Result{}, err
			}

			q := toolkit.NewQuery().
				Set("transcrippet_id", args.TranscrippetID).
				Set("event_id", args.EventID).
				Set("equity_id", args.EquityID).
				Set("speaker_id", args.SpeakerID).
				Set("transcript_item_id", args.TranscriptItemID).
				Set("created_start_date", args.CreatedStartDate).
				Set("created_end_date", args.CreatedEndDate)

			return call.Transform(ctx, aiera.Request{
				Method:           http.MethodGet,
				Endpoint:         FindEndpoint,
				Query:            q.Values(),
				SkipInstructions: args.ExcludeInstructions,
			}, AddPublicURLs)
		})).
		MustBuild()
}

type createArgs struct {
	toolkit.Envelope
	EventID                 int64  `json:"event_id" jsonschema:"required" jsonschema_description:"ID of the event the transcript belongs to." validate:"required,min=1"`
	Transcript              string `json:"transcript" jsonschema:"required" jsonschema_description:"Text of the transcript segment." validate:"required"`
	TranscriptItemID        int64  `json:"transcript_item_id" jsonschema:"required" jsonschema_description:"ID of the transcript item where the segment starts." validate:"required,min=1"`
	TranscriptItemOffset    int    `json:"transcript_item_offset" jsonschema:"required,minimum=0" jsonschema_description:"Character offset within the starting item." validate:"min=0"`
	TranscriptEndItemID     int64  `json:"transcript_end_item_id" jsonschema:"required" jsonschema_description:"ID of the transcript item where the segment ends." validate:"required,min=1"`
	TranscriptEndItemOffset int    `json:"transcript_end_item_offset" jsonschema:"required,minimum=0" jsonschema_description:"Character offset within the ending item." validate:"min=0"`
	CompanyID               *int64 `json:"company_id,omitempty" jsonschema_description:"Company the transcrippet is attributed to."`
	EquityID                *int64 `json:"equity_id,omitempty" jsonschema_description:"Equity the transcrippet is attributed to."`
}

type createBody struct {
	EventID                 int64  `json:"event_id"`
	Transcript              string `json:"transcript"`
	TranscriptItemID        int64  `json:"transcript_item_id"`
	TranscriptItemOffset    int    `json:"transcript_item_offset"`
	TranscriptEndItemID     int64  `json:"transcript_end_item_id"`
	TranscriptEndItemOffset int    `json:"transcript_end_item_offset"`
	CompanyID               *int64 `json:"company_id,omitempty"`
	EquityID                *int64 `json:"equity_id,omitempty"`
}

func createTool(deps toolkit.Deps) tool.Tool {
	return tool.NewBuilder("create_transcrippet").
		WithDisplayName("Create Transcrippet").
		WithDescription("Create a new Transcrippet from a segment of an event transcript. The response carries a public_url that can be shared.").
		WithCategory(tool.CategoryTranscrippets).
		WithInputSchema(tool.SchemaFor[createArgs]()).
		WithHandler(toolkit.Handler(deps, "create_transcrippet", func(ctx context.Context, call *toolkit.Call, input json.RawMessage) (tool.Result, error) {
			var args createArgs
			if err := toolkit.Decode(input, &args); err != nil {
				return tool.Result{}, err
			}

			return call.Transform(ctx, aiera.Request{
				Method:   http.MethodPost,
				Endpoint: CreateEndpoint,
				Body: createBody{
					EventID:                 args.EventID,
					Transcript:              args.Transcript,
					TranscriptItemID:        args.TranscriptItemID,
					TranscriptItemOffset:    args.TranscriptItemOffset,
					TranscriptEndItemID:     args.TranscriptEndItemID,
					TranscriptEndItemOffset: args.TranscriptEndItemOffset,
					CompanyID:               args.CompanyID,
					EquityID:                args.EquityID,
				},
				SkipInstructions: args.ExcludeInstructions,
			}, AddPublicURLs)
		})).
		MustBuild()
}

type deleteArgs struct {
	toolkit.Envelope
	TranscrippetID toolkit.ID `json:"transcrippet_id" jsonschema:"required" jsonschema_description:"ID of the transcrippet to delete." validate:"required"`
}

func deleteTool(deps toolkit.Deps) tool.Tool {
	return tool.NewBuilder("delete_transcrippet").
		WithDisplayName("Delete Transcrippet").
		WithDescription("Delete a Transcrippet by its ID. This cannot be undone.").
		WithCategory(tool.CategoryTranscrippets).
		WithInputSchema(tool.SchemaFor[deleteArgs]()).
		Destructive().
		WithHandler(toolkit.Handler(deps, "delete_transcrippet", func(ctx context.Context, call *toolkit.Call, input json.RawMessage) (tool.Result, error) {
			var args deleteArgs
			if err := toolkit.Decode(input, &args); err != nil {
				return tool.Result{}, err
			}

			return call.Forward(ctx, aiera.Request{
				Method:           http.MethodPost,
				Endpoint:         "/transcrippets/" + url.PathEscape(args.TranscrippetID.String()) + "/delete",
				SkipInstructions: args.ExcludeInstructions,
			})
		})).
		MustBuild()
}

// AddPublicURLs sets public_url on every transcrippet object in body that
// carries a transcrippet_guid. Bodies of any other shape are returned as is.
func AddPublicURLs(body json.RawMessage) json.RawMessage {
	var list []map[string]json.RawMessage
	if err := json.Unmarshal(body, &list); err == nil {
		for _, item := range list {
			addPublicURL(item)
		}
		return remarshal(list, body)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return body
	}
	if addPublicURL(obj) {
		return remarshal(obj, body)
	}
	if inner, ok := obj["response"]; ok {
		obj["response"] = AddPublicURLs(inner)
		return remarshal(obj, body)
	}
	return body
}

func addPublicURL(item map[string]json.RawMessage) bool {
	raw, ok := item["transcrippet_guid"]
	if !ok {
		return false
	}
	var guid string
	if err := json.Unmarshal(raw, &guid); err != nil || guid == "" {
		return false
	}
	link, err := json.Marshal(PublicURLBase + guid)
	if err != nil {
		return false
	}
	item["public_url"] = link
	return true
}

func remarshal(v any, fallback json.RawMessage) json.RawMessage {
	out, err := json.Marshal(v)
	if err != nil {
		return fallback
	}
	return out
}
