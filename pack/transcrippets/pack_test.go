package transcrippets

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/aiera-inc/aiera-mcp/infrastructure/aiera"
	"github.com/aiera-inc/aiera-mcp/pack/internal/toolkit"
)

func TestAddPublicURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "list",
			body: `[{"transcrippet_guid":"abc","id":1},{"id":2}]`,
			want: `[{"id":1,"public_url":"https://public.aiera.com/shared/transcrippet.html?id=abc","transcrippet_guid":"abc"},{"id":2}]`,
		},
		{
			name: "single object",
			body: `{"transcrippet_guid":"xyz"}`,
			want: `{"public_url":"https://public.aiera.com/shared/transcrippet.html?id=xyz","transcrippet_guid":"xyz"}`,
		},
		{
			name: "nested response",
			body: `{"response":[{"transcrippet_guid":"g1"}]}`,
			want: `{"response":[{"public_url":"https://public.aiera.com/shared/transcrippet.html?id=g1","transcrippet_guid":"g1"}]}`,
		},
		{
			name: "empty guid untouched",
			body: `{"transcrippet_guid":""}`,
			want: `{"transcrippet_guid":""}`,
		},
		{
			name: "other shape untouched",
			body: `"ok"`,
			want: `"ok"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := AddPublicURLs(json.RawMessage(tt.body))
			if diff := cmp.Diff(tt.want, string(got)); diff != "" {
				t.Errorf("AddPublicURLs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

type stubFetcher struct {
	body json.RawMessage
}

func (f stubFetcher) Do(ctx context.Context, req aiera.Request) (json.RawMessage, error) {
	return f.Fetch(ctx, req)
}

func (f stubFetcher) Fetch(context.Context, aiera.Request) (json.RawMessage, error) {
	return f.body, nil
}

func (f stubFetcher) Wrap(body json.RawMessage, additional ...string) (json.RawMessage, error) {
	return aiera.Wrap(body, time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC), additional...)
}

func TestFindTool_WrapsTransformedBody(t *testing.T) {
	t.Parallel()

	p := New(toolkit.Deps{Client: stubFetcher{body: json.RawMessage(`[{"transcrippet_guid":"abc"}]`)}})
	find, ok := p.GetTool("find_transcrippets")
	if !ok {
		t.Fatal("find_transcrippets not in pack")
	}

	res, err := find.Execute(context.Background(), json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var env struct {
		Instructions []string `json:"instructions"`
		Response     []struct {
			PublicURL string `json:"public_url"`
		} `json:"response"`
	}
	if err := json.Unmarshal(res.Output, &env); err != nil {
		t.Fatalf("output is not an envelope: %v", err)
	}
	if len(env.Instructions) == 0 {
		t.Error("envelope has no instructions")
	}
	if len(env.Response) != 1 || env.Response[0].PublicURL != PublicURLBase+"abc" {
		t.Errorf("response = %+v, want public_url set", env.Response)
	}
}

func TestDeleteTool_Annotations(t *testing.T) {
	t.Parallel()

	p := New(toolkit.Deps{})
	del, _ := p.GetTool("delete_transcrippet")
	if a := del.Annotations(); !a.Destructive || a.ReadOnly {
		t.Errorf("delete_transcrippet annotations = %+v, want destructive and not read-only", a)
	}
	create, _ := p.GetTool("create_transcrippet")
	if a := create.Annotations(); a.Destructive || a.ReadOnly {
		t.Errorf("create_transcrippet annotations = %+v, want a non-destructive write", a)
	}
}
