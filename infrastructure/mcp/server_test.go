package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aiera-inc/aiera-mcp/domain/tool"
	aieramcp "github.com/aiera-inc/aiera-mcp/infrastructure/mcp"
)

type eventArgs struct {
	EventID int64 `json:"event_id" jsonschema:"required,description=Aiera event ID"`
}

func testTools(t *testing.T) []tool.Tool {
	t.Helper()

	echo := tool.NewBuilder("get_event").
		WithDescription("Fetch one event").
		WithCategory(tool.CategoryEvents).
		WithInputSchema(tool.SchemaFor[eventArgs]()).
		ReadOnly().
		WithHandler(func(_ context.Context, input json.RawMessage) (tool.Result, error) {
			return tool.NewResult(input), nil
		}).
		MustBuild()

	failing := tool.NewBuilder("delete_transcrippet").
		WithDescription("Delete a transcrippet").
		WithCategory(tool.CategoryTranscrippets).
		Destructive().
		WithHandler(func(context.Context, json.RawMessage) (tool.Result, error) {
			return tool.Result{}, errors.New("upstream refused")
		}).
		MustBuild()

	panicking := tool.NewBuilder("find_events").
		WithCategory(tool.CategoryEvents).
		ReadOnly().
		WithHandler(func(context.Context, json.RawMessage) (tool.Result, error) {
			panic("boom")
		}).
		MustBuild()

	return []tool.Tool{echo, failing, panicking}
}

func connect(t *testing.T, srv *aieramcp.Server) *client.Client {
	t.Helper()

	c, err := client.NewInProcessClient(srv.MCPServer())
	if err != nil {
		t.Fatalf("NewInProcessClient() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	init := mcp.InitializeRequest{}
	init.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	init.Params.ClientInfo = mcp.Implementation{Name: "test", Version: "0.0.0"}
	if _, err := c.Initialize(ctx, init); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return c
}

func call(t *testing.T, c *client.Client, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := c.CallTool(context.Background(), req)
	if err != nil {
		t.Fatalf("CallTool(%s) error = %v", name, err)
	}
	return res
}

func text(res *mcp.CallToolResult) string {
	var parts []string
	for _, content := range res.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "")
}

func TestServer_BindAndList(t *testing.T) {
	t.Parallel()

	srv := aieramcp.NewServer(aieramcp.ServerConfig{Name: "aiera-mcp", Version: "test"})
	srv.Bind(testTools(t)...)

	if diff := cmp.Diff([]string{"get_event", "delete_transcrippet", "find_events"}, srv.Bound()); diff != "" {
		t.Errorf("Bound() mismatch (-want +got):\n%s", diff)
	}

	c := connect(t, srv)
	listed, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	if err != nil {
		t.Fatalf("ListTools() error = %v", err)
	}

	byName := make(map[string]mcp.Tool)
	for _, tl := range listed.Tools {
		byName[tl.Name] = tl
	}
	if len(byName) != 3 {
		t.Fatalf("listed %d tools, want 3", len(byName))
	}

	get := byName["get_event"]
	if get.Description != "Fetch one event" {
		t.Errorf("description = %q", get.Description)
	}
	if get.Annotations.ReadOnlyHint == nil || !*get.Annotations.ReadOnlyHint {
		t.Error("get_event not marked read-only")
	}
	del := byName["delete_transcrippet"]
	if del.Annotations.DestructiveHint == nil || !*del.Annotations.DestructiveHint {
		t.Error("delete_transcrippet not marked destructive")
	}
}

func TestServer_CallTool(t *testing.T) {
	t.Parallel()

	srv := aieramcp.NewServer(aieramcp.ServerConfig{Name: "aiera-mcp", Version: "test"})
	srv.Bind(testTools(t)...)
	c := connect(t, srv)

	t.Run("success", func(t *testing.T) {
		res := call(t, c, "get_event", map[string]any{"event_id": 42})
		if res.IsError {
			t.Fatalf("IsError = true: %s", text(res))
		}
		if got := text(res); got != `{"event_id":42}` {
			t.Errorf("text = %s, want echoed args", got)
		}
	})

	t.Run("handler error", func(t *testing.T) {
		res := call(t, c, "delete_transcrippet", map[string]any{"transcrippet_id": "x"})
		if !res.IsError {
			t.Fatal("IsError = false, want error result")
		}
		if !strings.Contains(text(res), "upstream refused") {
			t.Errorf("text = %s, want handler error", text(res))
		}
	})

	t.Run("panic recovered", func(t *testing.T) {
		res := call(t, c, "find_events", nil)
		if !res.IsError {
			t.Fatal("IsError = false after panic")
		}
	})
}

func TestMiddleware_Timeout(t *testing.T) {
	t.Parallel()

	slow := tool.NewBuilder("search_transcripts").
		WithCategory(tool.CategorySearch).
		ReadOnly().
		WithHandler(func(ctx context.Context, _ json.RawMessage) (tool.Result, error) {
			select {
			case <-ctx.Done():
				return tool.Result{}, ctx.Err()
			case <-time.After(5 * time.Second):
				return tool.NewResult(json.RawMessage(`{}`)), nil
			}
		}).
		MustBuild()

	srv := aieramcp.NewServer(aieramcp.ServerConfig{
		Name:       "aiera-mcp",
		Version:    "test",
		Middleware: aieramcp.DefaultMiddleware(20 * time.Millisecond),
	})
	srv.Bind(slow)
	c := connect(t, srv)

	res := call(t, c, "search_transcripts", map[string]any{"search": "margins"})
	if !res.IsError || !strings.Contains(text(res), context.DeadlineExceeded.Error()) {
		t.Errorf("result = %+v, want deadline error", res)
	}
}

func TestServe_UnknownTransport(t *testing.T) {
	t.Parallel()

	srv := aieramcp.NewServer(aieramcp.ServerConfig{Name: "aiera-mcp", Version: "test"})
	err := srv.Serve(context.Background(), "carrier-pigeon", ":0")
	if !errors.Is(err, aieramcp.ErrUnknownTransport) {
		t.Errorf("Serve() error = %v, want ErrUnknownTransport", err)
	}
}

func TestServeStreamableHTTP_StopsOnCancel(t *testing.T) {
	t.Parallel()

	srv := aieramcp.NewServer(aieramcp.ServerConfig{Name: "aiera-mcp", Version: "test"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ServeStreamableHTTP(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ServeStreamableHTTP() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestDefinition(t *testing.T) {
	t.Parallel()

	def := aieramcp.Definition(testTools(t)[0])
	raw, err := json.Marshal(def)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(raw), `"event_id"`) {
		t.Errorf("definition %s does not carry the input schema", raw)
	}
}
