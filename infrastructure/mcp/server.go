// Package mcp hosts the resolved tool set on an MCP server.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aiera-inc/aiera-mcp/domain/config"
	"github.com/aiera-inc/aiera-mcp/domain/tool"
	"github.com/aiera-inc/aiera-mcp/infrastructure/logging"
)

// DefaultEndpointPath is where the streamable HTTP transport is mounted.
const DefaultEndpointPath = "/mcp"

// ErrUnknownTransport is returned by Serve for transports outside the
// supported set.
var ErrUnknownTransport = errors.New("unknown transport")

// ServerConfig configures the MCP server.
type ServerConfig struct {
	// Name is the server name announced to clients.
	Name string

	// Version is the server version.
	Version string

	// Instructions are shown to clients on initialization.
	Instructions string

	// Middleware wraps every tool call, outermost first. Nil uses
	// DefaultMiddleware.
	Middleware []Middleware
}

// Server exposes tools over MCP.
type Server struct {
	srv   *server.MCPServer
	info  ServerConfig
	bound []string
}

// NewServer creates an MCP server with no tools bound.
func NewServer(cfg ServerConfig) *Server {
	chain := cfg.Middleware
	if chain == nil {
		chain = DefaultMiddleware(0)
	}

	opts := []server.ServerOption{
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	}
	if cfg.Instructions != "" {
		opts = append(opts, server.WithInstructions(cfg.Instructions))
	}
	// The first registered middleware is outermost.
	for _, mw := range chain {
		opts = append(opts, server.WithToolHandlerMiddleware(server.ToolHandlerMiddleware(mw)))
	}

	return &Server{
		srv:  server.NewMCPServer(cfg.Name, cfg.Version, opts...),
		info: cfg,
	}
}

// Bind registers tools in order. Binding the same name twice replaces the
// earlier handler.
func (s *Server) Bind(tools ...tool.Tool) {
	for _, t := range tools {
		s.srv.AddTool(Definition(t), handlerFor(t))
		s.bound = append(s.bound, t.Name())
	}
	logging.Info().
		Add(logging.Component("mcp")).
		Add(logging.Count("tools", len(tools))).
		Msg("tools bound")
}

// Bound returns the names of bound tools in bind order.
func (s *Server) Bound() []string {
	return append([]string(nil), s.bound...)
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.srv
}

// Definition converts a tool to its MCP definition with the reflected
// input schema and behavior hints.
func Definition(t tool.Tool) mcp.Tool {
	schema := t.InputSchema()
	raw := schema.Raw()
	if schema.IsEmpty() {
		raw = tool.EmptySchema().Raw()
	}

	def := mcp.NewToolWithRawSchema(t.Name(), t.Description(), raw)
	a := t.Annotations()
	def.Annotations = mcp.ToolAnnotation{
		Title:           t.DisplayName(),
		ReadOnlyHint:    mcp.ToBoolPtr(a.ReadOnly),
		DestructiveHint: mcp.ToBoolPtr(a.Destructive),
		IdempotentHint:  mcp.ToBoolPtr(a.Idempotent),
		OpenWorldHint:   mcp.ToBoolPtr(true),
	}
	return def
}

func handlerFor(t tool.Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		input, err := arguments(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := t.InputSchema().Validate(input); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := t.Execute(ctx, input)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(result.OutputString()), nil
	}
}

func arguments(req mcp.CallToolRequest) (json.RawMessage, error) {
	args := req.Params.Arguments
	if args == nil {
		return json.RawMessage(`{}`), nil
	}
	if raw, ok := args.(json.RawMessage); ok {
		return raw, nil
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tool.ErrInvalidInput, err)
	}
	return raw, nil
}

// Serve runs the server on the given transport until ctx is done.
func (s *Server) Serve(ctx context.Context, transport, addr string) error {
	switch transport {
	case config.TransportStdio:
		return s.ServeStdio(ctx, os.Stdin, os.Stdout)
	case config.TransportSSE:
		return s.ServeSSE(ctx, addr)
	case config.TransportStreamableHTTP:
		return s.ServeStreamableHTTP(ctx, addr)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTransport, transport)
	}
}

// ServeStdio serves newline-delimited JSON-RPC on the given streams.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	logging.Info().
		Add(logging.Component("mcp")).
		Add(logging.Str("transport", config.TransportStdio)).
		Msg("serving")
	return server.NewStdioServer(s.srv).Listen(ctx, in, out)
}

// ServeSSE serves the SSE transport on addr.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	sse := server.NewSSEServer(s.srv)
	return serveHTTP(ctx, config.TransportSSE, addr, sse.Start, sse.Shutdown)
}

// ServeStreamableHTTP serves the streamable HTTP transport on addr.
func (s *Server) ServeStreamableHTTP(ctx context.Context, addr string) error {
	h := server.NewStreamableHTTPServer(s.srv, server.WithEndpointPath(DefaultEndpointPath))
	return serveHTTP(ctx, config.TransportStreamableHTTP, addr, h.Start, h.Shutdown)
}

func serveHTTP(ctx context.Context, transport, addr string, start func(string) error, shutdown func(context.Context) error) error {
	logging.Info().
		Add(logging.Component("mcp")).
		Add(logging.Str("transport", transport)).
		Add(logging.Str("addr", addr)).
		Msg("serving")

	errCh := make(chan error, 1)
	go func() { errCh <- start(addr) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

type requestIDKey struct{}

// RequestIDFrom returns the request ID assigned by the RequestID middleware.
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

func newRequestID() string {
	return uuid.NewString()
}
