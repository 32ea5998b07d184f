package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aiera-inc/aiera-mcp/infrastructure/logging"
)

// Middleware wraps a tool call handler.
type Middleware func(next server.ToolHandlerFunc) server.ToolHandlerFunc

// DefaultMiddleware returns Recover, RequestID, Timeout and Logging in
// that order. A zero timeout omits Timeout.
func DefaultMiddleware(timeout time.Duration) []Middleware {
	chain := []Middleware{Recover(), RequestID()}
	if timeout > 0 {
		chain = append(chain, Timeout(timeout))
	}
	return append(chain, Logging())
}

// Recover turns a panicking handler into an error result.
func Recover() Middleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (res *mcp.CallToolResult, err error) {
			defer func() {
				if r := recover(); r != nil {
					logging.Error().
						Add(logging.ToolName(req.Params.Name)).
						Add(logging.Str("panic", fmt.Sprint(r))).
						Msg("tool handler panicked")
					res, err = mcp.NewToolResultError("internal error"), nil
				}
			}()
			return next(ctx, req)
		}
	}
}

// RequestID attaches a fresh request ID to the context.
func RequestID() Middleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if _, ok := RequestIDFrom(ctx); !ok {
				ctx = context.WithValue(ctx, requestIDKey{}, newRequestID())
			}
			return next(ctx, req)
		}
	}
}

// Timeout bounds each call.
func Timeout(d time.Duration) Middleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(ctx, req)
		}
	}
}

// Logging logs every call with its outcome and duration.
func Logging() Middleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := time.Now()
			res, err := next(ctx, req)

			failed := err != nil || (res != nil && res.IsError)
			event := logging.Info()
			if failed {
				event = logging.Warn()
			}
			if id, ok := RequestIDFrom(ctx); ok {
				event = event.Add(logging.RequestID(id))
			}
			event.
				Add(logging.ToolName(req.Params.Name)).
				Add(logging.Duration(time.Since(start))).
				Add(logging.Str("status", status(failed))).
				Msg("tool called")
			return res, err
		}
	}
}

func status(failed bool) string {
	if failed {
		return "error"
	}
	return "ok"
}
