package tool

import (
	"encoding/json"
	"time"
)

// Result contains the output of a tool execution.
type Result struct {
	// Output is the response body forwarded to the MCP client.
	Output json.RawMessage `json:"output"`

	// Duration is how long the execution took.
	Duration time.Duration `json:"duration"`

	// Cached indicates if this result was served from cache.
	Cached bool `json:"cached,omitempty"`

	// Notices are parameter corrections and warnings raised while
	// preparing the upstream request.
	Notices []string `json:"notices,omitempty"`
}

// NewResult creates a result with the given output.
func NewResult(output json.RawMessage) Result {
	return Result{Output: output}
}

// NewCachedResult creates a result marked as cached.
func NewCachedResult(output json.RawMessage) Result {
	return Result{
		Output: output,
		Cached: true,
	}
}

// WithNotices returns a copy of the result carrying the given notices.
func (r Result) WithNotices(notices ...string) Result {
	r.Notices = append(append([]string(nil), r.Notices...), notices...)
	return r
}

// OutputString returns the output as a string for convenience.
func (r Result) OutputString() string {
	return string(r.Output)
}
