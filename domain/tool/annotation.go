// Package tool provides the domain model for Aiera MCP tools.
package tool

// Annotations describe tool behavior for selection, caching and retries.
type Annotations struct {
	// ReadOnly indicates the tool has no upstream side effects.
	ReadOnly bool `json:"read_only"`

	// Destructive indicates the tool removes upstream data.
	Destructive bool `json:"destructive"`

	// Idempotent indicates repeated calls with the same input yield the same result.
	Idempotent bool `json:"idempotent"`

	// Cacheable indicates results can be served from the response cache.
	Cacheable bool `json:"cacheable"`

	// Timeout is the maximum execution time in seconds (0 = default).
	Timeout int `json:"timeout,omitempty"`

	// Tags are free-form labels shown in listings.
	Tags []string `json:"tags,omitempty"`
}

// DefaultAnnotations returns annotations for a tool that writes upstream.
func DefaultAnnotations() Annotations {
	return Annotations{}
}

// ReadOnlyAnnotations returns annotations for a read-only tool.
func ReadOnlyAnnotations() Annotations {
	return Annotations{
		ReadOnly:   true,
		Idempotent: true,
		Cacheable:  true,
	}
}

// CanCache returns true if the tool result can be cached.
func (a Annotations) CanCache() bool {
	return a.Cacheable && (a.ReadOnly || a.Idempotent)
}

// CanRetry returns true if the tool can be safely retried on failure.
func (a Annotations) CanRetry() bool {
	return a.Idempotent || a.ReadOnly
}

// Writes returns true if the tool changes upstream state.
func (a Annotations) Writes() bool {
	return !a.ReadOnly
}
