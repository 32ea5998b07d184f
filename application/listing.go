package application

import "github.com/aiera-inc/aiera-mcp/domain/tool"

// Filter narrows a tool listing. Zero-value fields match everything.
type Filter struct {
	// Category restricts the listing to one category.
	Category tool.Category

	// ReadOnly, when set, restricts the listing to tools whose read-only
	// flag equals the pointed-to value.
	ReadOnly *bool

	// Destructive restricts the listing to destructive tools.
	Destructive bool
}

// ListTools returns the registry tools matching the filter in registry order.
func ListTools(registry tool.Registry, filter Filter) []tool.Tool {
	out := make([]tool.Tool, 0, registry.Len())
	for _, t := range registry.List() {
		if filter.Category != "" && t.Category() != filter.Category {
			continue
		}
		ann := t.Annotations()
		if filter.ReadOnly != nil && ann.ReadOnly != *filter.ReadOnly {
			continue
		}
		if filter.Destructive && !ann.Destructive {
			continue
		}
		out = append(out, t)
	}
	return out
}
