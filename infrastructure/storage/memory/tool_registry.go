// Package memory provides in-memory storage implementations.
package memory

import (
	"fmt"

	"github.com/aiera-inc/aiera-mcp/domain/tool"
)

// ToolRegistry is an immutable in-memory implementation of tool.Registry.
// The tool set is fixed at construction; there is no registration afterwards,
// so concurrent readers need no locking.
type ToolRegistry struct {
	tools  []tool.Tool
	byName map[string]tool.Tool
}

// NewToolRegistry builds a registry from tools in the given order.
// Duplicate names fail construction.
func NewToolRegistry(tools ...tool.Tool) (*ToolRegistry, error) {
	r := &ToolRegistry{
		tools:  make([]tool.Tool, 0, len(tools)),
		byName: make(map[string]tool.Tool, len(tools)),
	}
	for _, t := range tools {
		if t == nil {
			continue
		}
		if t.Name() == "" {
			return nil, tool.ErrEmptyName
		}
		if _, exists := r.byName[t.Name()]; exists {
			return nil, fmt.Errorf("%w: %s", tool.ErrToolExists, t.Name())
		}
		r.byName[t.Name()] = t
		r.tools = append(r.tools, t)
	}
	return r, nil
}

// MustToolRegistry builds a registry or panics on error.
func MustToolRegistry(tools ...tool.Tool) *ToolRegistry {
	r, err := NewToolRegistry(tools...)
	if err != nil {
		panic(err)
	}
	return r
}

// Describe retrieves a tool by name.
func (r *ToolRegistry) Describe(name string) (tool.Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Names returns all tool names in registry order.
func (r *ToolRegistry) Names() []string {
	names := make([]string, len(r.tools))
	for i, t := range r.tools {
		names[i] = t.Name()
	}
	return names
}

// List returns all tools in registry order.
func (r *ToolRegistry) List() []tool.Tool {
	out := make([]tool.Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// ByCategory returns the tools of one category.
func (r *ToolRegistry) ByCategory(category tool.Category) []tool.Tool {
	return r.filter(func(t tool.Tool) bool {
		return t.Category() == category
	})
}

// ByReadOnly returns the tools whose read-only flag matches.
func (r *ToolRegistry) ByReadOnly(readOnly bool) []tool.Tool {
	return r.filter(func(t tool.Tool) bool {
		return t.Annotations().ReadOnly == readOnly
	})
}

// Destructive returns the destructive tools.
func (r *ToolRegistry) Destructive() []tool.Tool {
	return r.filter(func(t tool.Tool) bool {
		return t.Annotations().Destructive
	})
}

// Len returns the number of tools.
func (r *ToolRegistry) Len() int {
	return len(r.tools)
}

func (r *ToolRegistry) filter(keep func(tool.Tool) bool) []tool.Tool {
	out := make([]tool.Tool, 0)
	for _, t := range r.tools {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

var _ tool.Registry = (*ToolRegistry)(nil)
