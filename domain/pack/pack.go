// Package pack provides named tool groups. A group name is a valid entry in
// an include or exclude list and expands to its member tools.
package pack

import (
	"fmt"

	"github.com/aiera-inc/aiera-mcp/domain/tool"
)

// Pack is a named, ordered collection of related tools.
type Pack struct {
	// Name is the unique identifier for the pack, usable as a selection entry.
	Name string

	// Description explains what the pack provides.
	Description string

	// Tools is the collection of tools in this pack, in registration order.
	Tools []tool.Tool
}

// ToolNames returns the names of all tools in the pack.
func (p *Pack) ToolNames() []string {
	names := make([]string, len(p.Tools))
	for i, t := range p.Tools {
		names[i] = t.Name()
	}
	return names
}

// GetTool returns a tool by name from the pack.
func (p *Pack) GetTool(name string) (tool.Tool, bool) {
	for _, t := range p.Tools {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// Group returns the pack as a selection group.
func (p *Pack) Group() Group {
	return Group{Name: p.Name, Members: p.ToolNames()}
}

// Group is a named list of tool names used during selection.
type Group struct {
	Name    string   `json:"name" yaml:"name"`
	Members []string `json:"members" yaml:"members"`
}

// Groups converts packs to selection groups, rejecting duplicate or empty names.
func Groups(packs ...*Pack) ([]Group, error) {
	seen := make(map[string]bool, len(packs))
	groups := make([]Group, 0, len(packs))
	for _, p := range packs {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: empty name", ErrInvalidPack)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("%w: %s", ErrPackExists, p.Name)
		}
		seen[p.Name] = true
		groups = append(groups, p.Group())
	}
	return groups, nil
}

// Tools flattens the tools of every pack in order.
func Tools(packs ...*Pack) []tool.Tool {
	var out []tool.Tool
	for _, p := range packs {
		out = append(out, p.Tools...)
	}
	return out
}

// Builder provides a fluent API for constructing packs.
type Builder struct {
	pack *Pack
}

// NewBuilder creates a new pack builder.
func NewBuilder(name string) *Builder {
	return &Builder{
		pack: &Pack{
			Name:  name,
			Tools: make([]tool.Tool, 0),
		},
	}
}

// WithDescription sets the pack description.
func (b *Builder) WithDescription(desc string) *Builder {
	b.pack.Description = desc
	return b
}

// AddTool adds a tool to the pack.
func (b *Builder) AddTool(t tool.Tool) *Builder {
	b.pack.Tools = append(b.pack.Tools, t)
	return b
}

// AddTools adds multiple tools to the pack.
func (b *Builder) AddTools(tools ...tool.Tool) *Builder {
	b.pack.Tools = append(b.pack.Tools, tools...)
	return b
}

// Build returns the constructed pack.
func (b *Builder) Build() *Pack {
	return b.pack
}
