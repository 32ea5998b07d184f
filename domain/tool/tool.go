package tool

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool is one upstream capability exposed to MCP clients.
type Tool interface {
	// Name returns the stable identifier used in selection and on the wire.
	Name() string

	// DisplayName returns a human-readable title.
	DisplayName() string

	// Description returns the text shown to the model.
	Description() string

	// Category returns the tool's group.
	Category() Category

	// InputSchema returns the JSON Schema of the tool arguments.
	InputSchema() Schema

	// Annotations returns the tool's behavioral annotations.
	Annotations() Annotations

	// Execute runs the tool with the given arguments.
	Execute(ctx context.Context, input json.RawMessage) (Result, error)
}

// Handler is the function signature for tool execution.
type Handler func(ctx context.Context, input json.RawMessage) (Result, error)

// Descriptor is the immutable implementation of Tool produced by Builder.
type Descriptor struct {
	name        string
	displayName string
	description string
	category    Category
	inputSchema Schema
	annotations Annotations
	handler     Handler
}

// Name returns the tool name.
func (d *Descriptor) Name() string {
	return d.name
}

// DisplayName returns the tool title, falling back to the name.
func (d *Descriptor) DisplayName() string {
	if d.displayName == "" {
		return d.name
	}
	return d.displayName
}

// Description returns the tool description.
func (d *Descriptor) Description() string {
	return d.description
}

// Category returns the tool category.
func (d *Descriptor) Category() Category {
	return d.category
}

// InputSchema returns the input schema.
func (d *Descriptor) InputSchema() Schema {
	return d.inputSchema
}

// Annotations returns the tool annotations.
func (d *Descriptor) Annotations() Annotations {
	a := d.annotations
	a.Tags = append([]string(nil), a.Tags...)
	return a
}

// Execute runs the tool handler.
func (d *Descriptor) Execute(ctx context.Context, input json.RawMessage) (Result, error) {
	if d.handler == nil {
		return Result{}, ErrNoHandler
	}
	return d.handler(ctx, input)
}

// Builder provides a fluent API for constructing tools.
type Builder struct {
	def *Descriptor
	err error
}

// NewBuilder creates a new tool builder with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{
		def: &Descriptor{
			name:        name,
			inputSchema: EmptySchema(),
			annotations: DefaultAnnotations(),
		},
	}
}

// WithDisplayName sets the tool title.
func (b *Builder) WithDisplayName(title string) *Builder {
	if b.err != nil {
		return b
	}
	b.def.displayName = title
	return b
}

// WithDescription sets the tool description.
func (b *Builder) WithDescription(desc string) *Builder {
	if b.err != nil {
		return b
	}
	b.def.description = desc
	return b
}

// WithCategory sets the tool category.
func (b *Builder) WithCategory(category Category) *Builder {
	if b.err != nil {
		return b
	}
	if !category.Valid() {
		b.err = fmt.Errorf("%w: %q", ErrUnknownCategory, category)
		return b
	}
	b.def.category = category
	return b
}

// WithInputSchema sets the input schema.
func (b *Builder) WithInputSchema(schema Schema) *Builder {
	if b.err != nil {
		return b
	}
	b.def.inputSchema = schema
	return b
}

// WithAnnotations sets the tool annotations.
func (b *Builder) WithAnnotations(annotations Annotations) *Builder {
	if b.err != nil {
		return b
	}
	b.def.annotations = annotations
	return b
}

// ReadOnly marks the tool as read-only, idempotent and cacheable.
func (b *Builder) ReadOnly() *Builder {
	if b.err != nil {
		return b
	}
	b.def.annotations.ReadOnly = true
	b.def.annotations.Idempotent = true
	b.def.annotations.Cacheable = true
	return b
}

// Destructive marks the tool as destructive.
func (b *Builder) Destructive() *Builder {
	if b.err != nil {
		return b
	}
	b.def.annotations.Destructive = true
	return b
}

// WithTimeout sets the execution timeout in seconds.
func (b *Builder) WithTimeout(seconds int) *Builder {
	if b.err != nil {
		return b
	}
	b.def.annotations.Timeout = seconds
	return b
}

// WithHandler sets the tool handler function.
func (b *Builder) WithHandler(handler Handler) *Builder {
	if b.err != nil {
		return b
	}
	b.def.handler = handler
	return b
}

// WithTags adds tags to the tool.
func (b *Builder) WithTags(tags ...string) *Builder {
	if b.err != nil {
		return b
	}
	b.def.annotations.Tags = append(b.def.annotations.Tags, tags...)
	return b
}

// Build constructs the tool descriptor.
func (b *Builder) Build() (Tool, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.def.name == "" {
		return nil, ErrEmptyName
	}
	if !validName(b.def.name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, b.def.name)
	}
	if !b.def.category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, b.def.category)
	}
	if b.def.annotations.Destructive && b.def.annotations.ReadOnly {
		return nil, fmt.Errorf("%w: %s", ErrDestructiveReadOnly, b.def.name)
	}
	def := *b.def
	return &def, nil
}

// MustBuild constructs the tool descriptor or panics on error.
func (b *Builder) MustBuild() Tool {
	tool, err := b.Build()
	if err != nil {
		panic(err)
	}
	return tool
}

func validName(name string) bool {
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}
