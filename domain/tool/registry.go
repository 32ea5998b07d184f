package tool

// Registry is a read-only view of the tool catalog. Implementations are
// built once and never change afterwards.
type Registry interface {
	// Describe returns the tool with the given name.
	Describe(name string) (Tool, bool)

	// Names returns all tool names in registry order.
	Names() []string

	// List returns all tools in registry order.
	List() []Tool

	// ByCategory returns the tools of one category.
	ByCategory(category Category) []Tool

	// ByReadOnly returns the tools whose read-only flag matches.
	ByReadOnly(readOnly bool) []Tool

	// Destructive returns the destructive tools.
	Destructive() []Tool

	// Len returns the number of tools.
	Len() int
}
