package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aiera-inc/aiera-mcp/application"
	"github.com/aiera-inc/aiera-mcp/domain/tool"
	"github.com/aiera-inc/aiera-mcp/pack/catalog"
)

// toolsListOptions holds options for the tools list command.
type toolsListOptions struct {
	category    string
	readOnly    bool
	writes      bool
	destructive bool
	jsonOutput  bool
}

// toolListing is the JSON shape of one listed tool.
type toolListing struct {
	Name        string           `json:"name"`
	Title       string           `json:"title,omitempty"`
	Category    tool.Category    `json:"category"`
	Description string           `json:"description"`
	Annotations tool.Annotations `json:"annotations"`
}

// newToolsCmd creates the tools command group.
func (a *App) newToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect the compiled-in tool table",
	}
	cmd.AddCommand(a.newToolsListCmd(), a.newToolsSchemaCmd(), a.newToolsGroupsCmd())
	return cmd
}

// newToolsListCmd creates the tools list command.
func (a *App) newToolsListCmd() *cobra.Command {
	opts := &toolsListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered tools",
		Long: `List the registered tools in registry order.

Examples:
  # Every tool
  aiera-mcp tools list

  # Tools of one category
  aiera-mcp tools list --category events

  # Tools that write upstream, as JSON
  aiera-mcp tools list --writes --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listTools(opts)
		},
	}

	cmd.Flags().StringVar(&opts.category, "category", "", "Only tools of this category")
	cmd.Flags().BoolVar(&opts.readOnly, "read-only", false, "Only read-only tools")
	cmd.Flags().BoolVar(&opts.writes, "writes", false, "Only tools that write upstream")
	cmd.Flags().BoolVar(&opts.destructive, "destructive", false, "Only destructive tools")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")
	cmd.MarkFlagsMutuallyExclusive("read-only", "writes")

	return cmd
}

// filterFrom converts list flags to a registry filter.
func filterFrom(opts *toolsListOptions) (application.Filter, error) {
	var filter application.Filter
	if opts.category != "" {
		c, err := tool.ParseCategory(opts.category)
		if err != nil {
			return filter, err
		}
		filter.Category = c
	}
	switch {
	case opts.readOnly:
		ro := true
		filter.ReadOnly = &ro
	case opts.writes:
		ro := false
		filter.ReadOnly = &ro
	}
	filter.Destructive = opts.destructive
	return filter, nil
}

// listTools prints the filtered tool table.
func (a *App) listTools(opts *toolsListOptions) error {
	filter, err := filterFrom(opts)
	if err != nil {
		return err
	}
	cat, err := catalog.New(catalog.Config{})
	if err != nil {
		return err
	}
	tools := application.ListTools(cat.Registry, filter)

	if opts.jsonOutput {
		out := make([]toolListing, len(tools))
		for i, t := range tools {
			out[i] = toolListing{
				Name:        t.Name(),
				Title:       t.DisplayName(),
				Category:    t.Category(),
				Description: t.Description(),
				Annotations: t.Annotations(),
			}
		}
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tCATEGORY\tACCESS")
	for _, t := range tools {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name(), t.Category(), access(t.Annotations()))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.stdout, "\n%d tools\n", len(tools))
	return nil
}

func access(a tool.Annotations) string {
	switch {
	case a.Destructive:
		return "destructive"
	case a.ReadOnly:
		return "read-only"
	default:
		return "write"
	}
}

// newToolsSchemaCmd creates the tools schema command.
func (a *App) newToolsSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <name>",
		Short: "Print the input schema of a tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.New(catalog.Config{})
			if err != nil {
				return err
			}
			t, ok := cat.Registry.Describe(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", tool.ErrToolNotFound, args[0])
			}
			var buf bytes.Buffer
			if err := json.Indent(&buf, t.InputSchema().Raw(), "", "  "); err != nil {
				return fmt.Errorf("format schema: %w", err)
			}
			_, _ = fmt.Fprintln(a.stdout, buf.String())
			return nil
		},
	}
}

// newToolsGroupsCmd creates the tools groups command.
func (a *App) newToolsGroupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List the selection groups and their members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.New(catalog.Config{})
			if err != nil {
				return err
			}
			for _, g := range cat.Groups {
				_, _ = fmt.Fprintf(a.stdout, "%s: %s\n", g.Name, strings.Join(g.Members, ", "))
			}
			return nil
		},
	}
}
