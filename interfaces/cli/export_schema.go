package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	infraconfig "github.com/aiera-inc/aiera-mcp/infrastructure/config"
	"github.com/aiera-inc/aiera-mcp/pack/catalog"
)

// exportSchemaOptions holds options for the export-schema command.
type exportSchemaOptions struct {
	outputPath string
	tools      bool
}

// newExportSchemaCmd creates the export-schema command.
func (a *App) newExportSchemaCmd() *cobra.Command {
	opts := &exportSchemaOptions{}

	cmd := &cobra.Command{
		Use:   "export-schema",
		Short: "Export the configuration or tool input JSON schemas",
		Long: `Export the JSON Schema for configuration files, or with --tools the input
schema of every registered tool keyed by tool name.

The configuration schema can be used for:
  - IDE validation and autocompletion
  - CI/CD configuration validation

Examples:
  # Export the configuration schema to stdout
  aiera-mcp export-schema

  # Export to a file
  aiera-mcp export-schema -o schema.json

  # Export every tool input schema
  aiera-mcp export-schema --tools -o tools.schema.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.exportSchema(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&opts.tools, "tools", false, "Export tool input schemas instead of the configuration schema")

	return cmd
}

// exportSchema writes the requested schema.
func (a *App) exportSchema(opts *exportSchemaOptions) error {
	var (
		data []byte
		err  error
	)
	if opts.tools {
		data, err = toolSchemas()
	} else {
		data, err = infraconfig.SchemaJSON()
	}
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if opts.outputPath == "" {
		_, _ = fmt.Fprintln(a.stdout, string(data))
		return nil
	}

	// Write to file with restrictive permissions (G306)
	if err := os.WriteFile(opts.outputPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}

	_, _ = fmt.Fprintf(a.stdout, "Schema exported to %s\n", opts.outputPath)
	return nil
}

// toolSchemas returns every tool input schema keyed by name in registry order.
func toolSchemas() ([]byte, error) {
	cat, err := catalog.New(catalog.Config{})
	if err != nil {
		return nil, err
	}
	out := orderedmap.New[string, json.RawMessage]()
	for _, t := range cat.Registry.List() {
		out.Set(t.Name(), t.InputSchema().Raw())
	}
	return json.MarshalIndent(out, "", "  ")
}
