package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aiera-inc/aiera-mcp/application"
	"github.com/aiera-inc/aiera-mcp/domain/config"
	infraconfig "github.com/aiera-inc/aiera-mcp/infrastructure/config"
	"github.com/aiera-inc/aiera-mcp/pack/catalog"
)

// validateOptions holds options for the validate command.
type validateOptions struct {
	showSchema bool
}

// newValidateCmd creates the validate command.
func (a *App) newValidateCmd() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Long: `Validate a server configuration file for correctness.

This command checks:
  - File format (YAML or JSON)
  - Field types and constraints
  - Environment variable references (with --strict-env)
  - The tool selection against the registry

Examples:
  # Validate a configuration file
  aiera-mcp validate -c config.yaml

  # Strict validation (fail on missing env vars)
  aiera-mcp validate -c config.yaml --strict-env

  # Show the JSON schema for configuration
  aiera-mcp validate --schema`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showSchema {
				return a.showConfigSchema()
			}
			return a.validateConfig()
		},
	}

	cmd.Flags().BoolVar(&opts.showSchema, "schema", false, "Show JSON schema for configuration")

	return cmd
}

// validateConfig validates the configuration file and its tool selection.
func (a *App) validateConfig() error {
	if a.configPath == "" {
		return fmt.Errorf("configuration file path is required (-c flag)")
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	selected, err := resolveSelection(cfg)
	if err != nil {
		return fmt.Errorf("tool selection invalid: %w", err)
	}

	_, _ = fmt.Fprintf(a.stdout, "✓ Configuration is valid\n")
	_, _ = fmt.Fprintf(a.stdout, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(a.stdout, "  Base URL: %s\n", cfg.Aiera.BaseURL)
	_, _ = fmt.Fprintf(a.stdout, "  API key: %s\n", present(cfg.Aiera.APIKey != ""))
	_, _ = fmt.Fprintf(a.stdout, "  Transport: %s", cfg.Server.Transport)
	if cfg.Server.Transport != config.TransportStdio {
		_, _ = fmt.Fprintf(a.stdout, " on %s", cfg.Server.Addr)
	}
	_, _ = fmt.Fprintln(a.stdout)
	_, _ = fmt.Fprintf(a.stdout, "  Page size: %d (max %d)\n", cfg.Aiera.DefaultPageSize, cfg.Aiera.MaxPageSize)
	_, _ = fmt.Fprintf(a.stdout, "  Tools: %d selected\n", selected.Len())
	if n := len(cfg.Tools.Include); n > 0 {
		_, _ = fmt.Fprintf(a.stdout, "    include: %s\n", strings.Join(cfg.Tools.Include, ", "))
	}
	if n := len(cfg.Tools.Exclude); n > 0 {
		_, _ = fmt.Fprintf(a.stdout, "    exclude: %s\n", strings.Join(cfg.Tools.Exclude, ", "))
	}
	_, _ = fmt.Fprintf(a.stdout, "  Correction: auto %.2f, suggest %.2f, strict free text %t\n",
		cfg.Correction.AutoCorrectThreshold, cfg.Correction.SuggestThreshold, cfg.Correction.StrictFreeText)

	var sources []string
	if cfg.Vocabulary.File != "" {
		sources = append(sources, "file "+cfg.Vocabulary.File)
	}
	if cfg.Vocabulary.Redis.Enabled() {
		sources = append(sources, "redis "+cfg.Vocabulary.Redis.Addr)
	}
	if cfg.Vocabulary.Upstream {
		sources = append(sources, "upstream")
	}
	if len(sources) > 0 {
		_, _ = fmt.Fprintf(a.stdout, "  Vocabulary: %s\n", strings.Join(sources, ", "))
	}

	if cfg.Cache.Enabled {
		_, _ = fmt.Fprintf(a.stdout, "  Cache: %s (ttl %s)\n", cfg.Cache.Backend, cfg.Cache.TTL.Duration())
	}
	if cfg.Resilience.RateLimit.Rate > 0 {
		_, _ = fmt.Fprintf(a.stdout, "  Rate limiting: enabled (rate=%d, burst=%d)\n",
			cfg.Resilience.RateLimit.Rate, cfg.Resilience.RateLimit.Burst)
	}

	return nil
}

// resolveSelection checks the configured selection against the compiled-in
// catalog without building the rest of the service.
func resolveSelection(cfg *config.Config) (*application.ResolvedSet, error) {
	cat, err := catalog.New(catalog.Config{})
	if err != nil {
		return nil, err
	}
	controller, err := application.NewController(application.ControllerConfig{
		Registry: cat.Registry,
		Groups:   cat.Groups,
	})
	if err != nil {
		return nil, err
	}
	return controller.Register(application.SelectionRequest{
		Include: cfg.Tools.Include,
		Exclude: cfg.Tools.Exclude,
	})
}

func present(ok bool) string {
	if ok {
		return "set"
	}
	return "not set"
}

// showConfigSchema displays the JSON schema for configuration.
func (a *App) showConfigSchema() error {
	schemaJSON, err := infraconfig.SchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	_, _ = fmt.Fprintln(a.stdout, string(schemaJSON))
	return nil
}
