package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aiera-inc/aiera-mcp/application"
	"github.com/aiera-inc/aiera-mcp/domain/config"
	"github.com/aiera-inc/aiera-mcp/infrastructure/logging"
)

// serveOptions holds options for the serve command.
type serveOptions struct {
	transport string
	addr      string
	include   []string
	exclude   []string
	dryRun    bool
}

// newServeCmd creates the serve command.
func (a *App) newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the selected tools over MCP",
		Long: `Load the configuration, build the vocabulary and tool registry, resolve
the tool selection and serve it over the chosen MCP transport.

Flags override the configuration file and the environment.

Examples:
  # Serve every tool over streamable HTTP on :8000
  AIERA_API_KEY=... aiera-mcp serve

  # Serve over stdio for a desktop client
  aiera-mcp serve --transport stdio

  # Expose only the events and search groups plus one tool
  aiera-mcp serve --include events,search,find_equities

  # Check the selection without serving
  aiera-mcp serve -c config.yaml --exclude transcrippets --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", "", "Transport: stdio, sse or streamable-http")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address for HTTP transports")
	cmd.Flags().StringSliceVar(&opts.include, "include", nil, "Tool or group names to expose")
	cmd.Flags().StringSliceVar(&opts.exclude, "exclude", nil, "Tool or group names to hide")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Resolve the selection and exit")

	return cmd
}

// applyServeFlags overlays command-line flags on the loaded configuration.
func applyServeFlags(cfg *config.Config, opts *serveOptions) {
	if opts.transport != "" {
		cfg.Server.Transport, _ = config.NormalizeTransport(opts.transport)
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if len(opts.include) > 0 {
		cfg.Tools.Include = application.ParseNameList(strings.Join(opts.include, ","))
		cfg.Tools.Exclude = nil
	}
	if len(opts.exclude) > 0 {
		cfg.Tools.Exclude = application.ParseNameList(strings.Join(opts.exclude, ","))
		if len(opts.include) == 0 {
			cfg.Tools.Include = nil
		}
	}
}

// serve builds the service and runs it until the context is cancelled.
func (a *App) serve(ctx context.Context, opts *serveOptions) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	applyServeFlags(cfg, opts)
	a.initLogging(cfg)

	svc, err := application.NewService(ctx, cfg, application.WithVersion(Version))
	if err != nil {
		return fmt.Errorf("build service: %w", err)
	}
	defer func() {
		if err := svc.Close(context.Background()); err != nil {
			logging.Warn().
				Add(logging.Component("cli")).
				Add(logging.ErrorField(err)).
				Msg("shutdown incomplete")
		}
	}()

	if opts.dryRun {
		_, _ = fmt.Fprintf(a.stdout, "Selected %d tools (%s transport):\n", svc.Selected().Len(), cfg.Server.Transport)
		for _, name := range svc.Selected().Names() {
			_, _ = fmt.Fprintf(a.stdout, "  - %s\n", name)
		}
		return nil
	}

	if cfg.Aiera.APIKey == "" {
		logging.Warn().
			Add(logging.Component("cli")).
			Msg("AIERA_API_KEY is not set; every tool call will fail")
	}
	return svc.Run(ctx)
}
