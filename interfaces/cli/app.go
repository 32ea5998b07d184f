// Package cli provides the command-line interface for the Aiera MCP server.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	aieramcp "github.com/aiera-inc/aiera-mcp"
	"github.com/aiera-inc/aiera-mcp/domain/config"
	infraconfig "github.com/aiera-inc/aiera-mcp/infrastructure/config"
	"github.com/aiera-inc/aiera-mcp/infrastructure/logging"
)

// Version information set at build time.
var (
	Version   = aieramcp.Version
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App represents the CLI application.
type App struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer

	configPath string
	strictEnv  bool
	lookupEnv  func(string) (string, bool)
}

// New creates a new CLI application.
func New() *App {
	app := &App{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		lookupEnv: os.LookupEnv,
	}

	app.root = &cobra.Command{
		Use:   "aiera-mcp",
		Short: "MCP server for Aiera financial data",
		Long: `aiera-mcp exposes the Aiera API as Model Context Protocol tools: events
and transcripts, SEC filings, equities, indexes and watchlists, company
documents, Third Bridge expert calls, transcrippets and semantic search.

Tool arguments are normalized before they reach the API. Misspelled tickers,
event types and transcript sections are corrected against a vocabulary, and
every correction is reported back to the model.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	app.root.PersistentFlags().StringVarP(&app.configPath, "config", "c", "", "Path to configuration file (YAML or JSON)")
	app.root.PersistentFlags().BoolVar(&app.strictEnv, "strict-env", false, "Fail on ${VAR} references to unset variables")

	app.root.AddCommand(
		app.newVersionCmd(),
		app.newServeCmd(),
		app.newToolsCmd(),
		app.newCorrectCmd(),
		app.newValidateCmd(),
		app.newExportSchemaCmd(),
		app.newProbeCmd(),
	)

	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// WithLookupEnv replaces the environment used for overrides and expansion.
func (a *App) WithLookupEnv(lookup func(string) (string, bool)) *App {
	a.lookupEnv = lookup
	return a
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments (useful for testing).
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

// loadConfig reads the configuration file, or the defaults when no file is
// given, and applies environment overrides.
func (a *App) loadConfig() (*config.Config, error) {
	loader := infraconfig.NewLoaderWithOptions(
		infraconfig.WithStrictEnv(a.strictEnv),
		infraconfig.WithLookupEnv(a.lookupEnv),
	)
	cfg, err := loader.LoadFile(a.configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	for _, w := range loader.Warnings() {
		logging.Warn().
			Add(logging.Component("config")).
			Msg(w)
	}
	return cfg, nil
}

// initLogging configures the default logger. Logs always go to stderr so
// that stdout stays free for the stdio transport.
func (a *App) initLogging(cfg *config.Config) {
	logging.Init(logging.FromSettings(cfg.Logging))
}

// newVersionCmd creates the version command.
func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(a.stdout, "aiera-mcp version %s\n", Version)
			_, _ = fmt.Fprintf(a.stdout, "  Git commit: %s\n", GitCommit)
			_, _ = fmt.Fprintf(a.stdout, "  Build date: %s\n", BuildDate)
		},
	}
}
