package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aiera-inc/aiera-mcp/application"
	"github.com/aiera-inc/aiera-mcp/domain/correction"
)

// correctOptions holds options for the correct command.
type correctOptions struct {
	vocabFile  string
	jsonOutput bool
}

// correctOutput is the JSON shape of a correction.
type correctOutput struct {
	correction.Result
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

// newCorrectCmd creates the correct command.
func (a *App) newCorrectCmd() *cobra.Command {
	opts := &correctOptions{}

	kinds := make([]string, 0, len(correction.Kinds()))
	for _, k := range correction.Kinds() {
		kinds = append(kinds, k.String())
	}

	cmd := &cobra.Command{
		Use:   "correct <kind> <value>",
		Short: "Run parameter correction on one value",
		Long: fmt.Sprintf(`Run the correction engine on a value exactly as a tool handler would,
using the vocabulary sources from the configuration.

Kinds: %s

Examples:
  # A misspelled ticker list
  aiera-mcp correct ticker "APPL,msft" --vocab tickers.yaml

  # An event type alias
  aiera-mcp correct event_type conference --json`, strings.Join(kinds, ", ")),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.correct(cmd.Context(), args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.vocabFile, "vocab", "", "Vocabulary file (overrides vocabulary.file)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// correct loads the vocabulary and prints the correction of value.
func (a *App) correct(ctx context.Context, kindName, value string, opts *correctOptions) error {
	kind, err := correction.ParseKind(kindName)
	if err != nil {
		return err
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if opts.vocabFile != "" {
		cfg.Vocabulary.File = opts.vocabFile
	}
	cfg.Tools.Include, cfg.Tools.Exclude = nil, nil
	a.initLogging(cfg)

	svc, err := application.NewService(ctx, cfg, application.WithVersion(Version))
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close(context.Background()) }()

	if err := svc.LoadVocabulary(ctx); err != nil {
		_, _ = fmt.Fprintf(a.stderr, "warning: %v\n", err)
	}

	res, cerr := svc.Corrector().Correct(kind, value)
	if opts.jsonOutput {
		out := correctOutput{Result: res, Outcome: res.Outcome.String()}
		if cerr != nil {
			out.Error = cerr.Error()
		}
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
		return cerr
	}

	a.printResult(res)
	return cerr
}

func (a *App) printResult(res correction.Result) {
	_, _ = fmt.Fprintf(a.stdout, "Kind:      %s\n", res.Kind)
	_, _ = fmt.Fprintf(a.stdout, "Outcome:   %s\n", res.Outcome)
	_, _ = fmt.Fprintf(a.stdout, "Original:  %s\n", res.Original)
	if res.Canonical != "" {
		_, _ = fmt.Fprintf(a.stdout, "Canonical: %s\n", res.Canonical)
	}
	if res.Outcome == correction.AutoCorrected && res.Confidence > 0 {
		_, _ = fmt.Fprintf(a.stdout, "Confidence: %.2f\n", res.Confidence)
	}
	if len(res.IDs) > 0 {
		ids := make([]string, len(res.IDs))
		for i, id := range res.IDs {
			ids[i] = fmt.Sprint(id)
		}
		_, _ = fmt.Fprintf(a.stdout, "IDs:       %s\n", strings.Join(ids, ", "))
	}
	if len(res.Suggestions) > 0 {
		_, _ = fmt.Fprintf(a.stdout, "Suggestions: %s\n", strings.Join(res.Suggestions, ", "))
	}
	if res.Warning != "" {
		_, _ = fmt.Fprintf(a.stdout, "Warning:   %s\n", res.Warning)
	}
	for _, item := range res.Items {
		line := fmt.Sprintf("  - %s: %s", item.Original, item.Outcome)
		if item.Canonical != "" && item.Canonical != item.Original {
			line += " -> " + item.Canonical
		}
		if len(item.Suggestions) > 0 {
			line += " (did you mean: " + strings.Join(item.Suggestions, ", ") + "?)"
		}
		_, _ = fmt.Fprintln(a.stdout, line)
	}
}
