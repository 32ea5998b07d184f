package correction

import (
	"fmt"
	"strings"

	"github.com/aiera-inc/aiera-mcp/domain/fuzzy"
	"github.com/aiera-inc/aiera-mcp/domain/vocabulary"
)

// Default correction settings.
const (
	// DefaultAutoCorrectThreshold is the similarity a single candidate must
	// reach before an unknown value is silently replaced.
	DefaultAutoCorrectThreshold = 0.85

	// DefaultMaxSuggestions bounds suggestion lists on rejection.
	DefaultMaxSuggestions = 5
)

// Options configures the correction engine.
type Options struct {
	// AutoCorrectThreshold is the minimum similarity for auto-correction.
	AutoCorrectThreshold float64

	// SuggestThreshold is the minimum similarity for a suggestion.
	SuggestThreshold float64

	// MaxSuggestions bounds suggestion lists.
	MaxSuggestions int

	// StrictFreeText rejects unknown categories and keywords instead of
	// passing them through unverified.
	StrictFreeText bool
}

// DefaultOptions returns the default engine options.
func DefaultOptions() Options {
	return Options{
		AutoCorrectThreshold: DefaultAutoCorrectThreshold,
		SuggestThreshold:     fuzzy.DefaultThreshold,
		MaxSuggestions:       DefaultMaxSuggestions,
	}
}

// Option configures the engine.
type Option func(*Options)

// WithAutoCorrectThreshold sets the auto-correction threshold.
func WithAutoCorrectThreshold(threshold float64) Option {
	return func(o *Options) {
		o.AutoCorrectThreshold = threshold
	}
}

// WithSuggestThreshold sets the minimum similarity for suggestions.
func WithSuggestThreshold(threshold float64) Option {
	return func(o *Options) {
		o.SuggestThreshold = threshold
	}
}

// WithMaxSuggestions sets the suggestion limit.
func WithMaxSuggestions(n int) Option {
	return func(o *Options) {
		o.MaxSuggestions = n
	}
}

// WithStrictFreeText enables rejection of unknown free-text values.
func WithStrictFreeText(strict bool) Option {
	return func(o *Options) {
		o.StrictFreeText = strict
	}
}

// Engine corrects parameter values against the vocabulary store. It holds
// no mutable state of its own; each call reads one snapshot.
type Engine struct {
	store   *vocabulary.Store
	matcher *fuzzy.Matcher
	opts    Options
}

// NewEngine creates a correction engine backed by the given store.
func NewEngine(store *vocabulary.Store, opts ...Option) *Engine {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if store == nil {
		store = vocabulary.NewStore(nil)
	}
	return &Engine{
		store:   store,
		matcher: fuzzy.NewMatcher().WithThreshold(o.SuggestThreshold),
		opts:    o,
	}
}

// Options returns the engine configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// Correct normalizes a raw value of the given kind.
//
// On success the returned Result carries the canonical value. A value that
// cannot be resolved returns a Result with the Rejected outcome together
// with a *RejectedError; malformed input returns a *ValidationError.
// List-valued kinds fail only when no element resolves.
func (e *Engine) Correct(kind Kind, raw string) (Result, error) {
	snap := e.store.Snapshot()

	switch kind {
	case KindTicker:
		return e.correctList(kind, raw, splitList(raw), func(tok string) Result {
			return e.correctTicker(snap, tok)
		})
	case KindCategory:
		return e.correctList(kind, raw, splitFreeText(snap, vocabulary.KindCategory, raw, 1), func(tok string) Result {
			return e.correctFreeText(snap, kind, tok)
		})
	case KindKeyword:
		return e.correctList(kind, raw, splitFreeText(snap, vocabulary.KindKeyword, raw, 3), func(tok string) Result {
			return e.correctFreeText(snap, kind, tok)
		})
	case KindEventType, KindTranscriptSection:
		return e.correctEnum(snap, kind, raw)
	case KindProvidedIDs:
		return correctIDs(raw)
	default:
		return Result{Kind: kind, Outcome: Rejected, Original: raw}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func (e *Engine) correctList(kind Kind, raw string, tokens []string, fn func(string) Result) (Result, error) {
	if len(tokens) == 0 {
		return Result{Kind: kind, Outcome: Rejected, Original: raw}, &ValidationError{
			Kind:   kind,
			Reason: "at least one value is required",
		}
	}

	items := make([]Result, 0, len(tokens))
	for _, tok := range tokens {
		items = append(items, fn(tok))
	}

	res := aggregate(kind, raw, items)
	if res.Resolved() {
		return res, nil
	}

	values := make([]string, 0, len(items))
	for _, item := range items {
		values = append(values, item.Original)
	}
	return res, &RejectedError{Kind: kind, Values: values, Suggestions: res.Suggestions}
}

// suggest ranks candidates and returns their names.
func (e *Engine) suggest(raw string, candidates []string) []fuzzy.Match {
	return e.matcher.Suggest(raw, candidates, e.opts.MaxSuggestions)
}

// splitList splits a comma-separated value, dropping blank elements.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
