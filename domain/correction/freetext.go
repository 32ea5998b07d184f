package correction

import (
	"fmt"
	"strings"

	"github.com/aiera-inc/aiera-mcp/domain/fuzzy"
	"github.com/aiera-inc/aiera-mcp/domain/vocabulary"
)

// splitFreeText splits a category or keyword value into elements. Commas
// always separate; without commas a value of more than maxWords words is
// split on whitespace unless it is itself a known entry.
func splitFreeText(snap *vocabulary.Snapshot, vk vocabulary.Kind, raw string, maxWords int) []string {
	if strings.Contains(raw, ",") {
		return splitList(raw)
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if _, ok := snap.Lookup(vk, trimmed); ok {
		return []string{trimmed}
	}
	words := strings.Fields(trimmed)
	if len(words) > maxWords {
		return words
	}
	return []string{strings.Join(words, " ")}
}

// correctFreeText resolves a category or keyword. Known values take their
// canonical spelling; unknown ones pass through with a warning unless the
// engine is strict.
func (e *Engine) correctFreeText(snap *vocabulary.Snapshot, kind Kind, tok string) Result {
	vk, _ := kind.Vocabulary()

	if matches, ok := snap.Lookup(vk, tok); ok {
		return accepted(kind, tok, matches[0])
	}

	if snap.Len(vk) == 0 {
		return unverified(kind, tok, fmt.Sprintf("no %s vocabulary loaded; %q passed through", kind, tok), nil)
	}

	suggestions := fuzzy.Candidates(e.suggest(tok, snap.All(vk)))
	if e.opts.StrictFreeText {
		return rejected(kind, tok, suggestions)
	}
	return unverified(kind, tok, fmt.Sprintf("%q is not a known %s; passed through", tok, kind), suggestions)
}
