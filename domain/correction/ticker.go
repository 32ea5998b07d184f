package correction

import (
	"fmt"
	"strings"

	"github.com/aiera-inc/aiera-mcp/domain/vocabulary"
)

// correctTicker resolves one ticker. With no ticker vocabulary loaded only
// syntactic normalization applies.
func (e *Engine) correctTicker(snap *vocabulary.Snapshot, tok string) Result {
	if snap.Len(vocabulary.KindTicker) == 0 {
		return accepted(KindTicker, tok, vocabulary.QualifyTicker(tok))
	}

	if matches, ok := snap.Lookup(vocabulary.KindTicker, tok); ok {
		if len(matches) == 1 {
			return accepted(KindTicker, tok, matches[0])
		}
		res := rejected(KindTicker, tok, matches)
		res.Warning = fmt.Sprintf("ticker %q is listed on several exchanges: %s", tok, strings.Join(matches, ", "))
		return res
	}

	target := vocabulary.QualifyTicker(tok)
	ranked := e.suggest(target, snap.All(vocabulary.KindTicker))

	var confident []int
	for i, m := range ranked {
		if m.Score >= e.opts.AutoCorrectThreshold {
			confident = append(confident, i)
		}
	}
	if len(confident) == 1 {
		best := ranked[confident[0]]
		return autoCorrected(KindTicker, tok, best.Candidate, best.Score)
	}

	suggestions := make([]string, len(ranked))
	for i, m := range ranked {
		suggestions[i] = m.Candidate
	}
	return rejected(KindTicker, tok, suggestions)
}
