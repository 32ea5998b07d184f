package correction

import (
	"github.com/aiera-inc/aiera-mcp/domain/fuzzy"
	"github.com/aiera-inc/aiera-mcp/domain/vocabulary"
)

// aliases map common alternate spellings onto closed enumeration values.
// Keys are in vocabulary.Key form.
var aliases = map[Kind]map[string]string{
	KindEventType: {
		"conference":  "presentation",
		"conferences": "presentation",
		"m&a":         "special_situation",
		"m_&_a":       "special_situation",
		"mna":         "special_situation",
	},
	KindTranscriptSection: {
		"qa":               "q_and_a",
		"q&a":              "q_and_a",
		"q_&_a":            "q_and_a",
		"q_a":              "q_and_a",
		"qanda":            "q_and_a",
		"prepared_remarks": "presentation",
	},
}

// correctEnum resolves a closed enumeration value. Unknown values are never
// replaced by a guess; they are rejected with every valid value, closest first.
func (e *Engine) correctEnum(snap *vocabulary.Snapshot, kind Kind, raw string) (Result, error) {
	vk, _ := kind.Vocabulary()

	if vocabulary.Key(vk, raw) == "" {
		return Result{Kind: kind, Outcome: Rejected, Original: raw}, &ValidationError{
			Kind:   kind,
			Reason: "a value is required",
		}
	}

	if matches, ok := snap.Lookup(vk, raw); ok {
		return accepted(kind, raw, matches[0]), nil
	}

	if canonical, ok := aliases[kind][vocabulary.Key(vk, raw)]; ok {
		return autoCorrected(kind, raw, canonical, 1), nil
	}

	all := snap.All(vk)
	ranked := fuzzy.Candidates(e.matcher.WithThreshold(0).Suggest(raw, all, 0))
	res := rejected(kind, raw, ranked)
	return res, &RejectedError{Kind: kind, Values: []string{raw}, Suggestions: ranked}
}
