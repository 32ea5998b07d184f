package correction

import (
	"strconv"
	"strings"
	"unicode"
)

// correctIDs parses a list of numeric identifiers separated by commas or
// whitespace. Duplicates are dropped keeping first-seen order.
func correctIDs(raw string) (Result, error) {
	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(tokens) == 0 {
		return Result{Kind: KindProvidedIDs, Outcome: Rejected, Original: raw}, &ValidationError{
			Kind:   KindProvidedIDs,
			Reason: "at least one id is required",
		}
	}

	ids := make([]int64, 0, len(tokens))
	seen := make(map[int64]bool, len(tokens))
	for _, tok := range tokens {
		id, err := strconv.ParseInt(tok, 10, 64)
		if err != nil || id < 0 || !unsigned(tok) {
			return Result{Kind: KindProvidedIDs, Outcome: Rejected, Original: raw}, &ValidationError{
				Kind:   KindProvidedIDs,
				Token:  tok,
				Reason: "not a non-negative integer",
			}
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}

	res := accepted(KindProvidedIDs, raw, strings.Join(parts, ","))
	res.IDs = ids
	return res, nil
}

// unsigned reports whether tok has no sign prefix.
func unsigned(tok string) bool {
	return tok[0] != '+' && tok[0] != '-'
}
