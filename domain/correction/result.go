package correction

import "strings"

// Outcome classifies a correction attempt.
type Outcome int

const (
	// Accepted means the value matched, possibly after case or spelling normalization.
	Accepted Outcome = iota
	// AutoCorrected means an unknown value was replaced by a close match.
	AutoCorrected
	// Unverified means a free-text value was not found but passed through.
	Unverified
	// Rejected means the value could not be resolved.
	Rejected
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case AutoCorrected:
		return "auto_corrected"
	case Unverified:
		return "unverified"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Result is the outcome of correcting one value or one list. It is built
// fresh on every call from the input and the current vocabulary snapshot.
type Result struct {
	Kind     Kind    `json:"kind"`
	Outcome  Outcome `json:"-"`
	Original string  `json:"original"`

	// Canonical is the corrected value; lists are joined with commas.
	Canonical string `json:"canonical,omitempty"`

	// Confidence is the similarity that justified an auto-correction.
	Confidence float64 `json:"confidence,omitempty"`

	Suggestions []string `json:"suggestions,omitempty"`
	Warning     string   `json:"warning,omitempty"`

	// Items holds per-element results for list-valued kinds.
	Items []Result `json:"items,omitempty"`

	// IDs holds the parsed identifiers for provided_ids.
	IDs []int64 `json:"ids,omitempty"`
}

func accepted(kind Kind, original, canonical string) Result {
	return Result{Kind: kind, Outcome: Accepted, Original: original, Canonical: canonical}
}

func autoCorrected(kind Kind, original, canonical string, confidence float64) Result {
	return Result{
		Kind:       kind,
		Outcome:    AutoCorrected,
		Original:   original,
		Canonical:  canonical,
		Confidence: confidence,
	}
}

func unverified(kind Kind, original, warning string, suggestions []string) Result {
	return Result{
		Kind:        kind,
		Outcome:     Unverified,
		Original:    original,
		Canonical:   original,
		Suggestions: suggestions,
		Warning:     warning,
	}
}

func rejected(kind Kind, original string, suggestions []string) Result {
	return Result{Kind: kind, Outcome: Rejected, Original: original, Suggestions: suggestions}
}

// Resolved returns true unless the value was rejected.
func (r Result) Resolved() bool {
	return r.Outcome != Rejected
}

// Corrected returns true if this value or any list element was auto-corrected.
func (r Result) Corrected() bool {
	if r.Outcome == AutoCorrected {
		return true
	}
	for _, item := range r.Items {
		if item.Outcome == AutoCorrected {
			return true
		}
	}
	return false
}

// Unresolved returns the list elements that were rejected.
func (r Result) Unresolved() []Result {
	var out []Result
	for _, item := range r.Items {
		if !item.Resolved() {
			out = append(out, item)
		}
	}
	return out
}

// Values returns the resolved canonical values in input order.
func (r Result) Values() []string {
	if len(r.Items) == 0 {
		if r.Resolved() && r.Canonical != "" {
			return []string{r.Canonical}
		}
		return nil
	}
	out := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		if item.Resolved() {
			out = append(out, item.Canonical)
		}
	}
	return out
}

// aggregate folds element results into one list result. The list outcome is
// the most notable resolved outcome; rejected elements stay in Items.
func aggregate(kind Kind, original string, items []Result) Result {
	res := Result{Kind: kind, Outcome: Accepted, Original: original, Items: items}

	var resolved int
	var warnings []string
	for _, item := range items {
		if !item.Resolved() {
			res.Suggestions = appendUnique(res.Suggestions, item.Suggestions...)
			continue
		}
		resolved++
		if rank(item.Outcome) > rank(res.Outcome) {
			res.Outcome = item.Outcome
		}
		if item.Outcome == Unverified {
			res.Suggestions = appendUnique(res.Suggestions, item.Suggestions...)
		}
		if item.Warning != "" {
			warnings = append(warnings, item.Warning)
		}
	}

	if resolved == 0 {
		res.Outcome = Rejected
		return res
	}

	res.Canonical = strings.Join(res.Values(), ",")
	res.Warning = strings.Join(warnings, "; ")
	if res.Outcome == AutoCorrected && len(items) == 1 {
		res.Confidence = items[0].Confidence
	}
	return res
}

func rank(o Outcome) int {
	switch o {
	case AutoCorrected:
		return 2
	case Unverified:
		return 1
	default:
		return 0
	}
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		dup := false
		for _, d := range dst {
			if d == v {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, v)
		}
	}
	return dst
}
