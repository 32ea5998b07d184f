// Package fuzzy ranks candidate strings by similarity to an input value.
// It backs "did you mean" suggestions for both tool names and parameter values.
package fuzzy

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Default tuning values.
const (
	// DefaultThreshold is the minimum similarity for a candidate to be suggested.
	DefaultThreshold = 0.6

	// DefaultMaxResults bounds the suggestion list when no limit is given.
	DefaultMaxResults = 5
)

// Match is a candidate paired with its similarity to the input, in [0, 1].
type Match struct {
	Candidate string  `json:"candidate"`
	Score     float64 `json:"score"`
}

// Matcher scores candidates with the Ratcliff/Obershelp ratio over
// case-folded characters.
type Matcher struct {
	// Threshold is the minimum score a candidate needs to be returned.
	Threshold float64
}

// NewMatcher creates a matcher with the default threshold.
func NewMatcher() *Matcher {
	return &Matcher{Threshold: DefaultThreshold}
}

// WithThreshold returns a copy of the matcher using a different threshold.
func (m *Matcher) WithThreshold(threshold float64) *Matcher {
	return &Matcher{Threshold: threshold}
}

// Suggest returns up to max candidates scoring at or above the threshold,
// best first. Equal scores keep the order of the candidate list. A max of
// zero or less means no limit.
func (m *Matcher) Suggest(raw string, candidates []string, max int) []Match {
	if len(candidates) == 0 {
		return []Match{}
	}

	word := chars(raw)
	sm := difflib.NewMatcher(nil, word)

	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		sm.SetSeq1(chars(c))
		// Cheap upper bounds first; each is >= Ratio().
		if sm.RealQuickRatio() < m.Threshold || sm.QuickRatio() < m.Threshold {
			continue
		}
		score := sm.Ratio()
		if score < m.Threshold {
			continue
		}
		matches = append(matches, Match{Candidate: c, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if max > 0 && len(matches) > max {
		matches = matches[:max]
	}
	return matches
}

// Score returns the similarity of two strings without applying the threshold.
func Score(a, b string) float64 {
	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

// Candidates extracts the candidate strings from a match list.
func Candidates(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Candidate
	}
	return out
}

func chars(s string) []string {
	s = strings.ToLower(strings.TrimSpace(s))
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
