package fuzzy

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMatcher_Suggest(t *testing.T) {
	t.Parallel()

	tools := []string{"find_events", "get_event", "find_filings", "get_filing", "find_equities"}

	tests := []struct {
		name       string
		raw        string
		candidates []string
		max        int
		want       []string
	}{
		{
			name:       "nearest first",
			raw:        "find_event",
			candidates: tools,
			max:        2,
			want:       []string{"find_events", "get_event"},
		},
		{
			name:       "case insensitive",
			raw:        "GET_FILING",
			candidates: tools,
			max:        1,
			want:       []string{"get_filing"},
		},
		{
			name:       "nothing above threshold",
			raw:        "xyz",
			candidates: tools,
			max:        3,
			want:       []string{},
		},
		{
			name:       "empty candidates",
			raw:        "find_events",
			candidates: nil,
			max:        3,
			want:       []string{},
		},
		{
			name:       "ties keep input order",
			raw:        "abcx",
			candidates: []string{"abce", "abcd"},
			max:        0,
			want:       []string{"abce", "abcd"},
		},
		{
			name:       "ties keep input order reversed",
			raw:        "abcx",
			candidates: []string{"abcd", "abce"},
			max:        0,
			want:       []string{"abcd", "abce"},
		},
	}

	m := NewMatcher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Candidates(m.Suggest(tt.raw, tt.candidates, tt.max))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Suggest(%q) mismatch (-want +got):\n%s", tt.raw, diff)
			}
		})
	}
}

func TestMatcher_SuggestScoresDescending(t *testing.T) {
	t.Parallel()

	matches := NewMatcher().Suggest("get_events", []string{"find_events", "get_event", "get_upcoming_events"}, 0)
	if len(matches) == 0 {
		t.Fatal("expected matches")
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("scores not descending at %d: %v", i, matches)
		}
	}
	for _, m := range matches {
		if m.Score < DefaultThreshold {
			t.Errorf("match %q scored %.3f below threshold", m.Candidate, m.Score)
		}
	}
}

func TestMatcher_Deterministic(t *testing.T) {
	t.Parallel()

	candidates := []string{"AAPL:US", "AMZN:US", "APP:US", "MSFT:US"}
	m := NewMatcher()
	first := m.Suggest("APPL:US", candidates, 5)
	for i := 0; i < 10; i++ {
		if diff := cmp.Diff(first, m.Suggest("APPL:US", candidates, 5)); diff != "" {
			t.Fatalf("run %d differs (-first +got):\n%s", i, diff)
		}
	}
}

func TestMatcher_WithThreshold(t *testing.T) {
	t.Parallel()

	m := NewMatcher().WithThreshold(0.9)
	if got := m.Suggest("APPL:US", []string{"AAPL:US"}, 1); len(got) != 0 {
		t.Errorf("Suggest() = %v, want none above 0.9", got)
	}
	if got := NewMatcher().Suggest("APPL:US", []string{"AAPL:US"}, 1); len(got) != 1 {
		t.Errorf("Suggest() = %v, want one match at default threshold", got)
	}
}

func TestScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want float64
	}{
		{"abc", "abc", 1},
		{"ABC", "abc", 1},
		{"abc", "xyz", 0},
		{"APPL:US", "AAPL:US", 12.0 / 14.0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			t.Parallel()

			if got := Score(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
