package vocabulary_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aiera-inc/aiera-mcp/domain/vocabulary"
)

func TestNormalizeTicker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"AAPL:US", "AAPL:US"},
		{"aapl:us", "AAPL:US"},
		{"  aapl  ", "AAPL"},
		{"AAPL US", "AAPL:US"},
		{"aapl us equity", "AAPL:US"},
		{"VOD LN Equity", "VOD:LN"},
		{"AAPL : US", "AAPL:US"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := vocabulary.NormalizeTicker(tt.input); got != tt.want {
				t.Errorf("NormalizeTicker(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestQualifyTicker(t *testing.T) {
	t.Parallel()

	if got := vocabulary.QualifyTicker("msft"); got != "MSFT:US" {
		t.Errorf("QualifyTicker(msft) = %q, want MSFT:US", got)
	}
	if got := vocabulary.QualifyTicker("vod ln"); got != "VOD:LN" {
		t.Errorf("QualifyTicker(vod ln) = %q, want VOD:LN", got)
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    vocabulary.Kind
		wantErr bool
	}{
		{"ticker", vocabulary.KindTicker, false},
		{"bloomberg_ticker", vocabulary.KindTicker, false},
		{"Categories", vocabulary.KindCategory, false},
		{"keywords", vocabulary.KindKeyword, false},
		{"event_type", vocabulary.KindEventType, false},
		{"section", vocabulary.KindTranscriptSection, false},
		{"sector", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := vocabulary.ParseKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, vocabulary.ErrUnknownKind) {
				t.Errorf("error = %v, want ErrUnknownKind", err)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSnapshot_Lookup(t *testing.T) {
	t.Parallel()

	snap := vocabulary.NewSnapshot(map[vocabulary.Kind][]string{
		vocabulary.KindTicker:   {"AAPL:US", "vod ln", "SHEL:LN", "SHEL:US", "msft"},
		vocabulary.KindCategory: {"Annual Report", "Press Release"},
	})

	tests := []struct {
		name  string
		kind  vocabulary.Kind
		raw   string
		want  []string
		found bool
	}{
		{"exact ticker", vocabulary.KindTicker, "AAPL:US", []string{"AAPL:US"}, true},
		{"lower ticker", vocabulary.KindTicker, " aapl:us ", []string{"AAPL:US"}, true},
		{"bloomberg spelling", vocabulary.KindTicker, "AAPL US Equity", []string{"AAPL:US"}, true},
		{"bare ticker", vocabulary.KindTicker, "aapl", []string{"AAPL:US"}, true},
		{"qualified on load", vocabulary.KindTicker, "MSFT:US", []string{"MSFT:US"}, true},
		{"ambiguous bare ticker", vocabulary.KindTicker, "shel", []string{"SHEL:LN", "SHEL:US"}, true},
		{"unknown ticker", vocabulary.KindTicker, "ZZZZ", nil, false},
		{"category case", vocabulary.KindCategory, "annual  report", []string{"Annual Report"}, true},
		{"event type builtin", vocabulary.KindEventType, "Shareholder Meeting", []string{"shareholder_meeting"}, true},
		{"section builtin", vocabulary.KindTranscriptSection, "Q-and-A", []string{"q_and_a"}, true},
		{"empty keyword vocab", vocabulary.KindKeyword, "ai", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := snap.Lookup(tt.kind, tt.raw)
			if ok != tt.found {
				t.Fatalf("Lookup(%s, %q) found = %v, want %v", tt.kind, tt.raw, ok, tt.found)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Lookup(%s, %q) mismatch (-want +got):\n%s", tt.kind, tt.raw, diff)
			}
		})
	}
}

func TestSnapshot_All(t *testing.T) {
	t.Parallel()

	snap := vocabulary.NewSnapshot(map[vocabulary.Kind][]string{
		vocabulary.KindKeyword:   {"guidance", "Guidance", "margin"},
		vocabulary.KindEventType: {"ignored"},
	})

	if diff := cmp.Diff([]string{"guidance", "margin"}, snap.All(vocabulary.KindKeyword)); diff != "" {
		t.Errorf("All(keyword) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(vocabulary.EventTypes, snap.All(vocabulary.KindEventType)); diff != "" {
		t.Errorf("All(event_type) mismatch (-want +got):\n%s", diff)
	}

	all := snap.All(vocabulary.KindKeyword)
	all[0] = "mutated"
	if snap.All(vocabulary.KindKeyword)[0] != "guidance" {
		t.Error("All() should return a copy")
	}
}

func TestSnapshot_With(t *testing.T) {
	t.Parallel()

	base := vocabulary.NewSnapshot(map[vocabulary.Kind][]string{
		vocabulary.KindCategory: {"Press Release"},
	})

	next, err := base.With(vocabulary.KindKeyword, []string{"buyback"})
	if err != nil {
		t.Fatalf("With() error = %v", err)
	}
	if !next.Contains(vocabulary.KindKeyword, "BUYBACK") {
		t.Error("new snapshot should contain the replaced kind")
	}
	if !next.Contains(vocabulary.KindCategory, "press release") {
		t.Error("new snapshot should keep other kinds")
	}
	if base.Contains(vocabulary.KindKeyword, "buyback") {
		t.Error("original snapshot must not change")
	}

	if _, err := base.With(vocabulary.KindEventType, []string{"x"}); !errors.Is(err, vocabulary.ErrClosedKind) {
		t.Errorf("With(event_type) error = %v, want ErrClosedKind", err)
	}
	if _, err := base.With("sector", nil); !errors.Is(err, vocabulary.ErrUnknownKind) {
		t.Errorf("With(sector) error = %v, want ErrUnknownKind", err)
	}
}

func TestStore(t *testing.T) {
	t.Parallel()

	t.Run("nil initial is empty", func(t *testing.T) {
		t.Parallel()

		store := vocabulary.NewStore(nil)
		if store.Snapshot().Len(vocabulary.KindTicker) != 0 {
			t.Error("empty store should have no tickers")
		}
		if store.Snapshot().Len(vocabulary.KindEventType) != len(vocabulary.EventTypes) {
			t.Error("empty store should still have event types")
		}
	})

	t.Run("publish swaps snapshot", func(t *testing.T) {
		t.Parallel()

		store := vocabulary.NewStore(nil)
		old := store.Snapshot()
		store.Publish(vocabulary.NewSnapshot(map[vocabulary.Kind][]string{
			vocabulary.KindTicker: {"AAPL:US"},
		}))

		if old.Contains(vocabulary.KindTicker, "AAPL:US") {
			t.Error("held snapshot should not see the new values")
		}
		if !store.Snapshot().Contains(vocabulary.KindTicker, "AAPL:US") {
			t.Error("store should serve the published snapshot")
		}

		store.Publish(nil)
		if store.Snapshot() == nil {
			t.Error("publishing nil should be ignored")
		}
	})

	t.Run("concurrent replace keeps every kind", func(t *testing.T) {
		t.Parallel()

		store := vocabulary.NewStore(nil)
		var wg sync.WaitGroup
		for _, kind := range []vocabulary.Kind{vocabulary.KindTicker, vocabulary.KindCategory, vocabulary.KindKeyword} {
			wg.Add(1)
			go func(k vocabulary.Kind) {
				defer wg.Done()
				if err := store.Replace(k, []string{"value"}); err != nil {
					t.Errorf("Replace(%s) error = %v", k, err)
				}
			}(kind)
		}
		wg.Wait()

		snap := store.Snapshot()
		for _, kind := range []vocabulary.Kind{vocabulary.KindTicker, vocabulary.KindCategory, vocabulary.KindKeyword} {
			if snap.Len(kind) != 1 {
				t.Errorf("Len(%s) = %d, want 1", kind, snap.Len(kind))
			}
		}
	})
}
