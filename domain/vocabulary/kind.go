// Package vocabulary provides the sets of known-valid values for correctable
// tool parameters and the snapshot store that serves lookups against them.
package vocabulary

import (
	"fmt"
	"strings"
)

// Kind identifies a correctable field whose values are checked against a vocabulary.
type Kind string

const (
	KindTicker            Kind = "ticker"
	KindCategory          Kind = "category"
	KindKeyword           Kind = "keyword"
	KindEventType         Kind = "event_type"
	KindTranscriptSection Kind = "transcript_section"
)

// Kinds returns every vocabulary kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindTicker, KindCategory, KindKeyword, KindEventType, KindTranscriptSection}
}

// Valid returns true if the kind is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindTicker, KindCategory, KindKeyword, KindEventType, KindTranscriptSection:
		return true
	default:
		return false
	}
}

// Closed returns true for small fixed enumerations that are compiled in
// and never refreshed from a source.
func (k Kind) Closed() bool {
	return k == KindEventType || k == KindTranscriptSection
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// ParseKind parses a kind name. Plural forms and parameter names are accepted.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ticker", "tickers", "bloomberg_ticker":
		return KindTicker, nil
	case "category", "categories":
		return KindCategory, nil
	case "keyword", "keywords":
		return KindKeyword, nil
	case "event_type", "event_types":
		return KindEventType, nil
	case "transcript_section", "transcript_sections", "section":
		return KindTranscriptSection, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Event types accepted by the upstream API.
var EventTypes = []string{
	"earnings",
	"presentation",
	"shareholder_meeting",
	"investor_meeting",
	"special_situation",
}

// TranscriptSections are the sections a transcript can be filtered by.
var TranscriptSections = []string{
	"presentation",
	"q_and_a",
}
