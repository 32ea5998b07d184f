// Package correction normalizes caller-supplied tool parameters against the
// known vocabularies. Every field kind goes through the single Engine.Correct
// entry point.
package correction

import (
	"fmt"
	"strings"

	"github.com/aiera-inc/aiera-mcp/domain/vocabulary"
)

// Kind is a correctable parameter kind. The set is closed: adding a kind
// means extending this enumeration and the dispatch in Engine.Correct.
type Kind string

const (
	KindTicker            = Kind(vocabulary.KindTicker)
	KindCategory          = Kind(vocabulary.KindCategory)
	KindKeyword           = Kind(vocabulary.KindKeyword)
	KindEventType         = Kind(vocabulary.KindEventType)
	KindTranscriptSection = Kind(vocabulary.KindTranscriptSection)
	KindProvidedIDs       Kind = "provided_ids"
)

// Kinds returns every correctable kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindTicker, KindCategory, KindKeyword, KindEventType, KindTranscriptSection, KindProvidedIDs}
}

// ListValued returns true for kinds that accept comma-separated lists.
func (k Kind) ListValued() bool {
	switch k {
	case KindTicker, KindCategory, KindKeyword, KindProvidedIDs:
		return true
	default:
		return false
	}
}

// Vocabulary returns the vocabulary kind backing this field, if any.
func (k Kind) Vocabulary() (vocabulary.Kind, bool) {
	if k == KindProvidedIDs {
		return "", false
	}
	vk := vocabulary.Kind(k)
	return vk, vk.Valid()
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// ParseKind parses a kind name, accepting the vocabulary spellings and
// the provided-id aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "provided_ids", "ids", "id_list":
		return KindProvidedIDs, nil
	}
	vk, err := vocabulary.ParseKind(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return Kind(vk), nil
}
