package vocabulary

import (
	"fmt"
	"strings"
	"time"
)

// Snapshot is an immutable view of every vocabulary. Lookups against one
// snapshot never observe a later refresh.
type Snapshot struct {
	values   map[Kind][]string
	index    map[Kind]map[string][]string
	loadedAt time.Time
}

// NewSnapshot builds a snapshot from per-kind value lists. Closed
// enumerations are always compiled in and any values supplied for them
// are ignored. Spellings that share a lookup key keep the first occurrence.
func NewSnapshot(values map[Kind][]string) *Snapshot {
	s := &Snapshot{
		values:   make(map[Kind][]string, len(Kinds())),
		index:    make(map[Kind]map[string][]string, len(Kinds())),
		loadedAt: time.Now(),
	}
	for _, kind := range Kinds() {
		switch kind {
		case KindEventType:
			s.set(kind, EventTypes)
		case KindTranscriptSection:
			s.set(kind, TranscriptSections)
		default:
			s.set(kind, values[kind])
		}
	}
	return s
}

// EmptySnapshot returns a snapshot holding only the closed enumerations.
func EmptySnapshot() *Snapshot {
	return NewSnapshot(nil)
}

func (s *Snapshot) set(kind Kind, raw []string) {
	values := make([]string, 0, len(raw))
	idx := make(map[string][]string, len(raw))
	seen := make(map[string]bool, len(raw))

	for _, r := range raw {
		canonical := canonicalize(kind, r)
		key := Key(kind, canonical)
		if canonical == "" || seen[key] {
			continue
		}
		seen[key] = true
		values = append(values, canonical)
		idx[key] = append(idx[key], canonical)
		if kind == KindTicker {
			local, _ := SplitTicker(canonical)
			if local != key {
				idx[local] = append(idx[local], canonical)
			}
		}
	}

	s.values[kind] = values
	s.index[kind] = idx
}

// With returns a new snapshot with the values of one kind replaced.
func (s *Snapshot) With(kind Kind, values []string) (*Snapshot, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if kind.Closed() {
		return nil, fmt.Errorf("%w: %s", ErrClosedKind, kind)
	}

	next := &Snapshot{
		values:   make(map[Kind][]string, len(s.values)),
		index:    make(map[Kind]map[string][]string, len(s.index)),
		loadedAt: time.Now(),
	}
	for k, v := range s.values {
		next.values[k] = v
		next.index[k] = s.index[k]
	}
	next.set(kind, values)
	return next, nil
}

// Lookup resolves a raw value to its canonical spellings. A bare ticker
// listed on several exchanges returns every candidate in vocabulary order.
func (s *Snapshot) Lookup(kind Kind, raw string) ([]string, bool) {
	idx, ok := s.index[kind]
	if !ok {
		return nil, false
	}
	matches, ok := idx[Key(kind, raw)]
	if !ok || len(matches) == 0 {
		return nil, false
	}
	out := make([]string, len(matches))
	copy(out, matches)
	return out, true
}

// Contains returns true if the raw value resolves to exactly one canonical value.
func (s *Snapshot) Contains(kind Kind, raw string) bool {
	matches, ok := s.Lookup(kind, raw)
	return ok && len(matches) == 1
}

// All returns the canonical values of a kind in vocabulary order.
func (s *Snapshot) All(kind Kind) []string {
	values := s.values[kind]
	out := make([]string, len(values))
	copy(out, values)
	return out
}

// Len returns the number of canonical values of a kind.
func (s *Snapshot) Len(kind Kind) int {
	return len(s.values[kind])
}

// LoadedAt returns when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Key returns the lookup key for a raw value of the given kind.
func Key(kind Kind, raw string) string {
	switch kind {
	case KindTicker:
		return NormalizeTicker(raw)
	case KindEventType, KindTranscriptSection:
		return enumKey(raw)
	default:
		return strings.ToLower(strings.Join(strings.Fields(raw), " "))
	}
}

// canonicalize returns the stored spelling of a vocabulary value.
func canonicalize(kind Kind, raw string) string {
	switch kind {
	case KindTicker:
		return QualifyTicker(raw)
	case KindEventType, KindTranscriptSection:
		return enumKey(raw)
	default:
		return strings.Join(strings.Fields(raw), " ")
	}
}

func enumKey(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return s
}
