package vocabulary

import (
	"context"
	"sync/atomic"
)

// Source loads vocabulary values from an external location.
// This is a repository interface - implementations are in infrastructure.
type Source interface {
	// Name identifies the source in logs and metrics.
	Name() string

	// Load returns the values it knows for each kind. Kinds it does not
	// serve are absent from the map.
	Load(ctx context.Context) (map[Kind][]string, error)
}

// Store holds the current snapshot. Readers always see a complete snapshot;
// writers publish a new one in a single atomic swap.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates a store serving the given snapshot, or an empty one if nil.
func NewStore(initial *Snapshot) *Store {
	if initial == nil {
		initial = EmptySnapshot()
	}
	s := &Store{}
	s.current.Store(initial)
	return s
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Publish replaces the current snapshot.
func (s *Store) Publish(snap *Snapshot) {
	if snap == nil {
		return
	}
	s.current.Store(snap)
}

// Replace swaps in a snapshot with the values of one kind replaced.
// Concurrent replacements of different kinds are not lost.
func (s *Store) Replace(kind Kind, values []string) error {
	for {
		old := s.current.Load()
		next, err := old.With(kind, values)
		if err != nil {
			return err
		}
		if s.current.CompareAndSwap(old, next) {
			return nil
		}
	}
}
