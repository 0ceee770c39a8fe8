// Package store holds the loaded, read-only collection of investor histories.
package store

import (
	"fmt"
	"slices"

	"github.com/newthinker/holdings/internal/core"
)

// Store is an immutable set of investor histories keyed by slug.
// It is safe for concurrent use because nothing mutates it after New.
type Store struct {
	histories map[string]core.InvestorHistory
	slugs     []string // sorted
	active    []string // sorted, investors with at least one snapshot
}

// New validates every history and builds a store. Structural problems
// (duplicate slug, duplicate identifier, negative amounts, non-increasing
// quarters) are returned as core.ErrInvariantViolation.
func New(histories []core.InvestorHistory) (*Store, error) {
	s := &Store{
		histories: make(map[string]core.InvestorHistory, len(histories)),
	}

	for _, h := range histories {
		if err := h.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.histories[h.Slug]; dup {
			return nil, core.WrapError(core.ErrInvariantViolation, fmt.Errorf("duplicate investor slug %s", h.Slug))
		}
		s.histories[h.Slug] = h
		s.slugs = append(s.slugs, h.Slug)
		if len(h.Snapshots) > 0 {
			s.active = append(s.active, h.Slug)
		}
	}

	slices.Sort(s.slugs)
	slices.Sort(s.active)
	return s, nil
}

// Investors returns every investor slug in sorted order.
func (s *Store) Investors() []string {
	return slices.Clone(s.slugs)
}

// Active returns the slugs of investors with at least one snapshot.
func (s *Store) Active() []string {
	return slices.Clone(s.active)
}

// History returns the history for slug.
func (s *Store) History(slug string) (core.InvestorHistory, bool) {
	h, ok := s.histories[slug]
	return h, ok
}

// Latest returns the investor's most recent snapshot, or ErrMissingData
// when the investor is unknown or has never reported.
func (s *Store) Latest(slug string) (core.Snapshot, error) {
	h, ok := s.histories[slug]
	if !ok {
		return core.Snapshot{}, core.WrapError(core.ErrMissingData, fmt.Errorf("unknown investor %s", slug))
	}
	snap, ok := h.Latest()
	if !ok {
		return core.Snapshot{}, core.WrapError(core.ErrMissingData, fmt.Errorf("investor %s", slug))
	}
	return snap, nil
}

// At returns the snapshot the investor reported exactly at q.
func (s *Store) At(slug string, q core.Quarter) (core.Snapshot, bool) {
	return s.histories[slug].At(q)
}

// Before returns the investor's last reported snapshot strictly before q.
func (s *Store) Before(slug string, q core.Quarter) (core.Snapshot, bool) {
	return s.histories[slug].Before(q)
}

// Len returns the number of investors.
func (s *Store) Len() int {
	return len(s.slugs)
}

// SnapshotCount returns the total number of snapshots across investors.
func (s *Store) SnapshotCount() int {
	n := 0
	for _, h := range s.histories {
		n += len(h.Snapshots)
	}
	return n
}
