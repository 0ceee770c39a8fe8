// Package quarter derives the ordered set of known quarters and per-quarter
// reporting coverage from a snapshot store.
package quarter

import (
	"slices"

	"github.com/newthinker/holdings/internal/core"
	"github.com/newthinker/holdings/internal/store"
)

// DefaultMinCoveragePercent is the share of active investors that must have
// reported before a quarter counts as current.
const DefaultMinCoveragePercent = 50.0

// Index is derived once from a store and never changes afterwards.
type Index struct {
	quarters []core.Quarter            // newest first
	coverage map[core.Quarter][]string // sorted slugs
	active   int
}

// NewIndex scans every investor history in s.
func NewIndex(s *store.Store) *Index {
	ix := &Index{coverage: make(map[core.Quarter][]string)}

	for _, slug := range s.Active() {
		h, _ := s.History(slug)
		for _, snap := range h.Snapshots {
			ix.coverage[snap.Quarter] = append(ix.coverage[snap.Quarter], slug)
		}
	}
	ix.active = len(s.Active())

	for q := range ix.coverage {
		ix.quarters = append(ix.quarters, q)
	}
	ix.quarters = core.SortDescending(ix.quarters)
	return ix
}

// All returns every known quarter, newest first.
func (ix *Index) All() []core.Quarter {
	return slices.Clone(ix.quarters)
}

// Contains reports whether any investor reported in q.
func (ix *Index) Contains(q core.Quarter) bool {
	_, ok := ix.coverage[q]
	return ok
}

// Coverage returns the slugs of investors with a snapshot exactly at q.
func (ix *Index) Coverage(q core.Quarter) []string {
	return slices.Clone(ix.coverage[q])
}

// CoverageCount returns len(Coverage(q)).
func (ix *Index) CoverageCount(q core.Quarter) int {
	return len(ix.coverage[q])
}

// CoveragePercent returns the share of active investors that reported in q.
func (ix *Index) CoveragePercent(q core.Quarter) float64 {
	if ix.active == 0 {
		return 0
	}
	return float64(len(ix.coverage[q])) / float64(ix.active) * 100
}

// ActiveInvestors returns the number of investors with any snapshot.
func (ix *Index) ActiveInvestors() int {
	return ix.active
}

// SmartLatest walks quarters from newest to oldest and returns the first
// whose coverage reaches minCoveragePercent. Filings arrive over several
// weeks, so the newest quarter is usually only partially reported. When no
// quarter qualifies the newest quarter is returned. The bool is false only
// when the index is empty.
func (ix *Index) SmartLatest(minCoveragePercent float64) (core.Quarter, bool) {
	if len(ix.quarters) == 0 {
		return core.Quarter{}, false
	}
	for _, q := range ix.quarters {
		if ix.CoveragePercent(q) >= minCoveragePercent {
			return q, true
		}
	}
	return ix.quarters[0], true
}

// Last returns up to n known quarters ending at (and including) end,
// newest first.
func (ix *Index) Last(end core.Quarter, n int) []core.Quarter {
	var out []core.Quarter
	for _, q := range ix.quarters {
		if len(out) >= n {
			break
		}
		if !q.After(end) {
			out = append(out, q)
		}
	}
	return out
}
