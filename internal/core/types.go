package core

import (
	"fmt"
	"math"
	"time"
)

// Position is a single holding line within one snapshot.
type Position struct {
	Identifier string  `json:"identifier"` // custodian security identifier, unique per snapshot
	Ticker     string  `json:"ticker,omitempty"`
	Name       string  `json:"name"`
	Shares     int64   `json:"shares"`
	Value      float64 `json:"value"` // market value at filing time
}

// Validate checks the per-position invariants.
func (p Position) Validate() error {
	if p.Identifier == "" {
		return fmt.Errorf("position %q has no identifier", p.Name)
	}
	if p.Shares < 0 {
		return fmt.Errorf("position %s has negative shares %d", p.Identifier, p.Shares)
	}
	if p.Value < 0 || math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
		return fmt.Errorf("position %s has invalid value %v", p.Identifier, p.Value)
	}
	return nil
}

// Snapshot is one investor's reported portfolio as of one quarter.
type Snapshot struct {
	Quarter   Quarter    `json:"quarter"`
	AsOfDate  time.Time  `json:"as_of"`
	Positions []Position `json:"positions"`
}

// ByIdentifier returns the positions keyed by identifier.
func (s Snapshot) ByIdentifier() map[string]Position {
	m := make(map[string]Position, len(s.Positions))
	for _, p := range s.Positions {
		m[p.Identifier] = p
	}
	return m
}

// TotalValue sums the value of all positions.
func (s Snapshot) TotalValue() float64 {
	var total float64
	for _, p := range s.Positions {
		total += p.Value
	}
	return total
}

// Validate checks identifier uniqueness and every position.
func (s Snapshot) Validate() error {
	seen := make(map[string]struct{}, len(s.Positions))
	for _, p := range s.Positions {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%s: %w", s.Quarter, err)
		}
		if _, dup := seen[p.Identifier]; dup {
			return fmt.Errorf("%s: duplicate identifier %s", s.Quarter, p.Identifier)
		}
		seen[p.Identifier] = struct{}{}
	}
	return nil
}

// InvestorHistory is one investor's snapshots ordered by quarter.
// Missing quarters mean "no data", never an empty portfolio.
type InvestorHistory struct {
	Slug      string     `json:"slug"`
	Name      string     `json:"name,omitempty"`
	Snapshots []Snapshot `json:"snapshots"`
}

// Validate checks that quarters are strictly increasing and that each
// snapshot is well formed. Violations wrap ErrInvariantViolation.
func (h InvestorHistory) Validate() error {
	if h.Slug == "" {
		return WrapError(ErrInvariantViolation, fmt.Errorf("investor history without slug"))
	}
	for i, s := range h.Snapshots {
		if s.Quarter.IsZero() {
			return WrapError(ErrInvariantViolation, fmt.Errorf("%s: snapshot %d has no quarter", h.Slug, i))
		}
		if i > 0 && !h.Snapshots[i-1].Quarter.Before(s.Quarter) {
			return WrapError(ErrInvariantViolation,
				fmt.Errorf("%s: quarters not strictly increasing (%s then %s)", h.Slug, h.Snapshots[i-1].Quarter, s.Quarter))
		}
		if err := s.Validate(); err != nil {
			return WrapError(ErrInvariantViolation, fmt.Errorf("%s: %w", h.Slug, err))
		}
	}
	return nil
}

// Quarters returns the reported quarters in ascending order.
func (h InvestorHistory) Quarters() []Quarter {
	out := make([]Quarter, len(h.Snapshots))
	for i, s := range h.Snapshots {
		out[i] = s.Quarter
	}
	return out
}

// Latest returns the most recent snapshot.
func (h InvestorHistory) Latest() (Snapshot, bool) {
	if len(h.Snapshots) == 0 {
		return Snapshot{}, false
	}
	return h.Snapshots[len(h.Snapshots)-1], true
}

// At returns the snapshot reported exactly at q.
func (h InvestorHistory) At(q Quarter) (Snapshot, bool) {
	i := h.search(q)
	if i < len(h.Snapshots) && h.Snapshots[i].Quarter == q {
		return h.Snapshots[i], true
	}
	return Snapshot{}, false
}

// Before returns the last snapshot reported strictly before q.
func (h InvestorHistory) Before(q Quarter) (Snapshot, bool) {
	i := h.search(q)
	if i == 0 {
		return Snapshot{}, false
	}
	return h.Snapshots[i-1], true
}

// search returns the index of the first snapshot not before q.
func (h InvestorHistory) search(q Quarter) int {
	lo, hi := 0, len(h.Snapshots)
	for lo < hi {
		mid := (lo + hi) / 2
		if h.Snapshots[mid].Quarter.Before(q) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
