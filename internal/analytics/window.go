package analytics

import (
	"encoding/json"
	"slices"

	"github.com/newthinker/holdings/internal/core"
)

// Window is the resolved set of quarters a view is computed over.
// An empty window is the explicit "not enough data" marker.
type Window struct {
	Quarters []core.Quarter `json:"quarters"`          // newest first
	Dropped  []core.Quarter `json:"dropped,omitempty"` // requested but unknown
}

// Empty reports whether the window has no valid quarters.
func (w Window) Empty() bool {
	return len(w.Quarters) == 0
}

// Contains reports whether q is part of the window.
func (w Window) Contains(q core.Quarter) bool {
	return slices.Contains(w.Quarters, q)
}

// Newest returns the latest quarter of a non-empty window.
func (w Window) Newest() core.Quarter {
	if w.Empty() {
		return core.Quarter{}
	}
	return w.Quarters[0]
}

// Oldest returns the earliest quarter of a non-empty window.
func (w Window) Oldest() core.Quarter {
	if w.Empty() {
		return core.Quarter{}
	}
	return w.Quarters[len(w.Quarters)-1]
}

// MarshalJSON adds the empty marker to the encoded window.
func (w Window) MarshalJSON() ([]byte, error) {
	type plain Window
	return json.Marshal(struct {
		plain
		Empty bool `json:"empty"`
	}{plain(w), w.Empty()})
}

// ResolveWindow keeps the requested quarters that exist in the index,
// ordered newest first without duplicates. Unknown quarters are listed in
// Dropped.
func (e *Engine) ResolveWindow(quarters []core.Quarter) Window {
	var w Window
	for _, q := range quarters {
		if e.index.Contains(q) {
			w.Quarters = append(w.Quarters, q)
		} else {
			w.Dropped = append(w.Dropped, q)
		}
	}
	w.Quarters = core.SortDescending(w.Quarters)
	w.Dropped = core.SortDescending(w.Dropped)
	return w
}

// LatestWindow is the single smart-latest quarter.
func (e *Engine) LatestWindow() Window {
	q, ok := e.index.SmartLatest(e.cfg.MinCoveragePercent)
	if !ok {
		return Window{}
	}
	return Window{Quarters: []core.Quarter{q}}
}

// LastWindow is up to n known quarters ending at the smart-latest quarter.
func (e *Engine) LastWindow(n int) Window {
	q, ok := e.index.SmartLatest(e.cfg.MinCoveragePercent)
	if !ok || n <= 0 {
		return Window{}
	}
	return Window{Quarters: e.index.Last(q, n)}
}
