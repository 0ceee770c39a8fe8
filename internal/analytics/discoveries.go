package analytics

import (
	"sort"

	"github.com/newthinker/holdings/internal/core"
	"github.com/newthinker/holdings/internal/differ"
)

// Discovery is an investor's first ever position in a ticker.
type Discovery struct {
	Investor string       `json:"investor"`
	Quarter  core.Quarter `json:"quarter"`
	Value    float64      `json:"value"`
	Shares   int64        `json:"shares"`
}

// DiscoveryGroup collects the investors that discovered one ticker.
type DiscoveryGroup struct {
	Ticker       string      `json:"ticker"`
	Name         string      `json:"name"`
	DiscoveredBy []Discovery `json:"discovered_by"`
	TotalValue   float64     `json:"total_value"`
}

// Discoveries is the result of NewDiscoveries.
type Discoveries struct {
	Window Window           `json:"window"`
	Groups []DiscoveryGroup `json:"groups"`
}

// NewDiscoveries lists new positions in tickers the investor never held in
// any earlier snapshot of their full history, including quarters before
// the window. Re-entries are not discoveries.
func (e *Engine) NewDiscoveries(quarters []core.Quarter) Discoveries {
	w := e.ResolveWindow(quarters)
	if w.Empty() {
		return Discoveries{Window: w}
	}

	return compute(e, ViewDiscoveries, []any{w.Quarters}, func() Discoveries {
		groups := map[string]*DiscoveryGroup{}

		for _, slug := range e.investors() {
			h, _ := e.store.History(slug)
			seen := map[string]bool{}

			for _, snap := range h.Snapshots {
				if snap.Quarter.After(w.Newest()) {
					break
				}
				if w.Contains(snap.Quarter) {
					step, _ := e.diff(slug, snap.Quarter)
					found := map[string]*Discovery{}
					names := map[string]string{}
					for _, r := range step.records {
						if r.Classification != differ.New || seen[r.Ticker] {
							continue
						}
						d := found[r.Ticker]
						if d == nil {
							d = &Discovery{Investor: slug, Quarter: snap.Quarter}
							found[r.Ticker] = d
						}
						d.Value += r.Position.Value
						d.Shares += r.Position.Shares
						names[r.Ticker] = r.Name
					}

					for ticker, d := range found {
						g := groups[ticker]
						if g == nil {
							g = &DiscoveryGroup{Ticker: ticker, Name: names[ticker]}
							groups[ticker] = g
						}
						g.DiscoveredBy = append(g.DiscoveredBy, *d)
						g.TotalValue += d.Value
					}
				}

				for ticker := range heldTickers(snap) {
					seen[ticker] = true
				}
			}
		}

		out := Discoveries{Window: w, Groups: make([]DiscoveryGroup, 0, len(groups))}
		for _, g := range groups {
			out.Groups = append(out.Groups, *g)
		}
		sort.Slice(out.Groups, func(i, j int) bool { return out.Groups[i].Ticker < out.Groups[j].Ticker })
		return out
	})
}
