package analytics

import (
	"sort"

	"github.com/newthinker/holdings/internal/core"
	"github.com/newthinker/holdings/internal/differ"
	"github.com/newthinker/holdings/internal/identity"
)

// Exit is one investor's exit from a ticker.
type Exit struct {
	Investor string       `json:"investor"`
	Quarter  core.Quarter `json:"quarter"` // quarter of the final exit in the window
	Value    float64      `json:"value"`   // prior value given up
	Shares   int64        `json:"shares"`
}

// ExitGroup collects the investors that exited one ticker.
type ExitGroup struct {
	Ticker     string  `json:"ticker"`
	Name       string  `json:"name"`
	ExitedBy   []Exit  `json:"exited_by"`
	TotalValue float64 `json:"total_value"`
}

// Exits is the result of ExitTracker.
type Exits struct {
	Window Window      `json:"window"`
	Groups []ExitGroup `json:"groups"`
}

// ExitTracker lists tickers investors exited within the window. An
// investor counts at most once per ticker, and only when the ticker is no
// longer held in their last report within the window.
func (e *Engine) ExitTracker(quarters []core.Quarter) Exits {
	w := e.ResolveWindow(quarters)
	if w.Empty() {
		return Exits{Window: w}
	}

	return compute(e, ViewExits, []any{w.Quarters}, func() Exits {
		groups := map[string]*ExitGroup{}

		for _, slug := range e.investors() {
			steps := e.transitions(slug, w)
			if len(steps) == 0 {
				continue
			}

			exits := map[string]*Exit{}
			names := map[string]string{}
			for _, step := range steps {
				stepExits := map[string]*Exit{}
				for _, r := range step.records {
					if r.Classification != differ.Exited {
						continue
					}
					ex := stepExits[r.Ticker]
					if ex == nil {
						ex = &Exit{Investor: slug, Quarter: step.quarter}
						stepExits[r.Ticker] = ex
					}
					ex.Value += r.Position.Value
					ex.Shares += r.Position.Shares
					names[r.Ticker] = r.Name
				}
				// a later exit replaces an earlier one
				for ticker, ex := range stepExits {
					exits[ticker] = ex
				}
			}

			held := heldTickers(steps[len(steps)-1].snapshot)
			for ticker, ex := range exits {
				if held[ticker] {
					continue
				}
				g := groups[ticker]
				if g == nil {
					g = &ExitGroup{Ticker: ticker, Name: names[ticker]}
					groups[ticker] = g
				}
				g.ExitedBy = append(g.ExitedBy, *ex)
				g.TotalValue += ex.Value
			}
		}

		out := Exits{Window: w, Groups: make([]ExitGroup, 0, len(groups))}
		for _, g := range groups {
			out.Groups = append(out.Groups, *g)
		}
		sort.Slice(out.Groups, func(i, j int) bool { return out.Groups[i].Ticker < out.Groups[j].Ticker })
		return out
	})
}

func heldTickers(s core.Snapshot) map[string]bool {
	held := make(map[string]bool, len(s.Positions))
	for _, p := range s.Positions {
		held[identity.ResolveTicker(p)] = true
	}
	return held
}
