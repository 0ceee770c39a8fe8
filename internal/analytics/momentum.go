package analytics

import (
	"sort"

	"github.com/newthinker/holdings/internal/core"
	"github.com/newthinker/holdings/internal/differ"
)

// Direction is the sign of an investor's trading in one ticker over one step.
type Direction string

const (
	Buying  Direction = "buying"
	Selling Direction = "selling"
)

// MomentumDepth is the default number of quarters a momentum window spans.
// A reversal needs two reported steps, so a single quarter never shows one.
const MomentumDepth = 2

// Shifter is an investor who reversed direction on a ticker.
type Shifter struct {
	Investor  string       `json:"investor"`
	Quarter   core.Quarter `json:"quarter"` // quarter of the latest reversal
	From      Direction    `json:"from"`
	To        Direction    `json:"to"`
	Reversals int          `json:"reversals"`
}

// MomentumShift groups the investors that reversed on one ticker.
type MomentumShift struct {
	Ticker   string    `json:"ticker"`
	Name     string    `json:"name"`
	Shifters []Shifter `json:"shifters"` // ordered by investor slug
}

// Momentum is the result of MomentumShifts.
type Momentum struct {
	Window Window          `json:"window"`
	Shifts []MomentumShift `json:"shifts"`
}

// MomentumShifts finds investors that decreased or exited a ticker in one
// reported step and increased or re-entered it in the next, or the other
// way round. Steps are the investor's transitions into each window quarter
// they reported in, each diffed against their previous report.
func (e *Engine) MomentumShifts(quarters []core.Quarter) Momentum {
	w := e.ResolveWindow(quarters)
	if w.Empty() {
		return Momentum{Window: w}
	}

	return compute(e, ViewMomentum, []any{w.Quarters}, func() Momentum {
		groups := map[string]*MomentumShift{}

		for _, slug := range e.investors() {
			steps := e.transitions(slug, w)
			if len(steps) < 2 {
				continue
			}

			found := map[string]*Shifter{}
			prev := directions(steps[0].records)
			for _, step := range steps[1:] {
				cur := directions(step.records)
				for ticker, d := range cur {
					before, ok := prev[ticker]
					if !ok || before == d {
						continue
					}
					s := found[ticker]
					if s == nil {
						s = &Shifter{Investor: slug}
						found[ticker] = s
					}
					s.Quarter, s.From, s.To = step.quarter, before, d
					s.Reversals++
				}
				prev = cur
			}

			for ticker, s := range found {
				g := groups[ticker]
				if g == nil {
					g = &MomentumShift{Ticker: ticker, Name: tickerName(steps, ticker)}
					groups[ticker] = g
				}
				g.Shifters = append(g.Shifters, *s)
			}
		}

		out := Momentum{Window: w, Shifts: make([]MomentumShift, 0, len(groups))}
		for _, g := range groups {
			// investors are visited in slug order, so Shifters already is
			out.Shifts = append(out.Shifts, *g)
		}
		sort.Slice(out.Shifts, func(i, j int) bool { return out.Shifts[i].Ticker < out.Shifts[j].Ticker })
		return out
	})
}

// directions nets delta shares per ticker across identifiers and keeps the
// tickers that moved.
func directions(records []differ.Record) map[string]Direction {
	net := map[string]int64{}
	for _, r := range records {
		net[r.Ticker] += r.DeltaShares
	}

	out := make(map[string]Direction, len(net))
	for ticker, n := range net {
		switch {
		case n > 0:
			out[ticker] = Buying
		case n < 0:
			out[ticker] = Selling
		}
	}
	return out
}

func tickerName(steps []transition, ticker string) string {
	for i := len(steps) - 1; i >= 0; i-- {
		for _, r := range steps[i].records {
			if r.Ticker == ticker && r.Name != "" {
				return r.Name
			}
		}
	}
	return ticker
}
