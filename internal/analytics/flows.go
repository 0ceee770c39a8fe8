package analytics

import (
	"sort"

	"github.com/newthinker/holdings/internal/core"
	"github.com/newthinker/holdings/internal/identity"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Sentiment summarizes the direction of net capital flow.
type Sentiment string

const (
	Bullish Sentiment = "bullish"
	Bearish Sentiment = "bearish"
	Neutral Sentiment = "neutral"
)

// ClassifySentiment is neutral while |net| stays within band times the
// gross volume.
func ClassifySentiment(net, gross, band float64) Sentiment {
	limit := band * gross
	switch {
	case net > limit:
		return Bullish
	case net < -limit:
		return Bearish
	default:
		return Neutral
	}
}

// Balance is the aggregate buying and selling of one quarter.
type Balance struct {
	Quarter    core.Quarter `json:"quarter"`
	TotalBuys  float64      `json:"total_buys"`
	TotalSells float64      `json:"total_sells"`
	NetFlow    float64      `json:"net_flow"`
	BuysCount  int          `json:"buys_count"`
	SellsCount int          `json:"sells_count"`
	Sentiment  Sentiment    `json:"sentiment"`
	Investors  int          `json:"investors"` // investors that reported
}

// BuySell is the result of BuySellBalance.
type BuySell struct {
	Window   Window    `json:"window"`
	Quarters []Balance `json:"quarters"` // newest first
}

// BuySellBalance evaluates each window quarter on its own, every investor
// against their previous report.
func (e *Engine) BuySellBalance(quarters []core.Quarter) BuySell {
	w := e.ResolveWindow(quarters)
	if w.Empty() {
		return BuySell{Window: w}
	}

	return compute(e, ViewBalance, []any{w.Quarters}, func() BuySell {
		out := BuySell{Window: w, Quarters: make([]Balance, 0, len(w.Quarters))}
		slugs := e.investors()

		for _, q := range w.Quarters {
			b := Balance{Quarter: q}
			buys, sells := decimal.Zero, decimal.Zero

			for _, slug := range slugs {
				step, ok := e.diff(slug, q)
				if !ok {
					continue
				}
				b.Investors++
				for _, r := range step.records {
					switch {
					case r.Classification.IsBuy():
						buys = buys.Add(decimal.NewFromFloat(r.Flow()))
						b.BuysCount++
					case r.Classification.IsSell():
						sells = sells.Sub(decimal.NewFromFloat(r.Flow()))
						b.SellsCount++
					}
				}
			}

			b.TotalBuys = buys.InexactFloat64()
			b.TotalSells = sells.InexactFloat64()
			b.NetFlow = buys.Sub(sells).InexactFloat64()
			b.Sentiment = ClassifySentiment(b.NetFlow, b.TotalBuys+b.TotalSells, e.cfg.NeutralityBand)
			out.Quarters = append(out.Quarters, b)
		}
		return out
	})
}

// SectorFlow is the net capital flow into one sector over a window.
type SectorFlow struct {
	Sector  string  `json:"sector"`
	Label   string  `json:"label"`
	NetFlow float64 `json:"net_flow"`
	Inflow  float64 `json:"inflow"`
	Outflow float64 `json:"outflow"`
}

// SectorFlows is the result of SectorNetFlows.
type SectorFlows struct {
	Window  Window             `json:"window"`
	Flows   map[string]float64 `json:"flows"`   // label to net flow
	Sectors []SectorFlow       `json:"sectors"` // net flow descending
}

// SectorNetFlows aggregates the same flows as BuySellBalance by resolved
// sector over the whole window.
func (e *Engine) SectorNetFlows(quarters []core.Quarter) SectorFlows {
	w := e.ResolveWindow(quarters)
	if w.Empty() {
		return SectorFlows{Window: w, Flows: map[string]float64{}}
	}

	return compute(e, ViewSectorFlows, []any{w.Quarters}, func() SectorFlows {
		type acc struct{ in, out decimal.Decimal }
		sums := map[string]*acc{}
		unclassified := 0

		for _, slug := range e.investors() {
			for _, step := range e.transitions(slug, w) {
				for _, r := range step.records {
					if !r.Classification.IsBuy() && !r.Classification.IsSell() {
						continue
					}
					sector, err := e.resolver.LookupSector(r.Position)
					if err != nil {
						sector = identity.Unclassified
						unclassified++
					}
					a := sums[sector]
					if a == nil {
						a = &acc{}
						sums[sector] = a
					}
					flow := decimal.NewFromFloat(r.Flow())
					if r.Classification.IsBuy() {
						a.in = a.in.Add(flow)
					} else {
						a.out = a.out.Sub(flow)
					}
				}
			}
		}

		if unclassified > 0 {
			e.logger.Debug("positions without sector", zap.Int("count", unclassified))
			if e.recorder != nil {
				e.recorder.RecordUnclassified(unclassified)
			}
		}

		out := SectorFlows{Window: w, Flows: make(map[string]float64, len(sums))}
		for sector, a := range sums {
			f := SectorFlow{
				Sector:  sector,
				Label:   e.resolver.TranslateSectorName(sector),
				NetFlow: a.in.Sub(a.out).InexactFloat64(),
				Inflow:  a.in.InexactFloat64(),
				Outflow: a.out.InexactFloat64(),
			}
			out.Flows[f.Label] += f.NetFlow
			out.Sectors = append(out.Sectors, f)
		}
		sort.Slice(out.Sectors, func(i, j int) bool {
			if out.Sectors[i].NetFlow != out.Sectors[j].NetFlow {
				return out.Sectors[i].NetFlow > out.Sectors[j].NetFlow
			}
			return out.Sectors[i].Sector < out.Sectors[j].Sector
		})
		return out
	})
}

// SectorTotal is the value held in one sector across investors.
type SectorTotal struct {
	Sector    string  `json:"sector"`
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	Positions int     `json:"positions"`
	Investors int     `json:"investors"`
	Weight    float64 `json:"weight"` // share of the total value of all sectors
}

// TopSectorsResult is the result of TopSectors.
type TopSectorsResult struct {
	Sectors    []SectorTotal `json:"sectors"`
	TotalValue float64       `json:"total_value"`
}

// TopSectors rolls up each investor's latest snapshot by sector and returns
// the largest sectors by value. A non-positive limit uses the configured
// default.
func (e *Engine) TopSectors(limit int) TopSectorsResult {
	if limit <= 0 {
		limit = e.cfg.TopNSectors
	}

	return compute(e, ViewTopSectors, []any{limit}, func() TopSectorsResult {
		slugs := e.investors()
		latest := make(map[string]core.Snapshot, len(slugs))
		for _, slug := range slugs {
			snap, err := e.store.Latest(slug)
			if err != nil {
				e.logger.Debug("investor skipped", zap.String("investor", slug), zap.Error(err))
				continue
			}
			latest[slug] = snap
		}
		return RollupSectors(e.resolver, latest, limit)
	})
}

// RollupSectors sums value and position counts per sector over snapshots
// keyed by investor. Sectors are ordered by value descending, sector key
// ascending, and truncated to a positive limit.
func RollupSectors(r *identity.Resolver, snapshots map[string]core.Snapshot, limit int) TopSectorsResult {
	type acc struct {
		value     decimal.Decimal
		positions int
		investors map[string]bool
	}
	sums := map[string]*acc{}
	total := decimal.Zero

	for slug, snap := range snapshots {
		for _, p := range snap.Positions {
			sector := r.ResolveSector(p)
			a := sums[sector]
			if a == nil {
				a = &acc{investors: map[string]bool{}}
				sums[sector] = a
			}
			v := decimal.NewFromFloat(p.Value)
			a.value = a.value.Add(v)
			a.positions++
			a.investors[slug] = true
			total = total.Add(v)
		}
	}

	out := TopSectorsResult{TotalValue: total.InexactFloat64()}
	for sector, a := range sums {
		st := SectorTotal{
			Sector:    sector,
			Label:     r.TranslateSectorName(sector),
			Value:     a.value.InexactFloat64(),
			Positions: a.positions,
			Investors: len(a.investors),
		}
		if total.IsPositive() {
			st.Weight = a.value.Div(total).InexactFloat64()
		}
		out.Sectors = append(out.Sectors, st)
	}
	sort.Slice(out.Sectors, func(i, j int) bool {
		if out.Sectors[i].Value != out.Sectors[j].Value {
			return out.Sectors[i].Value > out.Sectors[j].Value
		}
		return out.Sectors[i].Sector < out.Sectors[j].Sector
	})
	if limit > 0 && len(out.Sectors) > limit {
		out.Sectors = out.Sectors[:limit]
	}
	return out
}
