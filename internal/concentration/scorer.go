// Package concentration scores how concentrated an investor's portfolio is.
package concentration

import (
	"slices"
	"sort"
	"strings"

	"github.com/newthinker/holdings/internal/core"
	"github.com/newthinker/holdings/internal/identity"
	"gonum.org/v1/gonum/floats"
)

// Tier buckets the Herfindahl index.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// topN is the number of largest holdings summed into TopPercentage.
const topN = 3

// Thresholds are the Herfindahl cut points between tiers.
type Thresholds struct {
	High   float64 `mapstructure:"high" json:"high"`
	Medium float64 `mapstructure:"medium" json:"medium"`
}

// DefaultThresholds returns the 0.20 / 0.10 cut points.
func DefaultThresholds() Thresholds {
	return Thresholds{High: 0.20, Medium: 0.10}
}

// Classify returns the tier for h: above High is high, above Medium is
// medium, anything else low.
func (t Thresholds) Classify(h float64) Tier {
	switch {
	case h > t.High:
		return TierHigh
	case h > t.Medium:
		return TierMedium
	default:
		return TierLow
	}
}

// Holding is a position after merging identifiers sharing a ticker.
type Holding struct {
	Ticker string  `json:"ticker"`
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
}

// Score is one investor's concentration.
type Score struct {
	Investor       string       `json:"investor"`
	Quarter        core.Quarter `json:"quarter"`
	Herfindahl     float64      `json:"hhi"`
	Top3Percentage float64      `json:"top3_percentage"`
	Tier           Tier         `json:"tier"`
	Positions      int          `json:"positions"`
	TotalValue     float64      `json:"total_value"`
	TopHoldings    []Holding    `json:"top_holdings"`
}

// Input pairs an investor with the snapshot to score.
type Input struct {
	Investor string
	Snapshot core.Snapshot
}

// Scorer computes concentration scores.
type Scorer struct {
	thresholds Thresholds
}

// NewScorer creates a scorer with the given tier thresholds.
func NewScorer(t Thresholds) *Scorer {
	return &Scorer{thresholds: t}
}

// Score computes the concentration of one snapshot. The bool is false when
// the snapshot has no value, in which case the investor is left out.
func (s *Scorer) Score(investor string, snap core.Snapshot) (Score, bool) {
	holdings := Merge(snap)
	if len(holdings) == 0 {
		return Score{}, false
	}

	values := make([]float64, len(holdings))
	for i, h := range holdings {
		values[i] = h.Value
	}
	total := floats.Sum(values)
	if total <= 0 {
		return Score{}, false
	}

	weights := make([]float64, len(values))
	for i, v := range values {
		weights[i] = v / total
		holdings[i].Weight = weights[i]
	}
	hhi := floats.Dot(weights, weights)

	n := min(topN, len(holdings))
	top := floats.Sum(values[:n])

	return Score{
		Investor:       investor,
		Quarter:        snap.Quarter,
		Herfindahl:     hhi,
		Top3Percentage: top / total * 100,
		Tier:           s.thresholds.Classify(hhi),
		Positions:      len(holdings),
		TotalValue:     total,
		TopHoldings:    slices.Clone(holdings[:n]),
	}, true
}

// Rank scores every input, drops zero-value books, and orders the result
// by Herfindahl index descending (investor slug breaks ties). A positive
// limit truncates the result.
func (s *Scorer) Rank(inputs []Input, limit int) []Score {
	scores := make([]Score, 0, len(inputs))
	for _, in := range inputs {
		if sc, ok := s.Score(in.Investor, in.Snapshot); ok {
			scores = append(scores, sc)
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Herfindahl != scores[j].Herfindahl {
			return scores[i].Herfindahl > scores[j].Herfindahl
		}
		return scores[i].Investor < scores[j].Investor
	})

	if limit > 0 && len(scores) > limit {
		scores = scores[:limit]
	}
	return scores
}

// Merge sums the value of positions that resolve to the same ticker and
// returns the holdings sorted by value descending, ticker ascending.
// Positions without value are dropped.
func Merge(snap core.Snapshot) []Holding {
	byTicker := make(map[string]float64, len(snap.Positions))
	for _, p := range snap.Positions {
		if p.Value <= 0 {
			continue
		}
		byTicker[identity.ResolveTicker(p)] += p.Value
	}

	holdings := make([]Holding, 0, len(byTicker))
	for t, v := range byTicker {
		holdings = append(holdings, Holding{Ticker: t, Value: v})
	}
	slices.SortFunc(holdings, func(a, b Holding) int {
		switch {
		case a.Value > b.Value:
			return -1
		case a.Value < b.Value:
			return 1
		}
		return strings.Compare(a.Ticker, b.Ticker)
	})
	return holdings
}
