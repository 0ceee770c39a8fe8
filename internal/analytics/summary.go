package analytics

import (
	"slices"

	"github.com/newthinker/holdings/internal/concentration"
	"github.com/newthinker/holdings/internal/core"
	"go.uber.org/zap"
)

// QuarterCoverage describes how many investors reported in a quarter.
type QuarterCoverage struct {
	Quarter   core.Quarter `json:"quarter"`
	Investors int          `json:"investors"`
	Percent   float64      `json:"percent"`
}

// Summary lists the known quarters and the smart latest one.
type Summary struct {
	Quarters        []QuarterCoverage `json:"quarters"` // newest first
	Latest          core.Quarter      `json:"latest"`
	ActiveInvestors int               `json:"active_investors"`
	MinCoverage     float64           `json:"min_coverage_percent"`
}

// QuarterSummary reports coverage for every quarter in the index.
func (e *Engine) QuarterSummary() Summary {
	s := Summary{
		ActiveInvestors: e.index.ActiveInvestors(),
		MinCoverage:     e.cfg.MinCoveragePercent,
	}
	for _, q := range e.index.All() {
		s.Quarters = append(s.Quarters, QuarterCoverage{
			Quarter:   q,
			Investors: e.index.CoverageCount(q),
			Percent:   e.index.CoveragePercent(q),
		})
	}
	if q, ok := e.index.SmartLatest(e.cfg.MinCoveragePercent); ok {
		s.Latest = q
	}
	return s
}

// Concentration scores the latest snapshot of each named investor, or of
// every active investor when none are named, and ranks them by Herfindahl
// index. Unknown or empty investors are skipped. A non-positive limit uses
// the configured default.
func (e *Engine) Concentration(investors []string, limit int) []concentration.Score {
	if limit <= 0 {
		limit = e.cfg.TopNConcentration
	}
	if len(investors) == 0 {
		investors = e.investors()
	} else {
		investors = slices.Clone(investors)
		slices.Sort(investors)
		investors = slices.Compact(investors)
	}

	return compute(e, ViewConcentration, []any{investors, limit}, func() []concentration.Score {
		inputs := make([]concentration.Input, 0, len(investors))
		for _, slug := range investors {
			snap, err := e.store.Latest(slug)
			if err != nil {
				e.logger.Debug("investor skipped", zap.String("investor", slug), zap.Error(err))
				continue
			}
			inputs = append(inputs, concentration.Input{Investor: slug, Snapshot: snap})
		}
		return e.scorer.Rank(inputs, limit)
	})
}
