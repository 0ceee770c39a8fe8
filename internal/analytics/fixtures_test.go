package analytics

import (
	"sync"
	"testing"

	"github.com/newthinker/holdings/internal/core"
	"github.com/newthinker/holdings/internal/identity"
	"github.com/newthinker/holdings/internal/store"
	"github.com/stretchr/testify/require"
)

var (
	q1 = core.MustQuarter("2024-Q1")
	q2 = core.MustQuarter("2024-Q2")
	q3 = core.MustQuarter("2024-Q3")
	q4 = core.MustQuarter("2024-Q4")
)

func pos(ticker string, shares int64, value float64) core.Position {
	return core.Position{Identifier: ticker + "-ID", Ticker: ticker, Name: ticker + " Corp", Shares: shares, Value: value}
}

func snap(q core.Quarter, positions ...core.Position) core.Snapshot {
	return core.Snapshot{Quarter: q, Positions: positions}
}

func hist(slug string, snapshots ...core.Snapshot) core.InvestorHistory {
	return core.InvestorHistory{Slug: slug, Name: slug, Snapshots: snapshots}
}

type fakeRecorder struct {
	mu           sync.Mutex
	views        map[string]int
	unclassified int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{views: map[string]int{}}
}

func (r *fakeRecorder) RecordView(view string, _ float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[view]++
}

func (r *fakeRecorder) RecordUnclassified(count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unclassified += count
}

func newEngine(t *testing.T, table identity.SectorTable, histories ...core.InvestorHistory) *Engine {
	t.Helper()
	s, err := store.New(histories)
	require.NoError(t, err)
	return New(s, identity.NewResolver(table), DefaultConfig())
}

// sparseFixture: alpha skips 2024-Q3, beta reports every quarter.
func sparseFixture(t *testing.T) *Engine {
	return newEngine(t, identity.SectorTable{},
		hist("alpha",
			snap(q1, pos("AAPL", 100, 100*150)),
			snap(q2, pos("AAPL", 150, 150*160)),
			snap(q4, pos("MSFT", 10, 4000)),
		),
		hist("beta",
			snap(q1, pos("SPY", 10, 5000)),
			snap(q2, pos("SPY", 10, 5000)),
			snap(q3, pos("SPY", 10, 5000)),
			snap(q4, pos("SPY", 10, 5000)),
		),
	)
}
