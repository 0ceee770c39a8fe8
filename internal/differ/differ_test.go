package differ

import (
	"testing"

	"github.com/newthinker/holdings/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos(id, ticker string, shares int64, value float64) core.Position {
	return core.Position{Identifier: id, Ticker: ticker, Name: ticker + " Inc", Shares: shares, Value: value}
}

func byIdentifier(records []Record) map[string]Record {
	m := make(map[string]Record, len(records))
	for _, r := range records {
		m[r.Identifier] = r
	}
	return m
}

func TestDiff_Classifications(t *testing.T) {
	prev := core.Snapshot{Quarter: core.MustQuarter("2024-Q1"), Positions: []core.Position{
		pos("A", "AAA", 100, 1000),
		pos("B", "BBB", 50, 500),
		pos("C", "CCC", 10, 100),
		pos("D", "DDD", 5, 50),
	}}
	cur := core.Snapshot{Quarter: core.MustQuarter("2024-Q2"), Positions: []core.Position{
		pos("A", "AAA", 150, 1600),
		pos("B", "BBB", 20, 240),
		pos("C", "CCC", 10, 120),
		pos("E", "EEE", 7, 70),
	}}

	records := Diff(&prev, cur)
	require.Len(t, records, 5)

	got := byIdentifier(records)
	assert.Equal(t, Increased, got["A"].Classification)
	assert.Equal(t, int64(50), got["A"].DeltaShares)
	assert.Equal(t, 600.0, got["A"].DeltaValue)

	assert.Equal(t, Decreased, got["B"].Classification)
	assert.Equal(t, int64(-30), got["B"].DeltaShares)
	assert.Equal(t, -260.0, got["B"].DeltaValue)

	assert.Equal(t, Unchanged, got["C"].Classification)
	assert.Equal(t, 0.0, got["C"].Flow(), "unchanged positions carry no flow")

	assert.Equal(t, Exited, got["D"].Classification)
	assert.Equal(t, -50.0, got["D"].DeltaValue)
	assert.Equal(t, "DDD", got["D"].Ticker)

	assert.Equal(t, New, got["E"].Classification)
	assert.Equal(t, 70.0, got["E"].DeltaValue)

	assert.Equal(t, "D", records[len(records)-1].Identifier, "exits come last")
}

func TestDiff_NilPrevious(t *testing.T) {
	cur := core.Snapshot{Positions: []core.Position{pos("A", "AAA", 1, 10), pos("B", "BBB", 2, 20)}}

	records := Diff(nil, cur)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, New, r.Classification)
		assert.Equal(t, r.Position.Value, r.DeltaValue)
	}
}

func TestDiff_PartitionsUnion(t *testing.T) {
	prev := core.Snapshot{Positions: []core.Position{pos("A", "A", 1, 1), pos("B", "B", 1, 1), pos("C", "C", 1, 1)}}
	cur := core.Snapshot{Positions: []core.Position{pos("B", "B", 2, 2), pos("C", "C", 1, 1), pos("D", "D", 1, 1)}}

	records := Diff(&prev, cur)

	seen := map[string]int{}
	for _, r := range records {
		seen[r.Identifier]++
	}
	assert.Equal(t, map[string]int{"A": 1, "B": 1, "C": 1, "D": 1}, seen)

	s := Summarize(records)
	assert.Equal(t, 1, s[New])
	assert.Equal(t, 1, s[Exited])
	assert.Equal(t, 2, s[Increased]+s[Unchanged])
}

func TestDiff_SparseHistoryExample(t *testing.T) {
	q1 := core.Snapshot{Quarter: core.MustQuarter("2024-Q1"), Positions: []core.Position{pos("AAPL", "AAPL", 100, 100*150)}}
	q2 := core.Snapshot{Quarter: core.MustQuarter("2024-Q2"), Positions: []core.Position{pos("AAPL", "AAPL", 150, 150*160)}}
	q4 := core.Snapshot{Quarter: core.MustQuarter("2024-Q4")}

	step := Diff(&q1, q2)
	require.Len(t, step, 1)
	assert.Equal(t, Increased, step[0].Classification)
	assert.Equal(t, 9000.0, step[0].DeltaValue)

	// Q3 was never reported, so Q4 is compared with Q2.
	step = Diff(&q2, q4)
	require.Len(t, step, 1)
	assert.Equal(t, Exited, step[0].Classification)
	assert.Equal(t, -24000.0, step[0].DeltaValue)
	assert.Equal(t, -24000.0, step[0].Flow())
}

func TestRecord_Flow(t *testing.T) {
	tests := []struct {
		class Classification
		delta float64
		want  float64
	}{
		{New, 100, 100},
		{Increased, 40, 40},
		{Increased, -10, -10},
		{Decreased, -30, -30},
		{Decreased, 25, -25},
		{Exited, -80, -80},
		{Unchanged, 12, 0},
	}

	for _, tt := range tests {
		r := Record{Classification: tt.class, DeltaValue: tt.delta}
		assert.Equal(t, tt.want, r.Flow(), "%s %v", tt.class, tt.delta)
	}
}
