package store

import (
	"errors"
	"testing"

	"github.com/newthinker/holdings/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(label string, positions ...core.Position) core.Snapshot {
	return core.Snapshot{Quarter: core.MustQuarter(label), Positions: positions}
}

func TestNew_IndexesHistories(t *testing.T) {
	s, err := New([]core.InvestorHistory{
		{Slug: "tiger", Snapshots: []core.Snapshot{snap("2024-Q1"), snap("2024-Q3")}},
		{Slug: "ark", Snapshots: []core.Snapshot{snap("2024-Q2")}},
		{Slug: "dormant"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"ark", "dormant", "tiger"}, s.Investors())
	assert.Equal(t, []string{"ark", "tiger"}, s.Active())
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 3, s.SnapshotCount())

	latest, err := s.Latest("tiger")
	require.NoError(t, err)
	assert.Equal(t, core.MustQuarter("2024-Q3"), latest.Quarter)

	prev, ok := s.Before("tiger", core.MustQuarter("2024-Q3"))
	require.True(t, ok)
	assert.Equal(t, core.MustQuarter("2024-Q1"), prev.Quarter)

	_, ok = s.At("tiger", core.MustQuarter("2024-Q2"))
	assert.False(t, ok)
}

func TestStore_LatestMissingData(t *testing.T) {
	s, err := New([]core.InvestorHistory{{Slug: "dormant"}})
	require.NoError(t, err)

	_, err = s.Latest("dormant")
	assert.True(t, errors.Is(err, core.ErrMissingData))

	_, err = s.Latest("unknown")
	assert.True(t, errors.Is(err, core.ErrMissingData))
}

func TestNew_InvariantViolations(t *testing.T) {
	tests := []struct {
		name      string
		histories []core.InvestorHistory
	}{
		{
			name: "duplicate identifier",
			histories: []core.InvestorHistory{{Slug: "a", Snapshots: []core.Snapshot{
				snap("2024-Q1", core.Position{Identifier: "X"}, core.Position{Identifier: "X"}),
			}}},
		},
		{
			name: "negative shares",
			histories: []core.InvestorHistory{{Slug: "a", Snapshots: []core.Snapshot{
				snap("2024-Q1", core.Position{Identifier: "X", Shares: -5}),
			}}},
		},
		{
			name: "negative value",
			histories: []core.InvestorHistory{{Slug: "a", Snapshots: []core.Snapshot{
				snap("2024-Q1", core.Position{Identifier: "X", Value: -1}),
			}}},
		},
		{
			name: "repeated quarter",
			histories: []core.InvestorHistory{{Slug: "a", Snapshots: []core.Snapshot{
				snap("2024-Q1"), snap("2024-Q1"),
			}}},
		},
		{
			name:      "duplicate slug",
			histories: []core.InvestorHistory{{Slug: "a"}, {Slug: "a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.histories)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrInvariantViolation), "got %v", err)
		})
	}
}
