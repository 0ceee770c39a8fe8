package core

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuarter(t *testing.T) {
	tests := []struct {
		label   string
		want    Quarter
		wantErr bool
	}{
		{"2024-Q1", Quarter{2024, 1}, false},
		{" 2023-q4 ", Quarter{2023, 4}, false},
		{"2024-Q5", Quarter{}, true},
		{"2024-Q0", Quarter{}, true},
		{"24-Q1", Quarter{}, true},
		{"2024Q1", Quarter{}, true},
		{"", Quarter{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := ParseQuarter(tt.label)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidQuarter))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, MustQuarter(got.String()))
		})
	}
}

func TestQuarter_Ordering(t *testing.T) {
	q1 := MustQuarter("2023-Q4")
	q2 := MustQuarter("2024-Q1")

	assert.True(t, q1.Before(q2))
	assert.True(t, q2.After(q1))
	assert.Equal(t, 0, q1.Compare(q1))
	assert.Equal(t, q1, q2.Prev())
	assert.Equal(t, q2, q1.Next())
}

func TestQuarter_TextRoundTrip(t *testing.T) {
	var q Quarter
	require.NoError(t, q.UnmarshalText([]byte("2022-Q2")))
	text, err := q.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2022-Q2", string(text))
}

func TestParseQuarters(t *testing.T) {
	qs, err := ParseQuarters("2024-Q1, ,2023-Q4")
	require.NoError(t, err)
	assert.Equal(t, []Quarter{{2024, 1}, {2023, 4}}, qs)

	_, err = ParseQuarters("2024-Q1,bogus")
	assert.Error(t, err)
}

func TestSortDescending(t *testing.T) {
	in := []Quarter{{2023, 1}, {2024, 2}, {2023, 1}, {2023, 4}}
	got := SortDescending(in)

	assert.Equal(t, []Quarter{{2024, 2}, {2023, 4}, {2023, 1}}, got)
	assert.Len(t, in, 4, "input must not be modified")
}

func TestSnapshot_Validate(t *testing.T) {
	q := MustQuarter("2024-Q1")

	ok := Snapshot{Quarter: q, Positions: []Position{
		{Identifier: "A", Shares: 1, Value: 10},
		{Identifier: "B", Shares: 0, Value: 0},
	}}
	assert.NoError(t, ok.Validate())

	dup := Snapshot{Quarter: q, Positions: []Position{{Identifier: "A"}, {Identifier: "A"}}}
	assert.ErrorContains(t, dup.Validate(), "duplicate identifier")

	neg := Snapshot{Quarter: q, Positions: []Position{{Identifier: "A", Shares: -1}}}
	assert.ErrorContains(t, neg.Validate(), "negative shares")

	nan := Snapshot{Quarter: q, Positions: []Position{{Identifier: "A", Value: math.NaN()}}}
	assert.ErrorContains(t, nan.Validate(), "invalid value")
}

func TestInvestorHistory_Validate(t *testing.T) {
	h := InvestorHistory{Slug: "a", Snapshots: []Snapshot{
		{Quarter: MustQuarter("2024-Q2")},
		{Quarter: MustQuarter("2024-Q1")},
	}}
	err := h.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvariantViolation))

	gap := InvestorHistory{Slug: "a", Snapshots: []Snapshot{
		{Quarter: MustQuarter("2023-Q3")},
		{Quarter: MustQuarter("2024-Q1")},
	}}
	assert.NoError(t, gap.Validate(), "gaps are allowed")
}

func TestInvestorHistory_Lookups(t *testing.T) {
	h := InvestorHistory{Slug: "a", Snapshots: []Snapshot{
		{Quarter: MustQuarter("2023-Q1")},
		{Quarter: MustQuarter("2023-Q2")},
		{Quarter: MustQuarter("2023-Q4")},
	}}

	_, ok := h.At(MustQuarter("2023-Q3"))
	assert.False(t, ok)

	prev, ok := h.Before(MustQuarter("2023-Q4"))
	require.True(t, ok)
	assert.Equal(t, MustQuarter("2023-Q2"), prev.Quarter, "skipped quarter must not be treated as data")

	_, ok = h.Before(MustQuarter("2023-Q1"))
	assert.False(t, ok)

	latest, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, MustQuarter("2023-Q4"), latest.Quarter)
}
