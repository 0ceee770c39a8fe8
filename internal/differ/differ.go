// Package differ computes position level changes between two snapshots of
// the same investor.
package differ

import (
	"math"

	"github.com/newthinker/holdings/internal/core"
	"github.com/newthinker/holdings/internal/identity"
)

// Classification describes how a position changed between two snapshots.
type Classification string

const (
	New       Classification = "new"
	Increased Classification = "increased"
	Decreased Classification = "decreased"
	Unchanged Classification = "unchanged"
	Exited    Classification = "exited"
)

// IsBuy reports whether the change adds exposure.
func (c Classification) IsBuy() bool {
	return c == New || c == Increased
}

// IsSell reports whether the change removes exposure.
func (c Classification) IsSell() bool {
	return c == Decreased || c == Exited
}

// Record is one position level change.
type Record struct {
	Identifier     string         `json:"identifier"`
	Ticker         string         `json:"ticker"`
	Name           string         `json:"name"`
	Classification Classification `json:"classification"`
	DeltaShares    int64          `json:"delta_shares"`
	DeltaValue     float64        `json:"delta_value"`

	// Position is the current position, or the previous one for exits.
	Position core.Position `json:"-"`
}

// Flow returns the signed capital flow of the record: buys count their
// delta value, sells count the absolute delta value as an outflow, and
// unchanged positions count nothing.
func (r Record) Flow() float64 {
	switch {
	case r.Classification.IsBuy():
		return r.DeltaValue
	case r.Classification.IsSell():
		return -math.Abs(r.DeltaValue)
	}
	return 0
}

// Diff compares current with previous. A nil previous means the investor
// held nothing before, so every current position is new.
//
// Records follow current's position order, then exits in previous's order.
// Every identifier of either snapshot appears exactly once.
func Diff(previous *core.Snapshot, current core.Snapshot) []Record {
	var prev map[string]core.Position
	if previous != nil {
		prev = previous.ByIdentifier()
	}

	records := make([]Record, 0, len(current.Positions))
	for _, cur := range current.Positions {
		old, held := prev[cur.Identifier]
		if !held {
			records = append(records, record(cur, New, cur.Shares, cur.Value))
			continue
		}

		dShares := cur.Shares - old.Shares
		dValue := cur.Value - old.Value
		switch {
		case dShares > 0:
			records = append(records, record(cur, Increased, dShares, dValue))
		case dShares < 0:
			records = append(records, record(cur, Decreased, dShares, dValue))
		default:
			records = append(records, record(cur, Unchanged, 0, dValue))
		}
	}

	if previous != nil {
		inCurrent := current.ByIdentifier()
		for _, old := range previous.Positions {
			if _, still := inCurrent[old.Identifier]; !still {
				records = append(records, record(old, Exited, -old.Shares, -old.Value))
			}
		}
	}

	return records
}

func record(p core.Position, c Classification, dShares int64, dValue float64) Record {
	return Record{
		Identifier:     p.Identifier,
		Ticker:         identity.ResolveTicker(p),
		Name:           p.Name,
		Classification: c,
		DeltaShares:    dShares,
		DeltaValue:     dValue,
		Position:       p,
	}
}

// Summary counts records per classification.
type Summary map[Classification]int

// Summarize counts the classifications in records.
func Summarize(records []Record) Summary {
	s := Summary{}
	for _, r := range records {
		s[r.Classification]++
	}
	return s
}
