package core

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Quarter identifies a calendar quarter, e.g. 2024-Q3.
type Quarter struct {
	Year   int
	Number int
}

// ParseQuarter parses a "YYYY-Qn" label. Surrounding whitespace and a
// lower-case q are accepted.
func ParseQuarter(label string) (Quarter, error) {
	s := strings.ToUpper(strings.TrimSpace(label))
	year, num, ok := strings.Cut(s, "-Q")
	if !ok || len(year) != 4 || len(num) != 1 {
		return Quarter{}, WrapError(ErrInvalidQuarter, fmt.Errorf("%q: expected YYYY-Qn", label))
	}

	y, err := strconv.Atoi(year)
	if err != nil {
		return Quarter{}, WrapError(ErrInvalidQuarter, fmt.Errorf("%q: %w", label, err))
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 1 || n > 4 {
		return Quarter{}, WrapError(ErrInvalidQuarter, fmt.Errorf("%q: quarter number must be 1-4", label))
	}

	return Quarter{Year: y, Number: n}, nil
}

// MustQuarter parses a label or panics. Intended for tests and constants.
func MustQuarter(label string) Quarter {
	q, err := ParseQuarter(label)
	if err != nil {
		panic(err)
	}
	return q
}

// ParseQuarters parses a comma separated list of labels, skipping blanks.
func ParseQuarters(list string) ([]Quarter, error) {
	var out []Quarter
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		q, err := ParseQuarter(part)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// QuarterOf returns the quarter containing t.
func QuarterOf(t time.Time) Quarter {
	return Quarter{Year: t.Year(), Number: (int(t.Month())-1)/3 + 1}
}

// String returns the "YYYY-Qn" label.
func (q Quarter) String() string {
	return fmt.Sprintf("%04d-Q%d", q.Year, q.Number)
}

// IsZero reports whether q is the zero quarter.
func (q Quarter) IsZero() bool {
	return q.Year == 0 && q.Number == 0
}

// Compare returns -1, 0 or +1 ordering by (year, number).
func (q Quarter) Compare(other Quarter) int {
	switch {
	case q.Year < other.Year:
		return -1
	case q.Year > other.Year:
		return 1
	case q.Number < other.Number:
		return -1
	case q.Number > other.Number:
		return 1
	}
	return 0
}

// Before reports whether q is strictly earlier than other.
func (q Quarter) Before(other Quarter) bool { return q.Compare(other) < 0 }

// After reports whether q is strictly later than other.
func (q Quarter) After(other Quarter) bool { return q.Compare(other) > 0 }

// Prev returns the calendar quarter immediately before q.
func (q Quarter) Prev() Quarter {
	if q.Number == 1 {
		return Quarter{Year: q.Year - 1, Number: 4}
	}
	return Quarter{Year: q.Year, Number: q.Number - 1}
}

// Next returns the calendar quarter immediately after q.
func (q Quarter) Next() Quarter {
	if q.Number == 4 {
		return Quarter{Year: q.Year + 1, Number: 1}
	}
	return Quarter{Year: q.Year, Number: q.Number + 1}
}

// MarshalText encodes the quarter as its label.
func (q Quarter) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalText decodes a "YYYY-Qn" label.
func (q *Quarter) UnmarshalText(text []byte) error {
	parsed, err := ParseQuarter(string(text))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// SortDescending orders quarters newest first and drops duplicates.
func SortDescending(quarters []Quarter) []Quarter {
	out := slices.Clone(quarters)
	slices.SortFunc(out, func(a, b Quarter) int { return b.Compare(a) })
	return slices.Compact(out)
}
