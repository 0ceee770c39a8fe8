// Package identity reconciles custodian identifiers with market tickers and sectors.
package identity

import (
	"regexp"
	"strings"

	"github.com/newthinker/holdings/internal/core"
)

// identifierLength is the width synthesized identifiers are padded to,
// matching a CUSIP.
const identifierLength = 9

// padding fills synthesized identifiers.
const padding = "0"

// UnknownTicker is returned when a position carries no usable text at all.
const UnknownTicker = "UNKNOWN"

var tickerPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,5}([.\-/][A-Z0-9]{1,2})?$`)

// name separators, hyphen and en dash
var nameSeparators = []string{" - ", " – "}

// IsPlausibleTicker reports whether s looks like an exchange symbol such as
// AAPL, BRK.B or RDS-A.
func IsPlausibleTicker(s string) bool {
	return tickerPattern.MatchString(s)
}

// TickerFromName extracts the ticker from names of the form
// "TICKER - Company" or "TICKER – Company". A name that is itself a
// plausible ticker is returned as is.
func TickerFromName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, sep := range nameSeparators {
		if head, _, ok := strings.Cut(name, sep); ok {
			head = strings.TrimSpace(head)
			if IsPlausibleTicker(head) {
				return head, true
			}
		}
	}
	if IsPlausibleTicker(name) {
		return name, true
	}
	return "", false
}

// SynthesizeIdentifier builds a stand-in identifier for a security that
// arrived without one, by right-padding the ticker with zeros.
func SynthesizeIdentifier(ticker string) string {
	if len(ticker) >= identifierLength {
		return ticker
	}
	return ticker + strings.Repeat(padding, identifierLength-len(ticker))
}

// ResolveTicker returns the position's ticker, falling back to the ticker
// embedded in its name and finally to the identifier with synthetic
// padding removed. It never returns an empty string.
func ResolveTicker(p core.Position) string {
	if t := strings.TrimSpace(p.Ticker); t != "" {
		return t
	}
	if t, ok := TickerFromName(p.Name); ok {
		return t
	}
	if id := strings.TrimRight(p.Identifier, padding); id != "" {
		return id
	}
	if p.Identifier != "" {
		return p.Identifier
	}
	return UnknownTicker
}
