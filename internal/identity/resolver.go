package identity

import (
	"fmt"

	"github.com/newthinker/holdings/internal/core"
)

// Resolver maps positions to canonical tickers and sectors.
// It only reads its table and is safe for concurrent use.
type Resolver struct {
	table SectorTable
}

// NewResolver creates a resolver over table. Sector keys are normalized
// the same way ParseTable does, so hand-built tables match too.
func NewResolver(table SectorTable) *Resolver {
	table.Sectors = normalizeSectors(table.Sectors)
	if table.Labels == nil {
		table.Labels = map[string]string{}
	}
	return &Resolver{table: table}
}

// ResolveTicker returns the canonical ticker for p.
func (r *Resolver) ResolveTicker(p core.Position) string {
	return ResolveTicker(p)
}

// LookupSector finds the sector by resolved ticker and then by identifier.
// It returns core.ErrUnresolvableIdentity when neither is known.
func (r *Resolver) LookupSector(p core.Position) (string, error) {
	if s, ok := r.table.Sectors[normalizeKey(r.ResolveTicker(p))]; ok {
		return s, nil
	}
	if p.Identifier != "" {
		if s, ok := r.table.Sectors[normalizeKey(p.Identifier)]; ok {
			return s, nil
		}
	}
	return "", core.WrapError(core.ErrUnresolvableIdentity,
		fmt.Errorf("no sector for %s (%s)", r.ResolveTicker(p), p.Identifier))
}

// ResolveSector is LookupSector with the Unclassified fallback.
func (r *Resolver) ResolveSector(p core.Position) string {
	s, err := r.LookupSector(p)
	if err != nil {
		return Unclassified
	}
	return s
}

// TranslateSectorName returns the display label for a sector key.
// Unknown sectors pass through unchanged.
func (r *Resolver) TranslateSectorName(sector string) string {
	if label, ok := r.table.Labels[sector]; ok && label != "" {
		return label
	}
	return sector
}

// Locale returns the locale of the display labels.
func (r *Resolver) Locale() string {
	return r.table.Locale
}
