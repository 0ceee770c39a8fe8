package identity

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Unclassified is the sector assigned when no lookup matches.
const Unclassified = "Unclassified"

// SectorTable is the static reference data used by the Resolver.
type SectorTable struct {
	// Locale of the display labels, informational only.
	Locale string `yaml:"locale"`
	// Sectors maps an identifier or ticker to a sector key.
	Sectors map[string]string `yaml:"sectors"`
	// Labels maps a sector key to its display name.
	Labels map[string]string `yaml:"labels"`
}

// ParseTable decodes a YAML sector table. Keys are normalized so lookups
// are case-insensitive and whitespace tolerant.
func ParseTable(data []byte) (SectorTable, error) {
	var t SectorTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return SectorTable{}, fmt.Errorf("parsing sector table: %w", err)
	}

	t.Sectors = normalizeSectors(t.Sectors)

	if t.Labels == nil {
		t.Labels = map[string]string{}
	}
	return t, nil
}

// LoadTable reads a sector table from a YAML file. An empty path yields an
// empty table, so everything resolves to Unclassified.
func LoadTable(path string) (SectorTable, error) {
	if path == "" {
		return SectorTable{Sectors: map[string]string{}, Labels: map[string]string{}}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return SectorTable{}, fmt.Errorf("reading sector table: %w", err)
	}
	return ParseTable(data)
}

// normalizeSectors returns a copy of sectors with normalized keys and
// blank sectors dropped.
func normalizeSectors(sectors map[string]string) map[string]string {
	out := make(map[string]string, len(sectors))
	for k, v := range sectors {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out[normalizeKey(k)] = v
	}
	return out
}

func normalizeKey(k string) string {
	return strings.ToUpper(strings.TrimSpace(k))
}
