// Package climo loads the precomputed climatology baseline: per-zone,
// per-field historical statistics over a fixed multi-year window. The
// baseline is built offline and consumed read-only; without it, percentile
// alerting is meaningless, so a missing or unreadable baseline is fatal.
package climo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/gaccwx/psafire/internal/models"
)

// ErrBaselineUnavailable wraps any failure to load the baseline store.
var ErrBaselineUnavailable = errors.New("climatology baseline unavailable")

// FieldStats holds the historical reference values for one zone+field.
type FieldStats struct {
	Mean *float64 `json:"mean"`
	P80  *float64 `json:"p80"`
	P90  *float64 `json:"p90"`
	P95  *float64 `json:"p95"`
	P97  *float64 `json:"p97"`
}

// Meta describes the climatology window the baseline was computed over.
type Meta struct {
	ClimoStart  int   `json:"climo_start"`
	ClimoEnd    int   `json:"climo_end"`
	Percentiles []int `json:"percentiles"`
}

// Store is the loaded baseline: zone entries keyed by "region|zone".
type Store struct {
	Meta  Meta                                        `json:"meta"`
	Zones map[string]map[models.FieldKey]*FieldStats `json:"psa"`
}

// Load reads a baseline file. Any failure (missing file, bad JSON) is
// reported as ErrBaselineUnavailable.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBaselineUnavailable, err)
	}

	var s Store
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrBaselineUnavailable, path, err)
	}
	if s.Zones == nil {
		return nil, fmt.Errorf("%w: %s has no zone entries", ErrBaselineUnavailable, path)
	}
	return &s, nil
}

// Key builds the lookup key for a zone's baseline entry.
func Key(region, zoneID string) string {
	return region + "|" + zoneID
}

// Zone returns the baseline entry for a zone, or nil when the baseline has no
// entry for it. Missing entries are not an error: the zone's reference values
// simply stay null.
func (s *Store) Zone(region, zoneID string) map[models.FieldKey]*FieldStats {
	return s.Zones[Key(region, zoneID)]
}

// Field returns the stats for one zone+field, or nil.
func (s *Store) Field(region, zoneID string, key models.FieldKey) *FieldStats {
	entry := s.Zone(region, zoneID)
	if entry == nil {
		return nil
	}
	return entry[key]
}
