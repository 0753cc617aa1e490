package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/gaccwx/psafire/internal/models"
)

// UnknownRegionError indicates a region id with no registry entry.
type UnknownRegionError struct {
	Region string
}

func (e *UnknownRegionError) Error() string {
	return fmt.Sprintf("unknown region %q", e.Region)
}

// UnknownZoneError indicates a zone id that does not belong to the region.
type UnknownZoneError struct {
	Region string
	Zone   string
}

func (e *UnknownZoneError) Error() string {
	return fmt.Sprintf("unknown zone %q in region %q", e.Zone, e.Region)
}

// Registry is the static region → zone → station configuration. It is
// supplied externally and read-only once loaded.
type Registry struct {
	regions map[string]regionConfig
}

type regionConfig struct {
	Zones map[string]zoneConfig `json:"psas"`
}

type zoneConfig struct {
	FuelModel string   `json:"fuel_model"`
	Stations  []string `json:"stations"`
}

// Load reads a registry file of the form
// {"Great Basin": {"psas": {"GB01": {"fuel_model": "Y", "stations": [...]}}}}.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	return Parse(data)
}

// Parse decodes registry JSON.
func Parse(data []byte) (*Registry, error) {
	var regions map[string]regionConfig
	if err := json.Unmarshal(data, &regions); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return &Registry{regions: regions}, nil
}

// Regions returns the configured region names, sorted.
func (r *Registry) Regions() []string {
	names := make([]string, 0, len(r.regions))
	for name := range r.regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Zones returns the region's zones sorted by id. When zoneIDs is non-empty the
// result is restricted to those zones; naming a zone the region does not have
// is an error.
func (r *Registry) Zones(region string, zoneIDs []string) ([]models.Zone, error) {
	cfg, ok := r.regions[region]
	if !ok {
		return nil, &UnknownRegionError{Region: region}
	}

	want := cfg.Zones
	if len(zoneIDs) > 0 {
		want = make(map[string]zoneConfig, len(zoneIDs))
		for _, id := range zoneIDs {
			zc, ok := cfg.Zones[id]
			if !ok {
				return nil, &UnknownZoneError{Region: region, Zone: id}
			}
			want[id] = zc
		}
	}

	zones := make([]models.Zone, 0, len(want))
	for id, zc := range want {
		fuelModel := zc.FuelModel
		if fuelModel == "" {
			fuelModel = "Y"
		}
		zones = append(zones, models.Zone{
			ID:        id,
			FuelModel: fuelModel,
			Stations:  append([]string(nil), zc.Stations...),
		})
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i].ID < zones[j].ID })
	return zones, nil
}

// StationIDs returns the deduplicated union of station ids across zones,
// sorted for stable fetch ordering.
func StationIDs(zones []models.Zone) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, z := range zones {
		for _, sid := range z.Stations {
			if !seen[sid] {
				seen[sid] = true
				ids = append(ids, sid)
			}
		}
	}
	sort.Strings(ids)
	return ids
}
