package forecast

import "github.com/gaccwx/psafire/internal/climo"

// Tier is the alert severity for a value relative to its climatology.
// Derived on demand at read time, never persisted.
type Tier string

const (
	TierCritical Tier = "CRITICAL"
	TierHigh     Tier = "HIGH"
	TierElevated Tier = "ELEVATED"
	TierNormal   Tier = "NORMAL"
	TierUnknown  Tier = "UNKNOWN"
)

// Severity returns a numeric rank for sorting (higher = more dangerous).
func (t Tier) Severity() int {
	switch t {
	case TierCritical:
		return 4
	case TierHigh:
		return 3
	case TierElevated:
		return 2
	case TierNormal:
		return 1
	default:
		return 0
	}
}

// TierThreshold is one rung of an alert ladder: the tier assigned when a
// value meets or exceeds Floor. A nil Floor disables the rung.
type TierThreshold struct {
	Tier  Tier
	Floor *float64
}

// Classify maps a value onto a threshold ladder ordered from most to least
// severe, short-circuiting on the first rung whose floor the value reaches.
// A nil value is UNKNOWN; a value below every configured floor is NORMAL.
func Classify(value *float64, ladder []TierThreshold) Tier {
	if value == nil {
		return TierUnknown
	}
	for _, rung := range ladder {
		if rung.Floor == nil {
			continue
		}
		if *value >= *rung.Floor {
			return rung.Tier
		}
	}
	return TierNormal
}

// PercentileTiers builds the four-tier ladder used with the full percentile
// baseline: CRITICAL ≥ p97, HIGH ≥ p95, ELEVATED ≥ p90.
func PercentileTiers(stats *climo.FieldStats) []TierThreshold {
	if stats == nil {
		return nil
	}
	return []TierThreshold{
		{Tier: TierCritical, Floor: stats.P97},
		{Tier: TierHigh, Floor: stats.P95},
		{Tier: TierElevated, Floor: stats.P90},
	}
}

// LegacyTiers builds the two-threshold ladder from the earlier pipeline
// variant: CRITICAL ≥ p97, HIGH ≥ p90, ELEVATED ≥ 0.7 × p90.
func LegacyTiers(p90, p97 *float64) []TierThreshold {
	ladder := []TierThreshold{
		{Tier: TierCritical, Floor: p97},
		{Tier: TierHigh, Floor: p90},
	}
	if p90 != nil {
		floor := *p90 * 0.7
		ladder = append(ladder, TierThreshold{Tier: TierElevated, Floor: &floor})
	}
	return ladder
}
