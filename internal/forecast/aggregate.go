package forecast

import (
	"math"

	"github.com/gaccwx/psafire/internal/climo"
	"github.com/gaccwx/psafire/internal/models"
)

// StationRecords maps station id → calendar date → that station's daily
// record, as returned by the forecast client for the fetch window.
type StationRecords map[string]map[string]models.StationDailyRecord

// AggregateZone reduces the member stations' records for one zone to
// per-field day series plus the ERC trend. Missing data never fails the
// aggregation; empty day sets and absent baseline entries stay null.
func AggregateZone(zone models.Zone, window DayWindow, records StationRecords, baseline map[models.FieldKey]*climo.FieldStats) models.ZoneForecast {
	out := models.ZoneForecast{
		Zone:          zone.ID,
		FuelModel:     zone.FuelModel,
		DayMap:        window.Dates,
		StationsTotal: len(zone.Stations),
	}

	for _, sid := range zone.Stations {
		if _, ok := records[sid]; ok {
			out.StationsWithData++
		}
	}

	for _, key := range models.FieldKeys {
		series := out.Field(key)
		for _, label := range models.DayLabels {
			series.SetDay(label, dayAverage(zone.Stations, records, window.Date(label), key))
		}
		attachBaseline(series, baseline[key])
	}

	out.ERCTrend = trendSeries(out.ERC)
	return out
}

// dayAverage is the arithmetic mean of all valid member-station values for a
// (field, date), rounded to one decimal; nil when no station contributed.
func dayAverage(stations []string, records StationRecords, date string, key models.FieldKey) *float64 {
	var sum float64
	var n int
	for _, sid := range stations {
		rec, ok := records[sid][date]
		if !ok {
			continue
		}
		v := rec.Values[key]
		if !validValue(key, v) {
			continue
		}
		sum += *v
		n++
	}
	if n == 0 {
		return nil
	}
	avg := round1(sum / float64(n))
	return &avg
}

// validValue applies the field-specific validity rule: nil and negative
// values are always excluded; the fire-behavior indices additionally exclude
// zero, which the source feed uses as a bad-row fill.
func validValue(key models.FieldKey, v *float64) bool {
	if v == nil {
		return false
	}
	if key.AcceptsZero() {
		return *v >= 0
	}
	return *v > 0
}

// trendSeries computes forecast-day ERC deltas against today's average.
// Today's own delta is exactly 0.0. When today's average is null the baseline
// falls back to 0, carried over from the source: the deltas then read as raw
// forecast values rather than true changes.
func trendSeries(erc models.FieldSeries) models.TrendSeries {
	var baseline float64
	if erc.Today != nil {
		baseline = *erc.Today
	}

	trend := models.TrendSeries{Today: 0.0}
	for _, label := range models.TrendLabels {
		if label == models.DayToday {
			continue
		}
		v := erc.Day(label)
		if v == nil {
			continue
		}
		delta := round1(*v - baseline)
		trend.SetDay(label, &delta)
	}
	return trend
}

// attachBaseline copies the climatology reference values onto a series.
// A nil stats entry leaves every reference value null.
func attachBaseline(series *models.FieldSeries, stats *climo.FieldStats) {
	if stats == nil {
		return
	}
	series.ClimoMean = stats.Mean
	series.P80 = stats.P80
	series.P90 = stats.P90
	series.P95 = stats.P95
	series.P97 = stats.P97
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
