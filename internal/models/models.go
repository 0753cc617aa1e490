package models

import "time"

// FieldKey identifies one of the daily fire-weather fields carried by the
// remote feed and the snapshot artifact.
type FieldKey string

const (
	FieldERC    FieldKey = "erc"
	FieldIC     FieldKey = "ic"
	FieldBI     FieldKey = "bi"
	FieldSC     FieldKey = "sc"
	FieldFM1    FieldKey = "fm1"
	FieldFM10   FieldKey = "fm10"
	FieldFM100  FieldKey = "fm100"
	FieldFM1000 FieldKey = "fm1000"
	FieldKBDI   FieldKey = "kbdi"
)

// FieldKeys lists every field in snapshot order.
var FieldKeys = []FieldKey{
	FieldERC, FieldIC, FieldBI, FieldSC,
	FieldFM1, FieldFM10, FieldFM100, FieldFM1000, FieldKBDI,
}

// AcceptsZero reports whether zero is a legitimate reading for the field.
// The source feed zero-fills bad rows for the fire-behavior indices, so those
// require strictly positive values as aggregation input; fuel moistures and
// KBDI can genuinely read zero.
func (f FieldKey) AcceptsZero() bool {
	switch f {
	case FieldFM1, FieldFM10, FieldFM100, FieldFM1000, FieldKBDI:
		return true
	default:
		return false
	}
}

// SnapshotKey returns the JSON key used for the field's series in the
// snapshot artifact. Consumers depend on these exact names.
func (f FieldKey) SnapshotKey() string {
	switch f {
	case FieldERC:
		return "ERC"
	case FieldIC:
		return "IC"
	case FieldBI:
		return "BI"
	case FieldSC:
		return "SC"
	case FieldFM1:
		return "FM1"
	case FieldFM10:
		return "FM10"
	case FieldFM100:
		return "FM100"
	case FieldFM1000:
		return "FM1000"
	case FieldKBDI:
		return "KBDI"
	}
	return string(f)
}

// RecordType distinguishes observed from forecast rows in the feed.
type RecordType string

const (
	RecordObserved RecordType = "O"
	RecordForecast RecordType = "F"
)

// StationDailyRecord holds one station's values for a single calendar date.
// A nil value means the feed had no usable reading for that field.
type StationDailyRecord struct {
	StationID string
	Date      string // YYYY-MM-DD
	Type      RecordType
	Values    map[FieldKey]*float64
}

// Zone is one Predictive Service Area: a set of member stations sharing a
// fuel model. Immutable once loaded from the registry.
type Zone struct {
	ID        string
	FuelModel string
	Stations  []string
}

// DayLabel is a logical forecast-horizon slot, independent of calendar date.
type DayLabel string

const (
	DayYesterday DayLabel = "yd"
	DayToday     DayLabel = "td"
	DayWed       DayLabel = "Wed"
	DayThu       DayLabel = "Thu"
	DayFri       DayLabel = "Fri"
	DaySat       DayLabel = "Sat"
	DaySun       DayLabel = "Sun"
	DayMon       DayLabel = "Mon"
)

// DayLabels lists all eight labels in snapshot column order.
var DayLabels = []DayLabel{
	DayYesterday, DayToday,
	DayWed, DayThu, DayFri, DaySat, DaySun, DayMon,
}

// TrendLabels are the labels carrying ERC trend deltas (yesterday excluded).
var TrendLabels = []DayLabel{DayToday, DayWed, DayThu, DayFri, DaySat, DaySun, DayMon}

// FieldSeries is one zone's averaged day values for a single field, plus the
// climatology reference values for that zone+field. Nil means no contributing
// station had valid data (day values) or no baseline entry exists (reference
// values).
type FieldSeries struct {
	Yesterday *float64 `json:"yd"`
	Today     *float64 `json:"td"`
	Wed       *float64 `json:"Wed"`
	Thu       *float64 `json:"Thu"`
	Fri       *float64 `json:"Fri"`
	Sat       *float64 `json:"Sat"`
	Sun       *float64 `json:"Sun"`
	Mon       *float64 `json:"Mon"`
	ClimoMean *float64 `json:"Climo_Mean"`
	P80       *float64 `json:"P80"`
	P90       *float64 `json:"P90"`
	P95       *float64 `json:"P95"`
	P97       *float64 `json:"P97"`
}

// Day returns the averaged value for a label.
func (s *FieldSeries) Day(label DayLabel) *float64 {
	switch label {
	case DayYesterday:
		return s.Yesterday
	case DayToday:
		return s.Today
	case DayWed:
		return s.Wed
	case DayThu:
		return s.Thu
	case DayFri:
		return s.Fri
	case DaySat:
		return s.Sat
	case DaySun:
		return s.Sun
	case DayMon:
		return s.Mon
	}
	return nil
}

// SetDay stores the averaged value for a label.
func (s *FieldSeries) SetDay(label DayLabel, v *float64) {
	switch label {
	case DayYesterday:
		s.Yesterday = v
	case DayToday:
		s.Today = v
	case DayWed:
		s.Wed = v
	case DayThu:
		s.Thu = v
	case DayFri:
		s.Fri = v
	case DaySat:
		s.Sat = v
	case DaySun:
		s.Sun = v
	case DayMon:
		s.Mon = v
	}
}

// TrendSeries carries ERC deltas versus today's average. Today is defined as
// exactly 0.0; forecast days are nil when their ERC average is nil.
type TrendSeries struct {
	Today float64  `json:"td"`
	Wed   *float64 `json:"Wed"`
	Thu   *float64 `json:"Thu"`
	Fri   *float64 `json:"Fri"`
	Sat   *float64 `json:"Sat"`
	Sun   *float64 `json:"Sun"`
	Mon   *float64 `json:"Mon"`
}

// Day returns the delta for a trend label; DayToday returns a pointer to the
// fixed 0.0 value.
func (t *TrendSeries) Day(label DayLabel) *float64 {
	switch label {
	case DayToday:
		return &t.Today
	case DayWed:
		return t.Wed
	case DayThu:
		return t.Thu
	case DayFri:
		return t.Fri
	case DaySat:
		return t.Sat
	case DaySun:
		return t.Sun
	case DayMon:
		return t.Mon
	}
	return nil
}

// SetDay stores the delta for a forecast-day label.
func (t *TrendSeries) SetDay(label DayLabel, v *float64) {
	switch label {
	case DayToday:
		if v != nil {
			t.Today = *v
		}
	case DayWed:
		t.Wed = v
	case DayThu:
		t.Thu = v
	case DayFri:
		t.Fri = v
	case DaySat:
		t.Sat = v
	case DaySun:
		t.Sun = v
	case DayMon:
		t.Mon = v
	}
}

// ZoneForecast is one zone's aggregated output within a snapshot.
type ZoneForecast struct {
	Zone             string              `json:"psa"`
	FuelModel        string              `json:"fuel_model"`
	DayMap           map[DayLabel]string `json:"day_map"`
	ERC              FieldSeries         `json:"ERC"`
	IC               FieldSeries         `json:"IC"`
	BI               FieldSeries         `json:"BI"`
	SC               FieldSeries         `json:"SC"`
	FM1              FieldSeries         `json:"FM1"`
	FM10             FieldSeries         `json:"FM10"`
	FM100            FieldSeries         `json:"FM100"`
	FM1000           FieldSeries         `json:"FM1000"`
	KBDI             FieldSeries         `json:"KBDI"`
	ERCTrend         TrendSeries         `json:"ERC_trend"`
	StationsTotal    int                 `json:"stations_total"`
	StationsWithData int                 `json:"stations_with_data"`
}

// Field returns the series for a field key.
func (z *ZoneForecast) Field(key FieldKey) *FieldSeries {
	switch key {
	case FieldERC:
		return &z.ERC
	case FieldIC:
		return &z.IC
	case FieldBI:
		return &z.BI
	case FieldSC:
		return &z.SC
	case FieldFM1:
		return &z.FM1
	case FieldFM10:
		return &z.FM10
	case FieldFM100:
		return &z.FM100
	case FieldFM1000:
		return &z.FM1000
	case FieldKBDI:
		return &z.KBDI
	}
	return nil
}

// Meta describes one fetch cycle.
type Meta struct {
	Region      string    `json:"gacc"`
	FetchedAt   time.Time `json:"fetched_at"`
	FetchDate   string    `json:"fetch_date"`
	ClimoStart  int       `json:"climo_start"`
	ClimoEnd    int       `json:"climo_end"`
	Percentiles []int     `json:"percentiles"`
	ZoneCount   int       `json:"psa_count"`
}

// Snapshot is the full persisted artifact for one fetch cycle. It is written
// whole and replaced whole; there is no incremental merge.
type Snapshot struct {
	Meta  Meta                    `json:"meta"`
	Zones map[string]ZoneForecast `json:"psa"`
}
