package fems

import (
	"strings"

	"github.com/gaccwx/psafire/internal/models"
)

// columnSchema is one known-good generation of the feed's CSV column names.
// The feed has renamed its columns across service versions; rather than
// fuzzy-probing headers, responses are matched against this explicit chain
// and treated as no-data when none fits.
type columnSchema struct {
	name    string
	dateCol string
	typeCol string // empty when the generation carries no record-type column
	fields  map[models.FieldKey]string
}

// schemas is the fallback chain, newest first.
var schemas = []columnSchema{
	{
		name:    "climatology-v2",
		dateCol: "date",
		typeCol: "record_type",
		fields: map[models.FieldKey]string{
			models.FieldERC:    "energy_release_component_max",
			models.FieldIC:     "ignition_component_max",
			models.FieldBI:     "burning_index_max",
			models.FieldSC:     "spread_component_max",
			models.FieldFM1:    "one_hr_tl_fuel_moisture_min",
			models.FieldFM10:   "ten_hr_tl_fuel_moisture_min",
			models.FieldFM100:  "hun_hr_tl_fuel_moisture_min",
			models.FieldFM1000: "thou_hr_tl_fuel_moisture_min",
			models.FieldKBDI:   "kbdi_max",
		},
	},
	{
		name:    "wims-legacy",
		dateCol: "obs_date",
		typeCol: "type",
		fields: map[models.FieldKey]string{
			models.FieldERC:    "erc_max",
			models.FieldIC:     "ic_max",
			models.FieldBI:     "bi_max",
			models.FieldSC:     "sc_max",
			models.FieldFM1:    "fm1_min",
			models.FieldFM10:   "fm10_min",
			models.FieldFM100:  "fm100_min",
			models.FieldFM1000: "fm1000_min",
			models.FieldKBDI:   "kbdi",
		},
	},
	{
		name:    "summary",
		dateCol: "summary_date",
		fields: map[models.FieldKey]string{
			models.FieldERC:    "erc",
			models.FieldIC:     "ic",
			models.FieldBI:     "bi",
			models.FieldSC:     "sc",
			models.FieldFM1:    "fm1",
			models.FieldFM10:   "fm10",
			models.FieldFM100:  "fm100",
			models.FieldFM1000: "fm1000",
			models.FieldKBDI:   "kbdi",
		},
	},
}

// resolvedSchema maps a matched schema onto the column indices of one
// response header.
type resolvedSchema struct {
	name    string
	dateIdx int
	typeIdx int // -1 when absent
	fields  map[models.FieldKey]int
}

// resolveSchema matches a CSV header against the schema chain. A schema fits
// when its date column and at least one field column are present. Returns
// false when no known generation matches; callers must treat that as no-data.
func resolveSchema(header []string) (*resolvedSchema, bool) {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for _, schema := range schemas {
		dateIdx, ok := index[schema.dateCol]
		if !ok {
			continue
		}

		fields := make(map[models.FieldKey]int)
		for key, col := range schema.fields {
			if i, ok := index[col]; ok {
				fields[key] = i
			}
		}
		if len(fields) == 0 {
			continue
		}

		typeIdx := -1
		if schema.typeCol != "" {
			if i, ok := index[schema.typeCol]; ok {
				typeIdx = i
			}
		}

		return &resolvedSchema{
			name:    schema.name,
			dateIdx: dateIdx,
			typeIdx: typeIdx,
			fields:  fields,
		}, true
	}
	return nil, false
}
