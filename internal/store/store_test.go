package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/gaccwx/psafire/internal/models"
)

func fp(v float64) *float64 { return &v }

func testSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Meta: models.Meta{
			Region:      "Great Basin",
			FetchedAt:   time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC),
			FetchDate:   "2025-06-10",
			ClimoStart:  2005,
			ClimoEnd:    2020,
			Percentiles: []int{80, 90, 95, 97},
			ZoneCount:   1,
		},
		Zones: map[string]models.ZoneForecast{
			"GB21": {
				Zone:      "GB21",
				FuelModel: "Y",
				DayMap: map[models.DayLabel]string{
					models.DayYesterday: "2025-06-09",
					models.DayToday:     "2025-06-10",
				},
				ERC: models.FieldSeries{
					Today:     fp(42.5),
					Wed:       fp(45.0),
					ClimoMean: fp(40.1),
					P90:       fp(63.5),
					P97:       fp(71.0),
				},
				FM100: models.FieldSeries{
					Today: fp(8.9),
				},
				ERCTrend: models.TrendSeries{
					Today: 0.0,
					Wed:   fp(2.5),
				},
				StationsTotal:    5,
				StationsWithData: 3,
			},
		},
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "data", "snapshot.json"))

	want := testSnapshot()
	if err := st.Write(want); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := st.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round-trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestRead_NoSnapshot(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "snapshot.json"))

	snap, err := st.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if snap != nil {
		t.Errorf("got %v, want nil", snap)
	}
}

func TestWrite_ReplacesWhole(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "snapshot.json"))

	first := testSnapshot()
	if err := st.Write(first); err != nil {
		t.Fatalf("Write: %v", err)
	}

	second := testSnapshot()
	second.Meta.FetchDate = "2025-06-11"
	delete(second.Zones, "GB21")
	second.Zones["GB10"] = models.ZoneForecast{Zone: "GB10", FuelModel: "G"}
	if err := st.Write(second); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := st.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Meta.FetchDate != "2025-06-11" {
		t.Errorf("fetch_date = %s, want 2025-06-11", got.Meta.FetchDate)
	}
	if _, ok := got.Zones["GB21"]; ok {
		t.Error("stale zone survived the rewrite")
	}
}

func TestWrite_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	st := New(filepath.Join(dir, "snapshot.json"))

	if err := st.Write(testSnapshot()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "snapshot.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contents = %v, want just snapshot.json", names)
	}
}

func TestFresh(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "snapshot.json"))

	if st.Fresh(time.Hour) {
		t.Error("missing artifact reported fresh")
	}

	if err := st.Write(testSnapshot()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !st.Fresh(time.Hour) {
		t.Error("just-written artifact reported stale")
	}
	if st.Fresh(0) {
		t.Error("zero max age reported fresh")
	}
}
