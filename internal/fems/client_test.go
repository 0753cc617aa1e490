package fems

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gaccwx/psafire/internal/models"
)

const v2CSV = `date,record_type,energy_release_component_max,ignition_component_max,burning_index_max,spread_component_max,one_hr_tl_fuel_moisture_min,ten_hr_tl_fuel_moisture_min,hun_hr_tl_fuel_moisture_min,thou_hr_tl_fuel_moisture_min,kbdi_max
2025-06-10,Observed,42.5,18,31.2,9.1,3.2,4.5,8.9,11.3,412
2025-06-11,Forecast,45.0,20,33.0,,3.0,4.1,8.2,10.9,
`

const legacyCSV = `obs_date,type,erc_max,bi_max,fm100_min
2025-06-10T00:00:00Z,O,40.0,30.0,9.5
2025-06-11T00:00:00Z,F,44.0,32.5,8.0
`

func testClient(url string) *Client {
	c := NewClient(url, Credentials{APIKey: "test-key", Username: "tester@example.gov"})
	c.retryBase = time.Millisecond
	return c
}

func TestFetchStationForecast_ParsesCurrentSchema(t *testing.T) {
	var gotKey, gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotUser = r.Header.Get("x-user-email")
		w.Write([]byte(v2CSV))
	}))
	defer srv.Close()

	recs, err := testClient(srv.URL).FetchStationForecast(context.Background(), "240101", "Y", "2025-06-09", "2025-06-16")
	if err != nil {
		t.Fatalf("FetchStationForecast: %v", err)
	}
	if gotKey != "test-key" || gotUser != "tester@example.gov" {
		t.Errorf("credentials not sent: key=%q user=%q", gotKey, gotUser)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}

	obs := recs["2025-06-10"]
	if obs.Type != models.RecordObserved {
		t.Errorf("2025-06-10 type = %s, want O", obs.Type)
	}
	if v := obs.Values[models.FieldERC]; v == nil || *v != 42.5 {
		t.Errorf("erc = %v, want 42.5", v)
	}
	if v := obs.Values[models.FieldKBDI]; v == nil || *v != 412 {
		t.Errorf("kbdi = %v, want 412", v)
	}

	fc := recs["2025-06-11"]
	if fc.Type != models.RecordForecast {
		t.Errorf("2025-06-11 type = %s, want F", fc.Type)
	}
	if v := fc.Values[models.FieldSC]; v != nil {
		t.Errorf("empty sc cell = %v, want nil", v)
	}
	if v := fc.Values[models.FieldKBDI]; v != nil {
		t.Errorf("empty kbdi cell = %v, want nil", v)
	}
}

func TestFetchStationForecast_LegacySchemaFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(legacyCSV))
	}))
	defer srv.Close()

	recs, err := testClient(srv.URL).FetchStationForecast(context.Background(), "240101", "Y", "2025-06-09", "2025-06-16")
	if err != nil {
		t.Fatalf("FetchStationForecast: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}

	rec := recs["2025-06-11"]
	if rec.Type != models.RecordForecast {
		t.Errorf("type = %s, want F", rec.Type)
	}
	if v := rec.Values[models.FieldERC]; v == nil || *v != 44.0 {
		t.Errorf("erc = %v, want 44.0", v)
	}
	if v := rec.Values[models.FieldFM100]; v == nil || *v != 8.0 {
		t.Errorf("fm100 = %v, want 8.0", v)
	}
	// Columns the legacy response lacks stay nil.
	if v := rec.Values[models.FieldKBDI]; v != nil {
		t.Errorf("kbdi = %v, want nil", v)
	}
}

func TestFetchStationForecast_UnknownColumnsFailClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("timestamp,widget_count,unrelated_column_one,unrelated_column_two\n2025-06-10,5,6,7\n"))
	}))
	defer srv.Close()

	recs, err := testClient(srv.URL).FetchStationForecast(context.Background(), "240101", "Y", "2025-06-09", "2025-06-16")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recs != nil {
		t.Errorf("got %v, want nil for unrecognized schema", recs)
	}
}

func TestFetchStationForecast_NotFoundIsNoData(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	recs, err := testClient(srv.URL).FetchStationForecast(context.Background(), "240101", "Y", "2025-06-09", "2025-06-16")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recs != nil {
		t.Errorf("got %v, want nil", recs)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("404 retried %d times, want single attempt", n)
	}
}

func TestFetchStationForecast_ShortBodyIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("date\n"))
	}))
	defer srv.Close()

	recs, err := testClient(srv.URL).FetchStationForecast(context.Background(), "240101", "Y", "2025-06-09", "2025-06-16")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recs != nil {
		t.Errorf("got %v, want nil", recs)
	}
}

func TestFetchStationForecast_AuthFailureIsFatal(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchStationForecast(context.Background(), "240101", "Y", "2025-06-09", "2025-06-16")

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("got %v, want AuthError", err)
	}
	if authErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", authErr.StatusCode)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("auth failure retried %d times, want single attempt", n)
	}
}

func TestFetchStationForecast_RetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(v2CSV))
	}))
	defer srv.Close()

	recs, err := testClient(srv.URL).FetchStationForecast(context.Background(), "240101", "Y", "2025-06-09", "2025-06-16")
	if err != nil {
		t.Fatalf("FetchStationForecast: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("got %d records after retries, want 2", len(recs))
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("made %d attempts, want 3", n)
	}
}

func TestFetchStationForecast_ExhaustedRetriesDegradeToNoData(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	recs, err := testClient(srv.URL).FetchStationForecast(context.Background(), "240101", "Y", "2025-06-09", "2025-06-16")
	if err != nil {
		t.Fatalf("exhausted retries must not surface an error, got %v", err)
	}
	if recs != nil {
		t.Errorf("got %v, want nil", recs)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("made %d attempts, want 3", n)
	}
}

func TestResolveSchema_PrefersNewestGeneration(t *testing.T) {
	// A header satisfying two generations resolves to the newer one.
	header := []string{"date", "record_type", "energy_release_component_max", "erc_max", "obs_date"}
	schema, ok := resolveSchema(header)
	if !ok {
		t.Fatal("schema not resolved")
	}
	if schema.name != "climatology-v2" {
		t.Errorf("resolved %s, want climatology-v2", schema.name)
	}
}
