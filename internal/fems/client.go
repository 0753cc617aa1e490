// Package fems fetches daily observed and forecast fire-weather records for
// individual stations from the FEMS climatology download endpoint. Station
// feeds are individually unreliable, so everything short of an auth failure
// degrades to "no data" for that station instead of failing the caller.
package fems

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/gaccwx/psafire/internal/httputil"
	"github.com/gaccwx/psafire/internal/metrics"
	"github.com/gaccwx/psafire/internal/models"
)

const DefaultBaseURL = "https://fems.fs2c.usda.gov/api/ext-climatology/download-weather"

// A response shorter than this cannot be a header plus a data row.
const minResponseLen = 50

const maxRetries = 2 // 3 attempts total

// Credentials authenticate against the FEMS API. Passed by value; the client
// never mutates shared credential state.
type Credentials struct {
	APIKey   string
	Username string
}

// AuthError is returned when the service rejects the credentials. It is
// never retried: bad credentials invalidate every subsequent station call.
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("fems: authentication rejected (status %d)", e.StatusCode)
}

// errNoData marks non-fatal outcomes (404, empty body, unknown columns) that
// silently skip the station. Internal only; callers see a nil record map.
var errNoData = errors.New("no data")

type Client struct {
	baseURL   string
	creds     Credentials
	client    *http.Client
	retryBase time.Duration
}

func NewClient(baseURL string, creds Credentials) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   baseURL,
		creds:     creds,
		client:    httputil.NewClient(),
		retryBase: 2 * time.Second,
	}
}

// HasCredentials reports whether an API key is configured. Fetching without
// one is a fatal precondition failure for the orchestrator.
func (c *Client) HasCredentials() bool {
	return c.creds.APIKey != ""
}

// FetchStationForecast returns the station's daily records keyed by calendar
// date for the closed date range, or nil when the station has no usable data.
// Transient failures are retried with exponential backoff; exhaustion logs a
// warning and degrades to no-data rather than failing the fetch cycle.
func (c *Client) FetchStationForecast(ctx context.Context, stationID, fuelModel, startDate, endDate string) (map[string]models.StationDailyRecord, error) {
	url := fmt.Sprintf("%s?stationIds=%s&startDate=%sT00:00:00Z&endDate=%sT23:59:59Z&dataset=all&dataFormat=csv&dataIncrement=daily",
		c.baseURL, stationID, startDate, endDate)
	if fuelModel != "" {
		url += "&fuelModels=" + fuelModel
	}

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("x-api-key", c.creds.APIKey)
		req.Header.Set("x-user-email", c.creds.Username)
		req.Header.Set("Accept", "text/csv")

		start := time.Now()
		resp, err := c.client.Do(req)
		if err != nil {
			metrics.FEMSAPICallsTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("fetch station %s: %w", stationID, err)
		}
		defer resp.Body.Close()

		metrics.FEMSAPILatency.Observe(time.Since(start).Seconds())
		metrics.FEMSAPICallsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(errNoData)
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return backoff.Permanent(&AuthError{StatusCode: resp.StatusCode})
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("fetch station %s: status %d", stationID, resp.StatusCode)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryBase
	bo.Multiplier = 2
	bo.RandomizationFactor = 0

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, maxRetries), ctx))
	if err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) {
			return nil, authErr
		}
		if errors.Is(err, errNoData) {
			return nil, nil
		}
		log.Printf("fems: station %s failed: %v", stationID, err)
		return nil, nil
	}

	records, err := parseCSV(stationID, body)
	if err != nil {
		log.Printf("fems: station %s: %v", stationID, err)
		return nil, nil
	}
	return records, nil
}

// parseCSV decodes a station response into per-date records. Malformed rows
// are skipped; a response with no recognizable structure reports an error so
// the caller can log and move on.
func parseCSV(stationID string, body []byte) (map[string]models.StationDailyRecord, error) {
	text := strings.TrimSpace(string(body))
	if len(text) < minResponseLen {
		return nil, nil
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}

	schema, ok := resolveSchema(header)
	if !ok {
		return nil, fmt.Errorf("no known column schema matches header %v", header)
	}

	records := make(map[string]models.StationDailyRecord)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		date, ok := parseDate(cell(row, schema.dateIdx))
		if !ok {
			continue
		}

		rec := models.StationDailyRecord{
			StationID: stationID,
			Date:      date,
			Type:      parseRecordType(cell(row, schema.typeIdx)),
			Values:    make(map[models.FieldKey]*float64, len(schema.fields)),
		}
		for key, idx := range schema.fields {
			rec.Values[key] = parseValue(cell(row, idx))
		}
		records[date] = rec
	}

	if len(records) == 0 {
		return nil, nil
	}
	return records, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseDate accepts bare dates and date-time strings, normalizing to
// YYYY-MM-DD.
func parseDate(s string) (string, bool) {
	if len(s) >= 10 {
		if _, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return s[:10], true
		}
	}
	return "", false
}

// parseRecordType defaults to Observed; the feed marks forecast rows with an
// "F" prefix ("F", "Forecast").
func parseRecordType(s string) models.RecordType {
	if strings.HasPrefix(strings.ToLower(s), "f") {
		return models.RecordForecast
	}
	return models.RecordObserved
}

func parseValue(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
