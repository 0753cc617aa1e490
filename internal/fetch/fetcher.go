// Package fetch orchestrates one snapshot build: resolve the region's zones,
// fetch every member station, aggregate to zone series, and persist the
// artifact.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gaccwx/psafire/internal/climo"
	"github.com/gaccwx/psafire/internal/fems"
	"github.com/gaccwx/psafire/internal/forecast"
	"github.com/gaccwx/psafire/internal/metrics"
	"github.com/gaccwx/psafire/internal/models"
	"github.com/gaccwx/psafire/internal/registry"
	"github.com/gaccwx/psafire/internal/store"
)

// ErrNoCredentials is returned when a fetch cycle is attempted without an
// API key. The orchestrator refuses to start rather than fetch unauthenticated.
var ErrNoCredentials = errors.New("fetch: FEMS_API_KEY not configured")

const (
	defaultWorkers = 4
	defaultPace    = 300 * time.Millisecond

	// Climatology window assumed when the baseline file omits its metadata.
	defaultClimoStart = 2005
	defaultClimoEnd   = 2020
)

var defaultPercentiles = []int{80, 90, 95, 97}

type Fetcher struct {
	client       *fems.Client
	registry     *registry.Registry
	baselinePath string
	store        *store.Store
	workers      int
	pace         time.Duration
	now          func() time.Time
}

func New(client *fems.Client, reg *registry.Registry, baselinePath string, st *store.Store) *Fetcher {
	return &Fetcher{
		client:       client,
		registry:     reg,
		baselinePath: baselinePath,
		store:        st,
		workers:      defaultWorkers,
		pace:         defaultPace,
		now:          time.Now,
	}
}

// FetchRegion runs one end-to-end fetch cycle for a region (optionally
// restricted to a zone subset), persists the snapshot, and returns it.
//
// Missing credentials, an unloadable baseline, and unknown region/zone ids
// are fatal and abort before any station request. Individual station failures
// are absorbed by the client and show up only as reduced coverage counts.
func (f *Fetcher) FetchRegion(ctx context.Context, region string, zoneIDs []string) (*models.Snapshot, error) {
	started := f.now()

	if !f.client.HasCredentials() {
		return nil, ErrNoCredentials
	}

	baseline, err := climo.Load(f.baselinePath)
	if err != nil {
		return nil, err
	}

	zones, err := f.registry.Zones(region, zoneIDs)
	if err != nil {
		return nil, err
	}

	stationIDs := registry.StationIDs(zones)
	fuelModels := fuelModelByStation(zones)
	window := forecast.NewDayWindow(f.now())

	log.Printf("fetch: %s — %d stations  %s→%s", region, len(stationIDs), window.Start(), window.End())

	records, err := f.fetchStations(ctx, region, stationIDs, fuelModels, window)
	if err != nil {
		metrics.FetchCyclesTotal.WithLabelValues(region, "error").Inc()
		return nil, err
	}
	log.Printf("fetch: data for %d/%d stations", len(records), len(stationIDs))

	snap := &models.Snapshot{
		Meta: models.Meta{
			Region:      region,
			FetchedAt:   f.now().UTC(),
			FetchDate:   window.Date(models.DayToday),
			ClimoStart:  baseline.Meta.ClimoStart,
			ClimoEnd:    baseline.Meta.ClimoEnd,
			Percentiles: baseline.Meta.Percentiles,
			ZoneCount:   len(zones),
		},
		Zones: make(map[string]models.ZoneForecast, len(zones)),
	}
	if snap.Meta.Percentiles == nil {
		snap.Meta.Percentiles = defaultPercentiles
	}
	if snap.Meta.ClimoStart == 0 {
		snap.Meta.ClimoStart = defaultClimoStart
	}
	if snap.Meta.ClimoEnd == 0 {
		snap.Meta.ClimoEnd = defaultClimoEnd
	}

	for _, zone := range zones {
		snap.Zones[zone.ID] = forecast.AggregateZone(zone, window, records, baseline.Zone(region, zone.ID))
	}

	if err := f.store.Write(snap); err != nil {
		metrics.FetchCyclesTotal.WithLabelValues(region, "error").Inc()
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}

	metrics.FetchCyclesTotal.WithLabelValues(region, "ok").Inc()
	metrics.FetchCycleDuration.WithLabelValues(region).Observe(f.now().Sub(started).Seconds())
	log.Printf("fetch: done in %.1fs → %s", f.now().Sub(started).Seconds(), f.store.Path())
	return snap, nil
}

// fetchStations pulls every station in parallel with bounded concurrency.
// Request starts are paced by a shared ticker to keep the aggregate request
// rate at the level the remote service tolerates. An AuthError from any
// station cancels the rest of the cycle.
func (f *Fetcher) fetchStations(ctx context.Context, region string, stationIDs []string, fuelModels map[string]string, window forecast.DayWindow) (forecast.StationRecords, error) {
	records := make(forecast.StationRecords)
	var mu sync.Mutex
	var done int

	var paceCh <-chan time.Time
	if f.pace > 0 {
		ticker := time.NewTicker(f.pace)
		defer ticker.Stop()
		paceCh = ticker.C
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	for _, sid := range stationIDs {
		sid := sid
		g.Go(func() error {
			if paceCh != nil {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-paceCh:
				}
			}

			recs, err := f.client.FetchStationForecast(ctx, sid, fuelModels[sid], window.Start(), window.End())
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			done++
			if recs != nil {
				records[sid] = recs
				metrics.StationsFetched.WithLabelValues(region, "ok").Inc()
			} else {
				metrics.StationsFetched.WithLabelValues(region, "empty").Inc()
			}
			if done%25 == 0 {
				log.Printf("fetch: %d/%d stations", done, len(stationIDs))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// fuelModelByStation picks the fuel model used for each station's request.
// A station shared by zones with different fuel models keeps the first
// zone's model (zones are sorted, so this is stable).
func fuelModelByStation(zones []models.Zone) map[string]string {
	out := make(map[string]string)
	for _, z := range zones {
		for _, sid := range z.Stations {
			if _, ok := out[sid]; !ok {
				out[sid] = z.FuelModel
			}
		}
	}
	return out
}
