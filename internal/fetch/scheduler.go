package fetch

import (
	"context"
	"log"
	"time"
)

// Scheduler re-runs the fetch cycle on a fixed interval so the served
// snapshot never goes stale. Cycle failures are logged and retried on the
// next tick; the previously persisted snapshot keeps being served meanwhile.
type Scheduler struct {
	fetcher  *Fetcher
	region   string
	zones    []string
	interval time.Duration
}

func NewScheduler(fetcher *Fetcher, region string, zones []string, interval time.Duration) *Scheduler {
	return &Scheduler{
		fetcher:  fetcher,
		region:   region,
		zones:    zones,
		interval: interval,
	}
}

func (s *Scheduler) Run(ctx context.Context) {
	// Skip the startup fetch when the artifact is younger than the refresh
	// interval, so restarts don't hammer the remote service.
	if s.fetcher.store.Fresh(s.interval) {
		log.Printf("scheduler: snapshot still fresh, skipping startup fetch")
	} else {
		s.runOnce(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("scheduler: shutting down")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if _, err := s.fetcher.FetchRegion(ctx, s.region, s.zones); err != nil {
		log.Printf("scheduler: fetch cycle failed: %v", err)
	}
}
