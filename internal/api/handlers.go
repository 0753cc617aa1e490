package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/gaccwx/psafire/internal/climo"
	"github.com/gaccwx/psafire/internal/forecast"
	"github.com/gaccwx/psafire/internal/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok"}
	if age, ok := s.store.Age(); ok {
		status["snapshot_age_seconds"] = int(age / time.Second)
	} else {
		status["snapshot_age_seconds"] = nil
	}
	writeJSON(w, status)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w)
	if !ok {
		return
	}
	writeJSON(w, snap)
}

// ZoneAlert is one zone's read-time classification of today's ERC against
// its percentile baseline. Tiers are derived per request, never stored.
type ZoneAlert struct {
	Zone      string        `json:"psa"`
	Value     *float64      `json:"erc_today"`
	Tier      forecast.Tier `json:"tier"`
	ClimoMean *float64      `json:"climo_mean"`
	P90       *float64      `json:"p90"`
	P95       *float64      `json:"p95"`
	P97       *float64      `json:"p97"`
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w)
	if !ok {
		return
	}

	alerts := make([]ZoneAlert, 0, len(snap.Zones))
	for id, zone := range snap.Zones {
		stats := &climo.FieldStats{
			Mean: zone.ERC.ClimoMean,
			P90:  zone.ERC.P90,
			P95:  zone.ERC.P95,
			P97:  zone.ERC.P97,
		}
		alerts = append(alerts, ZoneAlert{
			Zone:      id,
			Value:     zone.ERC.Today,
			Tier:      forecast.Classify(zone.ERC.Today, forecast.PercentileTiers(stats)),
			ClimoMean: zone.ERC.ClimoMean,
			P90:       zone.ERC.P90,
			P95:       zone.ERC.P95,
			P97:       zone.ERC.P97,
		})
	}

	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].Tier.Severity() != alerts[j].Tier.Severity() {
			return alerts[i].Tier.Severity() > alerts[j].Tier.Severity()
		}
		return alerts[i].Zone < alerts[j].Zone
	})

	writeJSON(w, map[string]any{
		"meta":   snap.Meta,
		"alerts": alerts,
	})
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w)
	if !ok {
		return
	}

	trends := make(map[string]models.TrendSeries, len(snap.Zones))
	for id, zone := range snap.Zones {
		trends[id] = zone.ERCTrend
	}
	writeJSON(w, map[string]any{
		"meta":  snap.Meta,
		"trend": trends,
	})
}

func (s *Server) loadSnapshot(w http.ResponseWriter) (*models.Snapshot, bool) {
	snap, err := s.store.Read()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	if snap == nil {
		http.Error(w, "no snapshot available", http.StatusNotFound)
		return nil, false
	}
	return snap, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
