package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FEMSAPICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "psafire_fems_api_calls_total",
			Help: "Total FEMS weather-data API calls",
		},
		[]string{"status"},
	)

	FEMSAPILatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "psafire_fems_api_latency_seconds",
			Help:    "FEMS API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	StationsFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "psafire_stations_fetched_total",
			Help: "Station fetch outcomes per fetch cycle",
		},
		[]string{"region", "result"},
	)

	FetchCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "psafire_fetch_cycles_total",
			Help: "Completed fetch cycles by status",
		},
		[]string{"region", "status"},
	)

	FetchCycleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "psafire_fetch_cycle_duration_seconds",
			Help:    "End-to-end fetch cycle duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"region"},
	)
)
