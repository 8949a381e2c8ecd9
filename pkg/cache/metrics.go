package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Hits tracks response cache hits
	Hits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	// Misses tracks response cache misses
	Misses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	// Invalidations tracks entries removed by write invalidation
	Invalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_cache_invalidations_total",
			Help: "Total number of cache entries removed after writes",
		},
	)

	// Entries tracks the number of physically present cache entries
	Entries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "inventory_cache_entries",
			Help: "Current number of response cache entries",
		},
	)
)
