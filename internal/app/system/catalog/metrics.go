package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rebuildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qprep_catalog_rebuilds_total",
		Help: "Number of successful catalog rebuilds.",
	})
	rebuildFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qprep_catalog_rebuild_failures_total",
		Help: "Number of catalog rebuild attempts that failed to list papers.",
	})
	recordsIndexed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "qprep_catalog_records",
		Help: "Paper records indexed by the current catalog build.",
	})
	payloadFetchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qprep_payload_fetches_total",
		Help: "Lazy payload fetches issued to the paper store.",
	})
	payloadFetchFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qprep_payload_fetch_failures_total",
		Help: "Lazy payload fetches that returned an error.",
	})
	payloadCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qprep_payload_cache_hits_total",
		Help: "Paper opens served from the in-memory payload cache.",
	})
	payloadStaleDropsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qprep_payload_stale_drops_total",
		Help: "Fetched payloads discarded because the catalog was rebuilt mid-fetch.",
	})
)
