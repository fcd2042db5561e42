package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// enrichment pipeline.
type Metrics struct {
	RecordsProcessed    prometheus.Counter
	RecordsPublished    prometheus.Counter
	NarrativesTruncated prometheus.Counter
	ChunksProcessed     prometheus.Counter
	PipelineRunning     prometheus.Gauge

	ChunkDuration prometheus.Histogram

	// Extraction metrics.
	AirportCodesExtracted *prometheus.CounterVec // labels: tier={critical,high,medium,low}

	// Geocoding metrics.
	GeocodeLookups     *prometheus.CounterVec // labels: outcome={resolved,unknown,timeout}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeRetries     prometheus.Counter
	GeocodeAPIDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RecordsProcessed,
		m.RecordsPublished,
		m.NarrativesTruncated,
		m.ChunksProcessed,
		m.PipelineRunning,
		m.ChunkDuration,
		m.AirportCodesExtracted,
		m.GeocodeLookups,
		m.GeocodeCache,
		m.GeocodeRetries,
		m.GeocodeAPIDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering the collectors,
// avoiding "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "uas_etl",
			Name:      "records_processed_total",
			Help:      "Total sighting records run through the extraction engine.",
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "uas_etl",
			Name:      "records_published_total",
			Help:      "Total enriched records published to the sink topic.",
		}),
		NarrativesTruncated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "uas_etl",
			Name:      "narratives_truncated_total",
			Help:      "Narratives truncated to the configured maximum length.",
		}),
		ChunksProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "uas_etl",
			Name:      "chunks_processed_total",
			Help:      "Split chunks fully enriched.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "uas_etl",
			Name:      "pipeline_running",
			Help:      "1 while a run is active, 0 otherwise.",
		}),
		ChunkDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "uas_etl",
			Name:      "chunk_duration_seconds",
			Help:      "Duration of one chunk's extract-resolve-write cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		AirportCodesExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uas_etl",
			Name:      "airport_codes_extracted_total",
			Help:      "Airport codes extracted from narrative text by winning tier.",
		}, []string{"tier"}),
		GeocodeLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uas_etl",
			Name:      "geocode_lookups_total",
			Help:      "External geocode lookups by terminal outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uas_etl",
			Name:      "geocode_cache_total",
			Help:      "Geocode cache lookups by result.",
		}, []string{"result"}),
		GeocodeRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "uas_etl",
			Name:      "geocode_retries_total",
			Help:      "Geocode lookup retry attempts after transient failures.",
		}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "uas_etl",
			Name:      "geocode_api_duration_seconds",
			Help:      "External geocoding request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
	}
}
