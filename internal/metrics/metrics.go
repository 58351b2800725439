package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Occurrence search metrics
	SearchRequestsTotal   *prometheus.CounterVec
	SearchDurationSeconds prometheus.Histogram
	SearchResultRecords   prometheus.Histogram
	SearchFallbacksTotal  *prometheus.CounterVec

	// Name lookup metrics
	NameLookupsTotal *prometheus.CounterVec

	// Generic term resolution metrics
	TermResolutionsTotal *prometheus.CounterVec

	// Geocoding metrics
	GeocodeCacheHitsTotal   prometheus.Counter
	GeocodeCacheMissesTotal prometheus.Counter

	// Assistant metrics
	ChatRequestsTotal       *prometheus.CounterVec
	ToolCallsTotal          *prometheus.CounterVec
	ChatDurationSeconds     prometheus.Histogram
	ResponsesCleanedTotal   prometheus.Counter
	HTTPErrorsTotal         *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		SearchRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "explorer_search_requests_total",
				Help: "Total number of occurrence searches by outcome",
			},
			[]string{"status"}, // status: success, empty, error
		),

		SearchDurationSeconds: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "explorer_search_duration_seconds",
				Help:    "Occurrence search duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60}, // matches the 60s search timeout
			},
		),

		SearchResultRecords: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "explorer_search_result_records",
				Help:    "Number of records returned per occurrence search",
				Buckets: []float64{0, 1, 10, 50, 100, 500, 1000},
			},
		),

		SearchFallbacksTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "explorer_search_fallbacks_total",
				Help: "Total number of name-space fallback retries by direction and outcome",
			},
			[]string{"direction", "outcome"}, // direction: common_to_scientific, scientific_to_common
		),

		NameLookupsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "explorer_name_lookups_total",
				Help: "Total number of species name lookups by kind and status",
			},
			[]string{"kind", "status"}, // kind: scientific, vernacular, candidates
		),

		TermResolutionsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "explorer_term_resolutions_total",
				Help: "Total number of generic term resolutions by source",
			},
			[]string{"source"}, // source: static, dynamic, none
		),

		GeocodeCacheHitsTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "explorer_geocode_cache_hits_total",
				Help: "Total number of geocoding cache hits",
			},
		),

		GeocodeCacheMissesTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "explorer_geocode_cache_misses_total",
				Help: "Total number of geocoding cache misses",
			},
		),

		ChatRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "explorer_chat_requests_total",
				Help: "Total number of chat requests by status",
			},
			[]string{"status"},
		),

		ToolCallsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "explorer_tool_calls_total",
				Help: "Total number of assistant tool calls by tool and status",
			},
			[]string{"tool", "status"},
		),

		ChatDurationSeconds: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "explorer_chat_duration_seconds",
				Help:    "End-to-end chat turn duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
		),

		ResponsesCleanedTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "explorer_responses_cleaned_total",
				Help: "Total number of assistant responses that required cleanup",
			},
		),

		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "explorer_http_errors_total",
				Help: "Total HTTP errors by type and route",
			},
			[]string{"error_type", "route"},
		),
	}

	return m
}
