package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repograph_analyses_total",
		Help: "Total number of repository analyses by outcome.",
	}, []string{"source", "outcome"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "repograph_analysis_seconds",
		Help:    "Time spent on analysis phases.",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})

	ContentFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repograph_content_fetches_total",
		Help: "Total number of file content fetches by outcome.",
	}, []string{"outcome"})

	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repograph_upstream_requests_total",
		Help: "Total number of source host API requests by endpoint and status class.",
	}, []string{"endpoint", "status"})

	ContentCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "repograph_content_cache_hits_total",
		Help: "Total number of file contents served from the in-memory cache.",
	})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "repograph_graph_nodes",
		Help: "Number of nodes in the most recently built dependency graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "repograph_graph_edges",
		Help: "Number of edges in the most recently built dependency graph.",
	})

	CyclesFound = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "repograph_cycles_found",
		Help:    "Number of cycles reported per analysis.",
		Buckets: []float64{0, 1, 2, 5, 10},
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "repograph_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repograph_http_requests_total",
		Help: "Total number of API requests by route and status code.",
	}, []string{"route", "code"})
)
