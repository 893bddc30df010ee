// Package metrics provides Prometheus metrics for the map service
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/residential-history/internal/domain"
	"github.com/residential-history/internal/pkg/errors"
)

const namespace = "resmap"

// Pipeline status labels
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics contains Prometheus metrics for dataset loads, the point pipeline and HTTP
type Metrics struct {
	registry *prometheus.Registry

	// Dataset load metrics
	datasetLoadsTotal   *prometheus.CounterVec
	datasetLoadDuration *prometheus.HistogramVec

	// Pipeline metrics
	pipelineRunsTotal   *prometheus.CounterVec
	pipelineDuration    prometheus.Histogram
	pipelinePoints      prometheus.Histogram
	pipelineDroppedRows *prometheus.CounterVec

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates and registers the service metrics
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) initMetrics() {
	m.datasetLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Total number of source table loads",
		},
		[]string{"source", "result"}, // result: source, snapshot, error
	)

	m.datasetLoadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Time taken to load the source tables",
			// 10ms .. ~40s, spreadsheets are slow to parse
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"source"},
	)

	m.pipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Total number of point pipeline runs",
		},
		[]string{"status"},
	)

	m.pipelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Time taken to build points for a year",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		},
	)

	m.pipelinePoints = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_points",
			Help:      "Number of points produced per pipeline run",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 9),
		},
	)

	m.pipelineDroppedRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_dropped_rows_total",
			Help:      "Total number of joined rows dropped by the pipeline filters",
		},
		[]string{"reason"}, // reason: null_coordinates, category, outside_bbox
	)

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
}

// Describe implements the Collector interface
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.datasetLoadsTotal.Describe(ch)
	m.datasetLoadDuration.Describe(ch)
	m.pipelineRunsTotal.Describe(ch)
	m.pipelineDuration.Describe(ch)
	m.pipelinePoints.Describe(ch)
	m.pipelineDroppedRows.Describe(ch)
	m.httpRequestsTotal.Describe(ch)
	m.httpRequestDuration.Describe(ch)
}

// Collect implements the Collector interface
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.datasetLoadsTotal.Collect(ch)
	m.datasetLoadDuration.Collect(ch)
	m.pipelineRunsTotal.Collect(ch)
	m.pipelineDuration.Collect(ch)
	m.pipelinePoints.Collect(ch)
	m.pipelineDroppedRows.Collect(ch)
	m.httpRequestsTotal.Collect(ch)
	m.httpRequestDuration.Collect(ch)
}

// ObserveDatasetLoad records a source table load
func (m *Metrics) ObserveDatasetLoad(source, result string, took time.Duration) {
	m.datasetLoadsTotal.WithLabelValues(source, result).Inc()
	m.datasetLoadDuration.WithLabelValues(source).Observe(took.Seconds())
}

// ObservePipeline records one pipeline run. Failed runs are labelled by error code.
func (m *Metrics) ObservePipeline(stats domain.PipelineStats, took time.Duration, err error) {
	if err != nil {
		m.pipelineRunsTotal.WithLabelValues(errorStatus(err)).Inc()
		return
	}

	m.pipelineRunsTotal.WithLabelValues(StatusOK).Inc()
	m.pipelineDuration.Observe(took.Seconds())
	m.pipelinePoints.Observe(float64(stats.Points))
	m.pipelineDroppedRows.WithLabelValues("null_coordinates").Add(float64(stats.DroppedNullCoords))
	m.pipelineDroppedRows.WithLabelValues("category").Add(float64(stats.DroppedCategory))
	m.pipelineDroppedRows.WithLabelValues("outside_bbox").Add(float64(stats.DroppedOutsideBBox))
}

// RecordHTTPRequest records a served HTTP request
func (m *Metrics) RecordHTTPRequest(method, route string, statusCode int, took time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(took.Seconds())
}

func errorStatus(err error) string {
	if appErr, ok := errors.As(err); ok {
		return strings.ToLower(appErr.Code)
	}
	return StatusError
}
