package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Sigitfad/ocr-reader/internal/session"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocr_reader_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ocr_reader_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Scan metrics
	scansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocr_reader_scans_total",
			Help: "Total number of uploaded scans by outcome",
		},
		[]string{"mode", "outcome"}, // outcome: accepted, rejected, no_match, duplicate, load_error
	)

	scanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ocr_reader_scan_duration_seconds",
			Help:    "Scan duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 25},
		},
		[]string{"mode"},
	)

	detectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocr_reader_detections_total",
			Help: "Total number of accepted detections",
		},
		[]string{"family", "status"},
	)

	detectionScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ocr_reader_detection_score",
			Help:    "Match score of accepted detections",
			Buckets: []float64{.7, .75, .8, .85, .9, .95, 1},
		},
	)

	rejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ocr_reader_rejections_total",
			Help: "Total number of matches rejected for their family",
		},
	)

	noMatchTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ocr_reader_no_match_total",
			Help: "Total number of static scans without a match",
		},
	)

	dailyResetsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ocr_reader_daily_resets_total",
			Help: "Total number of daily record resets",
		},
	)

	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocr_reader_exports_total",
			Help: "Total number of report exports",
		},
		[]string{"status"}, // status: ok, no_data, error
	)

	// File upload metrics
	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ocr_reader_upload_size_bytes",
			Help:    "Size of uploaded files in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024, 50 * 1024 * 1024},
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ocr_reader_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocr_reader_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received, dropped
	)
)

// MetricsObserver records session events as Prometheus metrics.
type MetricsObserver struct{}

func (MetricsObserver) OnCandidateTexts([]string) {}

func (MetricsObserver) OnAccepted(d session.Detection) {
	detectionsTotal.WithLabelValues(d.Family.String(), d.Status).Inc()
	detectionScore.Observe(d.Score)
}

func (MetricsObserver) OnRejected(string) { rejectionsTotal.Inc() }

func (MetricsObserver) OnNoMatch() { noMatchTotal.Inc() }

func (MetricsObserver) OnDailyReset(time.Time) { dailyResetsTotal.Inc() }
