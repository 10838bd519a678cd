package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoplay_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autoplay_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "autoplay_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Session metrics
var (
	RestoresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoplay_restores_total",
			Help: "Total number of session restores by outcome",
		},
		[]string{"result"}, // "restored", "empty", "partial"
	)

	RestoreDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "autoplay_restore_duration_seconds",
			Help:    "Session restore duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	CapturesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoplay_captures_total",
			Help: "Total number of session captures by trigger",
		},
		[]string{"trigger"}, // "event", "stop", "manual"
	)

	CaptureDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "autoplay_capture_duration_seconds",
			Help:    "Session capture and persist duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	PersistTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoplay_persist_total",
			Help: "Total number of state writes by status",
		},
		[]string{"status"},
	)

	DiagnosticsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoplay_diagnostics_total",
			Help: "Total number of recovered failures by kind",
		},
		[]string{"kind"},
	)

	ExpandedURIsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoplay_expanded_uris_total",
			Help: "Total number of URIs produced by expansion by source",
		},
		[]string{"source"}, // "match", "playlist", "uri", "bare"
	)

	PlayerEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoplay_player_events_total",
			Help: "Total number of host player events received",
		},
		[]string{"event"},
	)

	SaveTimerArmsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "autoplay_save_timer_arms_total",
			Help: "Total number of times the save timer was armed",
		},
	)

	SessionPhase = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "autoplay_session_phase",
			Help: "Current session phase (1 for the active phase)",
		},
		[]string{"phase"}, // "idle", "running", "stopped"
	)

	TracklistLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "autoplay_tracklist_length",
			Help: "Number of tracks in the last captured tracklist",
		},
	)

	LastCaptureTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "autoplay_last_capture_timestamp_seconds",
			Help: "Unix timestamp of the last successful capture",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoplay_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autoplay_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autoplay_filesystem_operation_duration_seconds",
			Help:    "Filesystem operation duration in seconds by volume and operation",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoplay_filesystem_operation_errors_total",
			Help: "Total number of failed filesystem operations",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoplay_filesystem_retry_attempts_total",
			Help: "Total number of filesystem retries after stale NFS handles",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoplay_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoplay_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoplay_filesystem_stale_errors_total",
			Help: "Total number of ESTALE errors seen",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autoplay_filesystem_retry_duration_seconds",
			Help:    "Total duration of filesystem operations including retries",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation", "volume"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "autoplay_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// Diagnostic kinds used with DiagnosticsTotal.
const (
	KindUnavailable          = "unavailable"
	KindCorrupt              = "corrupt"
	KindWriteFailed          = "write_failed"
	KindContentUnresolvable  = "content_unresolvable"
	KindPositionUnresolvable = "position_unresolvable"
	KindOptionApplyFailed    = "option_apply_failed"
	KindPlayerReadFailed     = "player_read_failed"
	KindPlayerCommandFailed  = "player_command_failed"
)

// DiagnosticKinds lists every kind exported by DiagnosticsTotal.
var DiagnosticKinds = []string{
	KindUnavailable, KindCorrupt, KindWriteFailed,
	KindContentUnresolvable, KindPositionUnresolvable, KindOptionApplyFailed,
	KindPlayerReadFailed, KindPlayerCommandFailed,
}

// RecordDiagnostic counts one recovered failure of the given kind.
func RecordDiagnostic(kind string) {
	DiagnosticsTotal.WithLabelValues(kind).Inc()
}

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
