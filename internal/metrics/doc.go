// Package metrics provides Prometheus instrumentation for autoplay.
//
// All metrics are prefixed with "autoplay_" and registered on the default
// registry through promauto, so the /metrics endpoint exports them without
// further wiring.
//
// # Metric Categories
//
// ## HTTP Metrics
//
// Track requests served by the status surface:
//   - HTTPRequestsTotal: Counter of requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Session Metrics
//
// Track restore and capture cycles:
//   - RestoresTotal: Counter of restores by result (restored/empty/partial)
//   - RestoreDuration: Histogram of restore duration
//   - CapturesTotal: Counter of captures by trigger (event/stop/manual)
//   - CaptureDuration: Histogram of capture plus persist duration
//   - PersistTotal: Counter of state writes by status
//   - DiagnosticsTotal: Counter of recovered failures by kind
//   - ExpandedURIsTotal: Counter of URIs produced by expansion by source
//   - PlayerEventsTotal: Counter of host events by name
//   - SaveTimerArmsTotal: Counter of save timer arms
//   - SessionPhase: Gauge set to 1 for the current phase
//   - TracklistLength: Gauge of the last captured queue length
//   - LastCaptureTimestamp: Gauge of the last capture time
//
// ## Database and Filesystem Metrics
//
// The sqlite state backend reports DBQueryTotal and DBQueryDuration. The
// state file reader and writer report through NewFilesystemObserver, which
// implements filesystem.Observer so that package does not import this one.
//
// # Usage
//
//	metrics.InitializeMetrics()
//	filesystem.SetObserver(metrics.NewFilesystemObserver())
//	metrics.SetAppInfo(version, commit, runtime.Version())
//
// A Collector polls a StatsProvider (the session orchestrator) and keeps the
// session gauges current between captures.
package metrics
