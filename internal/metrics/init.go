package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- Session outcomes ---
	for _, result := range []string{"restored", "empty", "partial"} {
		RestoresTotal.WithLabelValues(result)
	}
	for _, trigger := range []string{"event", "stop", "manual"} {
		CapturesTotal.WithLabelValues(trigger)
	}
	for _, status := range []string{"success", "error"} {
		PersistTotal.WithLabelValues(status)
	}
	for _, kind := range DiagnosticKinds {
		DiagnosticsTotal.WithLabelValues(kind)
	}
	for _, source := range []string{"match", "playlist", "uri", "bare"} {
		ExpandedURIsTotal.WithLabelValues(source)
	}
	for _, phase := range []string{"idle", "running", "stopped"} {
		SessionPhase.WithLabelValues(phase)
	}

	// --- Filesystem operation metrics (per volume × operation) ---
	volumes := []string{"state", "playlists", "unknown"}
	for _, vol := range volumes {
		for _, op := range []string{"read", "write", "stat"} {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}

	// --- DB query operations ---
	for _, op := range []string{"initialize_schema", "read_state", "write_state", "prune_history", "list_history"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}

// SetPhase marks phase as the current session phase.
func SetPhase(phase string) {
	for _, p := range []string{"idle", "running", "stopped"} {
		v := 0.0
		if p == phase {
			v = 1
		}
		SessionPhase.WithLabelValues(p).Set(v)
	}
}
