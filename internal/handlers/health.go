package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"autoplay/internal/session"
	"autoplay/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
	statusDegraded = "degraded"
	statusStopped  = "stopped"
)

const playerPingTimeout = 2 * time.Second

// HealthResponse contains the health check response
type HealthResponse struct {
	Status        string `json:"status"`
	Ready         bool   `json:"ready"`
	Phase         string `json:"phase"`
	Version       string `json:"version"`
	Uptime        string `json:"uptime"`
	StateLocation string `json:"stateLocation,omitempty"`
	LastCapture   string `json:"lastCapture,omitempty"`

	PlayerReachable bool   `json:"playerReachable"`
	PlayerError     string `json:"playerError,omitempty"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	phase := h.session.Phase()

	response := HealthResponse{
		Ready:           phase == session.PhaseRunning,
		Phase:           string(phase),
		Version:         startup.Version,
		Uptime:          time.Since(h.started).Round(time.Second).String(),
		StateLocation:   h.stateLocation,
		PlayerReachable: true,
		GoVersion:       runtime.Version(),
		NumCPU:          runtime.NumCPU(),
		NumGoroutine:    runtime.NumGoroutine(),
	}

	if last := h.session.LastCapture(); !last.IsZero() {
		response.LastCapture = last.Format(time.RFC3339)
	}

	if h.player != nil {
		ctx, cancel := context.WithTimeout(r.Context(), playerPingTimeout)
		err := h.player.Ping(ctx)
		cancel()
		if err != nil {
			response.PlayerReachable = false
			response.PlayerError = err.Error()
		}
	}

	switch {
	case phase == session.PhaseIdle:
		response.Status = statusStarting
	case phase == session.PhaseStopped:
		response.Status = statusStopped
	case !response.PlayerReachable:
		response.Status = statusDegraded
	default:
		response.Status = statusHealthy
	}

	w.Header().Set("Content-Type", "application/json")

	// Return 503 only if not ready at all
	if !response.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 once the session has been restored and until it stops
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if h.session.Phase() == session.PhaseRunning {
		w.WriteHeader(http.StatusOK)
		writeJSON(w, map[string]string{
			"status": "ready",
		})
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{
			"status": "not_ready",
		})
	}
}
