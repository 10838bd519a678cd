package handlers

import (
	"github.com/gorilla/mux"
)

// Router registers every endpoint on a new router.
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")
	r.Handle("/metrics", h.MetricsHandler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", h.GetState).Methods("GET")
	api.HandleFunc("/state/save", h.SaveState).Methods("POST")
	api.HandleFunc("/state/history", h.GetHistory).Methods("GET")
	api.HandleFunc("/overrides", h.GetOverrides).Methods("GET")

	return r
}
