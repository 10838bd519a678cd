package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"autoplay/internal/logging"
	"autoplay/internal/session"
	"autoplay/internal/state"
)

const defaultHistoryLimit = 20

// HistoryItem is one past capture as served by GetHistory.
type HistoryItem struct {
	ID       int64           `json:"id"`
	SavedAt  string          `json:"savedAt"`
	Document json.RawMessage `json:"document"`
}

// GetState returns the last restored or captured session in its on-disk form.
func (h *Handlers) GetState(w http.ResponseWriter, _ *http.Request) {
	data, err := state.Encode(h.session.Snapshot())
	if err != nil {
		logging.Error("Failed to encode session snapshot: %v", err)
		writeJSONError(w, "failed to encode session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(data); err != nil {
		logging.Debug("Failed to write session snapshot: %v", err)
	}
}

// SaveState captures and persists the session immediately.
func (h *Handlers) SaveState(w http.ResponseWriter, r *http.Request) {
	if phase := h.session.Phase(); phase != session.PhaseRunning {
		writeJSONError(w, "session is "+string(phase), http.StatusConflict)
		return
	}

	if err := h.session.SaveNow(r.Context()); err != nil {
		logging.Error("Manual save failed: %v", err)
		writeJSONError(w, "failed to save session", http.StatusInternalServerError)
		return
	}

	logging.Info("Session saved on request")
	writeJSONStatus(w, "saved")
}

// GetHistory lists past captures, newest first. The limit query parameter
// caps the result; 0 returns everything kept.
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSONError(w, "history requires the sqlite state backend", http.StatusNotImplemented)
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSONError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := h.history.History(r.Context(), limit)
	if err != nil {
		logging.Error("Failed to list state history: %v", err)
		writeJSONError(w, "failed to list history", http.StatusInternalServerError)
		return
	}

	items := make([]HistoryItem, 0, len(entries))
	for _, e := range entries {
		if !json.Valid(e.Document) {
			logging.Warn("Skipping history entry %d: not a JSON document", e.ID)
			continue
		}
		items = append(items, HistoryItem{
			ID:       e.ID,
			SavedAt:  e.SavedAt.UTC().Format(time.RFC3339),
			Document: e.Document,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, items)
}

// GetOverrides returns the configured override of each option, "auto" where
// the saved value is used.
func (h *Handlers) GetOverrides(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.overrides.Describe())
}
