package metrics

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves live run metrics while a test is in progress.
type Handler struct {
	collector *Collector
}

func NewHandler(collector *Collector) *Handler {
	return &Handler{
		collector: collector,
	}
}

// RegisterRoutes registers the monitoring HTTP endpoints
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.HandlerFor(h.collector.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/summary", h.SummaryHandler)
	mux.HandleFunc("/health", h.HealthHandler)
}

// SummaryHandler returns the current snapshot in JSON format
func (h *Handler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot := h.collector.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")

	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		http.Error(w, "Failed to encode metrics", http.StatusInternalServerError)
		return
	}
}

// HealthHandler reports that the load generator is alive.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot := h.collector.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":     "ok",
		"active_vus": snapshot.ActiveVUs,
		"requests":   snapshot.TotalRequests,
		"timestamp":  time.Now().UTC(),
	})
}
