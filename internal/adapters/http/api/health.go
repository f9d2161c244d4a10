package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/pelada/pkg/metrics"
)

// HealthHandler serves the Prometheus exposition as the liveness probe.
type HealthHandler struct {
	exposition http.Handler
}

// NewHealthHandler exposes gatherer, or the service registry when nil.
func NewHealthHandler(gatherer prometheus.Gatherer) *HealthHandler {
	if gatherer == nil {
		gatherer = metrics.GetRegistry()
	}
	return &HealthHandler{
		exposition: promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	}
}

// HandleHealth handles GET /healthz.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.exposition.ServeHTTP(w, r)
}

// StatsProvider reports service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves GET /stats.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler creates a stats handler over provider.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider}
}

// HandleStats writes the provider's snapshot. Stats change on every roster
// mutation, so responses are never cached.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, h.provider.GetStats())
}
