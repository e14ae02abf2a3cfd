// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/okian/tellsight/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthHandler handles health check and metrics requests.
type HealthHandler struct {
	reports ReportProvider
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(reports ReportProvider) *HealthHandler {
	return &HealthHandler{reports: reports}
}

type healthResponse struct {
	Status string `json:"status"`
	Cycles int    `json:"cycles"`
}

// HandleHealth handles GET /healthz requests. The service is considered
// alive as soon as the loop is running; readiness of the first report is
// visible through the cycle counter.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Cycles: h.reports.Cycles()})
}

// HandleMetrics serves Prometheus metrics from the custom registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
