// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/tellsight/internal/domain/model"
)

// ReportProvider exposes the read side of published cycle reports.
type ReportProvider interface {
	Latest(ctx context.Context) (model.CycleReport, error)
	Cycles() int
}

// RosterProvider exposes the current worker roster.
type RosterProvider interface {
	Workers(ctx context.Context) []model.Worker
	Count() int
}

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the admin API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	reportHandler *ReportHandler
	rosterHandler *RosterHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(reports ReportProvider, roster RosterProvider, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(reports),
		statsHandler:  NewStatsHandler(statsProvider),
		reportHandler: NewReportHandler(reports),
		rosterHandler: NewRosterHandler(roster),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/report", MetricsMiddleware(s.reportHandler.HandleGetReport, "report"))
	mux.HandleFunc("/weights", MetricsMiddleware(s.reportHandler.HandleGetWeights, "weights"))
	mux.HandleFunc("/scores", MetricsMiddleware(s.reportHandler.HandleGetScores, "scores"))
	mux.HandleFunc("/roster", MetricsMiddleware(s.rosterHandler.HandleGetRoster, "roster"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
