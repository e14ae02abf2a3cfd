// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/okian/tellsight/internal/adapters/report"
)

// ReportHandler serves the latest published cycle report.
type ReportHandler struct {
	reports ReportProvider
}

// NewReportHandler creates a new report handler.
func NewReportHandler(reports ReportProvider) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// HandleGetReport handles GET /report requests.
func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rep, err := h.reports.Latest(r.Context())
	if err != nil {
		if errors.Is(err, report.ErrNoReport) {
			writeError(w, http.StatusNotFound, "no_report", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// weightEntry flattens the weight map for stable JSON output.
type weightEntry struct {
	UID    int     `json:"uid"`
	Weight float64 `json:"weight"`
}

// HandleGetWeights handles GET /weights requests. It returns only the
// allocation of the most recent cycle.
func (h *ReportHandler) HandleGetWeights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rep, err := h.reports.Latest(r.Context())
	if err != nil {
		if errors.Is(err, report.ErrNoReport) {
			writeError(w, http.StatusNotFound, "no_report", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	entries := make([]weightEntry, 0, len(rep.Weights))
	for uid, weight := range rep.Weights {
		entries = append(entries, weightEntry{UID: uid, Weight: weight})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].UID < entries[j].UID })
	writeJSON(w, http.StatusOK, entries)
}

// HandleGetScores handles GET /scores?limit=N requests. Scores are already
// sorted by UID; limit truncates the list.
func (h *ReportHandler) HandleGetScores(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rep, err := h.reports.Latest(r.Context())
	if err != nil {
		if errors.Is(err, report.ErrNoReport) {
			writeError(w, http.StatusNotFound, "no_report", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	scores := rep.Scores
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if n < len(scores) {
			scores = scores[:n]
		}
	}
	writeJSON(w, http.StatusOK, scores)
}
