// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// RosterHandler serves the current worker roster.
type RosterHandler struct {
	roster RosterProvider
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(roster RosterProvider) *RosterHandler {
	return &RosterHandler{roster: roster}
}

// HandleGetRoster handles GET /roster requests.
func (h *RosterHandler) HandleGetRoster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.roster.Workers(r.Context()))
}
