package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// TurnRequest is the body for POST /api/v1/cases/{caseID}/turns.
type TurnRequest struct {
	Message string `json:"message"`
}

// runTurn processes one technician message for the case and returns the
// turn result, including the rendered context block the chat layer embeds.
func (s *Server) runTurn(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")
	if caseID == "" {
		writeError(w, http.StatusBadRequest, "missing case id")
		return
	}

	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	res, err := s.proc.RunTurn(r.Context(), caseID, req.Message)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "turn failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// getCase returns the registry snapshot; unknown case ids yield the empty
// default snapshot, never a 404, matching the engine's null-over-error
// posture.
func (s *Server) getCase(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")
	writeJSON(w, http.StatusOK, s.registry.Snapshot(caseID))
}

// getContext returns the prompt context block for the case, plus the pivot
// verdict the chat layer uses to end the checklist phase early.
func (s *Server) getContext(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")
	pivot := s.registry.ShouldPivot(caseID)
	writeJSON(w, http.StatusOK, map[string]any{
		"case_id": caseID,
		"context": s.registry.BuildContext(caseID),
		"pivot":   pivot.Pivot,
		"finding": pivot.Finding,
	})
}

// clearCase resets all state for the case (explicit restarts).
func (s *Server) clearCase(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")
	s.registry.Clear(caseID)
	writeJSON(w, http.StatusOK, map[string]string{"case_id": caseID, "status": "cleared"})
}
