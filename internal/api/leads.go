package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/pipeline"
)

// ListLeads handles GET /api/leads with optional ?q= free-text search and
// ?stage= exact filter ("all" disables the stage filter).
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.store.ListLeads()
	if err != nil {
		writeError(w, "list leads", err)
		return
	}

	q := r.URL.Query()
	filtered := pipeline.FilterLeads(leads, q.Get("q"), q.Get("stage"))

	writeJSON(w, http.StatusOK, map[string]any{
		"leads": filtered,
		"total": len(filtered),
	})
}

// CreateLead handles POST /api/leads.
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.FirstName == "" && req.LastName == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("a first or last name is required"))
		return
	}

	stage := req.Stage
	if stage == "" {
		stage = h.defaultStage
	}
	if models.IsTerminalStage(stage) {
		writeJSON(w, http.StatusBadRequest, errorBody("a lead cannot be created in a terminal stage"))
		return
	}

	lead := &models.Lead{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
		Campaign:  req.Campaign,
		Stage:     stage,
	}
	if err := h.store.CreateLead(lead); err != nil {
		writeError(w, "create lead", err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

// GetLead handles GET /api/leads/{id}. The response carries the lead along
// with its notes so the detail view loads in one round trip.
func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	lead, err := h.store.GetLead(id)
	if err != nil {
		writeError(w, "get lead", err)
		return
	}
	notes, err := h.notes.List(id)
	if err != nil {
		writeError(w, "get lead notes", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"lead":  lead,
		"notes": notes,
	})
}

// UpdateLead handles PUT /api/leads/{id}: contact fields only, the stage
// moves through the transition endpoints.
func (h *Handler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")

	var req UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	lead, err := h.store.GetLead(id)
	if err != nil {
		writeError(w, "update lead", err)
		return
	}
	lead.FirstName = req.FirstName
	lead.LastName = req.LastName
	lead.Phone = req.Phone
	lead.Email = req.Email
	lead.Address = req.Address
	lead.Campaign = req.Campaign

	if err := h.store.UpdateLead(lead); err != nil {
		writeError(w, "update lead", err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// DeleteLead handles DELETE /api/leads/{id}. Notes and schedules cascade.
func (h *Handler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteLead(id); err != nil {
		writeError(w, "delete lead", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Board handles GET /api/board: active columns in catalog order with their
// leads.
func (h *Handler) Board(w http.ResponseWriter, r *http.Request) {
	columns, err := h.pipeline.Board()
	if err != nil {
		writeError(w, "board", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"columns": columns,
	})
}

// MoveStage handles PUT /api/leads/{id}/stage.
//
// A move onto a regular active stage is applied directly. A move onto
// Closed or Dead never mutates the lead: it opens the confirmation
// workflow and answers 202 with a token and a consequence statement the UI
// must present before calling the confirm endpoint.
func (h *Handler) MoveStage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")

	var req MoveStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Stage == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("stage is required"))
		return
	}

	if models.IsTerminalStage(req.Stage) {
		conf, err := h.pipeline.RequestTerminal(id, req.Stage)
		if err != nil {
			writeError(w, "request terminal stage", err)
			return
		}
		writeJSON(w, http.StatusAccepted, conf)
		return
	}

	from := h.currentStage(id)
	lead, err := h.pipeline.Move(id, req.Stage)
	if err != nil {
		writeError(w, "move stage", err)
		return
	}
	if h.broker != nil {
		h.broker.PublishStageChange(lead.ID, from, lead.Stage)
	}
	writeJSON(w, http.StatusOK, lead)
}

// ConfirmStage handles POST /api/leads/{id}/stage/confirm: the second step
// of the terminal workflow.
func (h *Handler) ConfirmStage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")

	var req ConfirmStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Token == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("token is required"))
		return
	}

	from := h.currentStage(id)
	lead, err := h.pipeline.ConfirmTerminal(req.Token)
	if err != nil {
		writeError(w, "confirm terminal stage", err)
		return
	}
	if h.broker != nil {
		h.broker.PublishStageChange(lead.ID, from, lead.Stage)
	}
	writeJSON(w, http.StatusOK, lead)
}

// CancelStageConfirmation handles DELETE /api/leads/{id}/stage/confirm/{token}.
// The lead's stage is left unchanged.
func (h *Handler) CancelStageConfirmation(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if err := h.pipeline.CancelTerminal(token); err != nil {
		writeError(w, "cancel stage confirmation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) currentStage(leadID string) string {
	if lead, err := h.store.GetLead(leadID); err == nil {
		return lead.Stage
	}
	return ""
}
