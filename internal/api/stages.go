package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/models"
)

// ListStages handles GET /api/stages: the active board columns. Pass
// ?all=true to include inactive and system stages for admin views.
func (h *Handler) ListStages(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("all") == "true" {
		stages, err := h.store.ListStages()
		if err != nil {
			writeError(w, "list stages", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"stages": stages})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stages": h.pipelineStagesOrDefault(),
	})
}

func (h *Handler) pipelineStagesOrDefault() []models.PipelineStage {
	stages := h.catalog.ListActiveStages()
	if stages == nil {
		stages = []models.PipelineStage{}
	}
	return stages
}

// ListStageNames handles GET /api/stages/names: every name a stage-select
// dropdown may need, including values only referenced by existing leads.
func (h *Handler) ListStageNames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"names": h.catalog.ListAllStageNames(),
	})
}

// CreateStage handles POST /api/stages. System stage names are reserved.
func (h *Handler) CreateStage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req StageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	if models.IsTerminalStage(req.Name) {
		writeJSON(w, http.StatusBadRequest, errorBody("stage name is reserved"))
		return
	}

	display := req.Name
	if req.DisplayName != nil && *req.DisplayName != "" {
		display = *req.DisplayName
	}
	order := 0
	if req.Order != nil {
		order = *req.Order
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	stage := models.PipelineStage{
		Name:        req.Name,
		DisplayName: display,
		Order:       order,
		IsActive:    active,
	}
	if err := h.store.UpsertStage(stage); err != nil {
		writeError(w, "create stage", err)
		return
	}
	h.catalog.Invalidate()
	if h.broker != nil {
		h.broker.PublishBoardChange()
	}

	created, err := h.store.GetStageByName(req.Name)
	if err != nil {
		writeError(w, "create stage", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateStage handles PUT /api/stages/{id}: display name, order, and
// active flag. The name key and system stages are immutable.
func (h *Handler) UpdateStage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")

	var req StageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	stage, err := h.store.GetStage(id)
	if err != nil {
		writeError(w, "update stage", err)
		return
	}
	if stage.IsSystem {
		writeJSON(w, http.StatusConflict, errorBody("system stages cannot be modified"))
		return
	}

	if req.DisplayName != nil {
		stage.DisplayName = *req.DisplayName
	}
	if req.Order != nil {
		stage.Order = *req.Order
	}
	if req.IsActive != nil {
		stage.IsActive = *req.IsActive
	}

	if err := h.store.UpsertStage(*stage); err != nil {
		writeError(w, "update stage", err)
		return
	}
	h.catalog.Invalidate()
	if h.broker != nil {
		h.broker.PublishBoardChange()
	}
	writeJSON(w, http.StatusOK, stage)
}
