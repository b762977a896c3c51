package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/scheduling"
)

// ListSchedules handles GET /api/leads/{id}/schedules: date ascending, with
// the MISSED derivation applied at read time.
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "id")
	if _, err := h.store.GetLead(leadID); err != nil {
		writeError(w, "list schedules", err)
		return
	}
	items, err := h.schedules.ListForLead(leadID)
	if err != nil {
		writeError(w, "list schedules", err)
		return
	}
	if items == nil {
		items = []models.Schedule{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"schedules": items})
}

// CreateSchedule handles POST /api/leads/{id}/schedules. A past date is
// accepted; it derives to MISSED on the next read.
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	leadID := chi.URLParam(r, "id")

	var req CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.ScheduledDate == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("scheduled_date is required"))
		return
	}
	date, err := time.Parse(time.RFC3339, req.ScheduledDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("scheduled_date must be ISO-8601"))
		return
	}

	s, err := h.schedules.Create(scheduling.CreateInput{
		LeadID:        leadID,
		ScheduledDate: date,
		Type:          req.Type,
		Notes:         req.Notes,
	})
	if err != nil {
		writeError(w, "create schedule", err)
		return
	}
	if h.broker != nil {
		h.broker.PublishScheduleChange("created", leadID, s.ID)
	}
	writeJSON(w, http.StatusCreated, s)
}

// ScheduleCalendar handles GET /api/leads/{id}/schedules/calendar?tz=...:
// schedules grouped by calendar day in the viewer's timezone.
func (h *Handler) ScheduleCalendar(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "id")
	if _, err := h.store.GetLead(leadID); err != nil {
		writeError(w, "schedule calendar", err)
		return
	}

	loc := time.Local
	if tz := r.URL.Query().Get("tz"); tz != "" {
		var err error
		loc, err = time.LoadLocation(tz)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("unknown timezone"))
			return
		}
	}

	days, err := h.schedules.Calendar(leadID, loc)
	if err != nil {
		writeError(w, "schedule calendar", err)
		return
	}
	if days == nil {
		days = []scheduling.Day{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}

// UpcomingSchedules handles GET /api/schedules/upcoming: all open schedules
// across leads, date ascending, derivation applied.
func (h *Handler) UpcomingSchedules(w http.ResponseWriter, r *http.Request) {
	items, err := h.schedules.Upcoming()
	if err != nil {
		writeError(w, "upcoming schedules", err)
		return
	}
	if items == nil {
		items = []models.Schedule{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"schedules": items})
}

// CompleteSchedule handles POST /api/schedules/{id}/complete.
func (h *Handler) CompleteSchedule(w http.ResponseWriter, r *http.Request) {
	h.scheduleTransition(w, r, h.schedules.Complete)
}

// CancelSchedule handles POST /api/schedules/{id}/cancel.
func (h *Handler) CancelSchedule(w http.ResponseWriter, r *http.Request) {
	h.scheduleTransition(w, r, h.schedules.Cancel)
}

func (h *Handler) scheduleTransition(w http.ResponseWriter, r *http.Request,
	op func(string) (*models.Schedule, error)) {
	id := chi.URLParam(r, "id")
	s, err := op(id)
	if err != nil {
		writeError(w, "schedule transition", err)
		return
	}
	if h.broker != nil {
		h.broker.PublishScheduleChange("updated", s.LeadID, s.ID)
	}
	writeJSON(w, http.StatusOK, s)
}

// RescheduleSchedule handles POST /api/schedules/{id}/reschedule.
func (h *Handler) RescheduleSchedule(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")

	var req RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.ScheduledDate == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("scheduled_date is required"))
		return
	}
	date, err := time.Parse(time.RFC3339, req.ScheduledDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("scheduled_date must be ISO-8601"))
		return
	}

	s, err := h.schedules.Reschedule(id, date, req.Actor)
	if err != nil {
		writeError(w, "reschedule", err)
		return
	}
	if h.broker != nil {
		h.broker.PublishScheduleChange("updated", s.LeadID, s.ID)
	}
	writeJSON(w, http.StatusOK, s)
}

// DeleteSchedule handles DELETE /api/schedules/{id}: a hard delete.
func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s, err := h.store.GetSchedule(id)
	if err != nil {
		writeError(w, "delete schedule", err)
		return
	}
	if err := h.schedules.Delete(id); err != nil {
		writeError(w, "delete schedule", err)
		return
	}
	if h.broker != nil {
		h.broker.PublishScheduleChange("deleted", s.LeadID, s.ID)
	}
	w.WriteHeader(http.StatusNoContent)
}
