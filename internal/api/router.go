package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/catalog"
	"github.com/starford/raido/internal/noteledger"
	"github.com/starford/raido/internal/pipeline"
	"github.com/starford/raido/internal/scheduling"
	"github.com/starford/raido/internal/sse"
	"github.com/starford/raido/internal/store"
)

// Handler holds API route handlers and their collaborators.
type Handler struct {
	store        store.Store
	catalog      *catalog.Catalog
	pipeline     *pipeline.Controller
	schedules    *scheduling.Engine
	notes        *noteledger.Ledger
	broker       *sse.Broker
	defaultStage string
}

// NewHandler creates a new Handler. broker may be nil, in which case no
// events are published.
func NewHandler(st store.Store, cat *catalog.Catalog, ctrl *pipeline.Controller,
	eng *scheduling.Engine, ledger *noteledger.Ledger, broker *sse.Broker, defaultStage string) *Handler {
	return &Handler{
		store:        st,
		catalog:      cat,
		pipeline:     ctrl,
		schedules:    eng,
		notes:        ledger,
		broker:       broker,
		defaultStage: defaultStage,
	}
}

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Stage catalog.
	r.Get("/stages", h.ListStages)
	r.Get("/stages/names", h.ListStageNames)
	r.Post("/stages", h.CreateStage)
	r.Put("/stages/{id}", h.UpdateStage)

	// Leads + board.
	r.Get("/leads", h.ListLeads)
	r.Post("/leads", h.CreateLead)
	r.Get("/leads/{id}", h.GetLead)
	r.Put("/leads/{id}", h.UpdateLead)
	r.Delete("/leads/{id}", h.DeleteLead)
	r.Get("/board", h.Board)

	// Stage transitions.
	r.Put("/leads/{id}/stage", h.MoveStage)
	r.Post("/leads/{id}/stage/confirm", h.ConfirmStage)
	r.Delete("/leads/{id}/stage/confirm/{token}", h.CancelStageConfirmation)

	// Client notes.
	r.Get("/leads/{id}/notes", h.ListNotes)
	r.Post("/leads/{id}/notes", h.CreateNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)

	// Schedules.
	r.Get("/leads/{id}/schedules", h.ListSchedules)
	r.Post("/leads/{id}/schedules", h.CreateSchedule)
	r.Get("/leads/{id}/schedules/calendar", h.ScheduleCalendar)
	r.Get("/schedules/upcoming", h.UpcomingSchedules)
	r.Post("/schedules/{id}/complete", h.CompleteSchedule)
	r.Post("/schedules/{id}/cancel", h.CancelSchedule)
	r.Post("/schedules/{id}/reschedule", h.RescheduleSchedule)
	r.Delete("/schedules/{id}", h.DeleteSchedule)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
