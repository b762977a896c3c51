package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListNotes handles GET /api/leads/{id}/notes, newest first.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "id")
	if _, err := h.store.GetLead(leadID); err != nil {
		writeError(w, "list notes", err)
		return
	}
	notes, err := h.notes.List(leadID)
	if err != nil {
		writeError(w, "list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

// CreateNote handles POST /api/leads/{id}/notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	leadID := chi.URLParam(r, "id")

	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	note, err := h.notes.Add(leadID, req.Content, req.RecordingURL)
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	if h.broker != nil {
		h.broker.PublishNoteChange("created", leadID, note.ID)
	}
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PUT /api/notes/{id}: a full replace of content and
// recording URL.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")

	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	note, err := h.notes.Edit(id, req.Content, req.RecordingURL)
	if err != nil {
		writeError(w, "update note", err)
		return
	}
	if h.broker != nil {
		h.broker.PublishNoteChange("updated", note.LeadID, note.ID)
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{id}. Permanent, no undo.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	note, err := h.store.GetNote(id)
	if err != nil {
		writeError(w, "delete note", err)
		return
	}
	if err := h.notes.Delete(id); err != nil {
		writeError(w, "delete note", err)
		return
	}
	if h.broker != nil {
		h.broker.PublishNoteChange("deleted", note.LeadID, note.ID)
	}
	w.WriteHeader(http.StatusNoContent)
}
