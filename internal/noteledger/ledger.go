// Package noteledger manages the free-text note history attached to a lead.
package noteledger

import (
	"fmt"
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/store"
)

// Ledger coordinates note operations against the store. Every note is an
// independent record: editing or deleting one never alters its siblings.
type Ledger struct {
	store store.Store
}

// New creates a note ledger.
func New(st store.Store) *Ledger {
	return &Ledger{store: st}
}

// Add appends a note to a lead. Content must be non-empty after trimming
// whitespace; that check is local and happens before any store call. The
// recording URL is stored as an opaque reference, no validation beyond
// optionality.
func (l *Ledger) Add(leadID, content, recordingURL string) (*models.ClientNote, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("note content is empty: %w", apperr.ErrValidation)
	}
	if _, err := l.store.GetLead(leadID); err != nil {
		return nil, err
	}

	n := &models.ClientNote{
		LeadID:       leadID,
		Content:      content,
		RecordingURL: recordingURL,
	}
	if err := l.store.CreateNote(n); err != nil {
		return nil, err
	}
	return n, nil
}

// Edit fully replaces a note's content and recording URL.
func (l *Ledger) Edit(noteID, content, recordingURL string) (*models.ClientNote, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("note content is empty: %w", apperr.ErrValidation)
	}
	n, err := l.store.GetNote(noteID)
	if err != nil {
		return nil, err
	}
	n.Content = content
	n.RecordingURL = recordingURL
	if err := l.store.UpdateNote(n); err != nil {
		return nil, err
	}
	return n, nil
}

// Delete permanently removes a note. There is no undo.
func (l *Ledger) Delete(noteID string) error {
	return l.store.DeleteNote(noteID)
}

// List returns a lead's notes newest first.
func (l *Ledger) List(leadID string) ([]models.ClientNote, error) {
	notes, err := l.store.ListNotesByLead(leadID)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []models.ClientNote{}
	}
	return notes, nil
}
