package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

const noteColumns = `id, lead_id, content, recording_url, created_at, updated_at`

// CreateNote inserts a new client note.
func (db *DB) CreateNote(n *models.ClientNote) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	now := time.Now()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now

	_, err := db.conn.Exec(`
		INSERT INTO client_notes (`+noteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
	`, n.ID, n.LeadID, n.Content, n.RecordingURL, fmtTime(n.CreatedAt), fmtTime(n.UpdatedAt))
	if err != nil {
		return fmt.Errorf("store: create note: %w", err)
	}
	return nil
}

// GetNote returns a note by id.
func (db *DB) GetNote(id string) (*models.ClientNote, error) {
	row := db.conn.QueryRow(`SELECT `+noteColumns+` FROM client_notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get note: %w", err)
	}
	return &n, nil
}

// UpdateNote replaces content and recording URL of a single note.
func (db *DB) UpdateNote(n *models.ClientNote) error {
	n.UpdatedAt = time.Now()
	res, err := db.conn.Exec(`
		UPDATE client_notes SET content = ?, recording_url = ?, updated_at = ?
		WHERE id = ?
	`, n.Content, n.RecordingURL, fmtTime(n.UpdatedAt), n.ID)
	if err != nil {
		return fmt.Errorf("store: update note: %w", err)
	}
	return requireRow(res)
}

// DeleteNote permanently removes a note.
func (db *DB) DeleteNote(id string) error {
	res, err := db.conn.Exec(`DELETE FROM client_notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete note: %w", err)
	}
	return requireRow(res)
}

// ListNotesByLead returns a lead's notes newest first. Timestamp ties are
// broken by insertion order (rowid), so a burst of inserts still lists the
// latest note on top.
func (db *DB) ListNotesByLead(leadID string) ([]models.ClientNote, error) {
	rows, err := db.conn.Query(`
		SELECT `+noteColumns+` FROM client_notes
		WHERE lead_id = ? ORDER BY created_at DESC, rowid DESC
	`, leadID)
	if err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}
	defer rows.Close()

	var out []models.ClientNote
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func scanNote(r rowScanner) (models.ClientNote, error) {
	var n models.ClientNote
	var created, updated string
	err := r.Scan(&n.ID, &n.LeadID, &n.Content, &n.RecordingURL, &created, &updated)
	if err != nil {
		return n, err
	}
	if n.CreatedAt, err = parseTime(created); err != nil {
		return n, err
	}
	if n.UpdatedAt, err = parseTime(updated); err != nil {
		return n, err
	}
	return n, nil
}
