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

const leadColumns = `id, first_name, last_name, phone, email, address, campaign, stage, created_at, updated_at`

// CreateLead inserts a new lead, assigning an id and timestamps.
func (db *DB) CreateLead(l *models.Lead) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	now := time.Now()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now

	_, err := db.conn.Exec(`
		INSERT INTO leads (`+leadColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, l.ID, l.FirstName, l.LastName, l.Phone, l.Email, l.Address, l.Campaign, l.Stage,
		fmtTime(l.CreatedAt), fmtTime(l.UpdatedAt))
	if err != nil {
		return fmt.Errorf("store: create lead: %w", err)
	}
	return nil
}

// GetLead returns a lead by id.
func (db *DB) GetLead(id string) (*models.Lead, error) {
	row := db.conn.QueryRow(`SELECT `+leadColumns+` FROM leads WHERE id = ?`, id)
	l, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get lead: %w", err)
	}
	return &l, nil
}

// ListLeads returns all leads in insertion order.
func (db *DB) ListLeads() ([]models.Lead, error) {
	rows, err := db.conn.Query(`SELECT ` + leadColumns + ` FROM leads ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("store: list leads: %w", err)
	}
	defer rows.Close()

	var out []models.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpdateLead replaces the contact fields of a lead. Stage is not touched
// here; stage mutations go through UpdateLeadStage.
func (db *DB) UpdateLead(l *models.Lead) error {
	l.UpdatedAt = time.Now()
	res, err := db.conn.Exec(`
		UPDATE leads SET first_name = ?, last_name = ?, phone = ?, email = ?,
			address = ?, campaign = ?, updated_at = ?
		WHERE id = ?
	`, l.FirstName, l.LastName, l.Phone, l.Email, l.Address, l.Campaign,
		fmtTime(l.UpdatedAt), l.ID)
	if err != nil {
		return fmt.Errorf("store: update lead: %w", err)
	}
	return requireRow(res)
}

// UpdateLeadStage sets the stage string and refreshes updated_at.
func (db *DB) UpdateLeadStage(id, stage string, updatedAt time.Time) error {
	res, err := db.conn.Exec(`UPDATE leads SET stage = ?, updated_at = ? WHERE id = ?`,
		stage, fmtTime(updatedAt), id)
	if err != nil {
		return fmt.Errorf("store: update lead stage: %w", err)
	}
	return requireRow(res)
}

// DeleteLead removes a lead; notes and schedules cascade.
func (db *DB) DeleteLead(id string) error {
	res, err := db.conn.Exec(`DELETE FROM leads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete lead: %w", err)
	}
	return requireRow(res)
}

// LeadStageNames returns the distinct stage strings referenced by existing
// leads, including values that no longer match any catalog entry.
func (db *DB) LeadStageNames() ([]string, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT stage FROM leads WHERE stage != ''`)
	if err != nil {
		return nil, fmt.Errorf("store: lead stage names: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanLead(r rowScanner) (models.Lead, error) {
	var l models.Lead
	var created, updated string
	err := r.Scan(&l.ID, &l.FirstName, &l.LastName, &l.Phone, &l.Email,
		&l.Address, &l.Campaign, &l.Stage, &created, &updated)
	if err != nil {
		return l, err
	}
	if l.CreatedAt, err = parseTime(created); err != nil {
		return l, err
	}
	if l.UpdatedAt, err = parseTime(updated); err != nil {
		return l, err
	}
	return l, nil
}

// requireRow converts a zero-row update/delete into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
