package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// seedSystemStages inserts the two terminal system stages if absent.
// They sort after every configurable stage and are never shown on the
// active board.
func seedSystemStages(conn *sql.DB) error {
	stmt, err := conn.Prepare(`
		INSERT OR IGNORE INTO stages (id, name, display_name, ord, is_active, is_system)
		VALUES (?, ?, ?, ?, 1, 1)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, name := range []string{models.StageClosed, models.StageDead} {
		if _, err := stmt.Exec(uuid.NewString(), name, name, 1000+i); err != nil {
			return err
		}
	}
	return nil
}

// UpsertStage inserts or updates a stage keyed by name.
func (db *DB) UpsertStage(s models.PipelineStage) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := db.conn.Exec(`
		INSERT INTO stages (id, name, display_name, ord, is_active, is_system)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			display_name = excluded.display_name,
			ord          = excluded.ord,
			is_active    = excluded.is_active
	`, s.ID, s.Name, s.DisplayName, s.Order, boolInt(s.IsActive), boolInt(s.IsSystem))
	if err != nil {
		return fmt.Errorf("store: upsert stage: %w", err)
	}
	return nil
}

// ListStages returns every stage, system ones included, ordered by ord
// ascending with ties broken by name.
func (db *DB) ListStages() ([]models.PipelineStage, error) {
	rows, err := db.conn.Query(`
		SELECT id, name, display_name, ord, is_active, is_system
		FROM stages ORDER BY ord ASC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list stages: %w", err)
	}
	defer rows.Close()

	var out []models.PipelineStage
	for rows.Next() {
		s, err := scanStage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetStage returns a stage by id.
func (db *DB) GetStage(id string) (*models.PipelineStage, error) {
	return db.getStage(`SELECT id, name, display_name, ord, is_active, is_system FROM stages WHERE id = ?`, id)
}

// GetStageByName returns a stage by its stable name key.
func (db *DB) GetStageByName(name string) (*models.PipelineStage, error) {
	return db.getStage(`SELECT id, name, display_name, ord, is_active, is_system FROM stages WHERE name = ?`, name)
}

func (db *DB) getStage(query, arg string) (*models.PipelineStage, error) {
	row := db.conn.QueryRow(query, arg)
	var s models.PipelineStage
	var active, system int
	err := row.Scan(&s.ID, &s.Name, &s.DisplayName, &s.Order, &active, &system)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get stage: %w", err)
	}
	s.IsActive = active != 0
	s.IsSystem = system != 0
	return &s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStage(r rowScanner) (models.PipelineStage, error) {
	var s models.PipelineStage
	var active, system int
	if err := r.Scan(&s.ID, &s.Name, &s.DisplayName, &s.Order, &active, &system); err != nil {
		return s, fmt.Errorf("store: scan stage: %w", err)
	}
	s.IsActive = active != 0
	s.IsSystem = system != 0
	return s, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
