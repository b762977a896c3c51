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

const scheduleColumns = `id, lead_id, scheduled_date, type, status, notes, created_at, updated_at`

// CreateSchedule inserts a new schedule.
func (db *DB) CreateSchedule(s *models.Schedule) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	_, err := db.conn.Exec(`
		INSERT INTO schedules (`+scheduleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.LeadID, fmtTime(s.ScheduledDate), s.Type, s.Status, s.Notes,
		fmtTime(s.CreatedAt), fmtTime(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("store: create schedule: %w", err)
	}
	return nil
}

// GetSchedule returns a schedule by id with its persisted status.
func (db *DB) GetSchedule(id string) (*models.Schedule, error) {
	row := db.conn.QueryRow(`SELECT `+scheduleColumns+` FROM schedules WHERE id = ?`, id)
	s, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get schedule: %w", err)
	}
	return &s, nil
}

// UpdateSchedule replaces the mutable fields of a schedule
// (scheduled_date, status, notes).
func (db *DB) UpdateSchedule(s *models.Schedule) error {
	s.UpdatedAt = time.Now()
	res, err := db.conn.Exec(`
		UPDATE schedules SET scheduled_date = ?, status = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`, fmtTime(s.ScheduledDate), s.Status, s.Notes, fmtTime(s.UpdatedAt), s.ID)
	if err != nil {
		return fmt.Errorf("store: update schedule: %w", err)
	}
	return requireRow(res)
}

// DeleteSchedule hard-deletes a schedule. There is no tombstone.
func (db *DB) DeleteSchedule(id string) error {
	res, err := db.conn.Exec(`DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete schedule: %w", err)
	}
	return requireRow(res)
}

// ListSchedulesByLead returns a lead's schedules by scheduled date ascending.
func (db *DB) ListSchedulesByLead(leadID string) ([]models.Schedule, error) {
	return db.querySchedules(`
		SELECT `+scheduleColumns+` FROM schedules
		WHERE lead_id = ? ORDER BY scheduled_date ASC, rowid ASC
	`, leadID)
}

// ListOpenSchedules returns every schedule whose persisted status is
// non-terminal, by scheduled date ascending.
func (db *DB) ListOpenSchedules() ([]models.Schedule, error) {
	return db.querySchedules(`
		SELECT `+scheduleColumns+` FROM schedules
		WHERE status IN (?, ?) ORDER BY scheduled_date ASC, rowid ASC
	`, models.StatusScheduled, models.StatusRescheduled)
}

func (db *DB) querySchedules(query string, args ...any) ([]models.Schedule, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list schedules: %w", err)
	}
	defer rows.Close()

	var out []models.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSchedule(r rowScanner) (models.Schedule, error) {
	var s models.Schedule
	var date, created, updated string
	err := r.Scan(&s.ID, &s.LeadID, &date, &s.Type, &s.Status, &s.Notes, &created, &updated)
	if err != nil {
		return s, err
	}
	if s.ScheduledDate, err = parseTime(date); err != nil {
		return s, err
	}
	if s.CreatedAt, err = parseTime(created); err != nil {
		return s, err
	}
	if s.UpdatedAt, err = parseTime(updated); err != nil {
		return s, err
	}
	return s, nil
}
