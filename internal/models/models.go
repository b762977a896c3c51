// Package models defines the domain types for Raido.
package models

import "time"

// Schedule types.
const (
	ScheduleTypeCall        = "CALL"
	ScheduleTypeAppointment = "APPOINTMENT"
)

// Persisted schedule statuses. StatusMissed is never written to the store;
// it is derived at read time (see the scheduling package).
const (
	StatusScheduled   = "SCHEDULED"
	StatusCompleted   = "COMPLETED"
	StatusCancelled   = "CANCELLED"
	StatusRescheduled = "RESCHEDULED"
	StatusMissed      = "MISSED"
)

// System stage names. Both are terminal and excluded from the active board.
const (
	StageClosed = "Closed"
	StageDead   = "Dead"
)

// StageFilterAll is the sentinel stage filter matching every stage.
const StageFilterAll = "all"

// Lead is the aggregate a lead's stage, notes, and schedules hang off of.
// Stage is a plain string matched against the catalog by name — a stage
// rename never cascades to leads.
type Lead struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	Campaign  string    `json:"campaign"`
	Stage     string    `json:"stage"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PipelineStage is one column of the sales board.
type PipelineStage struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Order       int    `json:"order"`
	IsActive    bool   `json:"is_active"`
	IsSystem    bool   `json:"is_system"`
}

// Terminal reports whether the stage is one of the system terminal stages.
func (s PipelineStage) Terminal() bool {
	return s.IsSystem
}

// IsTerminalStage reports whether name is a system terminal stage name.
func IsTerminalStage(name string) bool {
	return name == StageClosed || name == StageDead
}

// ClientNote is a free-text annotation on a lead, optionally linked to an
// external call-recording resource. Notes are independent records: editing
// or deleting one never touches its siblings.
type ClientNote struct {
	ID           string    `json:"id"`
	LeadID       string    `json:"lead_id"`
	Content      string    `json:"content"`
	RecordingURL string    `json:"recording_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Schedule is a future call or appointment tied to a lead. Status holds the
// persisted status; read paths substitute the derived display status.
type Schedule struct {
	ID            string    `json:"id"`
	LeadID        string    `json:"lead_id"`
	ScheduledDate time.Time `json:"scheduled_date"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
