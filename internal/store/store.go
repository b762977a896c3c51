// Package store provides the SQLite persistence collaborator for leads,
// pipeline stages, client notes, and schedules.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/raido/internal/models"
)

// Store defines the persistence operations the service layers depend on.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type Store interface {
	// Stages
	UpsertStage(s models.PipelineStage) error
	ListStages() ([]models.PipelineStage, error)
	GetStage(id string) (*models.PipelineStage, error)
	GetStageByName(name string) (*models.PipelineStage, error)

	// Leads
	CreateLead(l *models.Lead) error
	GetLead(id string) (*models.Lead, error)
	ListLeads() ([]models.Lead, error)
	UpdateLead(l *models.Lead) error
	UpdateLeadStage(id, stage string, updatedAt time.Time) error
	DeleteLead(id string) error
	LeadStageNames() ([]string, error)

	// Client notes
	CreateNote(n *models.ClientNote) error
	GetNote(id string) (*models.ClientNote, error)
	UpdateNote(n *models.ClientNote) error
	DeleteNote(id string) error
	ListNotesByLead(leadID string) ([]models.ClientNote, error)

	// Schedules
	CreateSchedule(s *models.Schedule) error
	GetSchedule(id string) (*models.Schedule, error)
	UpdateSchedule(s *models.Schedule) error
	DeleteSchedule(id string) error
	ListSchedulesByLead(leadID string) ([]models.Schedule, error)
	ListOpenSchedules() ([]models.Schedule, error)

	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS stages (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL DEFAULT '',
	ord          INTEGER NOT NULL DEFAULT 0,
	is_active    INTEGER NOT NULL DEFAULT 1,
	is_system    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS leads (
	id         TEXT PRIMARY KEY,
	first_name TEXT NOT NULL DEFAULT '',
	last_name  TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT '',
	address    TEXT NOT NULL DEFAULT '',
	campaign   TEXT NOT NULL DEFAULT '',
	stage      TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_stage ON leads(stage);

CREATE TABLE IF NOT EXISTS client_notes (
	id            TEXT PRIMARY KEY,
	lead_id       TEXT NOT NULL REFERENCES leads(id) ON DELETE CASCADE,
	content       TEXT NOT NULL,
	recording_url TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_lead ON client_notes(lead_id);

CREATE TABLE IF NOT EXISTS schedules (
	id             TEXT PRIMARY KEY,
	lead_id        TEXT NOT NULL REFERENCES leads(id) ON DELETE CASCADE,
	scheduled_date TEXT NOT NULL,
	type           TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'SCHEDULED',
	notes          TEXT NOT NULL DEFAULT '',
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_schedules_lead ON schedules(lead_id);
CREATE INDEX IF NOT EXISTS idx_schedules_status ON schedules(status);
`

// DB wraps a sql.DB with CRM-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database, applies the schema, and
// seeds the two system stages.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	if err := seedSystemStages(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: seed system stages: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// timeLayout is RFC 3339 UTC with a fixed nine-digit fractional second.
// The width matters: the ORDER BY clauses compare these columns as text,
// and only a fixed-width encoding sorts lexicographically in chronological
// order (RFC3339Nano trims trailing zeros, which breaks that).
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// fmtTime serializes a timestamp for storage. Everything is stored as
// fixed-width RFC 3339 UTC so values round-trip across the API without
// drift and sort correctly as text.
func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("store: parse timestamp %q: %w", s, err)
	}
	return t, nil
}
