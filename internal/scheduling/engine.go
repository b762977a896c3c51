// Package scheduling owns the lifecycle of call and appointment schedules:
// creation, completion, cancellation, rescheduling, and the time-based
// derivation of the MISSED display status.
package scheduling

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/store"
)

// Engine coordinates schedule operations against the store.
type Engine struct {
	store store.Store
	now   func() time.Time
}

// NewEngine creates a schedule engine.
func NewEngine(st store.Store) *Engine {
	return &Engine{store: st, now: time.Now}
}

// CreateInput is the validated input for Create.
type CreateInput struct {
	LeadID        string
	ScheduledDate time.Time
	Type          string
	Notes         string
}

// Validate checks the local preconditions. The scheduled date may lie in
// the past: a backdated schedule simply derives to MISSED on the next
// read, which is the desired signal.
func (in CreateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.LeadID, validation.Required),
		validation.Field(&in.ScheduledDate, validation.Required),
		validation.Field(&in.Type, validation.Required,
			validation.In(models.ScheduleTypeCall, models.ScheduleTypeAppointment)),
	)
}

// Create inserts a new schedule with status SCHEDULED.
func (e *Engine) Create(in CreateInput) (*models.Schedule, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrValidation, err)
	}
	if _, err := e.store.GetLead(in.LeadID); err != nil {
		return nil, err
	}

	s := &models.Schedule{
		LeadID:        in.LeadID,
		ScheduledDate: in.ScheduledDate,
		Type:          in.Type,
		Status:        models.StatusScheduled,
		Notes:         in.Notes,
	}
	if err := e.store.CreateSchedule(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Complete marks a schedule COMPLETED. Completing an item whose derived
// status is MISSED is the normal remediation path, so only the persisted
// terminal statuses block the transition.
func (e *Engine) Complete(id string) (*models.Schedule, error) {
	return e.transition(id, models.StatusCompleted)
}

// Cancel marks a schedule CANCELLED. Permitted from any non-terminal
// persisted status.
func (e *Engine) Cancel(id string) (*models.Schedule, error) {
	return e.transition(id, models.StatusCancelled)
}

func (e *Engine) transition(id, target string) (*models.Schedule, error) {
	s, err := e.store.GetSchedule(id)
	if err != nil {
		return nil, err
	}
	if terminalStatus(s.Status) {
		return nil, fmt.Errorf("schedule is %s: %w", s.Status, apperr.ErrTerminalStage)
	}
	s.Status = target
	if err := e.store.UpdateSchedule(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Reschedule moves a schedule to a new date, marks it RESCHEDULED, and
// appends an audit line to its notes. The notes field is append-only here:
// the prior text always survives as a prefix.
func (e *Engine) Reschedule(id string, newDate time.Time, actor string) (*models.Schedule, error) {
	if newDate.IsZero() {
		return nil, fmt.Errorf("new date is required: %w", apperr.ErrValidation)
	}
	s, err := e.store.GetSchedule(id)
	if err != nil {
		return nil, err
	}
	if terminalStatus(s.Status) {
		return nil, fmt.Errorf("schedule is %s: %w", s.Status, apperr.ErrTerminalStage)
	}

	if actor == "" {
		actor = "system"
	}
	line := fmt.Sprintf("[rescheduled by %s at %s] %s -> %s",
		actor,
		e.now().UTC().Format(time.RFC3339),
		s.ScheduledDate.UTC().Format(time.RFC3339),
		newDate.UTC().Format(time.RFC3339))
	if s.Notes == "" {
		s.Notes = line
	} else {
		s.Notes = s.Notes + "\n" + line
	}

	s.ScheduledDate = newDate
	s.Status = models.StatusRescheduled
	if err := e.store.UpdateSchedule(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Delete hard-deletes a schedule.
func (e *Engine) Delete(id string) error {
	return e.store.DeleteSchedule(id)
}

// Get returns one schedule with its derived display status.
func (e *Engine) Get(id string) (*models.Schedule, error) {
	s, err := e.store.GetSchedule(id)
	if err != nil {
		return nil, err
	}
	s.Status = DeriveStatus(s.Status, s.ScheduledDate, e.now())
	return s, nil
}

// ListForLead returns a lead's schedules by date ascending, derivation
// applied.
func (e *Engine) ListForLead(leadID string) ([]models.Schedule, error) {
	items, err := e.store.ListSchedulesByLead(leadID)
	if err != nil {
		return nil, err
	}
	return e.derived(items), nil
}

// Upcoming returns every open schedule across all leads by date ascending,
// derivation applied — past-due items surface as MISSED rather than being
// filtered out.
func (e *Engine) Upcoming() ([]models.Schedule, error) {
	items, err := e.store.ListOpenSchedules()
	if err != nil {
		return nil, err
	}
	return e.derived(items), nil
}

// Day is one bucket of a calendar view: a local calendar date and the
// schedules falling on it, in time order.
type Day struct {
	Date      string            `json:"date"`
	Schedules []models.Schedule `json:"schedules"`
}

// Calendar groups a lead's schedules by calendar day in the given location,
// independent of time-of-day. Days are returned in ascending date order.
func (e *Engine) Calendar(leadID string, loc *time.Location) ([]Day, error) {
	if loc == nil {
		loc = time.Local
	}
	items, err := e.ListForLead(leadID)
	if err != nil {
		return nil, err
	}

	var days []Day
	index := make(map[string]int)
	for _, s := range items {
		key := s.ScheduledDate.In(loc).Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			i = len(days)
			index[key] = i
			days = append(days, Day{Date: key})
		}
		days[i].Schedules = append(days[i].Schedules, s)
	}
	return days, nil
}

func (e *Engine) derived(items []models.Schedule) []models.Schedule {
	now := e.now()
	for i := range items {
		items[i].Status = DeriveStatus(items[i].Status, items[i].ScheduledDate, now)
	}
	return items
}
