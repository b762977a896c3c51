package api

// CreateLeadRequest is the request body for creating a lead.
type CreateLeadRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	Campaign  string `json:"campaign"`
	Stage     string `json:"stage"`
}

// UpdateLeadRequest is the request body for updating a lead's contact fields.
type UpdateLeadRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	Campaign  string `json:"campaign"`
}

// MoveStageRequest is the request body for a stage move.
type MoveStageRequest struct {
	Stage string `json:"stage"`
}

// ConfirmStageRequest carries the confirmation token for a terminal move.
type ConfirmStageRequest struct {
	Token string `json:"token"`
}

// StageRequest is the request body for creating or updating a stage.
// Pointer fields distinguish "not provided" from zero values, so an update
// can set the order to 0 or clear the display name.
type StageRequest struct {
	Name        string  `json:"name"`
	DisplayName *string `json:"display_name"`
	Order       *int    `json:"order"`
	IsActive    *bool   `json:"is_active"`
}

// NoteRequest is the request body for creating or editing a client note.
type NoteRequest struct {
	Content      string `json:"content"`
	RecordingURL string `json:"recording_url"`
}

// CreateScheduleRequest is the request body for creating a schedule.
// ScheduledDate is ISO-8601; it may lie in the past.
type CreateScheduleRequest struct {
	ScheduledDate string `json:"scheduled_date"`
	Type          string `json:"type"`
	Notes         string `json:"notes"`
}

// RescheduleRequest is the request body for rescheduling.
type RescheduleRequest struct {
	ScheduledDate string `json:"scheduled_date"`
	Actor         string `json:"actor"`
}
