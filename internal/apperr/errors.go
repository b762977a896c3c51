// Package apperr defines the sentinel errors shared across service layers.
package apperr

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")

	// ErrValidation marks input rejected locally, before any store call.
	ErrValidation = errors.New("validation failed")

	// ErrTerminalStage marks an attempt to mutate a lead or schedule that
	// is already in a terminal state.
	ErrTerminalStage = errors.New("terminal state")

	// ErrConfirmationRequired marks a stage move into Closed/Dead that was
	// attempted without the two-step confirmation workflow.
	ErrConfirmationRequired = errors.New("confirmation required")

	// ErrUnknownStage marks a move onto a stage absent from the active catalog.
	ErrUnknownStage = errors.New("unknown stage")
)
