package scheduling

import (
	"time"

	"github.com/starford/raido/internal/models"
)

// DeriveStatus computes the display status for a schedule from its
// persisted status and the clock. A SCHEDULED or RESCHEDULED item whose
// date has passed shows as MISSED; terminal statuses are returned as-is
// regardless of date. MISSED is never written back to the store — the
// persisted status stays the single source of truth and the derivation is
// recomputed on every read.
func DeriveStatus(persisted string, scheduledDate, now time.Time) string {
	if terminalStatus(persisted) {
		return persisted
	}
	if (persisted == models.StatusScheduled || persisted == models.StatusRescheduled) &&
		scheduledDate.Before(now) {
		return models.StatusMissed
	}
	return persisted
}

// terminalStatus reports whether a persisted status permits no further
// transitions.
func terminalStatus(status string) bool {
	return status == models.StatusCompleted || status == models.StatusCancelled
}
