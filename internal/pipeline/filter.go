package pipeline

import (
	"strings"

	"github.com/starford/raido/internal/models"
)

// MatchesQuery reports whether a lead matches a free-text search: a
// case-insensitive substring check over first name, last name, phone, and
// address. An empty query matches everything.
func MatchesQuery(l models.Lead, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, field := range []string{l.FirstName, l.LastName, l.Phone, l.Address} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// FilterLeads is the read-side projection used by the list view: free-text
// query plus an exact stage filter (the sentinel "all" or an empty string
// disables the stage filter). Source order is preserved and no record is
// mutated.
func FilterLeads(leads []models.Lead, query, stage string) []models.Lead {
	out := make([]models.Lead, 0, len(leads))
	for _, l := range leads {
		if stage != "" && stage != models.StageFilterAll && l.Stage != stage {
			continue
		}
		if !MatchesQuery(l, query) {
			continue
		}
		out = append(out, l)
	}
	return out
}
