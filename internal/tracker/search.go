package tracker

import (
	"strings"

	"campusboard/internal/models"
)

// MatchesQuery is a case-insensitive substring test over job title,
// company name, location and raw status. A blank or whitespace-only
// query matches everything.
func MatchesQuery(app models.Application, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}

	fields := []string{
		app.Posting.Title,
		app.Posting.CompanyName,
		app.Posting.Location,
		app.Status,
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}

	return false
}

// ApplySearch narrows records to those matching the submitted query.
func ApplySearch(records []models.Application, query string) []models.Application {
	if strings.TrimSpace(query) == "" {
		return records
	}

	out := make([]models.Application, 0, len(records))
	for _, app := range records {
		if MatchesQuery(app, query) {
			out = append(out, app)
		}
	}

	return out
}
