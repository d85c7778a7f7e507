package tracker

import (
	"time"

	"campusboard/internal/models"
)

func app(id, status string) models.Application {
	return models.Application{
		LogicalID: id,
		ID:        id,
		Status:    status,
		Posting:   models.JobPosting{ID: "post-" + id},
	}
}

func appAt(id, status string, applied time.Time) models.Application {
	a := app(id, status)
	a.AppliedAt = models.Timestamp{Time: applied}
	return a
}

func appScored(id, status string, score float64) models.Application {
	a := app(id, status)
	a.MatchScore = models.Score{Float64: score, Valid: true}
	return a
}

func ids(apps []models.Application) []string {
	out := make([]string, len(apps))
	for i, a := range apps {
		out[i] = a.LogicalID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
