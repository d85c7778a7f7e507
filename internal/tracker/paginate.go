package tracker

import "campusboard/internal/models"

// PageSize is the fixed page window of the applications list.
const PageSize = 5

type Page struct {
	Records    []models.Application
	Number     int
	TotalPages int
}

// Paginate slices the window for the requested page. totalPages is at
// least 1 even for an empty set, and the page number is clamped into
// [1, totalPages] so a stale out-of-range request can never produce an
// empty page while records exist.
func Paginate(records []models.Application, page int) Page {
	totalPages := (len(records) + PageSize - 1) / PageSize
	if totalPages < 1 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * PageSize
	if start > len(records) {
		start = len(records)
	}
	end := start + PageSize
	if end > len(records) {
		end = len(records)
	}

	return Page{
		Records:    records[start:end],
		Number:     page,
		TotalPages: totalPages,
	}
}
