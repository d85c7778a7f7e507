package models

import "strings"

// Category is the UI grouping derived from a raw application status.
// It is recomputed from the raw string on every use, never persisted.
type Category string

const (
	CategoryPending       Category = "pending"
	CategoryReview        Category = "review"
	CategoryInterview     Category = "interview"
	CategoryOffers        Category = "offers"
	CategoryOfferRejected Category = "offer_rejected"
	CategoryStudentRating Category = "student_rating"
	CategoryHired         Category = "hired"
	CategoryRejected      Category = "rejected"
	CategoryWaitlisted    Category = "waitlisted"
	CategoryWithdrawn     Category = "withdrawn"
)

// Raw status values written by status-mutating actions. The data layer
// accepts any string; these are the ones this service produces itself.
const (
	StatusNew                = "new"
	StatusShortlisted        = "shortlisted"
	StatusInterviewScheduled = "interview scheduled"
	StatusInterviewFinished  = "interview finished"
	StatusOfferSent          = "offer_sent"
	StatusOfferRejected      = "offer_rejected"
	StatusStudentRating      = "student_rating"
	StatusHired              = "hired"
	StatusRejected           = "rejected"
	StatusWaitlisted         = "waitlisted"
	StatusWithdrawn          = "withdrawn"
)

var statusCategories = map[string]Category{
	StatusNew:                CategoryPending,
	StatusShortlisted:        CategoryReview,
	StatusInterviewScheduled: CategoryInterview,
	StatusOfferSent:          CategoryOffers,
	StatusOfferRejected:      CategoryOfferRejected,
	StatusStudentRating:      CategoryStudentRating,
	StatusHired:              CategoryHired,
	StatusRejected:           CategoryRejected,
	StatusWaitlisted:         CategoryWaitlisted,
	StatusWithdrawn:          CategoryWithdrawn,
}

// MapStatus maps a raw status string to its category. The match is
// case-insensitive and exact; anything unrecognized, including the
// empty string, falls back to pending rather than erroring.
func MapStatus(raw string) Category {
	if cat, ok := statusCategories[strings.ToLower(raw)]; ok {
		return cat
	}
	return CategoryPending
}

// Categories returns every known category.
func Categories() []Category {
	return []Category{
		CategoryPending,
		CategoryReview,
		CategoryInterview,
		CategoryOffers,
		CategoryOfferRejected,
		CategoryStudentRating,
		CategoryHired,
		CategoryRejected,
		CategoryWaitlisted,
		CategoryWithdrawn,
	}
}

// ViewMode switches the "all" tab between its default contents and the
// merged withdrawn/rejected view. It replaces the old trick of
// overloading a status filter as a view toggle.
type ViewMode string

const (
	ViewDefault   ViewMode = "default"
	ViewWithdrawn ViewMode = "withdrawn"
)

func ParseViewMode(s string) ViewMode {
	if strings.ToLower(s) == string(ViewWithdrawn) {
		return ViewWithdrawn
	}
	return ViewDefault
}
