package tracker

import (
	"strings"

	"campusboard/internal/models"
)

// Tab is one of the fixed views of the applications list.
type Tab string

const (
	TabAll       Tab = "all"
	TabPending   Tab = "pending"
	TabReview    Tab = "review"
	TabInterview Tab = "interview"
	TabOffers    Tab = "offers"
	TabHired     Tab = "hired"
	TabRejected  Tab = "rejected"
)

// Tabs returns the seven fixed tabs in display order.
func Tabs() []Tab {
	return []Tab{TabAll, TabPending, TabReview, TabInterview, TabOffers, TabHired, TabRejected}
}

func ParseTab(s string) Tab {
	for _, tab := range Tabs() {
		if strings.ToLower(s) == string(tab) {
			return tab
		}
	}
	return TabAll
}

// Interview sub-grouping keys off the raw status, not the mapped
// category. Any other interview-ish string falls through to the
// pending default like every unknown status.
func interviewOngoing(app models.Application) bool {
	return strings.ToLower(app.Status) == models.StatusInterviewScheduled
}

func interviewFinished(app models.Application) bool {
	s := strings.ToLower(app.Status)
	return s == models.StatusInterviewFinished || s == models.StatusWaitlisted
}

// InTab reports membership of a record in a tab under the given view
// mode. The "all" tab hides withdrawn, rejected and offer_rejected
// records; in the withdrawn view it shows exactly those instead. The
// rejected tab keeps offer rejections out so the two stay numerically
// distinct everywhere except the withdrawn view.
func InTab(app models.Application, tab Tab, view models.ViewMode) bool {
	cat := app.Category()

	switch tab {
	case TabAll:
		hidden := cat == models.CategoryWithdrawn ||
			cat == models.CategoryRejected ||
			cat == models.CategoryOfferRejected
		if view == models.ViewWithdrawn {
			return hidden
		}
		return !hidden
	case TabPending:
		return cat == models.CategoryPending
	case TabReview:
		return cat == models.CategoryReview
	case TabInterview:
		return interviewOngoing(app) || interviewFinished(app)
	case TabOffers:
		return cat == models.CategoryOffers
	case TabHired:
		// students rate an employer only after being hired, so the
		// rating status stays in this tab
		return cat == models.CategoryHired || cat == models.CategoryStudentRating
	case TabRejected:
		return cat == models.CategoryRejected && strings.ToLower(app.Status) != models.StatusOfferRejected
	}

	return false
}

// TabCounts computes per-tab counts over an already searched and
// filtered set.
func TabCounts(records []models.Application, view models.ViewMode) map[Tab]int {
	counts := make(map[Tab]int, len(Tabs()))
	for _, tab := range Tabs() {
		counts[tab] = 0
	}

	for _, app := range records {
		for _, tab := range Tabs() {
			if InTab(app, tab, view) {
				counts[tab]++
			}
		}
	}

	return counts
}

// SelectTab keeps the records belonging to a tab.
func SelectTab(records []models.Application, tab Tab, view models.ViewMode) []models.Application {
	out := make([]models.Application, 0, len(records))
	for _, app := range records {
		if InTab(app, tab, view) {
			out = append(out, app)
		}
	}
	return out
}

// InterviewSplit is the interview tab's two rendered sub-groups.
// Counts and pagination always cover the combined set; the split is
// applied to the page window only.
type InterviewSplit struct {
	Ongoing  []models.Application
	Finished []models.Application
}

func SplitInterview(records []models.Application) InterviewSplit {
	var split InterviewSplit
	for _, app := range records {
		switch {
		case interviewOngoing(app):
			split.Ongoing = append(split.Ongoing, app)
		case interviewFinished(app):
			split.Finished = append(split.Finished, app)
		}
	}
	return split
}
