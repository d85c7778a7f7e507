package tracker

import (
	"reflect"
	"testing"

	"campusboard/internal/models"
)

func TestDeriveIdempotent(t *testing.T) {
	records := scenarioRecords()
	req := Request{
		Tab:    TabAll,
		SortBy: SortByDate,
		Order:  OrderDesc,
		Page:   1,
		View:   models.ViewDefault,
	}

	first := Derive(records, req)
	second := Derive(records, req)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("re-derivation from the same snapshot produced a different view")
	}

	// source snapshot untouched
	if !equalIDs(ids(records), []string{"a", "b", "c", "d", "e", "f"}) {
		t.Fatalf("input mutated: %v", ids(records))
	}
}

func TestDeriveSearchThenFilter(t *testing.T) {
	a := app("a", "new")
	a.Posting.Title = "Backend Engineer"
	a.Posting.CompanyName = "Acme"
	b := app("b", "hired")
	b.Posting.Title = "Backend Engineer"
	b.Posting.CompanyName = "Globex"
	c := app("c", "new")
	c.Posting.Title = "Designer"
	c.Posting.CompanyName = "Acme"

	view := Derive([]models.Application{a, b, c}, Request{
		Tab:     TabAll,
		Query:   "backend",
		Filters: Filters{Companies: []string{"acme"}},
		SortBy:  SortByDate,
		Order:   OrderDesc,
		Page:    1,
		View:    models.ViewDefault,
	})

	if !equalIDs(ids(view.Records), []string{"a"}) {
		t.Fatalf("search+filter = %v", ids(view.Records))
	}
	if view.Counts[TabAll] != 1 || view.Counts[TabPending] != 1 {
		t.Fatalf("counts over matched set = %v", view.Counts)
	}
}

func TestDeriveInterviewSplitOnPageWindow(t *testing.T) {
	records := []models.Application{
		app("s1", "interview scheduled"),
		app("f1", "interview finished"),
		app("w1", "waitlisted"),
	}

	view := Derive(records, Request{
		Tab:    TabInterview,
		SortBy: SortByDate,
		Order:  OrderDesc,
		Page:   1,
		View:   models.ViewDefault,
	})

	if view.Interview == nil {
		t.Fatal("interview tab view missing sub-groups")
	}
	if len(view.Interview.Ongoing)+len(view.Interview.Finished) != len(view.Records) {
		t.Fatalf("sub-groups cover %d of %d page records",
			len(view.Interview.Ongoing)+len(view.Interview.Finished), len(view.Records))
	}
	if view.Counts[TabInterview] != 3 {
		t.Fatalf("interview count = %d", view.Counts[TabInterview])
	}
}

func TestMergeScores(t *testing.T) {
	byPosting := app("a", "new") // posting id post-a
	legacy := app("b", "new")
	legacy.Posting.ID = ""
	legacy.JobID = "legacy-job"
	untouched := appScored("c", "new", 40)

	records := []models.Application{byPosting, legacy, untouched}

	merged := MergeScores(records, map[string]float64{
		"post-a":     91,
		"legacy-job": 66,
	})

	if !merged[0].MatchScore.Valid || merged[0].MatchScore.Float64 != 91 {
		t.Fatalf("posting-id merge = %+v", merged[0].MatchScore)
	}
	if !merged[1].MatchScore.Valid || merged[1].MatchScore.Float64 != 66 {
		t.Fatalf("legacy job-id merge = %+v", merged[1].MatchScore)
	}
	if merged[2].MatchScore.Float64 != 40 {
		t.Fatalf("unmatched record score changed: %+v", merged[2].MatchScore)
	}

	// input untouched
	if records[0].MatchScore.Valid {
		t.Fatal("MergeScores mutated its input")
	}
}
