package tracker

import (
	"testing"
	"time"

	"campusboard/internal/models"
)

func TestApplyFiltersEmptyNeverExcludes(t *testing.T) {
	records := []models.Application{app("a", "new"), app("b", "hired")}

	got := ApplyFilters(records, Filters{})
	if len(got) != len(records) {
		t.Fatalf("empty filters kept %d of %d records", len(got), len(records))
	}
}

func TestApplyFiltersFacetMembership(t *testing.T) {
	a := app("a", "hired")
	a.Posting.WorkType = "Part-Time"
	b := app("b", "hired")
	b.Posting.WorkType = "full-time"
	c := app("c", "new")
	c.Posting.WorkType = "part-time"

	records := []models.Application{a, b, c}

	// values within a facet OR together, case-insensitively
	got := ApplyFilters(records, Filters{WorkTypes: []string{"part-time"}})
	if !equalIDs(ids(got), []string{"a", "c"}) {
		t.Fatalf("work type facet = %v", ids(got))
	}

	// facets AND together
	got = ApplyFilters(records, Filters{
		Statuses:  []string{"hired"},
		WorkTypes: []string{"part-time"},
	})
	if !equalIDs(ids(got), []string{"a"}) {
		t.Fatalf("combined facets = %v", ids(got))
	}
}

func TestApplyFiltersCommutative(t *testing.T) {
	a := app("a", "hired")
	a.Posting.RemoteMode = "remote"
	b := app("b", "hired")
	b.Posting.RemoteMode = "onsite"
	c := app("c", "new")
	c.Posting.RemoteMode = "remote"

	records := []models.Application{a, b, c}

	statusFirst := ApplyFilters(ApplyFilters(records, Filters{Statuses: []string{"hired"}}), Filters{RemoteModes: []string{"remote"}})
	remoteFirst := ApplyFilters(ApplyFilters(records, Filters{RemoteModes: []string{"remote"}}), Filters{Statuses: []string{"hired"}})
	together := ApplyFilters(records, Filters{Statuses: []string{"hired"}, RemoteModes: []string{"remote"}})

	if !equalIDs(ids(statusFirst), ids(remoteFirst)) || !equalIDs(ids(statusFirst), ids(together)) {
		t.Fatalf("facet order changed the result: %v vs %v vs %v",
			ids(statusFirst), ids(remoteFirst), ids(together))
	}
}

func TestApplyFiltersMissingFieldExcludes(t *testing.T) {
	a := app("a", "new") // no location set
	b := app("b", "new")
	b.Posting.Location = "Berlin"

	got := ApplyFilters([]models.Application{a, b}, Filters{Locations: []string{"berlin"}})
	if !equalIDs(ids(got), []string{"b"}) {
		t.Fatalf("missing location should exclude, got %v", ids(got))
	}
}

func TestApplyFiltersScoreBounds(t *testing.T) {
	low := appScored("low", "new", 20)
	high := appScored("high", "new", 90)
	missing := app("missing", "new") // absent score compares as 0

	records := []models.Application{low, high, missing}

	min := 50.0
	got := ApplyFilters(records, Filters{ScoreMin: &min})
	if !equalIDs(ids(got), []string{"high"}) {
		t.Fatalf("min-only bound = %v", ids(got))
	}

	// max-only defaults the lower bound to 0, so an absent score passes
	max := 50.0
	got = ApplyFilters(records, Filters{ScoreMax: &max})
	if !equalIDs(ids(got), []string{"low", "missing"}) {
		t.Fatalf("max-only bound = %v", ids(got))
	}
}

func TestApplyFiltersDateBounds(t *testing.T) {
	older := appAt("older", "new", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := appAt("newer", "new", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	unknown := app("unknown", "new") // missing applied-at compares as 0

	records := []models.Application{older, newer, unknown}

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	got := ApplyFilters(records, Filters{AppliedFrom: &from})
	if !equalIDs(ids(got), []string{"newer"}) {
		t.Fatalf("from-only bound = %v", ids(got))
	}

	to := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	got = ApplyFilters(records, Filters{AppliedTo: &to})
	if !equalIDs(ids(got), []string{"older", "unknown"}) {
		t.Fatalf("to-only bound = %v", ids(got))
	}
}
