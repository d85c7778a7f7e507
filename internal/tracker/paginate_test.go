package tracker

import (
	"fmt"
	"testing"

	"campusboard/internal/models"
)

func manyApps(n int) []models.Application {
	out := make([]models.Application, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, app(fmt.Sprintf("a%d", i), "new"))
	}
	return out
}

func TestPaginateTotalPages(t *testing.T) {
	cases := []struct {
		count int
		want  int
	}{
		{0, 1},
		{1, 1},
		{5, 1},
		{6, 2},
		{10, 2},
		{11, 3},
	}

	for _, tc := range cases {
		page := Paginate(manyApps(tc.count), 1)
		if page.TotalPages != tc.want {
			t.Errorf("totalPages(%d) = %d, want %d", tc.count, page.TotalPages, tc.want)
		}
	}
}

func TestPaginateClampsPage(t *testing.T) {
	records := manyApps(12) // 3 pages

	page := Paginate(records, 0)
	if page.Number != 1 {
		t.Fatalf("page 0 clamped to %d, want 1", page.Number)
	}

	page = Paginate(records, 99)
	if page.Number != 3 {
		t.Fatalf("page 99 clamped to %d, want 3", page.Number)
	}
	if len(page.Records) != 2 {
		t.Fatalf("last page has %d records, want 2", len(page.Records))
	}

	page = Paginate(nil, 7)
	if page.Number != 1 || page.TotalPages != 1 || len(page.Records) != 0 {
		t.Fatalf("empty set page = %+v", page)
	}
}

func TestPaginateWindow(t *testing.T) {
	records := manyApps(12)

	page := Paginate(records, 2)
	if !equalIDs(ids(page.Records), []string{"a5", "a6", "a7", "a8", "a9"}) {
		t.Fatalf("page 2 window = %v", ids(page.Records))
	}
}
