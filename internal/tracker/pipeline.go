package tracker

import "campusboard/internal/models"

// Request captures one derivation of the applications view. The view
// mode is threaded explicitly through the whole chain; there is no
// shared flag anywhere.
type Request struct {
	Tab     Tab
	Query   string
	Filters Filters
	SortBy  SortKey
	Order   Order
	Page    int
	View    models.ViewMode
}

// View is the derived page window plus the per-tab counts computed
// over the same searched and filtered set.
type View struct {
	Records    []models.Application
	Page       int
	TotalPages int
	Counts     map[Tab]int
	Interview  *InterviewSplit
}

// Derive runs the full pipeline: search, filter, tab selection, sort,
// paginate. Every step is total and none of them mutates the input, so
// re-deriving from the same snapshot yields the same view.
func Derive(records []models.Application, req Request) View {
	matched := ApplySearch(records, req.Query)
	matched = ApplyFilters(matched, req.Filters)

	counts := TabCounts(matched, req.View)

	tabRecords := SelectTab(matched, req.Tab, req.View)
	sorted := SortApps(tabRecords, req.SortBy, req.Order)
	page := Paginate(sorted, req.Page)

	view := View{
		Records:    page.Records,
		Page:       page.Number,
		TotalPages: page.TotalPages,
		Counts:     counts,
	}

	if req.Tab == TabInterview {
		split := SplitInterview(page.Records)
		view.Interview = &split
	}

	return view
}

// MergeScores patches freshly computed match scores into a copy of
// records, matching by posting id with a fallback to the legacy job_id
// field. Records without a matching entry keep the score they had.
func MergeScores(records []models.Application, scores map[string]float64) []models.Application {
	if len(scores) == 0 {
		return records
	}

	out := make([]models.Application, len(records))
	copy(out, records)

	for i := range out {
		if v, ok := scores[out[i].Posting.ID]; ok {
			out[i].MatchScore = models.Score{Float64: v, Valid: true}
			continue
		}
		if out[i].JobID != "" {
			if v, ok := scores[out[i].JobID]; ok {
				out[i].MatchScore = models.Score{Float64: v, Valid: true}
			}
		}
	}

	return out
}
