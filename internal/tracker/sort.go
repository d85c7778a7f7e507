package tracker

import (
	"sort"

	"campusboard/internal/models"
)

type SortKey string

const (
	SortByDate  SortKey = "date"
	SortByMatch SortKey = "match"
)

type Order string

const (
	OrderDesc Order = "desc"
	OrderAsc  Order = "asc"
)

func ParseSortKey(s string) SortKey {
	if s == string(SortByMatch) {
		return SortByMatch
	}
	return SortByDate
}

func ParseOrder(s string) Order {
	if s == string(OrderAsc) {
		return OrderAsc
	}
	return OrderDesc
}

// SortApps orders a copy of records by the given key, never mutating
// the input. The sort is a stable descending pass; ascending order is
// a reversal applied afterwards, so records with equal keys keep their
// pre-reversal relative order going into the flip.
func SortApps(records []models.Application, key SortKey, order Order) []models.Application {
	sorted := make([]models.Application, len(records))
	copy(sorted, records)

	keyOf := func(a models.Application) float64 {
		if key == SortByMatch {
			if a.MatchScore.Valid {
				return a.MatchScore.Float64
			}
			return 0
		}
		return float64(a.AppliedAt.Millis())
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return keyOf(sorted[i]) > keyOf(sorted[j])
	})

	if order == OrderAsc {
		for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
			sorted[i], sorted[j] = sorted[j], sorted[i]
		}
	}

	return sorted
}
