package tracker

import (
	"math"
	"strings"
	"time"

	"campusboard/internal/models"
)

// Filters is an optional-facet selection. An absent facet never
// constrains; present facets are ANDed together, values within a facet
// are ORed.
type Filters struct {
	Statuses    []string
	WorkTypes   []string
	RemoteModes []string
	Locations   []string
	PayTypes    []string
	Tiers       []string
	Companies   []string

	ScoreMin *float64
	ScoreMax *float64

	AppliedFrom *time.Time
	AppliedTo   *time.Time
}

func (f Filters) Empty() bool {
	return len(f.Statuses) == 0 &&
		len(f.WorkTypes) == 0 &&
		len(f.RemoteModes) == 0 &&
		len(f.Locations) == 0 &&
		len(f.PayTypes) == 0 &&
		len(f.Tiers) == 0 &&
		len(f.Companies) == 0 &&
		f.ScoreMin == nil && f.ScoreMax == nil &&
		f.AppliedFrom == nil && f.AppliedTo == nil
}

type facetSet map[string]struct{}

func newFacetSet(values []string) facetSet {
	if len(values) == 0 {
		return nil
	}
	set := make(facetSet, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	return set
}

// allows is true for a nil set (absent facet). A record field that is
// missing compares as the empty string and therefore fails any
// non-empty facet instead of auto-matching.
func (s facetSet) allows(value string) bool {
	if s == nil {
		return true
	}
	_, ok := s[strings.ToLower(value)]
	return ok
}

// ApplyFilters keeps the records passing every present facet. Facets
// are evaluated independently, so their order cannot affect the result.
func ApplyFilters(records []models.Application, f Filters) []models.Application {
	if f.Empty() {
		return records
	}

	statuses := newFacetSet(f.Statuses)
	workTypes := newFacetSet(f.WorkTypes)
	remoteModes := newFacetSet(f.RemoteModes)
	locations := newFacetSet(f.Locations)
	payTypes := newFacetSet(f.PayTypes)
	tiers := newFacetSet(f.Tiers)
	companies := newFacetSet(f.Companies)

	out := make([]models.Application, 0, len(records))
	for _, app := range records {
		if !statuses.allows(app.Status) {
			continue
		}
		if !workTypes.allows(app.Posting.WorkType) {
			continue
		}
		if !remoteModes.allows(app.Posting.RemoteMode) {
			continue
		}
		if !locations.allows(app.Posting.Location) {
			continue
		}
		if !payTypes.allows(app.Posting.PayType) {
			continue
		}
		if !tiers.allows(app.Posting.VerificationTier) {
			continue
		}
		if !companies.allows(app.Posting.CompanyName) {
			continue
		}
		if !scoreAllowed(f, app.MatchScore) {
			continue
		}
		if !appliedAllowed(f, app.AppliedAt) {
			continue
		}
		out = append(out, app)
	}

	return out
}

// scoreAllowed checks the match-score range facet. When only one bound
// is set the other defaults to 0 / 100. An absent score compares as 0.
func scoreAllowed(f Filters, score models.Score) bool {
	if f.ScoreMin == nil && f.ScoreMax == nil {
		return true
	}

	min, max := 0.0, 100.0
	if f.ScoreMin != nil {
		min = *f.ScoreMin
	}
	if f.ScoreMax != nil {
		max = *f.ScoreMax
	}

	v := 0.0
	if score.Valid {
		v = score.Float64
	}

	return v >= min && v <= max
}

// appliedAllowed checks the applied-at range facet on epoch
// milliseconds. A missing from bound is epoch zero, a missing to bound
// is the maximum.
func appliedAllowed(f Filters, applied models.Timestamp) bool {
	if f.AppliedFrom == nil && f.AppliedTo == nil {
		return true
	}

	from := int64(0)
	to := int64(math.MaxInt64)
	if f.AppliedFrom != nil {
		from = f.AppliedFrom.UnixMilli()
	}
	if f.AppliedTo != nil {
		to = f.AppliedTo.UnixMilli()
	}

	ms := applied.Millis()
	return ms >= from && ms <= to
}
