package domain

import (
	"math"
	"sort"
	"strings"
)

// SortOption is the result ordering requested from the search endpoint.
type SortOption string

const (
	SortRelevance  SortOption = "relevance"
	SortRating     SortOption = "rating"
	SortRecent     SortOption = "recent"
	SortDistance   SortOption = "distance"
	SortPopularity SortOption = "popularity"
	SortNameAsc    SortOption = "name_asc"
	SortNameDesc   SortOption = "name_desc"
)

// SortOptions lists every supported ordering.
var SortOptions = []SortOption{SortRelevance, SortRating, SortRecent, SortDistance, SortPopularity, SortNameAsc, SortNameDesc}

// ParseSortOption returns false for unknown values.
func ParseSortOption(s string) (SortOption, bool) {
	for _, o := range SortOptions {
		if string(o) == s {
			return o, true
		}
	}
	return "", false
}

const (
	// MaxRating is the upper bound of the rating floor filter.
	MaxRating = 5.0
	// RatingStep is the granularity of the rating floor filter.
	RatingStep = 0.5
)

// SearchQuery is the compound filter state of a provider search.
// The zero value is a valid query: no filters, relevance order, page 1.
type SearchQuery struct {
	FreeText             string
	ServiceIDs           []int64
	Cities               []string
	MinRating            float64
	AvailabilityStatuses []AvailabilityStatus
	SortBy               SortOption
	Page                 int
}

// NewSearchQuery returns the default query.
func NewSearchQuery() SearchQuery {
	return SearchQuery{SortBy: SortRelevance, Page: 1}
}

// NormalizeRating clamps a rating floor onto the filter's grid. Values that
// are not finite or fall outside [0,5] become 0 (no filter); others are
// snapped down to the nearest half star.
func NormalizeRating(r float64) float64 {
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 || r > MaxRating {
		return 0
	}
	return math.Floor(r/RatingStep) * RatingStep
}

// Normalize returns the canonical form of the query: trimmed text, sorted
// unique service ids, unique non-empty cities in first-seen order, unique
// availability values in canonical order, a valid rating floor, a known
// sort option and a page of at least 1.
func (q SearchQuery) Normalize() SearchQuery {
	out := SearchQuery{
		FreeText:  strings.TrimSpace(q.FreeText),
		MinRating: NormalizeRating(q.MinRating),
		SortBy:    q.SortBy,
		Page:      q.Page,
	}

	if len(q.ServiceIDs) > 0 {
		seen := make(map[int64]bool, len(q.ServiceIDs))
		for _, id := range q.ServiceIDs {
			if id > 0 && !seen[id] {
				seen[id] = true
				out.ServiceIDs = append(out.ServiceIDs, id)
			}
		}
		sort.Slice(out.ServiceIDs, func(i, j int) bool { return out.ServiceIDs[i] < out.ServiceIDs[j] })
	}

	if len(q.Cities) > 0 {
		seen := make(map[string]bool, len(q.Cities))
		for _, c := range q.Cities {
			c = strings.TrimSpace(c)
			if c != "" && !seen[c] {
				seen[c] = true
				out.Cities = append(out.Cities, c)
			}
		}
	}

	if len(q.AvailabilityStatuses) > 0 {
		present := make(map[AvailabilityStatus]bool, len(q.AvailabilityStatuses))
		for _, a := range q.AvailabilityStatuses {
			present[a] = true
		}
		for _, a := range AvailabilityStatuses {
			if present[a] {
				out.AvailabilityStatuses = append(out.AvailabilityStatuses, a)
			}
		}
	}

	if _, ok := ParseSortOption(string(out.SortBy)); !ok {
		out.SortBy = SortRelevance
	}
	if out.Page < 1 {
		out.Page = 1
	}
	return out
}

// Equal reports whether two queries describe the same search. Multi-valued
// fields are compared as sets.
func (q SearchQuery) Equal(other SearchQuery) bool {
	a, b := q.Normalize(), other.Normalize()
	if a.FreeText != b.FreeText || a.MinRating != b.MinRating || a.SortBy != b.SortBy || a.Page != b.Page {
		return false
	}
	if !equalInt64s(a.ServiceIDs, b.ServiceIDs) {
		return false
	}
	if len(a.AvailabilityStatuses) != len(b.AvailabilityStatuses) {
		return false
	}
	for i := range a.AvailabilityStatuses {
		if a.AvailabilityStatuses[i] != b.AvailabilityStatuses[i] {
			return false
		}
	}
	return equalStringSets(a.Cities, b.Cities)
}

// HasFilters reports whether anything other than free text, sort and page is set.
func (q SearchQuery) HasFilters() bool {
	n := q.Normalize()
	return len(n.ServiceIDs) > 0 || len(n.Cities) > 0 || n.MinRating > 0 || len(n.AvailabilityStatuses) > 0
}

// WithPage returns a copy of the query positioned at page.
func (q SearchQuery) WithPage(page int) SearchQuery {
	if page < 1 {
		page = 1
	}
	q.Page = page
	return q
}

// QueryPatch is a partial update of a SearchQuery. Nil fields are left
// unchanged; a non-nil pointer to an empty slice clears that filter.
type QueryPatch struct {
	FreeText             *string
	ServiceIDs           *[]int64
	Cities               *[]string
	MinRating            *float64
	AvailabilityStatuses *[]AvailabilityStatus
	SortBy               *SortOption
}

// ApplyFilterChange merges patch into current. The result is always on page
// 1: a filter or sort change invalidates the pagination position.
func ApplyFilterChange(current SearchQuery, patch QueryPatch) SearchQuery {
	next := current
	if patch.FreeText != nil {
		next.FreeText = *patch.FreeText
	}
	if patch.ServiceIDs != nil {
		next.ServiceIDs = append([]int64(nil), (*patch.ServiceIDs)...)
	}
	if patch.Cities != nil {
		next.Cities = append([]string(nil), (*patch.Cities)...)
	}
	if patch.MinRating != nil {
		next.MinRating = *patch.MinRating
	}
	if patch.AvailabilityStatuses != nil {
		next.AvailabilityStatuses = append([]AvailabilityStatus(nil), (*patch.AvailabilityStatuses)...)
	}
	if patch.SortBy != nil {
		next.SortBy = *patch.SortBy
	}
	next = next.Normalize()
	next.Page = 1
	return next
}

// ClearFilters drops every filter and the sort order but keeps the free text.
func ClearFilters(current SearchQuery) SearchQuery {
	q := NewSearchQuery()
	q.FreeText = current.FreeText
	return q.Normalize()
}

func equalInt64s(a, b []int64) bool {
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

func equalStringSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
