package domain

// DefaultPageSize is the number of providers requested per search page.
const DefaultPageSize = 12

// FetchMode tells the search controller what to do with a fetched page.
type FetchMode int

const (
	// FetchReplace discards the accumulated results.
	FetchReplace FetchMode = iota
	// FetchAppend concatenates the page after the accumulated results.
	FetchAppend
)

func (m FetchMode) String() string {
	if m == FetchAppend {
		return "append"
	}
	return "replace"
}

// SearchResultPage is one fetched page of providers.
type SearchResultPage struct {
	Items      []Provider
	TotalCount int
	PageNumber int
}

// HasMore reports whether another page should be requested. A short page
// (fewer items than pageSize) is terminal even when totalCount says more
// results exist.
func HasMore(resultSoFar, totalCount, pageSize, lastPageCount int) bool {
	if pageSize <= 0 {
		return false
	}
	return lastPageCount == pageSize && resultSoFar < totalCount
}
