package domain

import (
	"net/url"
	"strconv"
	"strings"
)

// Query string keys understood by ParseQuery and written by EncodeQuery.
const (
	ParamQuery        = "q"
	ParamService      = "service"
	ParamLocation     = "location"
	ParamMinRating    = "minRating"
	ParamAvailability = "availability"
	ParamSort         = "sort"
	ParamPage         = "page"
)

// ParseQuery decodes a browser query string into a SearchQuery. A leading
// "?" is accepted. Unknown keys are ignored and malformed values are
// treated as absent, so parsing never fails.
//
// service and availability accept both repeated keys and comma-joined
// values. location is taken one city per key, since city names may
// contain commas.
func ParseQuery(raw string) SearchQuery {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "?")
	// url.ParseQuery keeps every well-formed pair even when it reports an error.
	values, _ := url.ParseQuery(raw)

	q := NewSearchQuery()
	q.FreeText = values.Get(ParamQuery)

	for _, v := range splitAll(values[ParamService]) {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			q.ServiceIDs = append(q.ServiceIDs, id)
		}
	}

	q.Cities = append(q.Cities, values[ParamLocation]...)

	if v := values.Get(ParamMinRating); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil {
			q.MinRating = r
		}
	}

	for _, v := range splitAll(values[ParamAvailability]) {
		if a, ok := ParseAvailabilityStatus(v); ok {
			q.AvailabilityStatuses = append(q.AvailabilityStatuses, a)
		}
	}

	if s, ok := ParseSortOption(values.Get(ParamSort)); ok {
		q.SortBy = s
	}

	if v := values.Get(ParamPage); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			q.Page = p
		}
	}

	return q.Normalize()
}

// EncodeQuery is the inverse of ParseQuery. Keys are written in the fixed
// order q, service, location, minRating, availability, sort, page and
// default values are omitted, so the default query encodes to "".
func EncodeQuery(q SearchQuery) string {
	q = q.Normalize()
	var parts []string
	add := func(key, value string) {
		parts = append(parts, key+"="+value)
	}

	if q.FreeText != "" {
		add(ParamQuery, url.QueryEscape(q.FreeText))
	}
	if len(q.ServiceIDs) > 0 {
		ids := make([]string, len(q.ServiceIDs))
		for i, id := range q.ServiceIDs {
			ids[i] = strconv.FormatInt(id, 10)
		}
		add(ParamService, strings.Join(ids, ","))
	}
	for _, c := range q.Cities {
		add(ParamLocation, url.QueryEscape(c))
	}
	if q.MinRating > 0 {
		add(ParamMinRating, strconv.FormatFloat(q.MinRating, 'f', -1, 64))
	}
	if len(q.AvailabilityStatuses) > 0 {
		statuses := make([]string, len(q.AvailabilityStatuses))
		for i, a := range q.AvailabilityStatuses {
			statuses[i] = string(a)
		}
		add(ParamAvailability, strings.Join(statuses, ","))
	}
	if q.SortBy != SortRelevance {
		add(ParamSort, string(q.SortBy))
	}
	if q.Page > 1 {
		add(ParamPage, strconv.Itoa(q.Page))
	}

	return strings.Join(parts, "&")
}

func splitAll(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
