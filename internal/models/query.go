package models

import (
	"iter"
	"slices"
	"strings"
)

// ListQuery is the list contract shared by the service and the client's
// local filter. Zero Page/PageSize mean "use the default".
type ListQuery struct {
	Search   string `json:"search,omitempty"`
	Category string `json:"category,omitempty"`
	Page     int    `json:"page,omitempty"`
	PageSize int    `json:"pageSize,omitempty"`
}

// Normalized fills in defaults and rejects out-of-range paging values.
func (q ListQuery) Normalized(defaultPageSize, maxPageSize int) (ListQuery, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = defaultPageSize
	}
	if q.Page < 1 {
		return q, &ValidationError{Field: "page", Reason: "must be an integer >= 1"}
	}
	if q.PageSize < 1 {
		return q, &ValidationError{Field: "pageSize", Reason: "must be an integer >= 1"}
	}
	if maxPageSize > 0 && q.PageSize > maxPageSize {
		return q, &ValidationError{Field: "pageSize", Reason: "must not exceed the maximum page size"}
	}
	q.Search = strings.TrimSpace(q.Search)
	return q, nil
}

// Matches is the filter predicate: case-insensitive substring on title AND
// exact category, each skipped when empty.
func (q ListQuery) Matches(ev Event) bool {
	if q.Category != "" && ev.Category != q.Category {
		return false
	}
	if q.Search != "" && !strings.Contains(strings.ToLower(ev.Title), strings.ToLower(q.Search)) {
		return false
	}
	return true
}

// Window returns the [start, end) offsets of the requested page.
func (q ListQuery) Window() (int, int) {
	start := (q.Page - 1) * q.PageSize
	return start, start + q.PageSize
}

// EventPage is one page of a list query. Totals are computed over the
// filtered collection.
type EventPage struct {
	Items      []Event `json:"items"`
	TotalCount int     `json:"totalCount"`
	TotalPages int     `json:"totalPages"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
}

// TotalPages never reports fewer than one page, even for an empty result.
func TotalPages(totalCount, pageSize int) int {
	if pageSize < 1 || totalCount <= 0 {
		return 1
	}
	return (totalCount + pageSize - 1) / pageSize
}

// Paginate applies q to an already date-ordered slice.
func Paginate(ordered []Event, q ListQuery) EventPage {
	return PaginateSeq(slices.Values(ordered), q)
}

// PaginateSeq filters and pages a date-ordered sequence in one pass. Only
// the requested window is retained; the rest is counted and dropped.
func PaginateSeq(ordered iter.Seq[Event], q ListQuery) EventPage {
	start, end := q.Window()
	page := EventPage{Items: []Event{}, Page: q.Page, PageSize: q.PageSize}
	for ev := range ordered {
		if !q.Matches(ev) {
			continue
		}
		if page.TotalCount >= start && page.TotalCount < end {
			page.Items = append(page.Items, ev)
		}
		page.TotalCount++
	}
	page.TotalPages = TotalPages(page.TotalCount, q.PageSize)
	return page
}
