// Package view derives the filtered, ordered list a browse page renders from an
// in-memory snapshot of records and the user's current query state.
package view

import "strings"

// SortKey selects the ordering strategy applied after filtering.
type SortKey string

const (
	SortNone    SortKey = "none"
	SortRating  SortKey = "rating"
	SortNewest  SortKey = "newest"
	SortPopular SortKey = "popular"
)

// SortKeys lists the enumerated strategies in the order the UI offers them.
var SortKeys = []SortKey{SortNone, SortRating, SortNewest, SortPopular}

// ParseSortKey normalises user input. Unrecognised values are returned as-is so
// callers can log them; Derive treats them as SortNone.
func ParseSortKey(s string) SortKey {
	key := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if key == "" {
		return SortNone
	}
	return key
}

// Known reports whether k is one of the enumerated strategies. The empty key counts as SortNone.
func (k SortKey) Known() bool {
	switch k {
	case "", SortNone, SortRating, SortNewest, SortPopular:
		return true
	}
	return false
}

// Ranking names the record fields each sort strategy reads.
type Ranking struct {
	RatingField     string `json:"rating_field"`
	CreatedAtField  string `json:"created_at_field"`
	PopularityField string `json:"popularity_field"`
}

// DefaultRanking matches the field names used by the course catalog.
func DefaultRanking() Ranking {
	return Ranking{
		RatingField:     "rating",
		CreatedAtField:  "createdAt",
		PopularityField: "reviews",
	}
}

func (r Ranking) withDefaults() Ranking {
	def := DefaultRanking()
	if r.RatingField == "" {
		r.RatingField = def.RatingField
	}
	if r.CreatedAtField == "" {
		r.CreatedAtField = def.CreatedAtField
	}
	if r.PopularityField == "" {
		r.PopularityField = def.PopularityField
	}
	return r
}

// Query is the query state of one list view.
//
// Term is matched as a case-insensitive substring against every field in Fields and is
// not trimmed. Filters holds exact, case-insensitive equality constraints; an empty
// expected value places no constraint on that field.
type Query struct {
	Term    string            `json:"term"`
	Fields  []string          `json:"fields"`
	Filters map[string]string `json:"filters,omitempty"`
	Sort    SortKey           `json:"sort"`
	Ranking Ranking           `json:"ranking"`
}

// ActiveFilters returns the number of filters that constrain the result.
func (q Query) ActiveFilters() int {
	return CountActiveFilters(q.Filters)
}

// CountActiveFilters counts the filters with a non-empty expected value.
func CountActiveFilters(filters map[string]string) int {
	n := 0
	for _, v := range filters {
		if v != "" {
			n++
		}
	}
	return n
}

// SplitFields parses a comma-separated field list, dropping blanks.
// A blank list yields nil.
func SplitFields(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	fields := make([]string, 0, len(parts))
	for _, part := range parts {
		if f := strings.TrimSpace(part); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}
