package view

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/learnflow/catalog/model"
)

// Derive returns the records that match q, in the order q.Sort asks for.
//
// The free-text term is applied first, then every exact filter (AND), then a stable sort.
// Missing fields never fail: they do not match a term or filter and rank lowest when
// sorting. An unrecognised sort key leaves the filtered order untouched.
// The result is always a new slice; records are referenced, never modified.
func Derive(records []model.Record, q Query) []model.Record {
	term := strings.ToLower(q.Term)
	filters := normalizeFilters(q.Filters)

	result := make([]model.Record, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		if term != "" && !matchesTerm(rec, term, q.Fields) {
			continue
		}
		if !matchesFilters(rec, filters) {
			continue
		}
		result = append(result, rec)
	}

	sortRecords(result, q.Sort, q.Ranking.withDefaults())
	return result
}

type exactFilter struct {
	field string
	want  string
}

// normalizeFilters drops unset filters and orders the rest so evaluation does not
// depend on map iteration.
func normalizeFilters(filters map[string]string) []exactFilter {
	out := make([]exactFilter, 0, len(filters))
	for field, want := range filters {
		if want == "" {
			continue
		}
		out = append(out, exactFilter{field: field, want: want})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].field < out[j].field })
	return out
}

// matchesTerm expects term already lower-cased. No fields means no match.
func matchesTerm(rec model.Record, term string, fields []string) bool {
	for _, field := range fields {
		val, ok := rec.Lookup(field)
		if !ok {
			continue
		}
		for _, s := range stringValues(val) {
			if strings.Contains(strings.ToLower(s), term) {
				return true
			}
		}
	}
	return false
}

func matchesFilters(rec model.Record, filters []exactFilter) bool {
	for _, f := range filters {
		val, ok := rec.Lookup(f.field)
		if !ok {
			return false
		}
		matched := false
		for _, s := range stringValues(val) {
			if strings.EqualFold(s, f.want) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func sortRecords(records []model.Record, key SortKey, ranking Ranking) {
	switch key {
	case SortRating:
		sortByNumber(records, ranking.RatingField)
	case SortPopular:
		sortByNumber(records, ranking.PopularityField)
	case SortNewest:
		sortByTime(records, ranking.CreatedAtField)
	}
}

// sortByNumber orders descending; missing or unparseable values rank as 0.
func sortByNumber(records []model.Record, field string) {
	keys := make([]float64, len(records))
	for i, rec := range records {
		keys[i] = numberOrZero(rec, field)
	}
	sort.Stable(&byKey{
		records: records,
		less:    func(i, j int) bool { return keys[i] > keys[j] },
		swap:    func(i, j int) { keys[i], keys[j] = keys[j], keys[i] },
	})
}

// sortByTime orders newest first; missing or unparseable values rank as the unix epoch.
func sortByTime(records []model.Record, field string) {
	keys := make([]time.Time, len(records))
	for i, rec := range records {
		keys[i] = timeOrEpoch(rec, field)
	}
	sort.Stable(&byKey{
		records: records,
		less:    func(i, j int) bool { return keys[i].After(keys[j]) },
		swap:    func(i, j int) { keys[i], keys[j] = keys[j], keys[i] },
	})
}

func numberOrZero(rec model.Record, field string) float64 {
	val, ok := rec.Lookup(field)
	if !ok {
		return 0
	}
	f, ok := numeric(val, true)
	if !ok || math.IsNaN(f) {
		return 0
	}
	return f
}

func timeOrEpoch(rec model.Record, field string) time.Time {
	val, ok := rec.Lookup(field)
	if !ok {
		return epoch
	}
	t, ok := timestamp(val)
	if !ok {
		return epoch
	}
	return t
}

// byKey sorts records alongside a precomputed key slice.
type byKey struct {
	records []model.Record
	less    func(i, j int) bool
	swap    func(i, j int)
}

func (b *byKey) Len() int           { return len(b.records) }
func (b *byKey) Less(i, j int) bool { return b.less(i, j) }
func (b *byKey) Swap(i, j int) {
	b.records[i], b.records[j] = b.records[j], b.records[i]
	b.swap(i, j)
}
