package view

import (
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/learnflow/catalog/model"
)

const defaultMemoEntries = 256

// Memo caches derived views of one collection. Entries are keyed on the collection
// revision and a fingerprint of the query; any revision change drops every entry.
// Results handed out are copies, so callers may reorder or truncate them freely.
type Memo struct {
	mu         sync.Mutex
	revision   uint64
	entries    map[uint64][]model.Record
	maxEntries int
	hits       uint64
	misses     uint64
}

// NewMemo creates a memo holding at most maxEntries views. Non-positive sizes use the default.
func NewMemo(maxEntries int) *Memo {
	if maxEntries <= 0 {
		maxEntries = defaultMemoEntries
	}
	return &Memo{
		entries:    make(map[uint64][]model.Record),
		maxEntries: maxEntries,
	}
}

// Derive returns the cached view for (revision, q), computing it from records on a miss.
func (m *Memo) Derive(revision uint64, records []model.Record, q Query) []model.Record {
	key := Fingerprint(q)

	m.mu.Lock()
	if revision != m.revision {
		m.revision = revision
		m.entries = make(map[uint64][]model.Record)
	}
	if cached, ok := m.entries[key]; ok {
		m.hits++
		m.mu.Unlock()
		return copyRecords(cached)
	}
	m.misses++
	m.mu.Unlock()

	derived := Derive(records, q)

	m.mu.Lock()
	defer m.mu.Unlock()
	// a newer revision may have been stored meanwhile
	if revision != m.revision {
		return derived
	}
	if len(m.entries) >= m.maxEntries {
		m.entries = make(map[uint64][]model.Record)
	}
	m.entries[key] = derived
	return copyRecords(derived)
}

// Stats reports cache hits and misses since creation.
func (m *Memo) Stats() (hits, misses uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}

// Fingerprint hashes a canonical encoding of q. Filters are hashed in key order and
// unset filters are skipped, so equivalent queries share a fingerprint.
func Fingerprint(q Query) uint64 {
	d := xxhash.New()
	ranking := q.Ranking.withDefaults()
	sortKey := q.Sort
	if sortKey == "" {
		sortKey = SortNone
	}

	writeField(d, "term", q.Term)
	writeField(d, "fields", strconv.Itoa(len(q.Fields)))
	for _, f := range q.Fields {
		writeField(d, "f", f)
	}
	filters := normalizeFilters(q.Filters)
	writeField(d, "filters", strconv.Itoa(len(filters)))
	for _, f := range filters {
		writeField(d, f.field, f.want)
	}
	writeField(d, "sort", string(sortKey))
	writeField(d, "rating", ranking.RatingField)
	writeField(d, "created", ranking.CreatedAtField)
	writeField(d, "popular", ranking.PopularityField)
	return d.Sum64()
}

// writeField length-prefixes values so adjacent strings cannot collide.
func writeField(d *xxhash.Digest, name, value string) {
	_, _ = d.WriteString(name)
	_, _ = d.WriteString(strconv.Itoa(len(value)))
	_, _ = d.WriteString(":")
	_, _ = d.WriteString(value)
}

func copyRecords(in []model.Record) []model.Record {
	out := make([]model.Record, len(in))
	copy(out, in)
	return out
}

