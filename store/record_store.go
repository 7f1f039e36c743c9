package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sort"
	"sync"

	"github.com/learnflow/catalog/model"
)

func init() {
	// Register the dynamic types JSON decoding leaves inside model.Record values
	// so gob can carry them as interface{}.
	gob.Register([]interface{}{})
	gob.Register(map[string]interface{}{})
	gob.Register([]string{})
	gob.Register(float64(0))
	gob.Register(false)
}

// RecordStore keeps the records of one collection in insertion order.
// Re-putting an existing id replaces the record but keeps its position, so the
// unsorted browse order stays stable across updates.
type RecordStore struct {
	Mu                     sync.RWMutex
	Records                map[uint32]model.Record // Internal ID to full record
	ExternalIDtoInternalID map[string]uint32       // Record "id" to internal ID
	NextID                 uint32
	Rev                    uint64 // Bumped on every mutation
}

// NewRecordStore returns an empty, initialized store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		Records:                make(map[uint32]model.Record),
		ExternalIDtoInternalID: make(map[string]uint32),
	}
}

// Put inserts or replaces records. Every record must carry an id.
func (rs *RecordStore) Put(records ...model.Record) error {
	for i, rec := range records {
		if _, ok := rec.GetRecordID(); !ok {
			return fmt.Errorf("record at index %d has no usable '%s' field", i, model.RecordIDField)
		}
	}

	rs.Mu.Lock()
	defer rs.Mu.Unlock()

	for _, rec := range records {
		id, _ := rec.GetRecordID()
		stored := rec.Clone()
		stored[model.RecordIDField] = id

		if internalID, exists := rs.ExternalIDtoInternalID[id]; exists {
			rs.Records[internalID] = stored
			continue
		}
		internalID := rs.NextID
		rs.NextID++
		rs.Records[internalID] = stored
		rs.ExternalIDtoInternalID[id] = internalID
	}
	rs.Rev++
	return nil
}

// Get returns the record with the given id.
func (rs *RecordStore) Get(id string) (model.Record, bool) {
	rs.Mu.RLock()
	defer rs.Mu.RUnlock()

	internalID, exists := rs.ExternalIDtoInternalID[id]
	if !exists {
		return nil, false
	}
	return rs.Records[internalID], true
}

// Delete removes a record and reports whether it existed.
func (rs *RecordStore) Delete(id string) bool {
	rs.Mu.Lock()
	defer rs.Mu.Unlock()

	internalID, exists := rs.ExternalIDtoInternalID[id]
	if !exists {
		return false
	}
	delete(rs.Records, internalID)
	delete(rs.ExternalIDtoInternalID, id)
	rs.Rev++
	return true
}

// DeleteAll removes every record. Internal IDs keep counting up.
func (rs *RecordStore) DeleteAll() {
	rs.Mu.Lock()
	defer rs.Mu.Unlock()

	rs.Records = make(map[uint32]model.Record)
	rs.ExternalIDtoInternalID = make(map[string]uint32)
	rs.Rev++
}

// Increment adds one to a numeric field of a record, treating a missing or
// non-numeric value as 0. The stored record is replaced, never modified in place,
// so snapshots handed out earlier stay unchanged.
func (rs *RecordStore) Increment(id, field string) (model.Record, bool) {
	rs.Mu.Lock()
	defer rs.Mu.Unlock()

	internalID, exists := rs.ExternalIDtoInternalID[id]
	if !exists {
		return nil, false
	}
	updated := rs.Records[internalID].Clone()
	updated[field] = counterValue(updated[field]) + 1
	rs.Records[internalID] = updated
	rs.Rev++
	return updated, true
}

func counterValue(val interface{}) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	}
	return 0
}

// Snapshot returns the records in insertion order together with the revision they belong to.
// Records are shared; callers must treat them as read-only.
func (rs *RecordStore) Snapshot() ([]model.Record, uint64) {
	rs.Mu.RLock()
	defer rs.Mu.RUnlock()

	internalIDs := make([]uint32, 0, len(rs.Records))
	for internalID := range rs.Records {
		internalIDs = append(internalIDs, internalID)
	}
	sort.Slice(internalIDs, func(i, j int) bool { return internalIDs[i] < internalIDs[j] })

	out := make([]model.Record, len(internalIDs))
	for i, internalID := range internalIDs {
		out[i] = rs.Records[internalID]
	}
	return out, rs.Rev
}

// Len returns the number of stored records.
func (rs *RecordStore) Len() int {
	rs.Mu.RLock()
	defer rs.Mu.RUnlock()
	return len(rs.Records)
}

// Revision returns the current mutation counter.
func (rs *RecordStore) Revision() uint64 {
	rs.Mu.RLock()
	defer rs.Mu.RUnlock()
	return rs.Rev
}

// gobRecordStoreData is a helper struct for Gob encoding/decoding RecordStore data.
// It excludes the mutex.
type gobRecordStoreData struct {
	Records                map[uint32]model.Record
	ExternalIDtoInternalID map[string]uint32
	NextID                 uint32
	Rev                    uint64
}

// GobEncode implements the gob.GobEncoder interface for RecordStore.
func (rs *RecordStore) GobEncode() ([]byte, error) {
	rs.Mu.RLock()
	defer rs.Mu.RUnlock()

	storable := make(map[uint32]model.Record, len(rs.Records))
	for id, rec := range rs.Records {
		storableRec := make(model.Record, len(rec))
		for k, val := range rec {
			storableRec[k] = storableValue(val)
		}
		storable[id] = storableRec
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gobRecordStoreData{
		Records:                storable,
		ExternalIDtoInternalID: rs.ExternalIDtoInternalID,
		NextID:                 rs.NextID,
		Rev:                    rs.Rev,
	}); err != nil {
		return nil, fmt.Errorf("failed to gob encode record store data: %w", err)
	}
	return buf.Bytes(), nil
}

// storableValue narrows []interface{} holding only strings to []string, which gob
// round-trips without registration surprises.
func storableValue(val interface{}) interface{} {
	items, ok := val.([]interface{})
	if !ok {
		return val
	}
	strs := make([]string, 0, len(items))
	for _, item := range items {
		s, isString := item.(string)
		if !isString {
			return val
		}
		strs = append(strs, s)
	}
	return strs
}

// GobDecode implements the gob.GobDecoder interface for RecordStore.
func (rs *RecordStore) GobDecode(data []byte) error {
	decoded := gobRecordStoreData{}
	if err := gob.NewDecoder(bytes.NewBuffer(data)).Decode(&decoded); err != nil {
		return fmt.Errorf("failed to gob decode record store data: %w", err)
	}

	rs.Mu.Lock()
	defer rs.Mu.Unlock()

	rs.Records = decoded.Records
	rs.ExternalIDtoInternalID = decoded.ExternalIDtoInternalID
	rs.NextID = decoded.NextID
	rs.Rev = decoded.Rev

	if rs.Records == nil {
		rs.Records = make(map[uint32]model.Record)
	}
	if rs.ExternalIDtoInternalID == nil {
		rs.ExternalIDtoInternalID = make(map[string]uint32)
	}
	return nil
}
