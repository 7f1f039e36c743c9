package store

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnflow/catalog/model"
)

func recordIDs(records []model.Record) []string {
	out := make([]string, len(records))
	for i, rec := range records {
		out[i], _ = rec.GetRecordID()
	}
	return out
}

func TestRecordStore_PutKeepsInsertionOrder(t *testing.T) {
	rs := NewRecordStore()
	require.NoError(t, rs.Put(
		model.Record{"id": "b", "title": "B"},
		model.Record{"id": "a", "title": "A"},
		model.Record{"id": "c", "title": "C"},
	))

	snap, rev := rs.Snapshot()
	assert.Equal(t, []string{"b", "a", "c"}, recordIDs(snap))
	assert.Equal(t, uint64(1), rev)

	// updating keeps the original position
	require.NoError(t, rs.Put(model.Record{"id": "b", "title": "B2"}))
	snap, rev = rs.Snapshot()
	assert.Equal(t, []string{"b", "a", "c"}, recordIDs(snap))
	assert.Equal(t, "B2", snap[0]["title"])
	assert.Equal(t, uint64(2), rev)
	assert.Equal(t, 3, rs.Len())
}

func TestRecordStore_PutRejectsMissingID(t *testing.T) {
	rs := NewRecordStore()
	err := rs.Put(model.Record{"id": "ok"}, model.Record{"title": "no id"})
	require.Error(t, err)
	assert.Equal(t, 0, rs.Len(), "a rejected batch stores nothing")
	assert.Equal(t, uint64(0), rs.Revision())
}

func TestRecordStore_NumericIDsAreNormalised(t *testing.T) {
	rs := NewRecordStore()
	require.NoError(t, rs.Put(model.Record{"id": float64(7), "title": "Seven"}))

	rec, ok := rs.Get("7")
	require.True(t, ok)
	assert.Equal(t, "7", rec["id"])
}

func TestRecordStore_PutCopiesInput(t *testing.T) {
	rs := NewRecordStore()
	input := model.Record{"id": "x", "title": "before"}
	require.NoError(t, rs.Put(input))

	input["title"] = "after"
	rec, _ := rs.Get("x")
	assert.Equal(t, "before", rec["title"])
}

func TestRecordStore_DeleteAndDeleteAll(t *testing.T) {
	rs := NewRecordStore()
	require.NoError(t, rs.Put(model.Record{"id": "a"}, model.Record{"id": "b"}))

	assert.True(t, rs.Delete("a"))
	assert.False(t, rs.Delete("a"))
	_, ok := rs.Get("a")
	assert.False(t, ok)

	rs.DeleteAll()
	assert.Equal(t, 0, rs.Len())

	// new records still come after anything ever inserted
	require.NoError(t, rs.Put(model.Record{"id": "a"}))
	assert.Equal(t, uint32(3), rs.NextID)
}

func TestRecordStore_IncrementDoesNotTouchSnapshots(t *testing.T) {
	rs := NewRecordStore()
	require.NoError(t, rs.Put(model.Record{"id": "r1", "view_count": 4.0}, model.Record{"id": "r2"}, model.Record{"id": "r3", "view_count": 9}))
	before, _ := rs.Snapshot()

	updated, ok := rs.Increment("r1", "view_count")
	require.True(t, ok)
	assert.Equal(t, 5.0, updated["view_count"])
	assert.Equal(t, 4.0, before[0]["view_count"])

	fresh, ok := rs.Increment("r2", "view_count")
	require.True(t, ok)
	assert.Equal(t, 1.0, fresh["view_count"])

	fromInt, ok := rs.Increment("r3", "view_count")
	require.True(t, ok)
	assert.Equal(t, 10.0, fromInt["view_count"])

	_, ok = rs.Increment("missing", "view_count")
	assert.False(t, ok)
}

func TestRecordStore_GobRoundTrip(t *testing.T) {
	rs := NewRecordStore()
	require.NoError(t, rs.Put(
		model.Record{"id": "1", "title": "JS Basics", "tags": []interface{}{"js", "web"}, "rating": 4.5, "is_featured": true},
		model.Record{"id": "2", "title": "Go", "tags": []interface{}{"go", 1.0}},
	))

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(rs))

	decoded := &RecordStore{}
	require.NoError(t, gob.NewDecoder(&buf).Decode(decoded))

	snap, rev := decoded.Snapshot()
	assert.Equal(t, []string{"1", "2"}, recordIDs(snap))
	assert.Equal(t, rs.Revision(), rev)
	assert.Equal(t, []string{"js", "web"}, snap[0]["tags"])
	assert.Equal(t, []interface{}{"go", 1.0}, snap[1]["tags"])
	assert.Equal(t, true, snap[0]["is_featured"])
	assert.Equal(t, rs.NextID, decoded.NextID)
}
