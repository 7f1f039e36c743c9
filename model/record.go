package model

import (
	"math"
	"strconv"
	"strings"
)

// RecordIDField is the key every record carries its external identifier under.
const RecordIDField = "id"

// Record is a schema-flexible item shown in a browsable list: a course, a project,
// a study group or a learning resource. Field names depend on the collection settings.
// Example: rec["title"], rec["level"], rec["rating"]
type Record map[string]interface{}

// GetRecordID returns the record identifier stored under "id".
// Integral numeric ids (JSON decodes them as float64) are formatted without a fraction.
func (r Record) GetRecordID() (string, bool) {
	raw, ok := r[RecordIDField]
	if !ok {
		return "", false
	}
	switch id := raw.(type) {
	case string:
		id = strings.TrimSpace(id)
		if id != "" {
			return id, true
		}
	case float64:
		if id == math.Trunc(id) && !math.IsInf(id, 0) {
			return strconv.FormatInt(int64(id), 10), true
		}
	case int:
		return strconv.Itoa(id), true
	case int64:
		return strconv.FormatInt(id, 10), true
	}
	return "", false
}

// Lookup returns the value of a field, treating an explicit nil the same as a missing key.
func (r Record) Lookup(field string) (interface{}, bool) {
	val, ok := r[field]
	if !ok || val == nil {
		return nil, false
	}
	return val, true
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
