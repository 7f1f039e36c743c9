package view

import (
	"strconv"
	"strings"
	"time"
)

// epoch is the timestamp assigned to records without a parseable creation time.
var epoch = time.Unix(0, 0).UTC()

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// stringValues flattens a field value into the strings free-text and exact matching
// compare against. Lists contribute one entry per element; nil yields nothing.
func stringValues(val interface{}) []string {
	switch v := val.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := scalarString(item); ok {
				out = append(out, s)
			}
		}
		return out
	}
	if s, ok := scalarString(val); ok {
		return []string{s}
	}
	return nil
}

func scalarString(val interface{}) (string, bool) {
	switch v := val.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case time.Time:
		return v.Format(time.RFC3339), true
	}
	if f, ok := numeric(val, false); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return "", false
}

// numeric converts numeric values to float64. Numeric strings are accepted only when
// parseStrings is set.
func numeric(val interface{}, parseStrings bool) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		if !parseStrings {
			return 0, false
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// timestamp converts common creation-time representations. Numbers and
// all-digit strings are unix seconds.
func timestamp(val interface{}) (time.Time, bool) {
	switch v := val.(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
		if secs, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return time.Unix(secs, 0).UTC(), true
		}
		return time.Time{}, false
	}
	if f, ok := numeric(val, false); ok {
		return time.Unix(int64(f), 0).UTC(), true
	}
	return time.Time{}, false
}

// FieldValues returns the string forms of a record field as matching sees them.
// Missing fields yield nil.
func FieldValues(rec map[string]interface{}, field string) []string {
	val, ok := rec[field]
	if !ok {
		return nil
	}
	return stringValues(val)
}
