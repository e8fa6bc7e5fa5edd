// Package document defines the raw key/value form of stored entities.
//
// All accessors are total: a missing key or a value of the wrong shape yields
// the zero value of the requested type instead of an error. Hydration code
// relies on this to accept documents written by older schema versions.
package document

import (
	"encoding/json"
	"math"
	"time"
)

// Document is a raw stored document.
type Document map[string]any

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// String returns the string value for key or "".
func (d Document) String(key string) string {
	v, _ := d[key].(string)
	return v
}

// Int returns the integer value for key or 0.
//
// Integral floats are accepted since JSON decoding produces float64 values.
func (d Document) Int(key string) int64 {
	v, _ := toInt(d[key])
	return v
}

// Float returns the float value for key or 0.
func (d Document) Float(key string) float64 {
	v, _ := toFloat(d[key])
	return v
}

// Bool returns the bool value for key or false.
func (d Document) Bool(key string) bool {
	v, _ := d[key].(bool)
	return v
}

// Strings returns the string list for key or an empty list.
//
// Elements that are not strings are skipped.
func (d Document) Strings(key string) []string {
	switch v := d[key].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

// Time returns the time value for key or the zero time.
//
// RFC3339 strings and unix millisecond numbers are accepted.
func (d Document) Time(key string) time.Time {
	switch v := d[key].(type) {
	case time.Time:
		return v.UTC()
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}
		}
		return t.UTC()
	default:
		ms, ok := toInt(v)
		if !ok {
			return time.Time{}
		}
		return time.UnixMilli(ms).UTC()
	}
}

// Map returns the nested document for key or an empty document.
func (d Document) Map(key string) Document {
	switch v := d[key].(type) {
	case Document:
		return v
	case map[string]any:
		return Document(v)
	default:
		return Document{}
	}
}

// FormatTime returns the stored representation of t.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func toInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint32:
		return int64(v), true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		i, err := v.Int64()
		if err == nil {
			return i, true
		}
		f, err := v.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		i, ok := toInt(v)
		return float64(i), ok
	}
}
