package document

import (
	"encoding/json"
	"time"
)

// Normalize converts a decoded value into the set of types a store accepts:
// nil, bool, int64, float64, string, []any and map[string]any.
//
// Values of any other type are returned unchanged.
func Normalize(value any) any {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float32:
		return float64(v)
	case time.Time:
		return FormatTime(v)
	case []string:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = e
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = Normalize(e)
		}
		return out
	case Document:
		return map[string]any(v.normalize())
	case map[string]any:
		return map[string]any(Document(v).normalize())
	default:
		return v
	}
}

// Normalized returns a copy of the document with every value normalized.
func (d Document) Normalized() Document {
	return d.normalize()
}

func (d Document) normalize() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = Normalize(v)
	}
	return out
}
