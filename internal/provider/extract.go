// Package provider holds helpers shared by upstream data clients.
package provider

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ExtractValue normalizes a numeric field from a decoded JSON payload.
//
// The FPL feeds mix representations: ep_next and form arrive as decimal
// strings ("5.5"), costs as integers, and unreleased projections as null.
// Nested objects are reduced through "value", "total" or "average".
//
// Returns the scalar float64 value, and ok=false if not extractable.
func ExtractValue(val any) (float64, bool) {
	if val == nil {
		return 0, false
	}

	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f, true
		}
		return 0, false
	case map[string]any:
		for _, key := range []string{"value", "total", "average"} {
			if inner, exists := v[key]; exists && inner != nil {
				return ExtractValue(inner)
			}
		}
		return 0, false
	default:
		return 0, false
	}
}
