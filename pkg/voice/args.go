package voice

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// String returns args[key] as a trimmed string.
// Missing keys and non-string values yield "".
func String(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

// Int returns args[key] as an int. JSON numbers decode as float64,
// and some models send digits as strings; both are accepted.
// The second result is false when the key is absent, not integral, or
// outside the int32 range.
func Int(args map[string]any, key string) (int, bool) {
	var n int64
	switch v := args[key].(type) {
	case float64:
		if v != math.Trunc(v) || v < math.MinInt32 || v > math.MaxInt32 {
			return 0, false
		}
		n = int64(v)
	case int:
		n = int64(v)
	case int64:
		n = v
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, false
		}
		n = i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		n = i
	default:
		return 0, false
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}
