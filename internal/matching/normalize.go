// Package matching links order-ledger rows to their gateway and vault
// counterparts by normalized identifier.
package matching

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NormalizeKey canonicalizes an identifier for comparison: nil and NaN map to
// "", everything else is stringified, trimmed and lowercased.
//
// Blank keys all normalize to "" and therefore match each other.
func NormalizeKey(v any) string {
	var s string
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		s = x
	case *string:
		if x == nil {
			return ""
		}
		s = *x
	case float64:
		s = formatFloat(x)
	case float32:
		s = formatFloat(float64(x))
	case int:
		s = strconv.Itoa(x)
	case int64:
		s = strconv.FormatInt(x, 10)
	case int32:
		s = strconv.FormatInt(int64(x), 10)
	case uint64:
		s = strconv.FormatUint(x, 10)
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(x)
	}
	return strings.ToLower(strings.TrimSpace(s))
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
