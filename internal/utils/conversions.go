package utils

import (
	"strconv"
)

// ToStringMap flattens decoded JSON claims into string values. Strings are kept
// as is, numbers and booleans are formatted and nested values are dropped.
func ToStringMap(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch tv := v.(type) {
		case string:
			out[k] = tv
		case float64:
			out[k] = strconv.FormatFloat(tv, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(tv)
		}
	}
	return out
}
