package app

import (
	"fmt"
	"strconv"
	"strings"
)

/********** raw record helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if s, ok := lookupAny(m, path).(string); ok {
		return s
	}
	return ""
}

func lookupMap(m map[string]any, path string) (map[string]any, bool) {
	v, ok := lookupAny(m, path).(map[string]any)
	return v, ok
}

func lookupSlice(m map[string]any, path string) []any {
	v, _ := lookupAny(m, path).([]any)
	return v
}

// lookupStrings accepts []any of strings; non-strings are skipped.
func lookupStrings(m map[string]any, path string) []string {
	raw := lookupSlice(m, path)
	out := make([]string, 0, len(raw))
	for _, it := range raw {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// lookupInt: int from float64/int/string, def when absent.
func lookupInt(m map[string]any, path string, def int) int {
	switch v := lookupAny(m, path).(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// numText formats JSON numbers without a trailing ".0"; other values use %v.
func numText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// isFalsy mirrors JSON truthiness: null, "", 0, false, empty list or object.
func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	case int:
		return t == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

func isScalar(v any) bool {
	switch v.(type) {
	case bool, float64, float32, int, int64:
		return true
	}
	return false
}
