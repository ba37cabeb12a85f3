package input

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order by Time.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// IsNil reports whether v is nil or a typed nil (pointer, map, slice, func, chan, interface).
func IsNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// IsNumber reports whether v holds one of Go's numeric kinds.
// Numeric strings are not numbers.
func IsNumber(v any) bool {
	if v == nil {
		return false
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// String converts v to its textual form.
// Handles strings, numbers, booleans and fmt.Stringer values.
func String(v any) (string, bool) {
	if IsNil(v) {
		return "", false
	}

	switch s := v.(type) {
	case string:
		return s, true
	case bool:
		return strconv.FormatBool(s), true
	case fmt.Stringer:
		return s.String(), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), true
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true
	default:
		return "", false
	}
}

// Float64 converts v to a float64.
// Handles every numeric kind and numeric strings (surrounding spaces are ignored).
func Float64(v any) (float64, bool) {
	if IsNil(v) {
		return 0, false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.String:
		s := strings.TrimSpace(rv.String())
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// Int64 converts v to an int64.
// Floats are accepted only when they hold an integral value.
func Int64(v any) (int64, bool) {
	if IsNil(v) {
		return 0, false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, false
		}
		return int64(f), true
	case reflect.String:
		parsed, err := strconv.ParseInt(strings.TrimSpace(rv.String()), 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// Bool converts v to a bool.
// Strings go through strconv.ParseBool; numbers are true when non-zero.
func Bool(v any) (bool, bool) {
	if IsNil(v) {
		return false, false
	}

	if b, ok := v.(bool); ok {
		return b, true
	}

	if s, ok := v.(string); ok {
		parsed, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return false, false
		}
		return parsed, true
	}

	if IsNumber(v) {
		f, _ := Float64(v)
		return f != 0, true
	}

	return false, false
}

// Time converts v to a time.Time.
// Handles time.Time, *time.Time, RFC3339 and date-only strings, and integers
// interpreted as unix milliseconds.
func Time(v any) (time.Time, bool) {
	if IsNil(v) {
		return time.Time{}, false
	}

	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		return *t, true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	}

	if ms, ok := Int64(v); ok && IsNumber(v) {
		return time.UnixMilli(ms).UTC(), true
	}

	return time.Time{}, false
}

// Slice converts any slice or array to []any.
// Strings are not slices. A nil slice reports false.
func Slice(v any) ([]any, bool) {
	if IsNil(v) {
		return nil, false
	}

	if s, ok := v.([]any); ok {
		return s, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	result := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		result[i] = rv.Index(i).Interface()
	}
	return result, true
}

// Map converts a map with string keys to map[string]any.
// Nil and typed-nil maps report false, as does any non-map value.
// The returned map is a copy unless v already is a map[string]any.
func Map(v any) (map[string]any, bool) {
	if IsNil(v) {
		return nil, false
	}

	if m, ok := v.(map[string]any); ok {
		return m, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}

	result := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		result[iter.Key().String()] = iter.Value().Interface()
	}
	return result, true
}
