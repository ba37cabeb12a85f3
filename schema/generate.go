package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// FromType derives attribute definitions from the exported fields of a Go
// struct, in field order.
//
// Supported field types:
//   - string: String
//   - int*, uint*: Integer
//   - float*: Number
//   - bool: Boolean
//   - time.Time: Date
//   - slice/array: ArrayOf the element type
//   - anything else: Any
//
// Struct tags:
//   - `attr:"name"`: attribute name (falls back to the json tag, then the field name)
//   - `attr:"name,required"`: marks the attribute required
//   - `attr:"-"` or `json:"-"`: skips the field
//   - `default:"value"`: static default, coerced to the attribute type on read
//   - `rules:"minLength=3;pattern=^[a-z]+$"`: rule options, values kept as strings
func FromType(v any) (Definitions, error) {
	if v == nil {
		return nil, fmt.Errorf("schema: from type: nil value")
	}

	rt := reflect.TypeOf(v)
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: from type: %s is not a struct", rt)
	}

	var defs Definitions
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)

		// Skip unexported fields
		if !field.IsExported() {
			continue
		}

		name, required, skip := fieldName(field)
		if skip {
			continue
		}

		f := Field{
			Type:     typeFromReflect(field.Type),
			Required: required,
		}
		if def, ok := field.Tag.Lookup("default"); ok {
			f.Default = def
		}
		if rules := field.Tag.Get("rules"); rules != "" {
			f.Rules = parseRuleTag(rules)
		}

		defs = append(defs, Attr(name, f))
	}

	return defs, nil
}

// fieldName reads the attr tag, falling back to json.
func fieldName(field reflect.StructField) (name string, required bool, skip bool) {
	name = field.Name

	tag, ok := field.Tag.Lookup("attr")
	if !ok {
		tag = field.Tag.Get("json")
	}
	if tag == "-" {
		return "", false, true
	}

	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		name = parts[0]
	}
	for _, part := range parts[1:] {
		if part == "required" {
			required = true
		}
	}
	return name, required, false
}

func typeFromReflect(t reflect.Type) Type {
	// Handle pointer types
	if t.Kind() == reflect.Ptr {
		return typeFromReflect(t.Elem())
	}

	// Special handling for time.Time
	if t == reflect.TypeOf(time.Time{}) {
		return Date
	}

	switch t.Kind() {
	case reflect.String:
		return String
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Integer
	case reflect.Float32, reflect.Float64:
		return Number
	case reflect.Bool:
		return Boolean
	case reflect.Slice, reflect.Array:
		return ArrayOf(typeFromReflect(t.Elem()))
	default:
		return Any
	}
}

// parseRuleTag splits "k=v;k=v". A key without a value is set to true.
func parseRuleTag(tag string) Options {
	rules := make(Options)
	for _, part := range strings.Split(tag, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			rules[strings.TrimSpace(key)] = true
			continue
		}
		rules[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return rules
}
