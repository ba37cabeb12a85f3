// Package input provides best-effort conversions between loosely typed Go values.
//
// Values that reach a structure come from literals, decoded JSON or YAML, and user code,
// so a number may be an int, a float64 or a numeric string. The helpers in this package
// normalize those shapes and report whether the conversion applied.
//
// # Key Features
//
//   - Nil-safe: nil and typed-nil inputs report false
//   - No panics and no errors: the boolean result carries the outcome
//   - Reflection fallback for named types (type Celsius float64, map[string]string, []Book)
//
// # Usage
//
//	n, ok := input.Float64("42.5")     // 42.5, true
//	i, ok := input.Int64(3.0)          // 3, true
//	i, ok = input.Int64(3.5)           // 0, false
//	s, ok := input.String(10)          // "10", true
//	m, ok := input.Map(map[string]string{"name": "Dune"})
//	_, ok = input.Map(nil)             // false
//
// # Callers
//
// The schema package builds its primitive coercion rules on these helpers, and the rules
// package uses them to read constraint parameters such as min, max and minLength.
package input
