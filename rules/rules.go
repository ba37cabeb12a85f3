// Package rules checks attribute values against declarative rule options.
//
// The structure engine only orchestrates validation: it handles presence and
// the primitive type check itself and hands every other rule option to a
// Checker. Standard is the default Checker.
package rules

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/zero-day-ai/structure/input"
	"github.com/zero-day-ai/structure/schema"
)

// Violation is one failed rule.
type Violation struct {
	// Rule is the canonical rule name (e.g. "minlength").
	Rule string

	// Message is the full message, starting with the quoted label.
	Message string
}

// Checker validates a coerced, present value against rule options. label is
// the attribute name used in messages; t is the resolved attribute type.
type Checker interface {
	Check(label string, t schema.Type, value any, opts schema.Options) []Violation
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(label string, t schema.Type, value any, opts schema.Options) []Violation

// Check implements Checker.
func (f CheckerFunc) Check(label string, t schema.Type, value any, opts schema.Options) []Violation {
	return f(label, t, value, opts)
}

// ruleFunc returns the message text (without the label) when the rule fails.
type ruleFunc func(s *Standard, value any, param any) (string, bool)

// order is the fixed evaluation order of rules, so output is deterministic
// regardless of map iteration.
var order = []string{
	"valid",
	"notempty",
	"length",
	"minlength",
	"maxlength",
	"min",
	"max",
	"greater",
	"less",
	"integer",
	"positive",
	"negative",
	"pattern",
	"email",
	"uuid",
	"cel",
	"expr",
}

// aliases map alternative option names to canonical ones.
var aliases = map[string]string{
	"oneof":   "valid",
	"enum":    "valid",
	"minimum": "min",
	"maximum": "max",
	"regex":   "pattern",
	"guid":    "uuid",
}

var handlers = map[string]ruleFunc{
	"valid":     checkValid,
	"notempty":  checkNotEmpty,
	"length":    checkLength,
	"minlength": checkMinLength,
	"maxlength": checkMaxLength,
	"min":       checkMin,
	"max":       checkMax,
	"greater":   checkGreater,
	"less":      checkLess,
	"integer":   checkInteger,
	"positive":  checkPositive,
	"negative":  checkNegative,
	"pattern":   checkPattern,
	"email":     checkEmail,
	"uuid":      checkUUID,
	"cel":       checkCEL,
	"expr":      checkExpr,
}

// Standard is the default Checker. Option keys are matched case-insensitively
// and ignore "_" and "-", so minLength, min_length and min-length are the same
// rule. Unknown keys are ignored. Standard is safe for concurrent use; compiled
// patterns and expressions are cached.
type Standard struct {
	patterns sync.Map // string -> *regexp.Regexp
	programs sync.Map // "cel:"/"expr:" + source -> compiled program
}

// New creates a Standard checker.
func New() *Standard {
	return &Standard{}
}

// Canonical returns the canonical rule name for an option key, or "" when
// the key is not a rule Standard knows.
func Canonical(key string) string {
	k := strings.ToLower(key)
	k = strings.ReplaceAll(k, "_", "")
	k = strings.ReplaceAll(k, "-", "")
	if alias, ok := aliases[k]; ok {
		k = alias
	}
	if _, ok := handlers[k]; !ok {
		return ""
	}
	return k
}

// Check implements Checker.
func (s *Standard) Check(label string, t schema.Type, value any, opts schema.Options) []Violation {
	if len(opts) == 0 {
		return nil
	}

	params := make(map[string]any, len(opts))
	for key, param := range opts {
		if rule := Canonical(key); rule != "" {
			params[rule] = param
		}
	}

	var violations []Violation
	for _, rule := range order {
		param, ok := params[rule]
		if !ok {
			continue
		}
		if text, failed := handlers[rule](s, value, param); failed {
			violations = append(violations, Violation{
				Rule:    rule,
				Message: fmt.Sprintf("%q %s", label, text),
			})
		}
	}
	return violations
}

func enabled(param any) bool {
	b, ok := input.Bool(param)
	return ok && b
}

func checkValid(_ *Standard, value any, param any) (string, bool) {
	allowed, ok := input.Slice(param)
	if !ok {
		allowed = []any{param}
	}

	got := fmt.Sprint(value)
	for _, a := range allowed {
		if fmt.Sprint(a) == got {
			return "", false
		}
	}

	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = fmt.Sprint(a)
	}
	return fmt.Sprintf("must be one of [%s]", strings.Join(names, ", ")), true
}

func checkNotEmpty(_ *Standard, value any, param any) (string, bool) {
	if !enabled(param) {
		return "", false
	}
	if str, ok := value.(string); ok && strings.TrimSpace(str) == "" {
		return "is not allowed to be empty", true
	}
	if items, ok := input.Slice(value); ok && len(items) == 0 {
		return "is not allowed to be empty", true
	}
	return "", false
}

// size returns the rune count of strings and the length of lists.
func size(value any) (n int, isString bool, ok bool) {
	if str, isStr := value.(string); isStr {
		return utf8.RuneCountInString(str), true, true
	}
	if items, isList := input.Slice(value); isList {
		return len(items), false, true
	}
	return 0, false, false
}

func checkLength(_ *Standard, value any, param any) (string, bool) {
	want, ok := input.Int64(param)
	if !ok {
		return "", false
	}
	n, isString, ok := size(value)
	if !ok || int64(n) == want {
		return "", false
	}
	if isString {
		return fmt.Sprintf("length must be %d characters long", want), true
	}
	return fmt.Sprintf("must contain %d items", want), true
}

func checkMinLength(_ *Standard, value any, param any) (string, bool) {
	limit, ok := input.Int64(param)
	if !ok {
		return "", false
	}
	n, isString, ok := size(value)
	if !ok || int64(n) >= limit {
		return "", false
	}
	if isString {
		return fmt.Sprintf("length must be at least %d characters long", limit), true
	}
	return fmt.Sprintf("must contain at least %d items", limit), true
}

func checkMaxLength(_ *Standard, value any, param any) (string, bool) {
	limit, ok := input.Int64(param)
	if !ok {
		return "", false
	}
	n, isString, ok := size(value)
	if !ok || int64(n) <= limit {
		return "", false
	}
	if isString {
		return fmt.Sprintf("length must be less than or equal to %d characters long", limit), true
	}
	return fmt.Sprintf("must contain less than or equal to %d items", limit), true
}

// numbers reads a numeric value and a numeric parameter. Non-numeric values
// are left to the type check.
func numbers(value any, param any) (float64, float64, bool) {
	if !input.IsNumber(value) {
		return 0, 0, false
	}
	v, _ := input.Float64(value)
	p, ok := input.Float64(param)
	return v, p, ok
}

func checkMin(_ *Standard, value any, param any) (string, bool) {
	v, limit, ok := numbers(value, param)
	if !ok || v >= limit {
		return "", false
	}
	return fmt.Sprintf("must be greater than or equal to %v", limit), true
}

func checkMax(_ *Standard, value any, param any) (string, bool) {
	v, limit, ok := numbers(value, param)
	if !ok || v <= limit {
		return "", false
	}
	return fmt.Sprintf("must be less than or equal to %v", limit), true
}

func checkGreater(_ *Standard, value any, param any) (string, bool) {
	v, limit, ok := numbers(value, param)
	if !ok || v > limit {
		return "", false
	}
	return fmt.Sprintf("must be greater than %v", limit), true
}

func checkLess(_ *Standard, value any, param any) (string, bool) {
	v, limit, ok := numbers(value, param)
	if !ok || v < limit {
		return "", false
	}
	return fmt.Sprintf("must be less than %v", limit), true
}

func checkInteger(_ *Standard, value any, param any) (string, bool) {
	if !enabled(param) || !input.IsNumber(value) {
		return "", false
	}
	if _, ok := input.Int64(value); ok {
		return "", false
	}
	return "must be an integer", true
}

func checkPositive(_ *Standard, value any, param any) (string, bool) {
	if !enabled(param) || !input.IsNumber(value) {
		return "", false
	}
	if v, _ := input.Float64(value); v > 0 {
		return "", false
	}
	return "must be a positive number", true
}

func checkNegative(_ *Standard, value any, param any) (string, bool) {
	if !enabled(param) || !input.IsNumber(value) {
		return "", false
	}
	if v, _ := input.Float64(value); v < 0 {
		return "", false
	}
	return "must be a negative number", true
}

func checkPattern(s *Standard, value any, param any) (string, bool) {
	str, ok := value.(string)
	if !ok {
		return "", false
	}

	re, err := s.pattern(param)
	if err != nil {
		return fmt.Sprintf("has an invalid pattern rule: %v", err), true
	}
	if re.MatchString(str) {
		return "", false
	}
	return fmt.Sprintf("with value %q fails to match the required pattern: %s", str, re.String()), true
}

func (s *Standard) pattern(param any) (*regexp.Regexp, error) {
	switch p := param.(type) {
	case *regexp.Regexp:
		return p, nil
	case string:
		if cached, ok := s.patterns.Load(p); ok {
			return cached.(*regexp.Regexp), nil
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		s.patterns.Store(p, re)
		return re, nil
	default:
		return nil, fmt.Errorf("pattern must be a string or *regexp.Regexp, got %T", param)
	}
}

func checkEmail(_ *Standard, value any, param any) (string, bool) {
	str, ok := value.(string)
	if !ok || !enabled(param) {
		return "", false
	}
	addr, err := mail.ParseAddress(str)
	if err == nil && addr.Address == str {
		return "", false
	}
	return "must be a valid email", true
}

func checkUUID(_ *Standard, value any, param any) (string, bool) {
	str, ok := value.(string)
	if !ok || !enabled(param) {
		return "", false
	}
	if _, err := uuid.Parse(str); err == nil {
		return "", false
	}
	return "must be a valid GUID", true
}
