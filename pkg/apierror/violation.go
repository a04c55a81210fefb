package apierror

import (
	"fmt"
	"strings"
)

// Violation is one per-field record of a validation error body:
// {"loc": ["body", "title"], "msg": "field required", "type": "missing"}.
type Violation struct {
	Loc  []any
	Msg  string
	Type string
}

// Field joins the location path with dots, or returns "field" when the
// record carries no location.
func (v Violation) Field() string {
	if len(v.Loc) == 0 {
		return "field"
	}
	parts := make([]string, len(v.Loc))
	for i, seg := range v.Loc {
		parts[i] = segment(seg)
	}
	return strings.Join(parts, ".")
}

// Name is the last location segment, the key a form uses for the field.
func (v Violation) Name() string {
	if len(v.Loc) == 0 {
		return "field"
	}
	return segment(v.Loc[len(v.Loc)-1])
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field(), v.Msg)
}

// ParseViolations reads a decoded "detail" value. It returns false unless
// detail is a list; list entries that are not objects are skipped.
func ParseViolations(detail any) ([]Violation, bool) {
	items, ok := detail.([]any)
	if !ok {
		return nil, false
	}

	out := make([]Violation, 0, len(items))
	for _, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			continue
		}
		v := Violation{}
		if loc, ok := rec["loc"].([]any); ok {
			v.Loc = loc
		}
		if msg, ok := rec["msg"].(string); ok {
			v.Msg = msg
		}
		if typ, ok := rec["type"].(string); ok {
			v.Type = typ
		}
		out = append(out, v)
	}
	return out, true
}

// JoinViolations renders records in order as "a.b: msg, c: msg".
func JoinViolations(vs []Violation) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

// Violations returns the per-field records of a validation error, or nil.
func Violations(err error) []Violation {
	if !IsValidationError(err) {
		return nil
	}
	apiErr, _ := As(err)
	vs, _ := ParseViolations(apiErr.Detail())
	if len(vs) == 0 {
		return nil
	}
	return vs
}

// FieldErrors maps each violated field's last path segment to its message.
// Later records for the same field win.
func FieldErrors(err error) map[string]string {
	vs := Violations(err)
	if vs == nil {
		return nil
	}
	out := make(map[string]string, len(vs))
	for _, v := range vs {
		out[v.Name()] = v.Msg
	}
	return out
}

func segment(seg any) string {
	switch s := seg.(type) {
	case string:
		return s
	case float64:
		// JSON numbers decode as float64; list indexes are integral.
		if s == float64(int64(s)) {
			return fmt.Sprintf("%d", int64(s))
		}
		return fmt.Sprint(s)
	default:
		return fmt.Sprint(s)
	}
}
