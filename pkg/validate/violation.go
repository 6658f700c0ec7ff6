package validate

import (
	"fmt"
	"strings"
)

// Violation describes a single failed constraint on a field.
type Violation struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Violations is the itemized list of field-level failures for one value.
// It implements error so schema checks can flow through normal error returns.
type Violations []Violation

// Error formats the list as "path: message" pairs joined by "; ".
func (v Violations) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(v))
	for _, violation := range v {
		parts = append(parts, fmt.Sprintf("%s: %s", violation.Path, violation.Message))
	}
	return strings.Join(parts, "; ")
}

// At returns the violations recorded against the given field path.
func (v Violations) At(path string) Violations {
	var out Violations
	for _, violation := range v {
		if violation.Path == path {
			out = append(out, violation)
		}
	}
	return out
}

// Collect gathers non-nil violations into a single list.
func Collect(vs ...*Violation) Violations {
	var out Violations
	for _, v := range vs {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// fail builds a violation for the given path.
func fail(path, code, format string, args ...interface{}) *Violation {
	return &Violation{
		Path:    path,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
