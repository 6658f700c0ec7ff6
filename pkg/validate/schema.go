package validate

import (
	"encoding/json"
	"fmt"
)

// Schema decides whether a value satisfies a named shape, producing either
// an empty result or the itemized list of violations. Schemas perform no
// I/O and never mutate their input.
type Schema[T any] interface {
	Validate(v T) Violations
}

// SchemaFunc adapts a plain function to the Schema interface.
type SchemaFunc[T any] func(v T) Violations

// Validate implements Schema.
func (f SchemaFunc[T]) Validate(v T) Violations { return f(v) }

// Is returns a boolean predicate for the schema.
func Is[T any](s Schema[T]) func(T) bool {
	return func(v T) bool {
		return len(s.Validate(v)) == 0
	}
}

// Must returns an assertion for the schema: it hands back the value
// unchanged when valid and otherwise returns the violations as an error
// naming the offending field paths.
func Must[T any](s Schema[T]) func(T) (T, error) {
	return func(v T) (T, error) {
		if errs := s.Validate(v); len(errs) > 0 {
			return v, errs
		}
		return v, nil
	}
}

// DecodeAndValidate unmarshals JSON into T and runs the schema over the
// result. Used by the API contract layer before a response reaches
// application code.
func DecodeAndValidate[T any](s Schema[T], data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("failed to decode payload: %w", err)
	}
	if errs := s.Validate(v); len(errs) > 0 {
		return v, errs
	}
	return v, nil
}
