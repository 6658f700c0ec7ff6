package validate

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Violation codes shared by the primitive rules.
const (
	CodeRequired   = "required"
	CodeFormat     = "format"
	CodeTooLong    = "too_long"
	CodeTooShort   = "too_short"
	CodeOutOfSet   = "out_of_set"
	CodeOutOfRange = "out_of_range"
)

// Wire formats for dates and timestamps.
const (
	DateLayout = "2006-01-02"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phonePattern    = regexp.MustCompile(`^\+?[0-9][0-9 \-()]{6,19}$`)
	mrnPattern      = regexp.MustCompile(`^[A-Z0-9]{6,12}$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

// NonEmpty requires a non-blank string.
func NonEmpty(path, v, message string) *Violation {
	if v == "" {
		return fail(path, CodeRequired, "%s", message)
	}
	return nil
}

// MaxLen caps the string length in bytes.
func MaxLen(path, v string, n int) *Violation {
	if len(v) > n {
		return fail(path, CodeTooLong, "must be at most %d characters", n)
	}
	return nil
}

// UUID requires an RFC 4122 identifier.
func UUID(path, v string) *Violation {
	if _, err := uuid.Parse(v); err != nil {
		return fail(path, CodeFormat, "must be a valid UUID")
	}
	return nil
}

// Email requires a plausible email address.
func Email(path, v string) *Violation {
	if !emailPattern.MatchString(v) {
		return fail(path, CodeFormat, "must be a valid email address")
	}
	return nil
}

// Phone requires a dialable phone number.
func Phone(path, v string) *Violation {
	if !phonePattern.MatchString(v) {
		return fail(path, CodeFormat, "must be a valid phone number")
	}
	return nil
}

// MRN requires a medical record number: 6-12 uppercase alphanumerics.
func MRN(path, v string) *Violation {
	if !mrnPattern.MatchString(v) {
		return fail(path, CodeFormat, "must be a valid medical record number")
	}
	return nil
}

// Date requires an ISO calendar date (YYYY-MM-DD).
func Date(path, v string) *Violation {
	if _, err := time.Parse(DateLayout, v); err != nil {
		return fail(path, CodeFormat, "must be a date in YYYY-MM-DD format")
	}
	return nil
}

// DateTime requires an RFC 3339 timestamp.
func DateTime(path, v string) *Violation {
	if _, err := time.Parse(time.RFC3339, v); err != nil {
		return fail(path, CodeFormat, "must be an RFC 3339 timestamp")
	}
	return nil
}

// CurrencyCode requires an ISO 4217 alphabetic code.
func CurrencyCode(path, v string) *Violation {
	if !currencyPattern.MatchString(v) {
		return fail(path, CodeFormat, "must be a 3-letter currency code")
	}
	return nil
}

// OneOf requires membership in an enumerated set.
func OneOf(path, v string, allowed ...string) *Violation {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fail(path, CodeOutOfSet, "must be one of %v", allowed)
}

// Range requires lo <= v <= hi.
func Range(path string, v, lo, hi float64) *Violation {
	if v < lo || v > hi {
		return fail(path, CodeOutOfRange, "must be between %g and %g", lo, hi)
	}
	return nil
}

// Positive requires v > 0.
func Positive(path string, v float64) *Violation {
	if v <= 0 {
		return fail(path, CodeOutOfRange, "must be greater than zero")
	}
	return nil
}

// Min requires v >= lo.
func Min(path string, v, lo float64) *Violation {
	if v < lo {
		return fail(path, CodeOutOfRange, "must be at least %g", lo)
	}
	return nil
}

// Optional applies a rule only when the field was supplied. Update-request
// schemas derive from create-request schemas by wrapping the same field
// rules with Optional.
func Optional[T any](v *T, rule func(T) *Violation) *Violation {
	if v == nil {
		return nil
	}
	return rule(*v)
}

// Refine records a cross-field business-rule failure. Refinements run only
// after every field-level rule on the value has passed.
func Refine(ok bool, path, code, message string) *Violation {
	if ok {
		return nil
	}
	return fail(path, code, "%s", message)
}

// ParseDateTime parses an RFC 3339 timestamp, reporting success instead of
// an error so refinements can stay single-expression.
func ParseDateTime(v string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, v)
	return t, err == nil
}

// ParseDate parses an ISO calendar date.
func ParseDate(v string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, v)
	return t, err == nil
}
