package validate

import (
	"testing"
)

func TestPrimitiveRules(t *testing.T) {
	tests := []struct {
		name      string
		violation *Violation
		wantFail  bool
		wantCode  string
	}{
		{
			name:      "Valid UUID passes",
			violation: UUID("id", "7f9c24e5-3b1a-4d88-9c2f-0a6b1e5d4c3a"),
			wantFail:  false,
		},
		{
			name:      "Malformed UUID fails",
			violation: UUID("id", "not-a-uuid"),
			wantFail:  true,
			wantCode:  CodeFormat,
		},
		{
			name:      "Valid email passes",
			violation: Email("email", "pat.doe@example.org"),
			wantFail:  false,
		},
		{
			name:      "Email without domain fails",
			violation: Email("email", "pat.doe@"),
			wantFail:  true,
			wantCode:  CodeFormat,
		},
		{
			name:      "Valid MRN passes",
			violation: MRN("mrn", "A1B2C3D4"),
			wantFail:  false,
		},
		{
			name:      "Lowercase MRN fails",
			violation: MRN("mrn", "a1b2c3d4"),
			wantFail:  true,
			wantCode:  CodeFormat,
		},
		{
			name:      "Valid date passes",
			violation: Date("dob", "1984-06-15"),
			wantFail:  false,
		},
		{
			name:      "US-style date fails",
			violation: Date("dob", "06/15/1984"),
			wantFail:  true,
			wantCode:  CodeFormat,
		},
		{
			name:      "RFC 3339 timestamp passes",
			violation: DateTime("scheduledDatetime", "2025-01-01T10:00:00Z"),
			wantFail:  false,
		},
		{
			name:      "Date-only timestamp fails",
			violation: DateTime("scheduledDatetime", "2025-01-01"),
			wantFail:  true,
			wantCode:  CodeFormat,
		},
		{
			name:      "Currency code passes",
			violation: CurrencyCode("currency", "USD"),
			wantFail:  false,
		},
		{
			name:      "Lowercase currency code fails",
			violation: CurrencyCode("currency", "usd"),
			wantFail:  true,
			wantCode:  CodeFormat,
		},
		{
			name:      "Value in enumerated set passes",
			violation: OneOf("status", "active", "active", "inactive"),
			wantFail:  false,
		},
		{
			name:      "Value outside enumerated set fails",
			violation: OneOf("status", "archived", "active", "inactive"),
			wantFail:  true,
			wantCode:  CodeOutOfSet,
		},
		{
			name:      "Value inside range passes",
			violation: Range("value", 72, 20, 300),
			wantFail:  false,
		},
		{
			name:      "Value outside range fails",
			violation: Range("value", 500, 20, 300),
			wantFail:  true,
			wantCode:  CodeOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantFail && tt.violation == nil {
				t.Fatal("Expected a violation but got none")
			}
			if !tt.wantFail && tt.violation != nil {
				t.Fatalf("Unexpected violation: %+v", tt.violation)
			}
			if tt.wantFail && tt.violation.Code != tt.wantCode {
				t.Errorf("Expected code %s, got %s", tt.wantCode, tt.violation.Code)
			}
		})
	}
}

func TestCollectSkipsNil(t *testing.T) {
	errs := Collect(
		nil,
		UUID("id", "bad"),
		nil,
		NonEmpty("reason", "", "Reason is required"),
	)
	if len(errs) != 2 {
		t.Fatalf("Expected 2 violations, got %d", len(errs))
	}
	if len(errs.At("reason")) != 1 {
		t.Errorf("Expected one violation at path reason")
	}
}

func TestViolationsError(t *testing.T) {
	errs := Collect(NonEmpty("reason", "", "Cancellation reason is required"))
	want := "reason: Cancellation reason is required"
	if errs.Error() != want {
		t.Errorf("Expected %q, got %q", want, errs.Error())
	}
}
