package ehr

import (
	"testing"
)

const (
	testPatientID  = "7f9c24e5-3b1a-4d88-9c2f-0a6b1e5d4c3a"
	testProviderID = "8a0d35f6-4c2b-4e99-8d30-1b7c2f6e5d4b"
	testLocationID = "9b1e4607-5d3c-4faa-9e41-2c8d307f6e5c"
	testRecordID   = "ac2f5718-6e4d-40bb-af52-3d9e41807f6d"
)

func validAppointment() Appointment {
	return Appointment{
		ID:                   testRecordID,
		PatientID:            testPatientID,
		ProviderID:           testProviderID,
		LocationID:           testLocationID,
		Type:                 AppointmentTypeFollowUp,
		Status:               AppointmentStatusScheduled,
		ScheduledDatetime:    "2026-03-02T10:00:00Z",
		DurationMinutes:      20,
		ScheduledEndDatetime: "2026-03-02T10:20:00Z",
	}
}

func TestScheduledEndUsesTypeDefault(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		minutes int
		typ     AppointmentType
		want    string
	}{
		{"follow-up default", "2026-03-02T10:00:00Z", 0, AppointmentTypeFollowUp, "2026-03-02T10:20:00Z"},
		{"new patient default", "2026-03-02T09:00:00Z", 0, AppointmentTypeNewPatient, "2026-03-02T09:40:00Z"},
		{"procedure default", "2026-03-02T13:00:00Z", 0, AppointmentTypeProcedure, "2026-03-02T14:00:00Z"},
		{"telehealth default", "2026-03-02T13:00:00Z", 0, AppointmentTypeTelehealth, "2026-03-02T13:15:00Z"},
		{"explicit duration wins", "2026-03-02T10:00:00Z", 45, AppointmentTypeFollowUp, "2026-03-02T10:45:00Z"},
		{"unknown type falls back", "2026-03-02T10:00:00Z", 0, AppointmentType("unknown"), "2026-03-02T10:30:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScheduledEnd(tt.start, tt.minutes, tt.typ)
			if err != nil {
				t.Fatalf("ScheduledEnd returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ScheduledEnd = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestScheduledEndRejectsBadStart(t *testing.T) {
	if _, err := ScheduledEnd("not-a-time", 0, AppointmentTypeFollowUp); err == nil {
		t.Error("expected error for unparseable start time")
	}
}

func TestAppointmentSchemaAcceptsValidRecord(t *testing.T) {
	if errs := AppointmentSchema.Validate(validAppointment()); len(errs) != 0 {
		t.Fatalf("unexpected violations: %v", errs)
	}
}

func TestAppointmentSchemaRejectsEndBeforeStart(t *testing.T) {
	a := validAppointment()
	a.ScheduledEndDatetime = "2026-03-02T09:30:00Z"
	errs := AppointmentSchema.Validate(a)
	if len(errs.At("scheduledEndDatetime")) == 0 {
		t.Errorf("expected chronology violation, got %v", errs)
	}
}

func TestAppointmentSchemaCancelledNeedsReason(t *testing.T) {
	a := validAppointment()
	a.Status = AppointmentStatusCancelled

	errs := AppointmentSchema.Validate(a)
	found := errs.At("cancelReason")
	if len(found) != 1 {
		t.Fatalf("expected one violation at cancelReason, got %v", errs)
	}
	if found[0].Message != "Cancellation reason is required" {
		t.Errorf("unexpected message %q", found[0].Message)
	}

	a.CancelReason = "Patient request"
	if errs := AppointmentSchema.Validate(a); len(errs) != 0 {
		t.Errorf("unexpected violations after supplying reason: %v", errs)
	}
}

func TestAppointmentSchemaCheckedInNeedsCheckInTime(t *testing.T) {
	for _, status := range []AppointmentStatus{
		AppointmentStatusCheckedIn, AppointmentStatusInProgress, AppointmentStatusCompleted,
	} {
		a := validAppointment()
		a.Status = status
		if errs := AppointmentSchema.Validate(a); len(errs.At("checkInTime")) == 0 {
			t.Errorf("status %s: expected checkInTime violation", status)
		}

		a.CheckInTime = "2026-03-02T09:58:00Z"
		if errs := AppointmentSchema.Validate(a); len(errs) != 0 {
			t.Errorf("status %s: unexpected violations %v", status, errs)
		}
	}
}

func TestCancelAppointmentRequestSchema(t *testing.T) {
	req := CancelAppointmentRequest{ID: testRecordID}
	errs := CancelAppointmentRequestSchema.Validate(req)
	found := errs.At("reason")
	if len(found) != 1 {
		t.Fatalf("expected one violation at reason, got %v", errs)
	}
	if found[0].Message != "Cancellation reason is required" {
		t.Errorf("unexpected message %q", found[0].Message)
	}

	req.Reason = "Provider unavailable"
	if errs := CancelAppointmentRequestSchema.Validate(req); len(errs) != 0 {
		t.Errorf("unexpected violations: %v", errs)
	}
}

func TestUpdateAppointmentRequestSchemaChecksOnlyPresentFields(t *testing.T) {
	req := UpdateAppointmentRequest{ID: testRecordID}
	if errs := UpdateAppointmentRequestSchema.Validate(req); len(errs) != 0 {
		t.Fatalf("empty partial update should pass, got %v", errs)
	}

	bad := "not-a-uuid"
	req.ProviderID = &bad
	if errs := UpdateAppointmentRequestSchema.Validate(req); len(errs.At("providerId")) == 0 {
		t.Errorf("expected providerId violation, got %v", errs)
	}
}
