package ehr

import (
	"encoding/json"
	"reflect"
	"testing"

	"luminahealth.io/client-go/pkg/validate"
)

func assertRoundTrip[T any](t *testing.T, name string, v T) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var back T
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if !reflect.DeepEqual(v, back) {
			t.Errorf("round trip changed the value:\n before %+v\n after  %+v", v, back)
		}
	})
}

func TestEntitiesRoundTripThroughJSON(t *testing.T) {
	assertRoundTrip(t, "patient", Patient{
		ID:           testRecordID,
		MRN:          "LMN001234",
		FirstName:    "Amara",
		LastName:     "Okafor",
		DOB:          "1984-03-17",
		Status:       PatientStatusActive,
		Email:        "amara.okafor@example.org",
		Phone:        "+14155550134",
		AddressLine1: "220 Harbor Way",
		City:         "Oakland",
		State:        "CA",
		PostalCode:   "94607",
		Insurance:    &Insurance{PayerName: "Pacific Mutual", MemberID: "PM-44812", GroupNumber: "G-77"},
		CreatedAt:    "2026-01-05T08:00:00Z",
		UpdatedAt:    "2026-02-10T12:30:00Z",
	})
	assertRoundTrip(t, "appointment", validAppointment())
	assertRoundTrip(t, "order", Order{
		ID:                testRecordID,
		PatientID:         testPatientID,
		Type:              OrderTypeLab,
		Urgency:           OrderUrgencySTAT,
		Status:            OrderStatusDiscontinued,
		Description:       "Basic metabolic panel",
		StartTime:         "2026-03-02T09:00:00Z",
		DiscontinueReason: "Duplicate order",
		DiscontinuedAt:    "2026-03-02T09:30:00Z",
	})
	assertRoundTrip(t, "blood pressure vital", Vital{
		ID:         testRecordID,
		PatientID:  testPatientID,
		Type:       VitalTypeBloodPressure,
		Unit:       "mmHg",
		Systolic:   120,
		Diastolic:  80,
		RecordedAt: "2026-03-02T09:15:00Z",
	})
	assertRoundTrip(t, "lab result", LabResult{
		ID:          testRecordID,
		PatientID:   testPatientID,
		TestName:    "Potassium",
		Value:       6.4,
		Unit:        "mmol/L",
		Flag:        LabFlagCritical,
		Status:      LabStatusFinal,
		CollectedAt: "2026-03-02T09:00:00Z",
		ResultedAt:  "2026-03-02T09:45:00Z",
	})
}

func TestPatientSchemaDeceasedNeedsDate(t *testing.T) {
	p := Patient{
		ID:        testRecordID,
		MRN:       "LMN001234",
		FirstName: "Amara",
		LastName:  "Okafor",
		DOB:       "1984-03-17",
		Status:    PatientStatusActive,
		CreatedAt: "2026-01-05T08:00:00Z",
	}
	if errs := PatientSchema.Validate(p); len(errs) != 0 {
		t.Fatalf("unexpected violations: %v", errs)
	}

	p.Status = PatientStatusDeceased
	if errs := PatientSchema.Validate(p); len(errs.At("deceasedDate")) == 0 {
		t.Errorf("expected deceasedDate violation, got %v", errs)
	}

	p.DeceasedDate = "2026-02-01"
	if errs := PatientSchema.Validate(p); len(errs) != 0 {
		t.Errorf("unexpected violations: %v", errs)
	}
}

func TestPatientSchemaFieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Patient)
		path   string
	}{
		{"bad mrn", func(p *Patient) { p.MRN = "abc" }, "mrn"},
		{"missing first name", func(p *Patient) { p.FirstName = "" }, "firstName"},
		{"bad dob", func(p *Patient) { p.DOB = "17-03-1984" }, "dob"},
		{"bad email", func(p *Patient) { p.Email = "not-an-email" }, "email"},
		{"bad status", func(p *Patient) { p.Status = "retired" }, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Patient{
				ID:        testRecordID,
				MRN:       "LMN001234",
				FirstName: "Amara",
				LastName:  "Okafor",
				DOB:       "1984-03-17",
				Status:    PatientStatusActive,
				CreatedAt: "2026-01-05T08:00:00Z",
			}
			tt.mutate(&p)
			if errs := PatientSchema.Validate(p); len(errs.At(tt.path)) == 0 {
				t.Errorf("expected violation at %s, got %v", tt.path, errs)
			}
		})
	}
}

func TestVisitSchemaCheckoutChronology(t *testing.T) {
	v := Visit{
		ID:         testRecordID,
		PatientID:  testPatientID,
		ProviderID: testProviderID,
		Type:       VisitTypeOffice,
		Status:     VisitStatusCompleted,
		CreatedAt:  "2026-03-02T09:00:00Z",
	}

	v.CheckOutTime = "2026-03-02T10:00:00Z"
	if errs := VisitSchema.Validate(v); len(errs.At("checkOutTime")) == 0 {
		t.Error("expected violation: checkout without check-in")
	}

	v.CheckInTime = "2026-03-02T10:30:00Z"
	if errs := VisitSchema.Validate(v); len(errs.At("checkOutTime")) == 0 {
		t.Error("expected violation: checkout before check-in")
	}

	v.CheckInTime = "2026-03-02T09:30:00Z"
	if errs := VisitSchema.Validate(v); len(errs) != 0 {
		t.Errorf("unexpected violations: %v", errs)
	}
}

func TestOrderSchemaDiscontinuedCompanions(t *testing.T) {
	o := Order{
		ID:          testRecordID,
		PatientID:   testPatientID,
		Type:        OrderTypeLab,
		Urgency:     OrderUrgencySTAT,
		Status:      OrderStatusDiscontinued,
		Description: "Basic metabolic panel",
		StartTime:   "2026-03-02T09:00:00Z",
	}
	errs := OrderSchema.Validate(o)
	if len(errs.At("discontinueReason")) == 0 {
		t.Errorf("expected discontinueReason violation, got %v", errs)
	}
	if len(errs.At("discontinuedAt")) == 0 {
		t.Errorf("expected discontinuedAt violation, got %v", errs)
	}

	o.DiscontinueReason = "Duplicate order"
	o.DiscontinuedAt = "2026-03-02T09:30:00Z"
	if errs := OrderSchema.Validate(o); len(errs) != 0 {
		t.Errorf("unexpected violations: %v", errs)
	}
}

func TestDiscontinueOrderRequestNeedsReason(t *testing.T) {
	req := DiscontinueOrderRequest{ID: testRecordID}
	errs := DiscontinueOrderRequestSchema.Validate(req)
	found := errs.At("reason")
	if len(found) != 1 {
		t.Fatalf("expected one violation at reason, got %v", errs)
	}
	if found[0].Message != "Discontinuation reason is required" {
		t.Errorf("unexpected message %q", found[0].Message)
	}
}

func TestMedicationSchemaDateOrder(t *testing.T) {
	m := Medication{
		ID:         testRecordID,
		PatientID:  testPatientID,
		DrugName:   "Lisinopril",
		DoseAmount: 10,
		DoseUnit:   "mg",
		Route:      "oral",
		Frequency:  "daily",
		Status:     MedicationStatusActive,
		StartDate:  "2026-01-15",
		EndDate:    "2026-01-01",
	}
	if errs := MedicationSchema.Validate(m); len(errs.At("endDate")) == 0 {
		t.Errorf("expected endDate chronology violation, got %v", errs)
	}
}

func TestLabResultSchemaFinalNeedsResultedAt(t *testing.T) {
	l := LabResult{
		ID:          testRecordID,
		PatientID:   testPatientID,
		TestName:    "Potassium",
		Value:       6.4,
		Unit:        "mmol/L",
		Flag:        LabFlagCritical,
		Status:      LabStatusFinal,
		CollectedAt: "2026-03-02T09:00:00Z",
	}
	if errs := LabResultSchema.Validate(l); len(errs.At("resultedAt")) == 0 {
		t.Errorf("expected resultedAt violation, got %v", errs)
	}

	l.ResultedAt = "2026-03-02T08:00:00Z"
	if errs := LabResultSchema.Validate(l); len(errs.At("resultedAt")) == 0 {
		t.Errorf("expected chronology violation, got %v", errs)
	}

	l.ResultedAt = "2026-03-02T09:45:00Z"
	if errs := LabResultSchema.Validate(l); len(errs) != 0 {
		t.Errorf("unexpected violations: %v", errs)
	}
}

func TestVitalSchemaBloodPressurePairing(t *testing.T) {
	base := Vital{
		ID:         testRecordID,
		PatientID:  testPatientID,
		Type:       VitalTypeBloodPressure,
		Unit:       "mmHg",
		RecordedAt: "2026-03-02T09:15:00Z",
	}

	tests := []struct {
		name      string
		systolic  float64
		diastolic float64
		path      string
		wantPass  bool
	}{
		{"missing diastolic", 120, 0, "diastolic", false},
		{"diastolic above systolic", 110, 130, "diastolic", false},
		{"systolic out of range", 320, 80, "systolic", false},
		{"normal reading", 120, 80, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := base
			v.Systolic = tt.systolic
			v.Diastolic = tt.diastolic
			errs := VitalSchema.Validate(v)
			if tt.wantPass {
				if len(errs) != 0 {
					t.Errorf("unexpected violations: %v", errs)
				}
				return
			}
			if len(errs.At(tt.path)) == 0 {
				t.Errorf("expected violation at %s, got %v", tt.path, errs)
			}
		})
	}
}

func TestVitalSchemaScalarRange(t *testing.T) {
	v := Vital{
		ID:         testRecordID,
		PatientID:  testPatientID,
		Type:       VitalTypeHeartRate,
		Value:      350,
		Unit:       "bpm",
		RecordedAt: "2026-03-02T09:15:00Z",
	}
	if errs := VitalSchema.Validate(v); len(errs.At("value")) == 0 {
		t.Errorf("expected range violation, got %v", errs)
	}
}

func TestSchemasReturnViolationsAsError(t *testing.T) {
	var err error = validate.Violations{{Path: "reason", Code: "required", Message: "Cancellation reason is required"}}
	if err.Error() != "reason: Cancellation reason is required" {
		t.Errorf("unexpected error text %q", err.Error())
	}
}
