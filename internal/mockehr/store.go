package mockehr

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"luminahealth.io/client-go/pkg/billing"
	"luminahealth.io/client-go/pkg/ehr"
)

// Well-known fixture identifiers, stable so demos and tests can refer to
// them directly.
const (
	FixturePatientID  = "0b54ad4e-9e3a-4f5b-8c6d-1a2b3c4d5e6f"
	FixturePatient2ID = "1c65be5f-0f4b-4a6c-9d7e-2b3c4d5e6f70"
	FixtureProviderID = "2d76cf60-1a5c-4b7d-8e8f-3c4d5e6f7081"
	FixtureLocationID = "3e87d071-2b6d-4c8e-9f90-4d5e6f708192"
	FixtureVisitID    = "4f98e182-3c7e-4d9f-80a1-5e6f70819203"
	FixtureOrderID    = "50a9f293-4d8f-4ea0-91b2-6f7081920314"
	FixtureInvoiceID  = "61baa3a4-5e90-4fb1-82c3-708192031425"
)

// Store is the in-memory record set behind the mock backend. Everything
// lives under one mutex; the mock trades throughput for simplicity.
type Store struct {
	mu           sync.Mutex
	now          func() time.Time
	patients     map[string]ehr.Patient
	visits       map[string]ehr.Visit
	orders       map[string]ehr.Order
	medications  map[string]ehr.Medication
	allergies    map[string]ehr.Allergy
	problems     map[string]ehr.Problem
	vitals       map[string]ehr.Vital
	labResults   map[string]ehr.LabResult
	documents    map[string]ehr.Document
	appointments map[string]ehr.Appointment
	invoices     map[string]billing.Invoice
	payments     map[string]billing.Payment
}

// NewStore creates a store seeded with a small clinic's worth of fixture
// data: two patients, an open visit, an active STAT order, a critical lab
// and an outstanding invoice.
func NewStore() *Store {
	s := &Store{
		now:          time.Now,
		patients:     make(map[string]ehr.Patient),
		visits:       make(map[string]ehr.Visit),
		orders:       make(map[string]ehr.Order),
		medications:  make(map[string]ehr.Medication),
		allergies:    make(map[string]ehr.Allergy),
		problems:     make(map[string]ehr.Problem),
		vitals:       make(map[string]ehr.Vital),
		labResults:   make(map[string]ehr.LabResult),
		documents:    make(map[string]ehr.Document),
		appointments: make(map[string]ehr.Appointment),
		invoices:     make(map[string]billing.Invoice),
		payments:     make(map[string]billing.Payment),
	}
	s.seed()
	return s
}

func (s *Store) seed() {
	now := s.now().UTC()
	created := now.Add(-90 * 24 * time.Hour).Format(time.RFC3339)

	s.patients[FixturePatientID] = ehr.Patient{
		ID:        FixturePatientID,
		MRN:       "LMN001234",
		FirstName: "Amara",
		LastName:  "Okafor",
		DOB:       "1984-03-17",
		Status:    ehr.PatientStatusActive,
		Email:     "amara.okafor@example.com",
		Phone:     "+14155550123",
		City:      "Oakland",
		State:     "CA",
		Insurance: &ehr.Insurance{PayerName: "Pacific Mutual", MemberID: "PM-5531287"},
		CreatedAt: created,
	}
	s.patients[FixturePatient2ID] = ehr.Patient{
		ID:        FixturePatient2ID,
		MRN:       "LMN005678",
		FirstName: "Diego",
		LastName:  "Ramírez",
		DOB:       "1967-11-02",
		Status:    ehr.PatientStatusActive,
		Phone:     "+14155550177",
		City:      "Berkeley",
		State:     "CA",
		CreatedAt: created,
	}

	s.visits[FixtureVisitID] = ehr.Visit{
		ID:          FixtureVisitID,
		PatientID:   FixturePatientID,
		ProviderID:  FixtureProviderID,
		LocationID:  FixtureLocationID,
		Type:        ehr.VisitTypeOffice,
		Status:      ehr.VisitStatusInProgress,
		Reason:      "Follow-up, hypertension",
		CheckInTime: now.Add(-40 * time.Minute).Format(time.RFC3339),
		CreatedAt:   now.Add(-45 * time.Minute).Format(time.RFC3339),
	}

	s.orders[FixtureOrderID] = ehr.Order{
		ID:          FixtureOrderID,
		PatientID:   FixturePatientID,
		VisitID:     FixtureVisitID,
		Type:        ehr.OrderTypeLab,
		Urgency:     ehr.OrderUrgencySTAT,
		Status:      ehr.OrderStatusActive,
		Description: "Basic metabolic panel",
		StartTime:   now.Add(-30 * time.Minute).Format(time.RFC3339),
	}

	medID := uuid.NewString()
	s.medications[medID] = ehr.Medication{
		ID:         medID,
		PatientID:  FixturePatientID,
		DrugName:   "Lisinopril",
		RxNormCode: "29046",
		DoseAmount: 10,
		DoseUnit:   "mg",
		Route:      "oral",
		Frequency:  "daily",
		Refills:    3,
		Status:     ehr.MedicationStatusActive,
		StartDate:  "2025-01-15",
	}

	allergyID := uuid.NewString()
	s.allergies[allergyID] = ehr.Allergy{
		ID:        allergyID,
		PatientID: FixturePatientID,
		Allergen:  "Penicillin",
		Category:  ehr.AllergyCategoryDrug,
		Severity:  ehr.AllergySeveritySevere,
		Reaction:  "Anaphylaxis",
		Status:    ehr.AllergyStatusActive,
		OnsetDate: "1999-06-01",
	}

	problemID := uuid.NewString()
	s.problems[problemID] = ehr.Problem{
		ID:          problemID,
		PatientID:   FixturePatientID,
		ICD10Code:   "I10",
		Description: "Essential hypertension",
		Status:      ehr.ProblemStatusChronic,
		OnsetDate:   "2019-02-11",
	}

	labID := uuid.NewString()
	s.labResults[labID] = ehr.LabResult{
		ID:            labID,
		PatientID:     FixturePatientID,
		OrderID:       FixtureOrderID,
		TestName:      "Potassium",
		LoincCode:     "2823-3",
		Value:         6.4,
		Unit:          "mmol/L",
		ReferenceLow:  3.5,
		ReferenceHigh: 5.1,
		Flag:          ehr.LabFlagCritical,
		Status:        ehr.LabStatusFinal,
		CollectedAt:   now.Add(-25 * time.Minute).Format(time.RFC3339),
		ResultedAt:    now.Add(-10 * time.Minute).Format(time.RFC3339),
	}

	apptID := uuid.NewString()
	s.appointments[apptID] = ehr.Appointment{
		ID:                   apptID,
		PatientID:            FixturePatient2ID,
		ProviderID:           FixtureProviderID,
		LocationID:           FixtureLocationID,
		Type:                 ehr.AppointmentTypeFollowUp,
		Status:               ehr.AppointmentStatusScheduled,
		ScheduledDatetime:    now.Add(2 * time.Hour).Truncate(time.Minute).Format(time.RFC3339),
		DurationMinutes:      20,
		ScheduledEndDatetime: now.Add(2*time.Hour + 20*time.Minute).Truncate(time.Minute).Format(time.RFC3339),
	}

	s.invoices[FixtureInvoiceID] = billing.Invoice{
		ID:        FixtureInvoiceID,
		PatientID: FixturePatientID,
		VisitID:   FixtureVisitID,
		Status:    billing.InvoiceStatusIssued,
		LineItems: []billing.LineItem{
			{Description: "Office visit, established patient", CPTCode: "99213", Quantity: 1, UnitPrice: 145, GrossAmount: 145},
			{Description: "Basic metabolic panel", CPTCode: "80048", Quantity: 1, UnitPrice: 32.5, GrossAmount: 32.5},
		},
		TotalAmount: 177.5,
		PaidAmount:  0,
		Balance:     177.5,
		Currency:    "USD",
		IssuedAt:    now.Add(-20 * time.Minute).Format(time.RFC3339),
	}
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// sortByID gives list endpoints a stable order.
func sortByID[T any](items []T, id func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		return id(items[i]) < id(items[j])
	})
}
