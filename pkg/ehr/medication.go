package ehr

import (
	"luminahealth.io/client-go/pkg/validate"
)

// MedicationStatus enumerates medication lifecycle states.
type MedicationStatus string

const (
	MedicationStatusActive       MedicationStatus = "active"
	MedicationStatusOnHold       MedicationStatus = "on_hold"
	MedicationStatusCompleted    MedicationStatus = "completed"
	MedicationStatusDiscontinued MedicationStatus = "discontinued"
)

// Medication is a prescribed drug snapshot.
type Medication struct {
	ID                string           `json:"id"`
	PatientID         string           `json:"patientId"`
	DrugName          string           `json:"drugName"`
	RxNormCode        string           `json:"rxnormCode,omitempty"`
	DoseAmount        float64          `json:"doseAmount"`
	DoseUnit          string           `json:"doseUnit"`
	Route             string           `json:"route"`
	Frequency         string           `json:"frequency"`
	DaysSupply        int              `json:"daysSupply,omitempty"`
	Refills           int              `json:"refills,omitempty"`
	Status            MedicationStatus `json:"status"`
	StartDate         string           `json:"startDate"`
	EndDate           string           `json:"endDate,omitempty"`
	DiscontinuedDate  string           `json:"discontinuedDate,omitempty"`
	DiscontinueReason string           `json:"discontinueReason,omitempty"`
}

// MedicationSchema validates medication records returned by the server.
var MedicationSchema validate.Schema[Medication] = validate.SchemaFunc[Medication](validateMedication)

func validateMedication(m Medication) validate.Violations {
	errs := validate.Collect(
		validate.UUID("id", m.ID),
		validate.UUID("patientId", m.PatientID),
		validate.NonEmpty("drugName", m.DrugName, "Drug name is required"),
		validate.Positive("doseAmount", m.DoseAmount),
		validate.NonEmpty("doseUnit", m.DoseUnit, "Dose unit is required"),
		validate.NonEmpty("route", m.Route, "Route is required"),
		validate.NonEmpty("frequency", m.Frequency, "Frequency is required"),
		validate.Min("daysSupply", float64(m.DaysSupply), 0),
		validate.Min("refills", float64(m.Refills), 0),
		validate.OneOf("status", string(m.Status),
			string(MedicationStatusActive), string(MedicationStatusOnHold),
			string(MedicationStatusCompleted), string(MedicationStatusDiscontinued)),
		validate.Date("startDate", m.StartDate),
		optionalDate("endDate", m.EndDate),
		optionalDate("discontinuedDate", m.DiscontinuedDate),
	)
	if len(errs) > 0 {
		return errs
	}

	errs = validate.Collect(
		validate.Refine(m.Status != MedicationStatusDiscontinued || m.DiscontinueReason != "",
			"discontinueReason", "required_companion", "Discontinued medications must have a reason"),
		validate.Refine(m.Status != MedicationStatusDiscontinued || m.DiscontinuedDate != "",
			"discontinuedDate", "required_companion", "Discontinued medications must have a discontinuation date"),
	)
	if m.EndDate != "" {
		start, _ := validate.ParseDate(m.StartDate)
		end, _ := validate.ParseDate(m.EndDate)
		errs = append(errs, validate.Collect(
			validate.Refine(end.After(start),
				"endDate", "chronology", "End date must be after start date"),
		)...)
	}
	return errs
}

// CreateMedicationRequest carries the writable subset of medication fields.
type CreateMedicationRequest struct {
	PatientID  string  `json:"patientId"`
	DrugName   string  `json:"drugName"`
	RxNormCode string  `json:"rxnormCode,omitempty"`
	DoseAmount float64 `json:"doseAmount"`
	DoseUnit   string  `json:"doseUnit"`
	Route      string  `json:"route"`
	Frequency  string  `json:"frequency"`
	DaysSupply int     `json:"daysSupply,omitempty"`
	Refills    int     `json:"refills,omitempty"`
	StartDate  string  `json:"startDate"`
	EndDate    string  `json:"endDate,omitempty"`
}

// CreateMedicationRequestSchema validates medication creation payloads.
var CreateMedicationRequestSchema validate.Schema[CreateMedicationRequest] = validate.SchemaFunc[CreateMedicationRequest](
	func(r CreateMedicationRequest) validate.Violations {
		errs := validate.Collect(
			validate.UUID("patientId", r.PatientID),
			validate.NonEmpty("drugName", r.DrugName, "Drug name is required"),
			validate.Positive("doseAmount", r.DoseAmount),
			validate.NonEmpty("doseUnit", r.DoseUnit, "Dose unit is required"),
			validate.NonEmpty("route", r.Route, "Route is required"),
			validate.NonEmpty("frequency", r.Frequency, "Frequency is required"),
			validate.Date("startDate", r.StartDate),
			optionalDate("endDate", r.EndDate),
		)
		if len(errs) > 0 {
			return errs
		}
		if r.EndDate != "" {
			start, _ := validate.ParseDate(r.StartDate)
			end, _ := validate.ParseDate(r.EndDate)
			errs = validate.Collect(
				validate.Refine(end.After(start),
					"endDate", "chronology", "End date must be after start date"),
			)
		}
		return errs
	})

// DiscontinueMedicationRequest stops an active medication.
type DiscontinueMedicationRequest struct {
	ID               string `json:"id"`
	Reason           string `json:"reason"`
	DiscontinuedDate string `json:"discontinuedDate"`
}

// DiscontinueMedicationRequestSchema requires both the reason and the date.
var DiscontinueMedicationRequestSchema validate.Schema[DiscontinueMedicationRequest] = validate.SchemaFunc[DiscontinueMedicationRequest](
	func(r DiscontinueMedicationRequest) validate.Violations {
		return validate.Collect(
			validate.UUID("id", r.ID),
			validate.NonEmpty("reason", r.Reason, "Discontinuation reason is required"),
			validate.Date("discontinuedDate", r.DiscontinuedDate),
		)
	})
