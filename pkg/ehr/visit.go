package ehr

import (
	"luminahealth.io/client-go/pkg/validate"
)

// VisitType enumerates encounter settings.
type VisitType string

const (
	VisitTypeOffice     VisitType = "office"
	VisitTypeTelehealth VisitType = "telehealth"
	VisitTypeEmergency  VisitType = "emergency"
	VisitTypeInpatient  VisitType = "inpatient"
	VisitTypeHomeHealth VisitType = "home_health"
)

// VisitStatus enumerates encounter lifecycle states.
type VisitStatus string

const (
	VisitStatusScheduled  VisitStatus = "scheduled"
	VisitStatusCheckedIn  VisitStatus = "checked_in"
	VisitStatusInProgress VisitStatus = "in_progress"
	VisitStatusCompleted  VisitStatus = "completed"
	VisitStatusCancelled  VisitStatus = "cancelled"
)

// Visit is a patient encounter snapshot.
type Visit struct {
	ID           string      `json:"id"`
	PatientID    string      `json:"patientId"`
	ProviderID   string      `json:"providerId"`
	LocationID   string      `json:"locationId,omitempty"`
	Type         VisitType   `json:"type"`
	Status       VisitStatus `json:"status"`
	Reason       string      `json:"reason,omitempty"`
	CheckInTime  string      `json:"checkInTime,omitempty"`
	CheckOutTime string      `json:"checkOutTime,omitempty"`
	CreatedAt    string      `json:"createdAt"`
}

// VisitSchema validates visit records returned by the server.
var VisitSchema validate.Schema[Visit] = validate.SchemaFunc[Visit](validateVisit)

func validateVisit(v Visit) validate.Violations {
	errs := validate.Collect(
		validate.UUID("id", v.ID),
		validate.UUID("patientId", v.PatientID),
		validate.UUID("providerId", v.ProviderID),
		optionalUUID("locationId", v.LocationID),
		validate.OneOf("type", string(v.Type),
			string(VisitTypeOffice), string(VisitTypeTelehealth), string(VisitTypeEmergency),
			string(VisitTypeInpatient), string(VisitTypeHomeHealth)),
		validate.OneOf("status", string(v.Status),
			string(VisitStatusScheduled), string(VisitStatusCheckedIn), string(VisitStatusInProgress),
			string(VisitStatusCompleted), string(VisitStatusCancelled)),
		optionalDateTime("checkInTime", v.CheckInTime),
		optionalDateTime("checkOutTime", v.CheckOutTime),
		validate.DateTime("createdAt", v.CreatedAt),
	)
	if len(errs) > 0 {
		return errs
	}

	errs = validate.Collect(
		validate.Refine(v.CheckOutTime == "" || v.CheckInTime != "",
			"checkOutTime", "required_companion", "Checkout requires a prior check-in time"),
	)
	if v.CheckInTime != "" && v.CheckOutTime != "" {
		in, _ := validate.ParseDateTime(v.CheckInTime)
		out, _ := validate.ParseDateTime(v.CheckOutTime)
		errs = append(errs, validate.Collect(
			validate.Refine(out.After(in),
				"checkOutTime", "chronology", "Checkout time must be after check-in time"),
		)...)
	}
	return errs
}

// CreateVisitRequest carries the writable subset of visit fields.
type CreateVisitRequest struct {
	PatientID  string    `json:"patientId"`
	ProviderID string    `json:"providerId"`
	LocationID string    `json:"locationId,omitempty"`
	Type       VisitType `json:"type"`
	Reason     string    `json:"reason,omitempty"`
}

// CreateVisitRequestSchema validates visit creation payloads.
var CreateVisitRequestSchema validate.Schema[CreateVisitRequest] = validate.SchemaFunc[CreateVisitRequest](
	func(r CreateVisitRequest) validate.Violations {
		return validate.Collect(
			validate.UUID("patientId", r.PatientID),
			validate.UUID("providerId", r.ProviderID),
			optionalUUID("locationId", r.LocationID),
			validate.OneOf("type", string(r.Type),
				string(VisitTypeOffice), string(VisitTypeTelehealth), string(VisitTypeEmergency),
				string(VisitTypeInpatient), string(VisitTypeHomeHealth)),
		)
	})

// CheckOutVisitRequest closes an encounter.
type CheckOutVisitRequest struct {
	ID           string `json:"id"`
	CheckOutTime string `json:"checkOutTime"`
}

// CheckOutVisitRequestSchema validates checkout payloads.
var CheckOutVisitRequestSchema validate.Schema[CheckOutVisitRequest] = validate.SchemaFunc[CheckOutVisitRequest](
	func(r CheckOutVisitRequest) validate.Violations {
		return validate.Collect(
			validate.UUID("id", r.ID),
			validate.DateTime("checkOutTime", r.CheckOutTime),
		)
	})
