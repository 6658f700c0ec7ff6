package ehr

import (
	"luminahealth.io/client-go/pkg/validate"
)

// PatientStatus enumerates the lifecycle states of a patient record.
type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "active"
	PatientStatusInactive PatientStatus = "inactive"
	PatientStatusDeceased PatientStatus = "deceased"
)

// Insurance holds the coverage block attached to a patient.
type Insurance struct {
	PayerName   string `json:"payerName"`
	MemberID    string `json:"memberId"`
	GroupNumber string `json:"groupNumber,omitempty"`
}

// Patient is the demographic and PHI snapshot returned by the server.
// The client never owns its lifecycle; it only requests mutations and
// reconciles the query cache afterward.
type Patient struct {
	ID           string        `json:"id"`
	MRN          string        `json:"mrn"`
	FirstName    string        `json:"firstName"`
	LastName     string        `json:"lastName"`
	DOB          string        `json:"dob"`
	Status       PatientStatus `json:"status"`
	DeceasedDate string        `json:"deceasedDate,omitempty"`
	Email        string        `json:"email,omitempty"`
	Phone        string        `json:"phone,omitempty"`
	AddressLine1 string        `json:"addressLine1,omitempty"`
	City         string        `json:"city,omitempty"`
	State        string        `json:"state,omitempty"`
	PostalCode   string        `json:"postalCode,omitempty"`
	Insurance    *Insurance    `json:"insurance,omitempty"`
	CreatedAt    string        `json:"createdAt"`
	UpdatedAt    string        `json:"updatedAt,omitempty"`
}

// PatientSchema validates patient records returned by the server.
var PatientSchema validate.Schema[Patient] = validate.SchemaFunc[Patient](validatePatient)

func validatePatient(p Patient) validate.Violations {
	errs := validate.Collect(
		validate.UUID("id", p.ID),
		validate.MRN("mrn", p.MRN),
		validate.NonEmpty("firstName", p.FirstName, "First name is required"),
		validate.NonEmpty("lastName", p.LastName, "Last name is required"),
		validate.MaxLen("firstName", p.FirstName, 100),
		validate.MaxLen("lastName", p.LastName, 100),
		validate.Date("dob", p.DOB),
		validate.OneOf("status", string(p.Status),
			string(PatientStatusActive), string(PatientStatusInactive), string(PatientStatusDeceased)),
		validate.DateTime("createdAt", p.CreatedAt),
		optionalDate("deceasedDate", p.DeceasedDate),
		optionalEmail("email", p.Email),
		optionalPhone("phone", p.Phone),
		optionalDateTime("updatedAt", p.UpdatedAt),
	)
	if len(errs) > 0 {
		return errs
	}
	return validate.Collect(
		validate.Refine(p.Status != PatientStatusDeceased || p.DeceasedDate != "",
			"deceasedDate", "required_companion", "Deceased patients must have a deceased date"),
	)
}

// CreatePatientRequest carries the writable subset of patient fields.
type CreatePatientRequest struct {
	MRN          string     `json:"mrn"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	DOB          string     `json:"dob"`
	Email        string     `json:"email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	AddressLine1 string     `json:"addressLine1,omitempty"`
	City         string     `json:"city,omitempty"`
	State        string     `json:"state,omitempty"`
	PostalCode   string     `json:"postalCode,omitempty"`
	Insurance    *Insurance `json:"insurance,omitempty"`
}

// CreatePatientRequestSchema validates patient creation payloads before any
// network call is issued.
var CreatePatientRequestSchema validate.Schema[CreatePatientRequest] = validate.SchemaFunc[CreatePatientRequest](
	func(r CreatePatientRequest) validate.Violations {
		return validate.Collect(
			validate.MRN("mrn", r.MRN),
			validate.NonEmpty("firstName", r.FirstName, "First name is required"),
			validate.NonEmpty("lastName", r.LastName, "Last name is required"),
			validate.Date("dob", r.DOB),
			optionalEmail("email", r.Email),
			optionalPhone("phone", r.Phone),
		)
	})

// UpdatePatientRequest is the create request with every field optional plus
// the record identifier and state-transition fields.
type UpdatePatientRequest struct {
	ID           string         `json:"id"`
	FirstName    *string        `json:"firstName,omitempty"`
	LastName     *string        `json:"lastName,omitempty"`
	Email        *string        `json:"email,omitempty"`
	Phone        *string        `json:"phone,omitempty"`
	AddressLine1 *string        `json:"addressLine1,omitempty"`
	City         *string        `json:"city,omitempty"`
	State        *string        `json:"state,omitempty"`
	PostalCode   *string        `json:"postalCode,omitempty"`
	Insurance    *Insurance     `json:"insurance,omitempty"`
	Status       *PatientStatus `json:"status,omitempty"`
	DeceasedDate *string        `json:"deceasedDate,omitempty"`
}

// UpdatePatientRequestSchema reuses the create-request field rules, applied
// only to the fields present on the partial update.
var UpdatePatientRequestSchema validate.Schema[UpdatePatientRequest] = validate.SchemaFunc[UpdatePatientRequest](
	func(r UpdatePatientRequest) validate.Violations {
		errs := validate.Collect(
			validate.UUID("id", r.ID),
			validate.Optional(r.FirstName, func(v string) *validate.Violation {
				return validate.NonEmpty("firstName", v, "First name is required")
			}),
			validate.Optional(r.LastName, func(v string) *validate.Violation {
				return validate.NonEmpty("lastName", v, "Last name is required")
			}),
			validate.Optional(r.Email, func(v string) *validate.Violation {
				return validate.Email("email", v)
			}),
			validate.Optional(r.Phone, func(v string) *validate.Violation {
				return validate.Phone("phone", v)
			}),
			validate.Optional(r.Status, func(v PatientStatus) *validate.Violation {
				return validate.OneOf("status", string(v),
					string(PatientStatusActive), string(PatientStatusInactive), string(PatientStatusDeceased))
			}),
			validate.Optional(r.DeceasedDate, func(v string) *validate.Violation {
				return validate.Date("deceasedDate", v)
			}),
		)
		if len(errs) > 0 {
			return errs
		}
		// Moving a patient to deceased requires the companion date in the
		// same request.
		return validate.Collect(
			validate.Refine(r.Status == nil || *r.Status != PatientStatusDeceased || r.DeceasedDate != nil,
				"deceasedDate", "required_companion", "Deceased patients must have a deceased date"),
		)
	})

func optionalDate(path, v string) *validate.Violation {
	if v == "" {
		return nil
	}
	return validate.Date(path, v)
}

func optionalDateTime(path, v string) *validate.Violation {
	if v == "" {
		return nil
	}
	return validate.DateTime(path, v)
}

func optionalEmail(path, v string) *validate.Violation {
	if v == "" {
		return nil
	}
	return validate.Email(path, v)
}

func optionalPhone(path, v string) *validate.Violation {
	if v == "" {
		return nil
	}
	return validate.Phone(path, v)
}

func optionalUUID(path, v string) *validate.Violation {
	if v == "" {
		return nil
	}
	return validate.UUID(path, v)
}
