package ehr

import (
	"luminahealth.io/client-go/pkg/validate"
)

// AllergyCategory enumerates allergen classes.
type AllergyCategory string

const (
	AllergyCategoryDrug        AllergyCategory = "drug"
	AllergyCategoryFood        AllergyCategory = "food"
	AllergyCategoryEnvironment AllergyCategory = "environment"
)

// AllergySeverity enumerates reaction severity.
type AllergySeverity string

const (
	AllergySeverityMild     AllergySeverity = "mild"
	AllergySeverityModerate AllergySeverity = "moderate"
	AllergySeveritySevere   AllergySeverity = "severe"
)

// AllergyStatus enumerates allergy lifecycle states.
type AllergyStatus string

const (
	AllergyStatusActive   AllergyStatus = "active"
	AllergyStatusInactive AllergyStatus = "inactive"
	AllergyStatusResolved AllergyStatus = "resolved"
)

// Allergy is a documented allergy snapshot.
type Allergy struct {
	ID           string          `json:"id"`
	PatientID    string          `json:"patientId"`
	Allergen     string          `json:"allergen"`
	Category     AllergyCategory `json:"category"`
	Severity     AllergySeverity `json:"severity"`
	Reaction     string          `json:"reaction,omitempty"`
	Status       AllergyStatus   `json:"status"`
	OnsetDate    string          `json:"onsetDate,omitempty"`
	ResolvedDate string          `json:"resolvedDate,omitempty"`
}

// AllergySchema validates allergy records returned by the server.
var AllergySchema validate.Schema[Allergy] = validate.SchemaFunc[Allergy](validateAllergy)

func validateAllergy(a Allergy) validate.Violations {
	errs := validate.Collect(
		validate.UUID("id", a.ID),
		validate.UUID("patientId", a.PatientID),
		validate.NonEmpty("allergen", a.Allergen, "Allergen is required"),
		validate.OneOf("category", string(a.Category),
			string(AllergyCategoryDrug), string(AllergyCategoryFood), string(AllergyCategoryEnvironment)),
		validate.OneOf("severity", string(a.Severity),
			string(AllergySeverityMild), string(AllergySeverityModerate), string(AllergySeveritySevere)),
		validate.OneOf("status", string(a.Status),
			string(AllergyStatusActive), string(AllergyStatusInactive), string(AllergyStatusResolved)),
		optionalDate("onsetDate", a.OnsetDate),
		optionalDate("resolvedDate", a.ResolvedDate),
	)
	if len(errs) > 0 {
		return errs
	}
	return validate.Collect(
		validate.Refine(a.Status != AllergyStatusResolved || a.ResolvedDate != "",
			"resolvedDate", "required_companion", "Resolved allergies must have a resolved date"),
	)
}

// ProblemStatus enumerates problem-list lifecycle states.
type ProblemStatus string

const (
	ProblemStatusActive   ProblemStatus = "active"
	ProblemStatusChronic  ProblemStatus = "chronic"
	ProblemStatusResolved ProblemStatus = "resolved"
)

// Problem is a problem-list entry snapshot.
type Problem struct {
	ID           string        `json:"id"`
	PatientID    string        `json:"patientId"`
	ICD10Code    string        `json:"icd10Code"`
	Description  string        `json:"description"`
	Status       ProblemStatus `json:"status"`
	OnsetDate    string        `json:"onsetDate"`
	ResolvedDate string        `json:"resolvedDate,omitempty"`
}

// ProblemSchema validates problem-list entries returned by the server.
var ProblemSchema validate.Schema[Problem] = validate.SchemaFunc[Problem](validateProblem)

func validateProblem(p Problem) validate.Violations {
	errs := validate.Collect(
		validate.UUID("id", p.ID),
		validate.UUID("patientId", p.PatientID),
		validate.NonEmpty("icd10Code", p.ICD10Code, "ICD-10 code is required"),
		validate.NonEmpty("description", p.Description, "Description is required"),
		validate.OneOf("status", string(p.Status),
			string(ProblemStatusActive), string(ProblemStatusChronic), string(ProblemStatusResolved)),
		validate.Date("onsetDate", p.OnsetDate),
		optionalDate("resolvedDate", p.ResolvedDate),
	)
	if len(errs) > 0 {
		return errs
	}

	errs = validate.Collect(
		validate.Refine(p.Status != ProblemStatusResolved || p.ResolvedDate != "",
			"resolvedDate", "required_companion", "Resolved problems must have a resolved date"),
	)
	if p.ResolvedDate != "" {
		onset, _ := validate.ParseDate(p.OnsetDate)
		resolved, _ := validate.ParseDate(p.ResolvedDate)
		errs = append(errs, validate.Collect(
			validate.Refine(!resolved.Before(onset),
				"resolvedDate", "chronology", "Resolved date must not precede onset date"),
		)...)
	}
	return errs
}

// DocumentType enumerates clinical document kinds.
type DocumentType string

const (
	DocumentTypeProgressNote     DocumentType = "progress_note"
	DocumentTypeDischargeSummary DocumentType = "discharge_summary"
	DocumentTypeLabReport        DocumentType = "lab_report"
	DocumentTypeImagingReport    DocumentType = "imaging_report"
	DocumentTypeConsent          DocumentType = "consent"
)

// DocumentStatus enumerates signing states.
type DocumentStatus string

const (
	DocumentStatusDraft   DocumentStatus = "draft"
	DocumentStatusFinal   DocumentStatus = "final"
	DocumentStatusAmended DocumentStatus = "amended"
)

// Document is a clinical document descriptor snapshot.
type Document struct {
	ID          string         `json:"id"`
	PatientID   string         `json:"patientId"`
	VisitID     string         `json:"visitId,omitempty"`
	Type        DocumentType   `json:"type"`
	Title       string         `json:"title"`
	ContentType string         `json:"contentType"`
	SizeBytes   int64          `json:"sizeBytes"`
	Status      DocumentStatus `json:"status"`
	SignedBy    string         `json:"signedBy,omitempty"`
	SignedAt    string         `json:"signedAt,omitempty"`
	CreatedAt   string         `json:"createdAt"`
}

// DocumentSchema validates document descriptors returned by the server.
var DocumentSchema validate.Schema[Document] = validate.SchemaFunc[Document](validateDocument)

func validateDocument(d Document) validate.Violations {
	errs := validate.Collect(
		validate.UUID("id", d.ID),
		validate.UUID("patientId", d.PatientID),
		optionalUUID("visitId", d.VisitID),
		validate.OneOf("type", string(d.Type),
			string(DocumentTypeProgressNote), string(DocumentTypeDischargeSummary), string(DocumentTypeLabReport),
			string(DocumentTypeImagingReport), string(DocumentTypeConsent)),
		validate.NonEmpty("title", d.Title, "Title is required"),
		validate.NonEmpty("contentType", d.ContentType, "Content type is required"),
		validate.Min("sizeBytes", float64(d.SizeBytes), 0),
		validate.OneOf("status", string(d.Status),
			string(DocumentStatusDraft), string(DocumentStatusFinal), string(DocumentStatusAmended)),
		optionalDateTime("signedAt", d.SignedAt),
		validate.DateTime("createdAt", d.CreatedAt),
	)
	if len(errs) > 0 {
		return errs
	}
	signed := d.Status == DocumentStatusFinal || d.Status == DocumentStatusAmended
	return validate.Collect(
		validate.Refine(!signed || d.SignedBy != "",
			"signedBy", "required_companion", "Finalized documents must have a signer"),
		validate.Refine(!signed || d.SignedAt != "",
			"signedAt", "required_companion", "Finalized documents must have a signing time"),
	)
}

// CreateAllergyRequest carries the writable subset of allergy fields.
type CreateAllergyRequest struct {
	PatientID string          `json:"patientId"`
	Allergen  string          `json:"allergen"`
	Category  AllergyCategory `json:"category"`
	Severity  AllergySeverity `json:"severity"`
	Reaction  string          `json:"reaction,omitempty"`
	OnsetDate string          `json:"onsetDate,omitempty"`
}

// CreateAllergyRequestSchema validates allergy creation payloads.
var CreateAllergyRequestSchema validate.Schema[CreateAllergyRequest] = validate.SchemaFunc[CreateAllergyRequest](
	func(r CreateAllergyRequest) validate.Violations {
		return validate.Collect(
			validate.UUID("patientId", r.PatientID),
			validate.NonEmpty("allergen", r.Allergen, "Allergen is required"),
			validate.OneOf("category", string(r.Category),
				string(AllergyCategoryDrug), string(AllergyCategoryFood), string(AllergyCategoryEnvironment)),
			validate.OneOf("severity", string(r.Severity),
				string(AllergySeverityMild), string(AllergySeverityModerate), string(AllergySeveritySevere)),
			optionalDate("onsetDate", r.OnsetDate),
		)
	})

// CreateProblemRequest carries the writable subset of problem fields.
type CreateProblemRequest struct {
	PatientID   string `json:"patientId"`
	ICD10Code   string `json:"icd10Code"`
	Description string `json:"description"`
	OnsetDate   string `json:"onsetDate"`
}

// CreateProblemRequestSchema validates problem creation payloads.
var CreateProblemRequestSchema validate.Schema[CreateProblemRequest] = validate.SchemaFunc[CreateProblemRequest](
	func(r CreateProblemRequest) validate.Violations {
		return validate.Collect(
			validate.UUID("patientId", r.PatientID),
			validate.NonEmpty("icd10Code", r.ICD10Code, "ICD-10 code is required"),
			validate.NonEmpty("description", r.Description, "Description is required"),
			validate.Date("onsetDate", r.OnsetDate),
		)
	})

// ResolveProblemRequest closes a problem-list entry.
type ResolveProblemRequest struct {
	ID           string `json:"id"`
	ResolvedDate string `json:"resolvedDate"`
}

// ResolveProblemRequestSchema validates problem resolution payloads.
var ResolveProblemRequestSchema validate.Schema[ResolveProblemRequest] = validate.SchemaFunc[ResolveProblemRequest](
	func(r ResolveProblemRequest) validate.Violations {
		return validate.Collect(
			validate.UUID("id", r.ID),
			validate.Date("resolvedDate", r.ResolvedDate),
		)
	})
