package ehr

import (
	"luminahealth.io/client-go/pkg/validate"
)

// LabFlag enumerates abnormality flags on a result.
type LabFlag string

const (
	LabFlagNormal   LabFlag = "normal"
	LabFlagAbnormal LabFlag = "abnormal"
	LabFlagCritical LabFlag = "critical"
)

// LabStatus enumerates result lifecycle states.
type LabStatus string

const (
	LabStatusPreliminary LabStatus = "preliminary"
	LabStatusFinal       LabStatus = "final"
	LabStatusCorrected   LabStatus = "corrected"
)

// LabResult is a single resulted lab observation.
type LabResult struct {
	ID            string    `json:"id"`
	PatientID     string    `json:"patientId"`
	OrderID       string    `json:"orderId,omitempty"`
	TestName      string    `json:"testName"`
	LoincCode     string    `json:"loincCode,omitempty"`
	Value         float64   `json:"value"`
	Unit          string    `json:"unit"`
	ReferenceLow  float64   `json:"referenceLow,omitempty"`
	ReferenceHigh float64   `json:"referenceHigh,omitempty"`
	Flag          LabFlag   `json:"flag"`
	Status        LabStatus `json:"status"`
	CollectedAt   string    `json:"collectedAt"`
	ResultedAt    string    `json:"resultedAt,omitempty"`
}

// LabResultSchema validates lab results returned by the server.
var LabResultSchema validate.Schema[LabResult] = validate.SchemaFunc[LabResult](validateLabResult)

func validateLabResult(l LabResult) validate.Violations {
	errs := validate.Collect(
		validate.UUID("id", l.ID),
		validate.UUID("patientId", l.PatientID),
		optionalUUID("orderId", l.OrderID),
		validate.NonEmpty("testName", l.TestName, "Test name is required"),
		validate.NonEmpty("unit", l.Unit, "Unit is required"),
		validate.OneOf("flag", string(l.Flag),
			string(LabFlagNormal), string(LabFlagAbnormal), string(LabFlagCritical)),
		validate.OneOf("status", string(l.Status),
			string(LabStatusPreliminary), string(LabStatusFinal), string(LabStatusCorrected)),
		validate.DateTime("collectedAt", l.CollectedAt),
		optionalDateTime("resultedAt", l.ResultedAt),
	)
	if len(errs) > 0 {
		return errs
	}

	errs = validate.Collect(
		validate.Refine(l.Status == LabStatusPreliminary || l.ResultedAt != "",
			"resultedAt", "required_companion", "Finalized results must have a resulted time"),
	)
	if l.ResultedAt != "" {
		collected, _ := validate.ParseDateTime(l.CollectedAt)
		resulted, _ := validate.ParseDateTime(l.ResultedAt)
		errs = append(errs, validate.Collect(
			validate.Refine(resulted.After(collected),
				"resultedAt", "chronology", "Resulted time must be after collection time"),
		)...)
	}
	return errs
}

// VitalType enumerates the vitals the client records.
type VitalType string

const (
	VitalTypeHeartRate       VitalType = "heart_rate"
	VitalTypeTemperature     VitalType = "temperature_c"
	VitalTypeBloodPressure   VitalType = "blood_pressure"
	VitalTypeRespiratoryRate VitalType = "respiratory_rate"
	VitalTypeSpO2            VitalType = "spo2"
	VitalTypeWeight          VitalType = "weight_kg"
	VitalTypeHeight          VitalType = "height_cm"
)

// vitalRanges bounds each vital to a plausible physiologic range.
var vitalRanges = map[VitalType][2]float64{
	VitalTypeHeartRate:       {20, 300},
	VitalTypeTemperature:     {25, 45},
	VitalTypeRespiratoryRate: {4, 80},
	VitalTypeSpO2:            {50, 100},
	VitalTypeWeight:          {0.2, 500},
	VitalTypeHeight:          {20, 280},
}

// Vital is a recorded vital-sign observation. Blood pressure carries the
// systolic/diastolic pair; every other type carries Value.
type Vital struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patientId"`
	VisitID    string    `json:"visitId,omitempty"`
	Type       VitalType `json:"type"`
	Value      float64   `json:"value,omitempty"`
	Unit       string    `json:"unit"`
	Systolic   float64   `json:"systolic,omitempty"`
	Diastolic  float64   `json:"diastolic,omitempty"`
	RecordedAt string    `json:"recordedAt"`
}

// VitalSchema validates vitals returned by the server, including the
// physiologic range per type.
var VitalSchema validate.Schema[Vital] = validate.SchemaFunc[Vital](validateVital)

func validateVital(v Vital) validate.Violations {
	errs := validate.Collect(
		validate.UUID("id", v.ID),
		validate.UUID("patientId", v.PatientID),
		optionalUUID("visitId", v.VisitID),
		validate.OneOf("type", string(v.Type),
			string(VitalTypeHeartRate), string(VitalTypeTemperature), string(VitalTypeBloodPressure),
			string(VitalTypeRespiratoryRate), string(VitalTypeSpO2), string(VitalTypeWeight),
			string(VitalTypeHeight)),
		validate.NonEmpty("unit", v.Unit, "Unit is required"),
		validate.DateTime("recordedAt", v.RecordedAt),
	)
	if len(errs) > 0 {
		return errs
	}

	if v.Type == VitalTypeBloodPressure {
		return validate.Collect(
			validate.Refine(v.Diastolic > 0,
				"diastolic", "required_companion", "Blood pressure requires a paired diastolic value"),
			validate.Refine(v.Diastolic <= 0 || (v.Systolic >= 50 && v.Systolic <= 300),
				"systolic", "out_of_range", "Systolic pressure must be between 50 and 300"),
			validate.Refine(v.Diastolic <= 0 || (v.Diastolic >= 20 && v.Diastolic <= 200),
				"diastolic", "out_of_range", "Diastolic pressure must be between 20 and 200"),
			validate.Refine(v.Diastolic <= 0 || v.Diastolic < v.Systolic,
				"diastolic", "out_of_range", "Diastolic pressure must be below systolic"),
		)
	}

	bounds := vitalRanges[v.Type]
	return validate.Collect(
		validate.Range("value", v.Value, bounds[0], bounds[1]),
	)
}

// RecordVitalRequest carries the writable subset of vital fields.
type RecordVitalRequest struct {
	PatientID  string    `json:"patientId"`
	VisitID    string    `json:"visitId,omitempty"`
	Type       VitalType `json:"type"`
	Value      float64   `json:"value,omitempty"`
	Unit       string    `json:"unit"`
	Systolic   float64   `json:"systolic,omitempty"`
	Diastolic  float64   `json:"diastolic,omitempty"`
	RecordedAt string    `json:"recordedAt"`
}

// RecordVitalRequestSchema validates vital submissions with the same range
// rules as server records.
var RecordVitalRequestSchema validate.Schema[RecordVitalRequest] = validate.SchemaFunc[RecordVitalRequest](
	func(r RecordVitalRequest) validate.Violations {
		probe := Vital{
			ID:         zeroUUID,
			PatientID:  r.PatientID,
			VisitID:    r.VisitID,
			Type:       r.Type,
			Value:      r.Value,
			Unit:       r.Unit,
			Systolic:   r.Systolic,
			Diastolic:  r.Diastolic,
			RecordedAt: r.RecordedAt,
		}
		return validateVital(probe)
	})

// zeroUUID satisfies the id rule when a request is validated through the
// record schema.
const zeroUUID = "00000000-0000-0000-0000-000000000000"
