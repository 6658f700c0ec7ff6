package ehr

import (
	"fmt"
	"time"

	"luminahealth.io/client-go/pkg/validate"
)

// AppointmentType enumerates bookable appointment kinds.
type AppointmentType string

const (
	AppointmentTypeNewPatient AppointmentType = "new_patient"
	AppointmentTypeFollowUp   AppointmentType = "follow_up"
	AppointmentTypePhysical   AppointmentType = "physical"
	AppointmentTypeProcedure  AppointmentType = "procedure"
	AppointmentTypeTelehealth AppointmentType = "telehealth"
)

// AppointmentStatus enumerates scheduling lifecycle states.
type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed  AppointmentStatus = "confirmed"
	AppointmentStatusCheckedIn  AppointmentStatus = "checked_in"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
	AppointmentStatusNoShow     AppointmentStatus = "no_show"
)

// defaultDurations maps appointment types to their booked length when the
// scheduler does not supply one.
var defaultDurations = map[AppointmentType]int{
	AppointmentTypeNewPatient: 40,
	AppointmentTypeFollowUp:   20,
	AppointmentTypePhysical:   30,
	AppointmentTypeProcedure:  60,
	AppointmentTypeTelehealth: 15,
}

// DefaultDurationMinutes returns the default booked length for the type.
func DefaultDurationMinutes(t AppointmentType) int {
	if d, ok := defaultDurations[t]; ok {
		return d
	}
	return 30
}

// ScheduledEnd derives the end timestamp from the scheduled start, using the
// type's default duration when minutes is zero.
func ScheduledEnd(start string, minutes int, t AppointmentType) (string, error) {
	at, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return "", fmt.Errorf("invalid scheduled start: %w", err)
	}
	if minutes <= 0 {
		minutes = DefaultDurationMinutes(t)
	}
	return at.Add(time.Duration(minutes) * time.Minute).Format(time.RFC3339), nil
}

// Appointment is a scheduled visit slot snapshot.
type Appointment struct {
	ID                   string            `json:"id"`
	PatientID            string            `json:"patientId"`
	ProviderID           string            `json:"providerId"`
	LocationID           string            `json:"locationId"`
	Type                 AppointmentType   `json:"type"`
	Status               AppointmentStatus `json:"status"`
	ScheduledDatetime    string            `json:"scheduledDatetime"`
	DurationMinutes      int               `json:"durationMinutes,omitempty"`
	ScheduledEndDatetime string            `json:"scheduledEndDatetime,omitempty"`
	CheckInTime          string            `json:"checkInTime,omitempty"`
	CancelReason         string            `json:"cancelReason,omitempty"`
	Notes                string            `json:"notes,omitempty"`
}

// AppointmentSchema validates appointment records returned by the server.
var AppointmentSchema validate.Schema[Appointment] = validate.SchemaFunc[Appointment](validateAppointment)

func validateAppointment(a Appointment) validate.Violations {
	errs := validate.Collect(
		validate.UUID("id", a.ID),
		validate.UUID("patientId", a.PatientID),
		validate.UUID("providerId", a.ProviderID),
		validate.UUID("locationId", a.LocationID),
		validate.OneOf("type", string(a.Type),
			string(AppointmentTypeNewPatient), string(AppointmentTypeFollowUp), string(AppointmentTypePhysical),
			string(AppointmentTypeProcedure), string(AppointmentTypeTelehealth)),
		validate.OneOf("status", string(a.Status),
			string(AppointmentStatusScheduled), string(AppointmentStatusConfirmed), string(AppointmentStatusCheckedIn),
			string(AppointmentStatusInProgress), string(AppointmentStatusCompleted), string(AppointmentStatusCancelled),
			string(AppointmentStatusNoShow)),
		validate.DateTime("scheduledDatetime", a.ScheduledDatetime),
		validate.Min("durationMinutes", float64(a.DurationMinutes), 0),
		optionalDateTime("scheduledEndDatetime", a.ScheduledEndDatetime),
		optionalDateTime("checkInTime", a.CheckInTime),
	)
	if len(errs) > 0 {
		return errs
	}

	errs = validate.Collect(
		validate.Refine(a.Status != AppointmentStatusCancelled || a.CancelReason != "",
			"cancelReason", "required_companion", "Cancellation reason is required"),
		validate.Refine(!appointmentRequiresCheckIn(a.Status) || a.CheckInTime != "",
			"checkInTime", "required_companion", "Checked-in appointments must have a check-in time"),
	)
	if a.ScheduledEndDatetime != "" {
		start, _ := validate.ParseDateTime(a.ScheduledDatetime)
		end, _ := validate.ParseDateTime(a.ScheduledEndDatetime)
		errs = append(errs, validate.Collect(
			validate.Refine(end.After(start),
				"scheduledEndDatetime", "chronology", "End time must be after start time"),
		)...)
	}
	return errs
}

func appointmentRequiresCheckIn(s AppointmentStatus) bool {
	switch s {
	case AppointmentStatusCheckedIn, AppointmentStatusInProgress, AppointmentStatusCompleted:
		return true
	}
	return false
}

// CreateAppointmentRequest carries the writable subset of appointment
// fields. DurationMinutes is optional; the end-time helper fills in the
// type's default.
type CreateAppointmentRequest struct {
	PatientID         string          `json:"patientId"`
	ProviderID        string          `json:"providerId"`
	LocationID        string          `json:"locationId"`
	Type              AppointmentType `json:"type"`
	ScheduledDatetime string          `json:"scheduledDatetime"`
	DurationMinutes   int             `json:"durationMinutes,omitempty"`
	Notes             string          `json:"notes,omitempty"`
}

// CreateAppointmentRequestSchema validates appointment creation payloads.
var CreateAppointmentRequestSchema validate.Schema[CreateAppointmentRequest] = validate.SchemaFunc[CreateAppointmentRequest](
	func(r CreateAppointmentRequest) validate.Violations {
		return validate.Collect(
			validate.UUID("patientId", r.PatientID),
			validate.UUID("providerId", r.ProviderID),
			validate.UUID("locationId", r.LocationID),
			validate.OneOf("type", string(r.Type),
				string(AppointmentTypeNewPatient), string(AppointmentTypeFollowUp), string(AppointmentTypePhysical),
				string(AppointmentTypeProcedure), string(AppointmentTypeTelehealth)),
			validate.DateTime("scheduledDatetime", r.ScheduledDatetime),
			validate.Min("durationMinutes", float64(r.DurationMinutes), 0),
		)
	})

// UpdateAppointmentRequest is the create request with every field optional
// plus the record identifier.
type UpdateAppointmentRequest struct {
	ID                string           `json:"id"`
	ProviderID        *string          `json:"providerId,omitempty"`
	LocationID        *string          `json:"locationId,omitempty"`
	Type              *AppointmentType `json:"type,omitempty"`
	ScheduledDatetime *string          `json:"scheduledDatetime,omitempty"`
	DurationMinutes   *int             `json:"durationMinutes,omitempty"`
	Notes             *string          `json:"notes,omitempty"`
}

// UpdateAppointmentRequestSchema reuses the create-request field rules over
// the fields present on the partial update.
var UpdateAppointmentRequestSchema validate.Schema[UpdateAppointmentRequest] = validate.SchemaFunc[UpdateAppointmentRequest](
	func(r UpdateAppointmentRequest) validate.Violations {
		return validate.Collect(
			validate.UUID("id", r.ID),
			validate.Optional(r.ProviderID, func(v string) *validate.Violation {
				return validate.UUID("providerId", v)
			}),
			validate.Optional(r.LocationID, func(v string) *validate.Violation {
				return validate.UUID("locationId", v)
			}),
			validate.Optional(r.Type, func(v AppointmentType) *validate.Violation {
				return validate.OneOf("type", string(v),
					string(AppointmentTypeNewPatient), string(AppointmentTypeFollowUp), string(AppointmentTypePhysical),
					string(AppointmentTypeProcedure), string(AppointmentTypeTelehealth))
			}),
			validate.Optional(r.ScheduledDatetime, func(v string) *validate.Violation {
				return validate.DateTime("scheduledDatetime", v)
			}),
			validate.Optional(r.DurationMinutes, func(v int) *validate.Violation {
				return validate.Positive("durationMinutes", float64(v))
			}),
		)
	})

// CancelAppointmentRequest cancels a booked slot.
type CancelAppointmentRequest struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// CancelAppointmentRequestSchema requires a non-empty cancellation reason.
var CancelAppointmentRequestSchema validate.Schema[CancelAppointmentRequest] = validate.SchemaFunc[CancelAppointmentRequest](
	func(r CancelAppointmentRequest) validate.Violations {
		return validate.Collect(
			validate.UUID("id", r.ID),
			validate.NonEmpty("reason", r.Reason, "Cancellation reason is required"),
		)
	})

// CheckInAppointmentRequest marks patient arrival.
type CheckInAppointmentRequest struct {
	ID          string `json:"id"`
	CheckInTime string `json:"checkInTime"`
}

// CheckInAppointmentRequestSchema validates check-in payloads.
var CheckInAppointmentRequestSchema validate.Schema[CheckInAppointmentRequest] = validate.SchemaFunc[CheckInAppointmentRequest](
	func(r CheckInAppointmentRequest) validate.Violations {
		return validate.Collect(
			validate.UUID("id", r.ID),
			validate.DateTime("checkInTime", r.CheckInTime),
		)
	})
