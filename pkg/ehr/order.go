package ehr

import (
	"luminahealth.io/client-go/pkg/validate"
)

// OrderType enumerates orderable services.
type OrderType string

const (
	OrderTypeLab        OrderType = "lab"
	OrderTypeImaging    OrderType = "imaging"
	OrderTypeMedication OrderType = "medication"
	OrderTypeProcedure  OrderType = "procedure"
	OrderTypeReferral   OrderType = "referral"
)

// OrderUrgency enumerates clinical priority.
type OrderUrgency string

const (
	OrderUrgencyRoutine OrderUrgency = "routine"
	OrderUrgencyUrgent  OrderUrgency = "urgent"
	OrderUrgencySTAT    OrderUrgency = "stat"
)

// OrderStatus enumerates order lifecycle states.
type OrderStatus string

const (
	OrderStatusDraft        OrderStatus = "draft"
	OrderStatusActive       OrderStatus = "active"
	OrderStatusInProgress   OrderStatus = "in_progress"
	OrderStatusCompleted    OrderStatus = "completed"
	OrderStatusDiscontinued OrderStatus = "discontinued"
)

// Order is a clinical order snapshot.
type Order struct {
	ID                string       `json:"id"`
	PatientID         string       `json:"patientId"`
	VisitID           string       `json:"visitId,omitempty"`
	Type              OrderType    `json:"type"`
	Urgency           OrderUrgency `json:"urgency"`
	Status            OrderStatus  `json:"status"`
	Description       string       `json:"description"`
	StartTime         string       `json:"startTime"`
	StopTime          string       `json:"stopTime,omitempty"`
	SignedBy          string       `json:"signedBy,omitempty"`
	SignedAt          string       `json:"signedAt,omitempty"`
	DiscontinuedAt    string       `json:"discontinuedAt,omitempty"`
	DiscontinueReason string       `json:"discontinueReason,omitempty"`
}

// OrderSchema validates order records returned by the server.
var OrderSchema validate.Schema[Order] = validate.SchemaFunc[Order](validateOrder)

func validateOrder(o Order) validate.Violations {
	errs := validate.Collect(
		validate.UUID("id", o.ID),
		validate.UUID("patientId", o.PatientID),
		optionalUUID("visitId", o.VisitID),
		validate.OneOf("type", string(o.Type),
			string(OrderTypeLab), string(OrderTypeImaging), string(OrderTypeMedication),
			string(OrderTypeProcedure), string(OrderTypeReferral)),
		validate.OneOf("urgency", string(o.Urgency),
			string(OrderUrgencyRoutine), string(OrderUrgencyUrgent), string(OrderUrgencySTAT)),
		validate.OneOf("status", string(o.Status),
			string(OrderStatusDraft), string(OrderStatusActive), string(OrderStatusInProgress),
			string(OrderStatusCompleted), string(OrderStatusDiscontinued)),
		validate.NonEmpty("description", o.Description, "Order description is required"),
		validate.DateTime("startTime", o.StartTime),
		optionalDateTime("stopTime", o.StopTime),
		optionalDateTime("signedAt", o.SignedAt),
		optionalDateTime("discontinuedAt", o.DiscontinuedAt),
	)
	if len(errs) > 0 {
		return errs
	}

	errs = validate.Collect(
		validate.Refine(o.Status != OrderStatusDiscontinued || o.DiscontinueReason != "",
			"discontinueReason", "required_companion", "Discontinued orders must have a reason"),
		validate.Refine(o.Status != OrderStatusDiscontinued || o.DiscontinuedAt != "",
			"discontinuedAt", "required_companion", "Discontinued orders must have a discontinuation time"),
	)
	if o.StopTime != "" {
		start, _ := validate.ParseDateTime(o.StartTime)
		stop, _ := validate.ParseDateTime(o.StopTime)
		errs = append(errs, validate.Collect(
			validate.Refine(stop.After(start),
				"stopTime", "chronology", "Stop time must be after start time"),
		)...)
	}
	return errs
}

// CreateOrderRequest carries the writable subset of order fields.
type CreateOrderRequest struct {
	PatientID   string       `json:"patientId"`
	VisitID     string       `json:"visitId,omitempty"`
	Type        OrderType    `json:"type"`
	Urgency     OrderUrgency `json:"urgency"`
	Description string       `json:"description"`
	StartTime   string       `json:"startTime"`
	StopTime    string       `json:"stopTime,omitempty"`
}

// CreateOrderRequestSchema validates order creation payloads.
var CreateOrderRequestSchema validate.Schema[CreateOrderRequest] = validate.SchemaFunc[CreateOrderRequest](
	func(r CreateOrderRequest) validate.Violations {
		errs := validate.Collect(
			validate.UUID("patientId", r.PatientID),
			optionalUUID("visitId", r.VisitID),
			validate.OneOf("type", string(r.Type),
				string(OrderTypeLab), string(OrderTypeImaging), string(OrderTypeMedication),
				string(OrderTypeProcedure), string(OrderTypeReferral)),
			validate.OneOf("urgency", string(r.Urgency),
				string(OrderUrgencyRoutine), string(OrderUrgencyUrgent), string(OrderUrgencySTAT)),
			validate.NonEmpty("description", r.Description, "Order description is required"),
			validate.DateTime("startTime", r.StartTime),
			optionalDateTime("stopTime", r.StopTime),
		)
		if len(errs) > 0 {
			return errs
		}
		if r.StopTime != "" {
			start, _ := validate.ParseDateTime(r.StartTime)
			stop, _ := validate.ParseDateTime(r.StopTime)
			errs = validate.Collect(
				validate.Refine(stop.After(start),
					"stopTime", "chronology", "Stop time must be after start time"),
			)
		}
		return errs
	})

// DiscontinueOrderRequest stops an active order.
type DiscontinueOrderRequest struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// DiscontinueOrderRequestSchema requires a reason for every discontinuation.
var DiscontinueOrderRequestSchema validate.Schema[DiscontinueOrderRequest] = validate.SchemaFunc[DiscontinueOrderRequest](
	func(r DiscontinueOrderRequest) validate.Violations {
		return validate.Collect(
			validate.UUID("id", r.ID),
			validate.NonEmpty("reason", r.Reason, "Discontinuation reason is required"),
		)
	})
