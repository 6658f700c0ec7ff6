package billing

import (
	"fmt"
	"math"

	"luminahealth.io/client-go/pkg/validate"
)

// amountTolerance is the rounding slack allowed on derived monetary fields.
const amountTolerance = 0.01

// InvoiceStatus enumerates invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusIssued        InvoiceStatus = "issued"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusVoid          InvoiceStatus = "void"
)

// LineItem is one billed service line. GrossAmount is derived on the server
// as quantity x unit price.
type LineItem struct {
	Description string  `json:"description"`
	CPTCode     string  `json:"cptCode,omitempty"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	GrossAmount float64 `json:"grossAmount"`
}

// Invoice is a billing snapshot with server-derived totals.
type Invoice struct {
	ID          string        `json:"id"`
	PatientID   string        `json:"patientId"`
	VisitID     string        `json:"visitId,omitempty"`
	Status      InvoiceStatus `json:"status"`
	LineItems   []LineItem    `json:"lineItems"`
	TotalAmount float64       `json:"totalAmount"`
	PaidAmount  float64       `json:"paidAmount"`
	Balance     float64       `json:"balance"`
	Currency    string        `json:"currency"`
	IssuedAt    string        `json:"issuedAt,omitempty"`
	VoidReason  string        `json:"voidReason,omitempty"`
}

// InvoiceSchema validates invoices returned by the server, enforcing the
// derived-field identities within the monetary tolerance.
var InvoiceSchema validate.Schema[Invoice] = validate.SchemaFunc[Invoice](validateInvoice)

func validateInvoice(inv Invoice) validate.Violations {
	errs := validate.Collect(
		validate.UUID("id", inv.ID),
		validate.UUID("patientId", inv.PatientID),
		validate.OneOf("status", string(inv.Status),
			string(InvoiceStatusDraft), string(InvoiceStatusIssued), string(InvoiceStatusPartiallyPaid),
			string(InvoiceStatusPaid), string(InvoiceStatusVoid)),
		validate.CurrencyCode("currency", inv.Currency),
		validate.Min("paidAmount", inv.PaidAmount, 0),
	)
	if inv.VisitID != "" {
		errs = append(errs, validate.Collect(validate.UUID("visitId", inv.VisitID))...)
	}
	if inv.IssuedAt != "" {
		errs = append(errs, validate.Collect(validate.DateTime("issuedAt", inv.IssuedAt))...)
	}
	for i, li := range inv.LineItems {
		errs = append(errs, validateLineItemFields(lineItemPath(i), li)...)
	}
	if len(errs) > 0 {
		return errs
	}

	// Derived-field cross-checks run only once the base shape is sound.
	var sum float64
	for i, li := range inv.LineItems {
		sum += li.GrossAmount
		errs = append(errs, validate.Collect(
			validate.Refine(math.Abs(li.GrossAmount-li.Quantity*li.UnitPrice) < amountTolerance,
				lineItemPath(i)+".grossAmount", "derived_mismatch",
				"Gross amount must equal quantity times unit price"),
		)...)
	}
	errs = append(errs, validate.Collect(
		validate.Refine(len(inv.LineItems) == 0 || math.Abs(inv.TotalAmount-sum) < amountTolerance,
			"totalAmount", "derived_mismatch", "Total must equal the sum of line gross amounts"),
		validate.Refine(math.Abs(inv.Balance-(inv.TotalAmount-inv.PaidAmount)) < amountTolerance,
			"balance", "derived_mismatch", "Balance must equal total minus paid amount"),
		validate.Refine(inv.Status != InvoiceStatusVoid || inv.VoidReason != "",
			"voidReason", "required_companion", "Void invoices must have a reason"),
	)...)
	return errs
}

func validateLineItemFields(path string, li LineItem) validate.Violations {
	return validate.Collect(
		validate.NonEmpty(path+".description", li.Description, "Description is required"),
		validate.Positive(path+".quantity", li.Quantity),
		validate.Min(path+".unitPrice", li.UnitPrice, 0),
	)
}

func lineItemPath(i int) string {
	return fmt.Sprintf("lineItems[%d]", i)
}

// CreateInvoiceRequest carries the writable subset of invoice fields.
// Totals are derived server-side and are not writable.
type CreateInvoiceRequest struct {
	PatientID string           `json:"patientId"`
	VisitID   string           `json:"visitId,omitempty"`
	Currency  string           `json:"currency"`
	LineItems []CreateLineItem `json:"lineItems"`
}

// CreateLineItem is the writable projection of a line item.
type CreateLineItem struct {
	Description string  `json:"description"`
	CPTCode     string  `json:"cptCode,omitempty"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

// CreateInvoiceRequestSchema validates invoice creation payloads.
var CreateInvoiceRequestSchema validate.Schema[CreateInvoiceRequest] = validate.SchemaFunc[CreateInvoiceRequest](
	func(r CreateInvoiceRequest) validate.Violations {
		errs := validate.Collect(
			validate.UUID("patientId", r.PatientID),
			validate.CurrencyCode("currency", r.Currency),
		)
		if r.VisitID != "" {
			errs = append(errs, validate.Collect(validate.UUID("visitId", r.VisitID))...)
		}
		if len(r.LineItems) == 0 {
			errs = append(errs, validate.Collect(
				validate.NonEmpty("lineItems", "", "At least one line item is required"),
			)...)
		}
		for i, li := range r.LineItems {
			path := lineItemPath(i)
			errs = append(errs, validate.Collect(
				validate.NonEmpty(path+".description", li.Description, "Description is required"),
				validate.Positive(path+".quantity", li.Quantity),
				validate.Min(path+".unitPrice", li.UnitPrice, 0),
			)...)
		}
		return errs
	})

// VoidInvoiceRequest voids an issued invoice.
type VoidInvoiceRequest struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// VoidInvoiceRequestSchema requires a reason for every void.
var VoidInvoiceRequestSchema validate.Schema[VoidInvoiceRequest] = validate.SchemaFunc[VoidInvoiceRequest](
	func(r VoidInvoiceRequest) validate.Violations {
		return validate.Collect(
			validate.UUID("id", r.ID),
			validate.NonEmpty("reason", r.Reason, "Void reason is required"),
		)
	})
