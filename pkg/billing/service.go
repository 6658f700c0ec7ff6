package billing

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"luminahealth.io/client-go/pkg/api"
	"luminahealth.io/client-go/pkg/querycache"
)

var (
	invoicesKey = querycache.NewKey("billing", "invoices")
	paymentsKey = querycache.NewKey("billing", "payments")
)

// InvoiceDetailKey is the per-identifier detail key.
func InvoiceDetailKey(id string) querycache.Key {
	return invoicesKey.Child("detail", id)
}

// InvoicesByPatientKey keys the patient's invoice list.
func InvoicesByPatientKey(patientID string) querycache.Key {
	return invoicesKey.Child("byPatient", patientID)
}

// PaymentsByInvoiceKey keys the payments recorded against an invoice.
func PaymentsByInvoiceKey(invoiceID string) querycache.Key {
	return paymentsKey.Child("byInvoice", invoiceID)
}

// Service binds invoices and payments to the transport and the query
// cache, with the same validate-first, invalidate-in-batch discipline as
// the clinical bindings.
type Service struct {
	client *api.Client
	cache  *querycache.Cache
	now    func() time.Time
}

// NewService creates the billing service over a transport and cache.
func NewService(client *api.Client, cache *querycache.Cache) *Service {
	return &Service{
		client: client,
		cache:  cache,
		now:    time.Now,
	}
}

// Invoice returns one invoice by identifier.
func (s *Service) Invoice(ctx context.Context, id string) (Invoice, error) {
	return querycache.Fetch(s.cache, ctx, InvoiceDetailKey(id), querycache.StaleDefault,
		func(ctx context.Context) (Invoice, error) {
			return api.GetJSON(ctx, s.client, api.DetailPath(api.PathInvoices, id), nil, InvoiceSchema)
		})
}

// InvoicesByPatient returns the patient's invoices.
func (s *Service) InvoicesByPatient(ctx context.Context, patientID string, params api.ListParams) (api.List[Invoice], error) {
	params = params.WithFilter("patientId", patientID)
	return querycache.Fetch(s.cache, ctx, InvoicesByPatientKey(patientID), querycache.StaleDefault,
		func(ctx context.Context) (api.List[Invoice], error) {
			return api.GetList(ctx, s.client, api.PathInvoices, params.Values(), InvoiceSchema)
		})
}

// PaymentsByInvoice returns the payments recorded against an invoice.
func (s *Service) PaymentsByInvoice(ctx context.Context, invoiceID string) (api.List[Payment], error) {
	params := api.ListParams{}.WithFilter("invoiceId", invoiceID)
	return querycache.Fetch(s.cache, ctx, PaymentsByInvoiceKey(invoiceID), querycache.StaleDefault,
		func(ctx context.Context) (api.List[Payment], error) {
			return api.GetList(ctx, s.client, api.PathPayments, params.Values(), PaymentSchema)
		})
}

// CreateInvoice issues a new invoice. Validation runs locally before the
// network call.
func (s *Service) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (Invoice, error) {
	if errs := CreateInvoiceRequestSchema.Validate(req); len(errs) > 0 {
		return Invoice{}, errs
	}
	inv, err := api.PostJSON(ctx, s.client, api.PathInvoices, req, InvoiceSchema)
	if err != nil {
		return Invoice{}, err
	}
	s.cache.Put(InvoiceDetailKey(inv.ID), inv)
	s.cache.Invalidate(InvoicesByPatientKey(inv.PatientID))
	log.Info().Str("invoiceId", inv.ID).Str("patientId", inv.PatientID).Msg("Invoice created")
	return inv, nil
}

// VoidInvoice voids an invoice with a documented reason.
func (s *Service) VoidInvoice(ctx context.Context, req VoidInvoiceRequest) (Invoice, error) {
	if errs := VoidInvoiceRequestSchema.Validate(req); len(errs) > 0 {
		return Invoice{}, errs
	}
	inv, err := api.PostJSON(ctx, s.client, api.ActionPath(api.PathInvoices, req.ID, "void"), req, InvoiceSchema)
	if err != nil {
		return Invoice{}, err
	}
	s.cache.Put(InvoiceDetailKey(inv.ID), inv)
	s.cache.Invalidate(InvoicesByPatientKey(inv.PatientID))
	log.Info().Str("invoiceId", inv.ID).Msg("Invoice voided")
	return inv, nil
}

// RecordPayment records a payment against an invoice. The invoice detail
// and the payment list are invalidated together because the invoice's
// paid amount and balance changed with it.
func (s *Service) RecordPayment(ctx context.Context, req RecordPaymentRequest) (Payment, error) {
	if errs := RecordPaymentRequestSchema.Validate(req); len(errs) > 0 {
		return Payment{}, errs
	}
	p, err := api.PostJSON(ctx, s.client, api.PathPayments, req, PaymentSchema)
	if err != nil {
		return Payment{}, err
	}
	s.cache.Invalidate(
		PaymentsByInvoiceKey(p.InvoiceID),
		InvoiceDetailKey(p.InvoiceID),
	)
	s.cache.InvalidatePrefix(invoicesKey.Child("byPatient"))
	log.Info().
		Str("paymentId", p.ID).
		Str("invoiceId", p.InvoiceID).
		Str("method", string(p.Method)).
		Msg("Payment recorded")
	return p, nil
}
