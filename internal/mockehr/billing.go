package mockehr

import (
	"math"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"luminahealth.io/client-go/pkg/billing"
)

func (s *Server) listInvoices(w http.ResponseWriter, r *http.Request) {
	limit, offset := paging(r)
	s.store.mu.Lock()
	items := make([]billing.Invoice, 0, len(s.store.invoices))
	for _, inv := range s.store.invoices {
		if matchFilter(r, "patientId", inv.PatientID) && matchFilter(r, "status", string(inv.Status)) {
			items = append(items, inv)
		}
	}
	s.store.mu.Unlock()
	sortByID(items, func(inv billing.Invoice) string { return inv.IssuedAt + inv.ID })
	writeData(w, http.StatusOK, page(items, limit, offset))
}

func (s *Server) getInvoice(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.store.mu.Lock()
	inv, ok := s.store.invoices[id]
	s.store.mu.Unlock()
	if !ok {
		notFound(w, "Invoice")
		return
	}
	writeData(w, http.StatusOK, inv)
}

func (s *Server) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req billing.CreateInvoiceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := billing.CreateInvoiceRequestSchema.Validate(req); len(errs) > 0 {
		writeViolations(w, errs)
		return
	}
	lines := make([]billing.LineItem, 0, len(req.LineItems))
	total := 0.0
	for _, li := range req.LineItems {
		gross := round2(li.Quantity * li.UnitPrice)
		lines = append(lines, billing.LineItem{
			Description: li.Description,
			CPTCode:     li.CPTCode,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			GrossAmount: gross,
		})
		total += gross
	}
	total = round2(total)
	inv := billing.Invoice{
		ID:          uuid.NewString(),
		PatientID:   req.PatientID,
		VisitID:     req.VisitID,
		Status:      billing.InvoiceStatusIssued,
		LineItems:   lines,
		TotalAmount: total,
		Balance:     total,
		Currency:    req.Currency,
		IssuedAt:    s.store.timestamp(),
	}
	s.store.mu.Lock()
	s.store.invoices[inv.ID] = inv
	s.store.mu.Unlock()
	log.Info().Str("invoiceId", inv.ID).Float64("total", total).Msg("Invoice issued")
	writeData(w, http.StatusCreated, inv)
}

func (s *Server) voidInvoice(w http.ResponseWriter, r *http.Request) {
	var req billing.VoidInvoiceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.ID = mux.Vars(r)["id"]
	if errs := billing.VoidInvoiceRequestSchema.Validate(req); len(errs) > 0 {
		writeViolations(w, errs)
		return
	}
	s.store.mu.Lock()
	inv, ok := s.store.invoices[req.ID]
	if !ok {
		s.store.mu.Unlock()
		notFound(w, "Invoice")
		return
	}
	inv.Status = billing.InvoiceStatusVoid
	inv.VoidReason = req.Reason
	s.store.invoices[inv.ID] = inv
	s.store.mu.Unlock()
	writeData(w, http.StatusOK, inv)
}

func (s *Server) listPayments(w http.ResponseWriter, r *http.Request) {
	limit, offset := paging(r)
	s.store.mu.Lock()
	items := make([]billing.Payment, 0, len(s.store.payments))
	for _, p := range s.store.payments {
		if matchFilter(r, "invoiceId", p.InvoiceID) {
			items = append(items, p)
		}
	}
	s.store.mu.Unlock()
	sortByID(items, func(p billing.Payment) string { return p.PaidAt + p.ID })
	writeData(w, http.StatusOK, page(items, limit, offset))
}

func (s *Server) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req billing.RecordPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := billing.RecordPaymentRequestSchema.Validate(req); len(errs) > 0 {
		writeViolations(w, errs)
		return
	}
	s.store.mu.Lock()
	inv, ok := s.store.invoices[req.InvoiceID]
	if !ok {
		s.store.mu.Unlock()
		notFound(w, "Invoice")
		return
	}
	if inv.Status == billing.InvoiceStatusVoid {
		s.store.mu.Unlock()
		writeError(w, http.StatusUnprocessableEntity, "invoice_void", "Cannot pay a void invoice")
		return
	}
	p := billing.Payment{
		ID:        uuid.NewString(),
		InvoiceID: req.InvoiceID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Method:    req.Method,
		Detail:    req.Detail,
		Status:    billing.PaymentStatusSettled,
		PaidAt:    s.store.timestamp(),
	}
	s.store.payments[p.ID] = p

	// Settling a payment moves the invoice's derived fields with it.
	inv.PaidAmount = round2(inv.PaidAmount + req.Amount)
	inv.Balance = round2(inv.TotalAmount - inv.PaidAmount)
	if inv.Balance <= 0 {
		inv.Status = billing.InvoiceStatusPaid
	} else {
		inv.Status = billing.InvoiceStatusPartiallyPaid
	}
	s.store.invoices[inv.ID] = inv
	s.store.mu.Unlock()

	log.Info().
		Str("paymentId", p.ID).
		Str("invoiceId", inv.ID).
		Float64("amount", req.Amount).
		Msg("Payment settled")
	writeData(w, http.StatusCreated, p)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
