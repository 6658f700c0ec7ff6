package billing

import (
	"luminahealth.io/client-go/pkg/validate"
)

// PaymentMethod discriminates the payment detail union.
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodMobile PaymentMethod = "mobile"
	PaymentMethodBank   PaymentMethod = "bank"
	PaymentMethodCheque PaymentMethod = "cheque"
)

// PaymentStatus enumerates settlement states.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusSettled  PaymentStatus = "settled"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// CardDetail is the card variant of the payment detail union.
type CardDetail struct {
	Last4   string `json:"last4"`
	Network string `json:"network"`
}

// MobileDetail is the mobile-money variant.
type MobileDetail struct {
	Provider    string `json:"provider"`
	PhoneNumber string `json:"phoneNumber"`
}

// BankDetail is the bank-transfer variant.
type BankDetail struct {
	BankName  string `json:"bankName"`
	Reference string `json:"reference"`
}

// ChequeDetail is the cheque variant.
type ChequeDetail struct {
	ChequeNumber string `json:"chequeNumber"`
	BankName     string `json:"bankName"`
}

// PaymentDetail is a tagged variant discriminated by Kind; exactly the
// variant matching Kind must be populated.
type PaymentDetail struct {
	Kind   PaymentMethod `json:"kind"`
	Card   *CardDetail   `json:"card,omitempty"`
	Mobile *MobileDetail `json:"mobile,omitempty"`
	Bank   *BankDetail   `json:"bank,omitempty"`
	Cheque *ChequeDetail `json:"cheque,omitempty"`
}

// Payment is a posted payment snapshot.
type Payment struct {
	ID        string        `json:"id"`
	InvoiceID string        `json:"invoiceId"`
	Amount    float64       `json:"amount"`
	Currency  string        `json:"currency"`
	Method    PaymentMethod `json:"method"`
	Detail    PaymentDetail `json:"detail"`
	Status    PaymentStatus `json:"status"`
	PaidAt    string        `json:"paidAt"`
}

// PaymentSchema validates payments returned by the server, including the
// discriminated detail union.
var PaymentSchema validate.Schema[Payment] = validate.SchemaFunc[Payment](validatePayment)

func validatePayment(p Payment) validate.Violations {
	errs := validate.Collect(
		validate.UUID("id", p.ID),
		validate.UUID("invoiceId", p.InvoiceID),
		validate.Positive("amount", p.Amount),
		validate.CurrencyCode("currency", p.Currency),
		validate.OneOf("method", string(p.Method),
			string(PaymentMethodCard), string(PaymentMethodMobile),
			string(PaymentMethodBank), string(PaymentMethodCheque)),
		validate.OneOf("status", string(p.Status),
			string(PaymentStatusPending), string(PaymentStatusSettled),
			string(PaymentStatusFailed), string(PaymentStatusRefunded)),
		validate.DateTime("paidAt", p.PaidAt),
	)
	if len(errs) > 0 {
		return errs
	}

	errs = validate.Collect(
		validate.Refine(p.Detail.Kind == p.Method,
			"detail.kind", "union_mismatch", "Detail kind must match the payment method"),
	)
	errs = append(errs, validatePaymentDetail(p.Detail)...)
	return errs
}

func validatePaymentDetail(d PaymentDetail) validate.Violations {
	variants := 0
	if d.Card != nil {
		variants++
	}
	if d.Mobile != nil {
		variants++
	}
	if d.Bank != nil {
		variants++
	}
	if d.Cheque != nil {
		variants++
	}
	if variants != 1 {
		return validate.Collect(
			validate.Refine(false, "detail", "union_mismatch", "Exactly one detail variant must be set"),
		)
	}

	switch d.Kind {
	case PaymentMethodCard:
		if d.Card == nil {
			return unionMismatch("detail.card")
		}
		return validate.Collect(
			validate.NonEmpty("detail.card.last4", d.Card.Last4, "Card last4 is required"),
			validate.NonEmpty("detail.card.network", d.Card.Network, "Card network is required"),
		)
	case PaymentMethodMobile:
		if d.Mobile == nil {
			return unionMismatch("detail.mobile")
		}
		return validate.Collect(
			validate.NonEmpty("detail.mobile.provider", d.Mobile.Provider, "Mobile provider is required"),
			validate.Phone("detail.mobile.phoneNumber", d.Mobile.PhoneNumber),
		)
	case PaymentMethodBank:
		if d.Bank == nil {
			return unionMismatch("detail.bank")
		}
		return validate.Collect(
			validate.NonEmpty("detail.bank.bankName", d.Bank.BankName, "Bank name is required"),
			validate.NonEmpty("detail.bank.reference", d.Bank.Reference, "Transfer reference is required"),
		)
	case PaymentMethodCheque:
		if d.Cheque == nil {
			return unionMismatch("detail.cheque")
		}
		return validate.Collect(
			validate.NonEmpty("detail.cheque.chequeNumber", d.Cheque.ChequeNumber, "Cheque number is required"),
			validate.NonEmpty("detail.cheque.bankName", d.Cheque.BankName, "Bank name is required"),
		)
	}
	return nil
}

func unionMismatch(path string) validate.Violations {
	return validate.Collect(
		validate.Refine(false, path, "union_mismatch", "Detail variant must match the declared kind"),
	)
}

// RecordPaymentRequest posts a payment against an invoice.
type RecordPaymentRequest struct {
	InvoiceID string        `json:"invoiceId"`
	Amount    float64       `json:"amount"`
	Currency  string        `json:"currency"`
	Method    PaymentMethod `json:"method"`
	Detail    PaymentDetail `json:"detail"`
}

// RecordPaymentRequestSchema validates payment submissions with the same
// union rules as server records.
var RecordPaymentRequestSchema validate.Schema[RecordPaymentRequest] = validate.SchemaFunc[RecordPaymentRequest](
	func(r RecordPaymentRequest) validate.Violations {
		errs := validate.Collect(
			validate.UUID("invoiceId", r.InvoiceID),
			validate.Positive("amount", r.Amount),
			validate.CurrencyCode("currency", r.Currency),
			validate.OneOf("method", string(r.Method),
				string(PaymentMethodCard), string(PaymentMethodMobile),
				string(PaymentMethodBank), string(PaymentMethodCheque)),
		)
		if len(errs) > 0 {
			return errs
		}
		errs = validate.Collect(
			validate.Refine(r.Detail.Kind == r.Method,
				"detail.kind", "union_mismatch", "Detail kind must match the payment method"),
		)
		errs = append(errs, validatePaymentDetail(r.Detail)...)
		return errs
	})
