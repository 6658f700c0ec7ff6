package billing

import (
	"testing"
)

const testRecordUUID = "bd3a6829-7f5e-41cc-b063-4eaf52918a7e"

func validCardPayment() Payment {
	return Payment{
		ID:        testRecordUUID,
		InvoiceID: testInvoiceID,
		Amount:    50,
		Currency:  "USD",
		Method:    PaymentMethodCard,
		Detail: PaymentDetail{
			Kind: PaymentMethodCard,
			Card: &CardDetail{Last4: "4242", Network: "visa"},
		},
		Status: PaymentStatusSettled,
		PaidAt: "2026-03-02T11:00:00Z",
	}
}

func TestPaymentSchemaAcceptsMatchingVariant(t *testing.T) {
	if errs := PaymentSchema.Validate(validCardPayment()); len(errs) != 0 {
		t.Fatalf("unexpected violations: %v", errs)
	}
}

func TestPaymentSchemaKindMustMatchMethod(t *testing.T) {
	p := validCardPayment()
	p.Detail.Kind = PaymentMethodBank
	if errs := PaymentSchema.Validate(p); len(errs.At("detail.kind")) == 0 {
		t.Errorf("expected detail.kind violation, got %v", errs)
	}
}

func TestPaymentSchemaExactlyOneVariant(t *testing.T) {
	p := validCardPayment()
	p.Detail.Bank = &BankDetail{BankName: "First National", Reference: "TX-100"}
	if errs := PaymentSchema.Validate(p); len(errs.At("detail")) == 0 {
		t.Errorf("expected detail violation for two variants, got %v", errs)
	}

	p = validCardPayment()
	p.Detail.Card = nil
	if errs := PaymentSchema.Validate(p); len(errs.At("detail")) == 0 {
		t.Errorf("expected detail violation for zero variants, got %v", errs)
	}
}

func TestPaymentSchemaVariantFields(t *testing.T) {
	tests := []struct {
		name   string
		detail PaymentDetail
		path   string
	}{
		{
			"card missing last4",
			PaymentDetail{Kind: PaymentMethodCard, Card: &CardDetail{Network: "visa"}},
			"detail.card.last4",
		},
		{
			"mobile bad phone",
			PaymentDetail{Kind: PaymentMethodMobile, Mobile: &MobileDetail{Provider: "mpesa", PhoneNumber: "nope"}},
			"detail.mobile.phoneNumber",
		},
		{
			"bank missing reference",
			PaymentDetail{Kind: PaymentMethodBank, Bank: &BankDetail{BankName: "First National"}},
			"detail.bank.reference",
		},
		{
			"cheque missing number",
			PaymentDetail{Kind: PaymentMethodCheque, Cheque: &ChequeDetail{BankName: "First National"}},
			"detail.cheque.chequeNumber",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validCardPayment()
			p.Method = tt.detail.Kind
			p.Detail = tt.detail
			if errs := PaymentSchema.Validate(p); len(errs.At(tt.path)) == 0 {
				t.Errorf("expected violation at %s, got %v", tt.path, errs)
			}
		})
	}
}

func TestRecordPaymentRequestSchema(t *testing.T) {
	req := RecordPaymentRequest{
		InvoiceID: testInvoiceID,
		Amount:    50,
		Currency:  "USD",
		Method:    PaymentMethodMobile,
		Detail: PaymentDetail{
			Kind:   PaymentMethodMobile,
			Mobile: &MobileDetail{Provider: "mpesa", PhoneNumber: "+254700123456"},
		},
	}
	if errs := RecordPaymentRequestSchema.Validate(req); len(errs) != 0 {
		t.Fatalf("unexpected violations: %v", errs)
	}

	req.Amount = 0
	if errs := RecordPaymentRequestSchema.Validate(req); len(errs.At("amount")) == 0 {
		t.Errorf("expected amount violation, got %v", errs)
	}
}
