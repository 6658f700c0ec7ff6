package billing

import (
	"encoding/json"
	"reflect"
	"testing"
)

const (
	testInvoiceID = "ac2f5718-6e4d-40bb-af52-3d9e41807f6d"
	testPatientID = "7f9c24e5-3b1a-4d88-9c2f-0a6b1e5d4c3a"
)

func TestBillingRecordsRoundTripThroughJSON(t *testing.T) {
	tests := []struct {
		name string
		v    interface{}
		back func([]byte) (interface{}, error)
	}{
		{"invoice", validInvoice(), func(data []byte) (interface{}, error) {
			var inv Invoice
			err := json.Unmarshal(data, &inv)
			return inv, err
		}},
		{"card payment", validCardPayment(), func(data []byte) (interface{}, error) {
			var p Payment
			err := json.Unmarshal(data, &p)
			return p, err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.v)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			back, err := tt.back(data)
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !reflect.DeepEqual(tt.v, back) {
				t.Errorf("round trip changed the value:\n before %+v\n after  %+v", tt.v, back)
			}
		})
	}
}

func validInvoice() Invoice {
	return Invoice{
		ID:        testInvoiceID,
		PatientID: testPatientID,
		Status:    InvoiceStatusIssued,
		LineItems: []LineItem{
			{Description: "Office visit", CPTCode: "99213", Quantity: 1, UnitPrice: 145, GrossAmount: 145},
			{Description: "Metabolic panel", CPTCode: "80048", Quantity: 2, UnitPrice: 32.5, GrossAmount: 65},
		},
		TotalAmount: 210,
		PaidAmount:  50,
		Balance:     160,
		Currency:    "USD",
		IssuedAt:    "2026-03-02T09:00:00Z",
	}
}

func TestInvoiceSchemaAcceptsConsistentAmounts(t *testing.T) {
	if errs := InvoiceSchema.Validate(validInvoice()); len(errs) != 0 {
		t.Fatalf("unexpected violations: %v", errs)
	}
}

func TestInvoiceSchemaToleratesSubCentDrift(t *testing.T) {
	inv := validInvoice()
	// Binary float arithmetic drifts below the cent tolerance.
	inv.LineItems[1].GrossAmount = 65.004
	inv.TotalAmount = 210.004
	inv.Balance = 160.004
	if errs := InvoiceSchema.Validate(inv); len(errs) != 0 {
		t.Errorf("drift below tolerance should pass, got %v", errs)
	}
}

func TestInvoiceSchemaDerivedFieldMismatches(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Invoice)
		path   string
	}{
		{"line gross off", func(i *Invoice) { i.LineItems[0].GrossAmount = 150 }, "lineItems[0].grossAmount"},
		{"total off", func(i *Invoice) { i.TotalAmount = 250; i.Balance = 200 }, "totalAmount"},
		{"balance off", func(i *Invoice) { i.Balance = 100 }, "balance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := validInvoice()
			tt.mutate(&inv)
			if errs := InvoiceSchema.Validate(inv); len(errs.At(tt.path)) == 0 {
				t.Errorf("expected violation at %s, got %v", tt.path, errs)
			}
		})
	}
}

func TestInvoiceSchemaVoidNeedsReason(t *testing.T) {
	inv := validInvoice()
	inv.Status = InvoiceStatusVoid
	if errs := InvoiceSchema.Validate(inv); len(errs.At("voidReason")) == 0 {
		t.Errorf("expected voidReason violation, got %v", errs)
	}

	inv.VoidReason = "Issued in error"
	if errs := InvoiceSchema.Validate(inv); len(errs) != 0 {
		t.Errorf("unexpected violations: %v", errs)
	}
}

func TestCreateInvoiceRequestSchema(t *testing.T) {
	req := CreateInvoiceRequest{
		PatientID: testPatientID,
		Currency:  "USD",
		LineItems: []CreateLineItem{
			{Description: "Office visit", Quantity: 1, UnitPrice: 145},
		},
	}
	if errs := CreateInvoiceRequestSchema.Validate(req); len(errs) != 0 {
		t.Fatalf("unexpected violations: %v", errs)
	}

	req.Currency = "usd"
	if errs := CreateInvoiceRequestSchema.Validate(req); len(errs.At("currency")) == 0 {
		t.Errorf("expected currency violation, got %v", errs)
	}

	req.Currency = "USD"
	req.LineItems = nil
	if errs := CreateInvoiceRequestSchema.Validate(req); len(errs.At("lineItems")) == 0 {
		t.Errorf("expected lineItems violation, got %v", errs)
	}
}
