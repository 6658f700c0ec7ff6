package validate

import (
	"errors"
	"testing"
)

type widget struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var widgetSchema = SchemaFunc[widget](func(w widget) Violations {
	return Collect(
		UUID("id", w.ID),
		NonEmpty("name", w.Name, "Name is required"),
	)
})

func TestIsPredicate(t *testing.T) {
	isWidget := Is[widget](widgetSchema)

	if !isWidget(widget{ID: "7f9c24e5-3b1a-4d88-9c2f-0a6b1e5d4c3a", Name: "probe"}) {
		t.Error("Expected valid widget to pass")
	}
	if isWidget(widget{ID: "bad", Name: "probe"}) {
		t.Error("Expected invalid widget to fail")
	}
}

func TestMustAssertion(t *testing.T) {
	mustWidget := Must[widget](widgetSchema)

	valid := widget{ID: "7f9c24e5-3b1a-4d88-9c2f-0a6b1e5d4c3a", Name: "probe"}
	got, err := mustWidget(valid)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != valid {
		t.Error("Expected value returned unchanged")
	}

	_, err = mustWidget(widget{ID: "bad"})
	if err == nil {
		t.Fatal("Expected error for invalid widget")
	}
	var errs Violations
	if !errors.As(err, &errs) {
		t.Fatalf("Expected Violations, got %T", err)
	}
	if len(errs) != 2 {
		t.Errorf("Expected 2 violations, got %d", len(errs))
	}
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{
			name:    "Valid payload decodes",
			payload: `{"id":"7f9c24e5-3b1a-4d88-9c2f-0a6b1e5d4c3a","name":"probe"}`,
			wantErr: false,
		},
		{
			name:    "Shape mismatch is rejected",
			payload: `{"id":"7f9c24e5-3b1a-4d88-9c2f-0a6b1e5d4c3a","name":""}`,
			wantErr: true,
		},
		{
			name:    "Malformed JSON is rejected",
			payload: `{"id":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeAndValidate[widget](widgetSchema, []byte(tt.payload))
			if tt.wantErr && err == nil {
				t.Error("Expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}
