package mockehr_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"luminahealth.io/client-go/internal/mockehr"
	"luminahealth.io/client-go/pkg/api"
	"luminahealth.io/client-go/pkg/authstore"
	"luminahealth.io/client-go/pkg/billing"
	"luminahealth.io/client-go/pkg/ehr"
	"luminahealth.io/client-go/pkg/querycache"
	"luminahealth.io/client-go/pkg/validate"
)

// stack wires the full client against an in-process mock backend.
type stack struct {
	srv     *httptest.Server
	client  *api.Client
	store   *authstore.Store
	cache   *querycache.Cache
	ehr     *ehr.Service
	billing *billing.Service
}

func newStack(t *testing.T) *stack {
	t.Helper()
	srv := httptest.NewServer(mockehr.NewServer("").Routes())
	t.Cleanup(srv.Close)

	client := api.New(api.Options{BaseURL: srv.URL})
	store, err := authstore.New(authstore.Config{
		Strategy:    authstore.StrategyToken,
		API:         authstore.NewHTTPAuthAPI(client),
		Credentials: authstore.NewMemoryCredentialStore(),
		Namespace:   "test",
	})
	if err != nil {
		t.Fatalf("authstore.New: %v", err)
	}
	client.SetTokenSource(store)

	cache := querycache.New(client.Timeout())
	return &stack{
		srv:     srv,
		client:  client,
		store:   store,
		cache:   cache,
		ehr:     ehr.NewService(client, cache),
		billing: billing.NewService(client, cache),
	}
}

func (s *stack) login(t *testing.T) {
	t.Helper()
	err := s.store.Login(context.Background(), authstore.Credentials{
		Username: mockehr.DemoUsername,
		Password: mockehr.DemoPassword,
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
}

func TestLoginAndListPatients(t *testing.T) {
	s := newStack(t)
	s.login(t)

	page, err := s.ehr.Patients(context.Background(), api.ListParams{})
	if err != nil {
		t.Fatalf("Patients: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("page = total %d, %d items", page.Total, len(page.Items))
	}

	p, err := s.ehr.Patient(context.Background(), mockehr.FixturePatientID)
	if err != nil {
		t.Fatalf("Patient: %v", err)
	}
	if p.MRN != "LMN001234" {
		t.Errorf("MRN = %s", p.MRN)
	}
}

func TestBadCredentialsRejected(t *testing.T) {
	s := newStack(t)
	err := s.store.Login(context.Background(), authstore.Credentials{
		Username: mockehr.DemoUsername,
		Password: "wrong",
	})
	if !api.IsUnauthorized(err) {
		t.Fatalf("Login error = %v, want 401", err)
	}
	if got := s.store.State(); got != authstore.StateUnauthenticated {
		t.Errorf("state = %s", got)
	}
}

func TestProtectedRoutesRequireBearerToken(t *testing.T) {
	s := newStack(t)

	resp, err := http.Get(s.srv.URL + api.PathPatients)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}

	// The SDK surfaces the same 401 without attempting a refresh.
	_, err = s.ehr.Patients(context.Background(), api.ListParams{})
	if !api.IsUnauthorized(err) {
		t.Errorf("Patients error = %v, want 401", err)
	}
}

func TestRefreshTokenRotatesOneShot(t *testing.T) {
	s := newStack(t)

	login := func() (access, refresh string) {
		t.Helper()
		body := strings.NewReader(`{"username":"drchen","password":"lumina-demo"}`)
		resp, err := http.Post(s.srv.URL+api.PathAuthLogin, "application/json", body)
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		defer resp.Body.Close()
		var env struct {
			Data struct {
				AccessToken  string `json:"accessToken"`
				RefreshToken string `json:"refreshToken"`
			} `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return env.Data.AccessToken, env.Data.RefreshToken
	}

	_, refresh := login()
	exchange := func() int {
		body := strings.NewReader(`{"refreshToken":"` + refresh + `"}`)
		resp, err := http.Post(s.srv.URL+api.PathAuthRefresh, "application/json", body)
		if err != nil {
			t.Fatalf("refresh: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if status := exchange(); status != http.StatusOK {
		t.Fatalf("first exchange status = %d", status)
	}
	if status := exchange(); status != http.StatusUnauthorized {
		t.Errorf("replayed exchange status = %d, want 401", status)
	}
}

func TestCreateAppointmentFillsTypeDefaultDuration(t *testing.T) {
	s := newStack(t)
	s.login(t)

	a, err := s.ehr.CreateAppointment(context.Background(), ehr.CreateAppointmentRequest{
		PatientID:         mockehr.FixturePatientID,
		ProviderID:        mockehr.FixtureProviderID,
		LocationID:        mockehr.FixtureLocationID,
		Type:              ehr.AppointmentTypeFollowUp,
		ScheduledDatetime: "2026-03-02T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}
	if a.DurationMinutes != 20 {
		t.Errorf("DurationMinutes = %d, want the follow-up default", a.DurationMinutes)
	}
	if a.ScheduledEndDatetime != "2026-03-02T10:20:00Z" {
		t.Errorf("ScheduledEndDatetime = %s", a.ScheduledEndDatetime)
	}
	if a.Status != ehr.AppointmentStatusScheduled {
		t.Errorf("Status = %s", a.Status)
	}
}

func TestCancelAppointmentValidatesBeforeNetwork(t *testing.T) {
	s := newStack(t)
	// Deliberately not signed in: the violation must surface before any
	// request goes out.
	_, err := s.ehr.CancelAppointment(context.Background(), ehr.CancelAppointmentRequest{
		ID: mockehr.FixturePatientID,
	})
	var errs validate.Violations
	if !errors.As(err, &errs) {
		t.Fatalf("error = %v, want Violations", err)
	}
	if len(errs.At("reason")) == 0 {
		t.Errorf("expected reason violation, got %v", errs)
	}
}

func TestSTATOrdersAndCriticalLabViews(t *testing.T) {
	s := newStack(t)
	s.login(t)

	stat, err := s.ehr.STATOrders(context.Background())
	if err != nil {
		t.Fatalf("STATOrders: %v", err)
	}
	if len(stat.Items) != 1 {
		t.Fatalf("stat orders = %d, want the seeded one", len(stat.Items))
	}
	if stat.Items[0].Urgency != ehr.OrderUrgencySTAT {
		t.Errorf("urgency = %s", stat.Items[0].Urgency)
	}

	labs, err := s.ehr.CriticalLabs(context.Background())
	if err != nil {
		t.Fatalf("CriticalLabs: %v", err)
	}
	if len(labs.Items) != 1 {
		t.Fatalf("critical labs = %d, want the seeded one", len(labs.Items))
	}
	if labs.Items[0].TestName != "Potassium" {
		t.Errorf("test name = %s", labs.Items[0].TestName)
	}
}

func TestPaymentSettlesInvoice(t *testing.T) {
	s := newStack(t)
	s.login(t)

	before, err := s.billing.Invoice(context.Background(), mockehr.FixtureInvoiceID)
	if err != nil {
		t.Fatalf("Invoice: %v", err)
	}
	if before.Balance != 177.5 {
		t.Fatalf("seeded balance = %.2f", before.Balance)
	}

	payment, err := s.billing.RecordPayment(context.Background(), billing.RecordPaymentRequest{
		InvoiceID: mockehr.FixtureInvoiceID,
		Amount:    177.5,
		Currency:  "USD",
		Method:    billing.PaymentMethodCard,
		Detail: billing.PaymentDetail{
			Kind: billing.PaymentMethodCard,
			Card: &billing.CardDetail{Last4: "4242", Network: "visa"},
		},
	})
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if payment.Status != billing.PaymentStatusSettled {
		t.Errorf("payment status = %s", payment.Status)
	}

	// The detail entry was invalidated, so this read sees the settled state.
	after, err := s.billing.Invoice(context.Background(), mockehr.FixtureInvoiceID)
	if err != nil {
		t.Fatalf("Invoice after payment: %v", err)
	}
	if after.Status != billing.InvoiceStatusPaid || after.Balance != 0 {
		t.Errorf("invoice after payment = %s, balance %.2f", after.Status, after.Balance)
	}
}

func TestPaymentAgainstVoidInvoiceRejected(t *testing.T) {
	s := newStack(t)
	s.login(t)

	if _, err := s.billing.VoidInvoice(context.Background(), billing.VoidInvoiceRequest{
		ID:     mockehr.FixtureInvoiceID,
		Reason: "Issued in error",
	}); err != nil {
		t.Fatalf("VoidInvoice: %v", err)
	}

	_, err := s.billing.RecordPayment(context.Background(), billing.RecordPaymentRequest{
		InvoiceID: mockehr.FixtureInvoiceID,
		Amount:    10,
		Currency:  "USD",
		Method:    billing.PaymentMethodCard,
		Detail: billing.PaymentDetail{
			Kind: billing.PaymentMethodCard,
			Card: &billing.CardDetail{Last4: "4242", Network: "visa"},
		},
	})
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("RecordPayment error = %v, want 422", err)
	}
}

func TestListPagingClampsLimit(t *testing.T) {
	s := newStack(t)
	s.login(t)

	req, _ := http.NewRequest(http.MethodGet, s.srv.URL+api.PathPatients+"?limit=9999", nil)
	token, err := s.store.Token(context.Background())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var env struct {
		Data api.List[json.RawMessage] `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Limit != api.MaxLimit {
		t.Errorf("limit = %d, want clamped to %d", env.Data.Limit, api.MaxLimit)
	}
}

func TestMutationInvalidatesScheduleViews(t *testing.T) {
	s := newStack(t)
	s.login(t)

	before, err := s.ehr.AppointmentsByPatient(context.Background(), mockehr.FixturePatientID)
	if err != nil {
		t.Fatalf("AppointmentsByPatient: %v", err)
	}

	if _, err := s.ehr.CreateAppointment(context.Background(), ehr.CreateAppointmentRequest{
		PatientID:         mockehr.FixturePatientID,
		ProviderID:        mockehr.FixtureProviderID,
		LocationID:        mockehr.FixtureLocationID,
		Type:              ehr.AppointmentTypeTelehealth,
		ScheduledDatetime: "2026-03-03T09:00:00Z",
	}); err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}

	after, err := s.ehr.AppointmentsByPatient(context.Background(), mockehr.FixturePatientID)
	if err != nil {
		t.Fatalf("AppointmentsByPatient after create: %v", err)
	}
	if after.Total != before.Total+1 {
		t.Errorf("total = %d, want %d after invalidation", after.Total, before.Total+1)
	}
}
