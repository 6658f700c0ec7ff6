// Package mockehr is a self-contained EHR backend used for local
// development and end-to-end tests of the client. It serves the same
// routes, envelope shape and auth flows as the production service, backed
// by seeded in-memory fixtures.
package mockehr

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"luminahealth.io/client-go/internal/metrics"
	"luminahealth.io/client-go/pkg/api"
)

type refreshGrant struct {
	username  string
	expiresAt time.Time
}

// Server holds the mock's state and handlers.
type Server struct {
	store         *Store
	signingSecret []byte
	refreshTokens map[string]refreshGrant
}

// NewServer creates a seeded mock backend. The signing secret only needs
// to be stable for the process lifetime.
func NewServer(signingSecret string) *Server {
	if signingSecret == "" {
		signingSecret = "mockehr-dev-secret"
	}
	return &Server{
		store:         NewStore(),
		signingSecret: []byte(signingSecret),
		refreshTokens: make(map[string]refreshGrant),
	}
}

// Routes configures and returns the HTTP router.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()

	r.Use(metrics.Middleware)

	r.HandleFunc(api.PathHealth, func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})).Methods("GET")

	// Auth endpoints; login and refresh are reachable without a token.
	r.HandleFunc(api.PathAuthLogin, s.handleLogin).Methods("POST")
	r.HandleFunc(api.PathAuthRefresh, s.handleRefresh).Methods("POST")
	r.HandleFunc(api.PathAuthLogout, s.handleLogout).Methods("POST")
	r.HandleFunc(api.PathAuthUserInfo, s.handleUserInfo).Methods("GET")
	r.HandleFunc(api.PathAuthCapabilities, s.handleCapabilities).Methods("GET")

	// Protected clinical and billing routes.
	p := r.PathPrefix("/v1").Subrouter()
	p.Use(s.requireAuth)

	p.HandleFunc("/ehr/patients", s.listPatients).Methods("GET")
	p.HandleFunc("/ehr/patients", s.createPatient).Methods("POST")
	p.HandleFunc("/ehr/patients/{id}", s.getPatient).Methods("GET")
	p.HandleFunc("/ehr/patients/{id}", s.updatePatient).Methods("PUT")

	p.HandleFunc("/ehr/visits", s.listVisits).Methods("GET")
	p.HandleFunc("/ehr/visits", s.createVisit).Methods("POST")
	p.HandleFunc("/ehr/visits/{id}", s.getVisit).Methods("GET")
	p.HandleFunc("/ehr/visits/{id}/check-out", s.checkOutVisit).Methods("POST")

	p.HandleFunc("/ehr/orders", s.listOrders).Methods("GET")
	p.HandleFunc("/ehr/orders", s.createOrder).Methods("POST")
	p.HandleFunc("/ehr/orders/{id}/discontinue", s.discontinueOrder).Methods("POST")

	p.HandleFunc("/ehr/medications", s.listMedications).Methods("GET")
	p.HandleFunc("/ehr/medications", s.createMedication).Methods("POST")
	p.HandleFunc("/ehr/medications/{id}/discontinue", s.discontinueMedication).Methods("POST")

	p.HandleFunc("/ehr/allergies", s.listAllergies).Methods("GET")
	p.HandleFunc("/ehr/allergies", s.createAllergy).Methods("POST")

	p.HandleFunc("/ehr/problems", s.listProblems).Methods("GET")
	p.HandleFunc("/ehr/problems", s.createProblem).Methods("POST")
	p.HandleFunc("/ehr/problems/{id}/resolve", s.resolveProblem).Methods("POST")

	p.HandleFunc("/ehr/vitals", s.listVitals).Methods("GET")
	p.HandleFunc("/ehr/vitals", s.recordVital).Methods("POST")

	p.HandleFunc("/ehr/lab-results", s.listLabResults).Methods("GET")
	p.HandleFunc("/ehr/documents", s.listDocuments).Methods("GET")

	p.HandleFunc("/ehr/appointments", s.listAppointments).Methods("GET")
	p.HandleFunc("/ehr/appointments", s.createAppointment).Methods("POST")
	p.HandleFunc("/ehr/appointments/{id}", s.getAppointment).Methods("GET")
	p.HandleFunc("/ehr/appointments/{id}", s.updateAppointment).Methods("PUT")
	p.HandleFunc("/ehr/appointments/{id}/cancel", s.cancelAppointment).Methods("POST")
	p.HandleFunc("/ehr/appointments/{id}/check-in", s.checkInAppointment).Methods("POST")

	p.HandleFunc("/billing/invoices", s.listInvoices).Methods("GET")
	p.HandleFunc("/billing/invoices", s.createInvoice).Methods("POST")
	p.HandleFunc("/billing/invoices/{id}", s.getInvoice).Methods("GET")
	p.HandleFunc("/billing/invoices/{id}/void", s.voidInvoice).Methods("POST")

	p.HandleFunc("/billing/payments", s.listPayments).Methods("GET")
	p.HandleFunc("/billing/payments", s.recordPayment).Methods("POST")

	return r
}
