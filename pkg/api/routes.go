package api

import "fmt"

// Versioned REST paths for every endpoint the SDK binds. All paths live
// under /v1.
const (
	PathPatients     = "/v1/ehr/patients"
	PathVisits       = "/v1/ehr/visits"
	PathOrders       = "/v1/ehr/orders"
	PathMedications  = "/v1/ehr/medications"
	PathAllergies    = "/v1/ehr/allergies"
	PathProblems     = "/v1/ehr/problems"
	PathVitals       = "/v1/ehr/vitals"
	PathLabResults   = "/v1/ehr/lab-results"
	PathDocuments    = "/v1/ehr/documents"
	PathAppointments = "/v1/ehr/appointments"
	PathInvoices     = "/v1/billing/invoices"
	PathPayments     = "/v1/billing/payments"

	PathAuthLogin        = "/v1/auth/login"
	PathAuthRefresh      = "/v1/auth/refresh"
	PathAuthLogout       = "/v1/auth/logout"
	PathAuthUserInfo     = "/v1/auth/userinfo"
	PathAuthCapabilities = "/v1/auth/capabilities"

	PathHealth = "/healthz"
)

// DetailPath appends an identifier to a collection path.
func DetailPath(base, id string) string {
	return fmt.Sprintf("%s/%s", base, id)
}

// ActionPath appends a state-transition action to a detail path.
func ActionPath(base, id, action string) string {
	return fmt.Sprintf("%s/%s/%s", base, id, action)
}
