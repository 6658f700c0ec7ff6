package i18n

// RegisterBuiltin installs the built-in English and Spanish catalogs.
// Binaries call it once at startup; applications may register further
// locales afterwards.
func RegisterBuiltin() {
	Register("en", englishCatalog)
	Register("es", spanishCatalog)
}

var englishCatalog = Catalog{
	"app.title": "Lumina Health",

	"patient.one":            "Patient",
	"patient.many":           "Patients",
	"patient.mrn":            "Medical record number",
	"patient.dob":            "Date of birth",
	"visit.one":              "Visit",
	"visit.checkin":          "Checked in",
	"visit.checkout":         "Checked out",
	"order.one":              "Order",
	"order.stat":             "STAT",
	"order.discontinued":     "Discontinued",
	"medication.one":         "Medication",
	"appointment.one":        "Appointment",
	"appointment.cancelled":  "Cancelled",
	"appointment.checked_in": "Checked in",
	"invoice.one":            "Invoice",
	"invoice.balance":        "Balance",
	"payment.one":            "Payment",

	"auth.signed_in":  "Signed in as %s",
	"auth.signed_out": "Signed out",
	"auth.expired":    "Your session has expired, please sign in again",

	"error.network":    "Could not reach the server, check your connection",
	"error.not_found":  "The requested record was not found",
	"error.validation": "Some fields need attention: %s",

	"list.showing": "Showing %d of %d",
}
