package i18n

var spanishCatalog = Catalog{
	"app.title": "Lumina Health",

	"patient.one":            "Paciente",
	"patient.many":           "Pacientes",
	"patient.mrn":            "Número de historia clínica",
	"patient.dob":            "Fecha de nacimiento",
	"visit.one":              "Consulta",
	"visit.checkin":          "Ingresado",
	"visit.checkout":         "Egresado",
	"order.one":              "Orden",
	"order.stat":             "Urgente",
	"order.discontinued":     "Suspendida",
	"medication.one":         "Medicamento",
	"appointment.one":        "Cita",
	"appointment.cancelled":  "Cancelada",
	"appointment.checked_in": "Ingresado",
	"invoice.one":            "Factura",
	"invoice.balance":        "Saldo",
	"payment.one":            "Pago",

	"auth.signed_in":  "Sesión iniciada como %s",
	"auth.signed_out": "Sesión cerrada",
	"auth.expired":    "Su sesión ha expirado, inicie sesión nuevamente",

	"error.network":    "No se pudo conectar con el servidor, revise su conexión",
	"error.not_found":  "No se encontró el registro solicitado",
	"error.validation": "Algunos campos requieren atención: %s",

	"list.showing": "Mostrando %d de %d",
}
