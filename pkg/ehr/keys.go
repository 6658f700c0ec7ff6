package ehr

import (
	"time"

	"luminahealth.io/client-go/pkg/api"
	"luminahealth.io/client-go/pkg/querycache"
)

// Stable cache key prefixes per entity. Filtered views and details hang
// off these, so a prefix invalidation covers every cached view of an
// entity type.
var (
	patientsKey     = querycache.NewKey("ehr", "patients")
	visitsKey       = querycache.NewKey("ehr", "visits")
	ordersKey       = querycache.NewKey("ehr", "orders")
	medicationsKey  = querycache.NewKey("ehr", "medications")
	allergiesKey    = querycache.NewKey("ehr", "allergies")
	problemsKey     = querycache.NewKey("ehr", "problems")
	vitalsKey       = querycache.NewKey("ehr", "vitals")
	labResultsKey   = querycache.NewKey("ehr", "lab-results")
	documentsKey    = querycache.NewKey("ehr", "documents")
	appointmentsKey = querycache.NewKey("ehr", "appointments")
)

// PatientDetailKey is the per-identifier detail key.
func PatientDetailKey(id string) querycache.Key {
	return patientsKey.Child("detail", id)
}

// PatientListKey keys one filtered page of the patient list.
func PatientListKey(params api.ListParams) querycache.Key {
	return patientsKey.Child("list", params.Values().Encode())
}

// VisitDetailKey is the per-identifier detail key.
func VisitDetailKey(id string) querycache.Key {
	return visitsKey.Child("detail", id)
}

// VisitsByPatientKey keys the patient's visit list.
func VisitsByPatientKey(patientID string) querycache.Key {
	return visitsKey.Child("byPatient", patientID)
}

// OrderDetailKey is the per-identifier detail key.
func OrderDetailKey(id string) querycache.Key {
	return ordersKey.Child("detail", id)
}

// OrdersByPatientKey keys the patient's order list.
func OrdersByPatientKey(patientID string) querycache.Key {
	return ordersKey.Child("byPatient", patientID)
}

// ActiveOrdersKey keys the patient's active order view.
func ActiveOrdersKey(patientID string) querycache.Key {
	return ordersKey.Child("active", patientID)
}

// STATOrdersKey keys the operationally urgent STAT order view.
func STATOrdersKey() querycache.Key {
	return ordersKey.Child("stat")
}

// MedicationsByPatientKey keys the patient's medication list.
func MedicationsByPatientKey(patientID string) querycache.Key {
	return medicationsKey.Child("byPatient", patientID)
}

// ActiveMedicationsKey keys the patient's active medication view.
func ActiveMedicationsKey(patientID string) querycache.Key {
	return medicationsKey.Child("active", patientID)
}

// AllergiesByPatientKey keys the patient's allergy list.
func AllergiesByPatientKey(patientID string) querycache.Key {
	return allergiesKey.Child("byPatient", patientID)
}

// ProblemsByPatientKey keys the patient's problem list.
func ProblemsByPatientKey(patientID string) querycache.Key {
	return problemsKey.Child("byPatient", patientID)
}

// VitalsByVisitKey keys the vitals recorded during a visit.
func VitalsByVisitKey(visitID string) querycache.Key {
	return vitalsKey.Child("byVisit", visitID)
}

// LabResultsByPatientKey keys the patient's lab results.
func LabResultsByPatientKey(patientID string) querycache.Key {
	return labResultsKey.Child("byPatient", patientID)
}

// CriticalLabsKey keys the critical-result view.
func CriticalLabsKey() querycache.Key {
	return labResultsKey.Child("critical")
}

// DocumentsByPatientKey keys the patient's document list.
func DocumentsByPatientKey(patientID string) querycache.Key {
	return documentsKey.Child("byPatient", patientID)
}

// AppointmentDetailKey is the per-identifier detail key.
func AppointmentDetailKey(id string) querycache.Key {
	return appointmentsKey.Child("detail", id)
}

// AppointmentsByPatientKey keys the patient's appointment list.
func AppointmentsByPatientKey(patientID string) querycache.Key {
	return appointmentsKey.Child("byPatient", patientID)
}

// AppointmentsByProviderKey keys the provider's schedule.
func AppointmentsByProviderKey(providerID string) querycache.Key {
	return appointmentsKey.Child("byProvider", providerID)
}

// AppointmentsByLocationKey keys the location's schedule.
func AppointmentsByLocationKey(locationID string) querycache.Key {
	return appointmentsKey.Child("byLocation", locationID)
}

// AppointmentsTodayKey keys today's schedule for the given clock day (UTC).
func AppointmentsTodayKey(day time.Time) querycache.Key {
	return appointmentsKey.Child("today", day.UTC().Format("2006-01-02"))
}
