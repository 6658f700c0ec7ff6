package ehr

import (
	"context"

	"luminahealth.io/client-go/pkg/api"
	"luminahealth.io/client-go/pkg/querycache"
)

// Patient returns one patient record by identifier.
func (s *Service) Patient(ctx context.Context, id string) (Patient, error) {
	p, err := querycache.Fetch(s.cache, ctx, PatientDetailKey(id), querycache.StaleDefault,
		func(ctx context.Context) (Patient, error) {
			return api.GetJSON(ctx, s.client, api.DetailPath(api.PathPatients, id), nil, PatientSchema)
		})
	if err != nil {
		return Patient{}, err
	}
	s.audit("patient", p.ID)
	return p, nil
}

// Patients returns one filtered page of the patient list.
func (s *Service) Patients(ctx context.Context, params api.ListParams) (api.List[Patient], error) {
	return querycache.Fetch(s.cache, ctx, PatientListKey(params), querycache.StaleShort,
		func(ctx context.Context) (api.List[Patient], error) {
			return api.GetList(ctx, s.client, api.PathPatients, params.Values(), PatientSchema)
		})
}

// Visit returns one visit record by identifier.
func (s *Service) Visit(ctx context.Context, id string) (Visit, error) {
	v, err := querycache.Fetch(s.cache, ctx, VisitDetailKey(id), querycache.StaleDefault,
		func(ctx context.Context) (Visit, error) {
			return api.GetJSON(ctx, s.client, api.DetailPath(api.PathVisits, id), nil, VisitSchema)
		})
	if err != nil {
		return Visit{}, err
	}
	s.audit("visit", v.ID)
	return v, nil
}

// VisitsByPatient returns the patient's visits.
func (s *Service) VisitsByPatient(ctx context.Context, patientID string, params api.ListParams) (api.List[Visit], error) {
	params = params.WithFilter("patientId", patientID)
	return querycache.Fetch(s.cache, ctx, VisitsByPatientKey(patientID), querycache.StaleDefault,
		func(ctx context.Context) (api.List[Visit], error) {
			return api.GetList(ctx, s.client, api.PathVisits, params.Values(), VisitSchema)
		})
}

// OrdersByPatient returns the patient's orders.
func (s *Service) OrdersByPatient(ctx context.Context, patientID string, params api.ListParams) (api.List[Order], error) {
	params = params.WithFilter("patientId", patientID)
	return querycache.Fetch(s.cache, ctx, OrdersByPatientKey(patientID), querycache.StaleDefault,
		func(ctx context.Context) (api.List[Order], error) {
			return api.GetList(ctx, s.client, api.PathOrders, params.Values(), OrderSchema)
		})
}

// ActiveOrders returns the patient's active order view.
func (s *Service) ActiveOrders(ctx context.Context, patientID string) (api.List[Order], error) {
	params := api.ListParams{}.
		WithFilter("patientId", patientID).
		WithFilter("status", string(OrderStatusActive))
	return querycache.Fetch(s.cache, ctx, ActiveOrdersKey(patientID), querycache.StaleDefault,
		func(ctx context.Context) (api.List[Order], error) {
			return api.GetList(ctx, s.client, api.PathOrders, params.Values(), OrderSchema)
		})
}

// STATOrders returns the active STAT order view. The short freshness
// window pairs with the refetcher registration.
func (s *Service) STATOrders(ctx context.Context) (api.List[Order], error) {
	return querycache.Fetch(s.cache, ctx, STATOrdersKey(), querycache.StaleShort,
		func(ctx context.Context) (api.List[Order], error) {
			return s.statOrders(ctx)
		})
}

func (s *Service) statOrders(ctx context.Context) (api.List[Order], error) {
	params := api.ListParams{}.
		WithFilter("urgency", string(OrderUrgencySTAT)).
		WithFilter("status", string(OrderStatusActive))
	return api.GetList(ctx, s.client, api.PathOrders, params.Values(), OrderSchema)
}

func (s *Service) fetchSTATOrders(ctx context.Context) (interface{}, error) {
	return s.statOrders(ctx)
}

// MedicationsByPatient returns the patient's medication history.
func (s *Service) MedicationsByPatient(ctx context.Context, patientID string, params api.ListParams) (api.List[Medication], error) {
	params = params.WithFilter("patientId", patientID)
	return querycache.Fetch(s.cache, ctx, MedicationsByPatientKey(patientID), querycache.StaleDefault,
		func(ctx context.Context) (api.List[Medication], error) {
			return api.GetList(ctx, s.client, api.PathMedications, params.Values(), MedicationSchema)
		})
}

// ActiveMedications returns the patient's active medication view.
func (s *Service) ActiveMedications(ctx context.Context, patientID string) (api.List[Medication], error) {
	params := api.ListParams{}.
		WithFilter("patientId", patientID).
		WithFilter("status", string(MedicationStatusActive))
	return querycache.Fetch(s.cache, ctx, ActiveMedicationsKey(patientID), querycache.StaleDefault,
		func(ctx context.Context) (api.List[Medication], error) {
			return api.GetList(ctx, s.client, api.PathMedications, params.Values(), MedicationSchema)
		})
}

// AllergiesByPatient returns the patient's allergy list.
func (s *Service) AllergiesByPatient(ctx context.Context, patientID string) (api.List[Allergy], error) {
	params := api.ListParams{}.WithFilter("patientId", patientID)
	return querycache.Fetch(s.cache, ctx, AllergiesByPatientKey(patientID), querycache.StaleDefault,
		func(ctx context.Context) (api.List[Allergy], error) {
			return api.GetList(ctx, s.client, api.PathAllergies, params.Values(), AllergySchema)
		})
}

// ProblemsByPatient returns the patient's problem list.
func (s *Service) ProblemsByPatient(ctx context.Context, patientID string) (api.List[Problem], error) {
	params := api.ListParams{}.WithFilter("patientId", patientID)
	return querycache.Fetch(s.cache, ctx, ProblemsByPatientKey(patientID), querycache.StaleDefault,
		func(ctx context.Context) (api.List[Problem], error) {
			return api.GetList(ctx, s.client, api.PathProblems, params.Values(), ProblemSchema)
		})
}

// VitalsByVisit returns the vitals recorded during a visit.
func (s *Service) VitalsByVisit(ctx context.Context, visitID string) (api.List[Vital], error) {
	params := api.ListParams{}.WithFilter("visitId", visitID)
	return querycache.Fetch(s.cache, ctx, VitalsByVisitKey(visitID), querycache.StaleShort,
		func(ctx context.Context) (api.List[Vital], error) {
			return api.GetList(ctx, s.client, api.PathVitals, params.Values(), VitalSchema)
		})
}

// LabResultsByPatient returns the patient's lab results.
func (s *Service) LabResultsByPatient(ctx context.Context, patientID string, params api.ListParams) (api.List[LabResult], error) {
	params = params.WithFilter("patientId", patientID)
	return querycache.Fetch(s.cache, ctx, LabResultsByPatientKey(patientID), querycache.StaleDefault,
		func(ctx context.Context) (api.List[LabResult], error) {
			return api.GetList(ctx, s.client, api.PathLabResults, params.Values(), LabResultSchema)
		})
}

// CriticalLabs returns the critical-result view across patients.
func (s *Service) CriticalLabs(ctx context.Context) (api.List[LabResult], error) {
	return querycache.Fetch(s.cache, ctx, CriticalLabsKey(), querycache.StaleShort,
		func(ctx context.Context) (api.List[LabResult], error) {
			return s.criticalLabs(ctx)
		})
}

func (s *Service) criticalLabs(ctx context.Context) (api.List[LabResult], error) {
	params := api.ListParams{}.WithFilter("flag", string(LabFlagCritical))
	return api.GetList(ctx, s.client, api.PathLabResults, params.Values(), LabResultSchema)
}

func (s *Service) fetchCriticalLabs(ctx context.Context) (interface{}, error) {
	return s.criticalLabs(ctx)
}

// DocumentsByPatient returns the patient's clinical documents.
func (s *Service) DocumentsByPatient(ctx context.Context, patientID string, params api.ListParams) (api.List[Document], error) {
	params = params.WithFilter("patientId", patientID)
	return querycache.Fetch(s.cache, ctx, DocumentsByPatientKey(patientID), querycache.StaleDefault,
		func(ctx context.Context) (api.List[Document], error) {
			return api.GetList(ctx, s.client, api.PathDocuments, params.Values(), DocumentSchema)
		})
}

// Appointment returns one appointment by identifier.
func (s *Service) Appointment(ctx context.Context, id string) (Appointment, error) {
	a, err := querycache.Fetch(s.cache, ctx, AppointmentDetailKey(id), querycache.StaleDefault,
		func(ctx context.Context) (Appointment, error) {
			return api.GetJSON(ctx, s.client, api.DetailPath(api.PathAppointments, id), nil, AppointmentSchema)
		})
	if err != nil {
		return Appointment{}, err
	}
	s.audit("appointment", a.ID)
	return a, nil
}

// AppointmentsByPatient returns the patient's appointments.
func (s *Service) AppointmentsByPatient(ctx context.Context, patientID string) (api.List[Appointment], error) {
	params := api.ListParams{}.WithFilter("patientId", patientID)
	return querycache.Fetch(s.cache, ctx, AppointmentsByPatientKey(patientID), querycache.StaleDefault,
		func(ctx context.Context) (api.List[Appointment], error) {
			return api.GetList(ctx, s.client, api.PathAppointments, params.Values(), AppointmentSchema)
		})
}

// AppointmentsByProvider returns the provider's schedule.
func (s *Service) AppointmentsByProvider(ctx context.Context, providerID string) (api.List[Appointment], error) {
	params := api.ListParams{}.WithFilter("providerId", providerID)
	return querycache.Fetch(s.cache, ctx, AppointmentsByProviderKey(providerID), querycache.StaleDefault,
		func(ctx context.Context) (api.List[Appointment], error) {
			return api.GetList(ctx, s.client, api.PathAppointments, params.Values(), AppointmentSchema)
		})
}

// AppointmentsByLocation returns the location's schedule.
func (s *Service) AppointmentsByLocation(ctx context.Context, locationID string) (api.List[Appointment], error) {
	params := api.ListParams{}.WithFilter("locationId", locationID)
	return querycache.Fetch(s.cache, ctx, AppointmentsByLocationKey(locationID), querycache.StaleDefault,
		func(ctx context.Context) (api.List[Appointment], error) {
			return api.GetList(ctx, s.client, api.PathAppointments, params.Values(), AppointmentSchema)
		})
}

// AppointmentsToday returns today's schedule across providers.
func (s *Service) AppointmentsToday(ctx context.Context) (api.List[Appointment], error) {
	return querycache.Fetch(s.cache, ctx, AppointmentsTodayKey(s.now()), querycache.StaleShort,
		func(ctx context.Context) (api.List[Appointment], error) {
			return s.appointmentsToday(ctx)
		})
}

func (s *Service) appointmentsToday(ctx context.Context) (api.List[Appointment], error) {
	day := s.now().UTC().Format("2006-01-02")
	params := api.ListParams{}.WithFilter("date", day)
	return api.GetList(ctx, s.client, api.PathAppointments, params.Values(), AppointmentSchema)
}

func (s *Service) fetchAppointmentsToday(ctx context.Context) (interface{}, error) {
	return s.appointmentsToday(ctx)
}
