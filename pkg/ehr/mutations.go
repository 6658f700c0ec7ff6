package ehr

import (
	"context"

	"luminahealth.io/client-go/pkg/api"
)

// CreatePatient registers a new patient. The request is validated locally
// before any network call; a violating payload never leaves the process.
func (s *Service) CreatePatient(ctx context.Context, req CreatePatientRequest) (Patient, error) {
	if errs := CreatePatientRequestSchema.Validate(req); len(errs) > 0 {
		return Patient{}, errs
	}
	p, err := api.PostJSON(ctx, s.client, api.PathPatients, req, PatientSchema)
	if err != nil {
		return Patient{}, err
	}
	s.cache.Put(PatientDetailKey(p.ID), p)
	s.cache.InvalidatePrefix(patientsKey.Child("list"))
	s.auditWrite("patient", p.ID, "create")
	return p, nil
}

// UpdatePatient applies a partial update to a patient record.
func (s *Service) UpdatePatient(ctx context.Context, req UpdatePatientRequest) (Patient, error) {
	if errs := UpdatePatientRequestSchema.Validate(req); len(errs) > 0 {
		return Patient{}, errs
	}
	p, err := api.PutJSON(ctx, s.client, api.DetailPath(api.PathPatients, req.ID), req, PatientSchema)
	if err != nil {
		return Patient{}, err
	}
	s.cache.Put(PatientDetailKey(p.ID), p)
	s.cache.InvalidatePrefix(patientsKey.Child("list"))
	s.auditWrite("patient", p.ID, "update")
	return p, nil
}

// CreateVisit opens a new visit for a patient.
func (s *Service) CreateVisit(ctx context.Context, req CreateVisitRequest) (Visit, error) {
	if errs := CreateVisitRequestSchema.Validate(req); len(errs) > 0 {
		return Visit{}, errs
	}
	v, err := api.PostJSON(ctx, s.client, api.PathVisits, req, VisitSchema)
	if err != nil {
		return Visit{}, err
	}
	s.cache.Put(VisitDetailKey(v.ID), v)
	s.cache.Invalidate(VisitsByPatientKey(v.PatientID))
	s.auditWrite("visit", v.ID, "create")
	return v, nil
}

// CheckOutVisit closes a visit with its checkout time.
func (s *Service) CheckOutVisit(ctx context.Context, req CheckOutVisitRequest) (Visit, error) {
	if errs := CheckOutVisitRequestSchema.Validate(req); len(errs) > 0 {
		return Visit{}, errs
	}
	v, err := api.PostJSON(ctx, s.client, api.ActionPath(api.PathVisits, req.ID, "check-out"), req, VisitSchema)
	if err != nil {
		return Visit{}, err
	}
	s.cache.Put(VisitDetailKey(v.ID), v)
	s.cache.Invalidate(VisitsByPatientKey(v.PatientID))
	s.auditWrite("visit", v.ID, "check-out")
	return v, nil
}

// CreateOrder places a clinical order. The patient's order views and the
// STAT board are invalidated together so neither can serve one half of the
// write.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (Order, error) {
	if errs := CreateOrderRequestSchema.Validate(req); len(errs) > 0 {
		return Order{}, errs
	}
	o, err := api.PostJSON(ctx, s.client, api.PathOrders, req, OrderSchema)
	if err != nil {
		return Order{}, err
	}
	s.cache.Put(OrderDetailKey(o.ID), o)
	s.cache.Invalidate(
		OrdersByPatientKey(o.PatientID),
		ActiveOrdersKey(o.PatientID),
		STATOrdersKey(),
	)
	s.auditWrite("order", o.ID, "create")
	return o, nil
}

// DiscontinueOrder stops an order with a documented reason.
func (s *Service) DiscontinueOrder(ctx context.Context, req DiscontinueOrderRequest) (Order, error) {
	if errs := DiscontinueOrderRequestSchema.Validate(req); len(errs) > 0 {
		return Order{}, errs
	}
	o, err := api.PostJSON(ctx, s.client, api.ActionPath(api.PathOrders, req.ID, "discontinue"), req, OrderSchema)
	if err != nil {
		return Order{}, err
	}
	s.cache.Put(OrderDetailKey(o.ID), o)
	s.cache.Invalidate(
		OrdersByPatientKey(o.PatientID),
		ActiveOrdersKey(o.PatientID),
		STATOrdersKey(),
	)
	s.auditWrite("order", o.ID, "discontinue")
	return o, nil
}

// CreateMedication starts a medication for a patient.
func (s *Service) CreateMedication(ctx context.Context, req CreateMedicationRequest) (Medication, error) {
	if errs := CreateMedicationRequestSchema.Validate(req); len(errs) > 0 {
		return Medication{}, errs
	}
	m, err := api.PostJSON(ctx, s.client, api.PathMedications, req, MedicationSchema)
	if err != nil {
		return Medication{}, err
	}
	s.cache.Invalidate(
		MedicationsByPatientKey(m.PatientID),
		ActiveMedicationsKey(m.PatientID),
	)
	s.auditWrite("medication", m.ID, "create")
	return m, nil
}

// DiscontinueMedication stops a medication with a documented reason and
// date.
func (s *Service) DiscontinueMedication(ctx context.Context, req DiscontinueMedicationRequest) (Medication, error) {
	if errs := DiscontinueMedicationRequestSchema.Validate(req); len(errs) > 0 {
		return Medication{}, errs
	}
	m, err := api.PostJSON(ctx, s.client, api.ActionPath(api.PathMedications, req.ID, "discontinue"), req, MedicationSchema)
	if err != nil {
		return Medication{}, err
	}
	s.cache.Invalidate(
		MedicationsByPatientKey(m.PatientID),
		ActiveMedicationsKey(m.PatientID),
	)
	s.auditWrite("medication", m.ID, "discontinue")
	return m, nil
}

// CreateAllergy documents a new allergy.
func (s *Service) CreateAllergy(ctx context.Context, req CreateAllergyRequest) (Allergy, error) {
	if errs := CreateAllergyRequestSchema.Validate(req); len(errs) > 0 {
		return Allergy{}, errs
	}
	a, err := api.PostJSON(ctx, s.client, api.PathAllergies, req, AllergySchema)
	if err != nil {
		return Allergy{}, err
	}
	s.cache.Invalidate(AllergiesByPatientKey(a.PatientID))
	s.auditWrite("allergy", a.ID, "create")
	return a, nil
}

// CreateProblem adds an entry to the patient's problem list.
func (s *Service) CreateProblem(ctx context.Context, req CreateProblemRequest) (Problem, error) {
	if errs := CreateProblemRequestSchema.Validate(req); len(errs) > 0 {
		return Problem{}, errs
	}
	p, err := api.PostJSON(ctx, s.client, api.PathProblems, req, ProblemSchema)
	if err != nil {
		return Problem{}, err
	}
	s.cache.Invalidate(ProblemsByPatientKey(p.PatientID))
	s.auditWrite("problem", p.ID, "create")
	return p, nil
}

// ResolveProblem closes a problem-list entry.
func (s *Service) ResolveProblem(ctx context.Context, req ResolveProblemRequest) (Problem, error) {
	if errs := ResolveProblemRequestSchema.Validate(req); len(errs) > 0 {
		return Problem{}, errs
	}
	p, err := api.PostJSON(ctx, s.client, api.ActionPath(api.PathProblems, req.ID, "resolve"), req, ProblemSchema)
	if err != nil {
		return Problem{}, err
	}
	s.cache.Invalidate(ProblemsByPatientKey(p.PatientID))
	s.auditWrite("problem", p.ID, "resolve")
	return p, nil
}

// RecordVital stores one vital sign reading.
func (s *Service) RecordVital(ctx context.Context, req RecordVitalRequest) (Vital, error) {
	if errs := RecordVitalRequestSchema.Validate(req); len(errs) > 0 {
		return Vital{}, errs
	}
	v, err := api.PostJSON(ctx, s.client, api.PathVitals, req, VitalSchema)
	if err != nil {
		return Vital{}, err
	}
	if v.VisitID != "" {
		s.cache.Invalidate(VitalsByVisitKey(v.VisitID))
	}
	s.auditWrite("vital", v.ID, "create")
	return v, nil
}

// CreateAppointment books a slot. The patient, provider and location
// schedules plus today's board are invalidated in one atomic batch; a
// concurrent reader sees either none of the views refreshed or all of
// them.
func (s *Service) CreateAppointment(ctx context.Context, req CreateAppointmentRequest) (Appointment, error) {
	if errs := CreateAppointmentRequestSchema.Validate(req); len(errs) > 0 {
		return Appointment{}, errs
	}
	a, err := api.PostJSON(ctx, s.client, api.PathAppointments, req, AppointmentSchema)
	if err != nil {
		return Appointment{}, err
	}
	s.cache.Put(AppointmentDetailKey(a.ID), a)
	s.invalidateSchedules(a)
	s.auditWrite("appointment", a.ID, "create")
	return a, nil
}

// UpdateAppointment reschedules or amends a booked slot.
func (s *Service) UpdateAppointment(ctx context.Context, req UpdateAppointmentRequest) (Appointment, error) {
	if errs := UpdateAppointmentRequestSchema.Validate(req); len(errs) > 0 {
		return Appointment{}, errs
	}
	a, err := api.PutJSON(ctx, s.client, api.DetailPath(api.PathAppointments, req.ID), req, AppointmentSchema)
	if err != nil {
		return Appointment{}, err
	}
	s.cache.Put(AppointmentDetailKey(a.ID), a)
	s.invalidateSchedules(a)
	s.auditWrite("appointment", a.ID, "update")
	return a, nil
}

// CancelAppointment cancels a booked slot with a documented reason.
func (s *Service) CancelAppointment(ctx context.Context, req CancelAppointmentRequest) (Appointment, error) {
	if errs := CancelAppointmentRequestSchema.Validate(req); len(errs) > 0 {
		return Appointment{}, errs
	}
	a, err := api.PostJSON(ctx, s.client, api.ActionPath(api.PathAppointments, req.ID, "cancel"), req, AppointmentSchema)
	if err != nil {
		return Appointment{}, err
	}
	s.cache.Put(AppointmentDetailKey(a.ID), a)
	s.invalidateSchedules(a)
	s.auditWrite("appointment", a.ID, "cancel")
	return a, nil
}

// CheckInAppointment marks patient arrival.
func (s *Service) CheckInAppointment(ctx context.Context, req CheckInAppointmentRequest) (Appointment, error) {
	if errs := CheckInAppointmentRequestSchema.Validate(req); len(errs) > 0 {
		return Appointment{}, errs
	}
	a, err := api.PostJSON(ctx, s.client, api.ActionPath(api.PathAppointments, req.ID, "check-in"), req, AppointmentSchema)
	if err != nil {
		return Appointment{}, err
	}
	s.cache.Put(AppointmentDetailKey(a.ID), a)
	s.invalidateSchedules(a)
	s.auditWrite("appointment", a.ID, "check-in")
	return a, nil
}

func (s *Service) invalidateSchedules(a Appointment) {
	s.cache.Invalidate(
		AppointmentsByPatientKey(a.PatientID),
		AppointmentsByProviderKey(a.ProviderID),
		AppointmentsByLocationKey(a.LocationID),
		AppointmentsTodayKey(s.now()),
	)
}
