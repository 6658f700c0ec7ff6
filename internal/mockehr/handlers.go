package mockehr

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"luminahealth.io/client-go/pkg/ehr"
	"luminahealth.io/client-go/pkg/validate"
)

func writeViolations(w http.ResponseWriter, errs validate.Violations) {
	details, err := json.Marshal(errs)
	if err != nil {
		details = nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error": map[string]interface{}{
			"code":    "validation_failed",
			"message": errs.Error(),
			"details": json.RawMessage(details),
		},
	})
}

func notFound(w http.ResponseWriter, entity string) {
	writeError(w, http.StatusNotFound, "not_found", entity+" not found")
}

// matchFilter reports whether a record field passes an optional query
// filter: an absent filter always passes.
func matchFilter(r *http.Request, key, value string) bool {
	want := r.URL.Query().Get(key)
	return want == "" || want == value
}

func (s *Server) listPatients(w http.ResponseWriter, r *http.Request) {
	limit, offset := paging(r)
	s.store.mu.Lock()
	items := make([]ehr.Patient, 0, len(s.store.patients))
	for _, p := range s.store.patients {
		if matchFilter(r, "status", string(p.Status)) {
			items = append(items, p)
		}
	}
	s.store.mu.Unlock()
	sortByID(items, func(p ehr.Patient) string { return p.MRN })
	writeData(w, http.StatusOK, page(items, limit, offset))
}

func (s *Server) getPatient(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.store.mu.Lock()
	p, ok := s.store.patients[id]
	s.store.mu.Unlock()
	if !ok {
		notFound(w, "Patient")
		return
	}
	writeData(w, http.StatusOK, p)
}

func (s *Server) createPatient(w http.ResponseWriter, r *http.Request) {
	var req ehr.CreatePatientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := ehr.CreatePatientRequestSchema.Validate(req); len(errs) > 0 {
		writeViolations(w, errs)
		return
	}
	p := ehr.Patient{
		ID:           uuid.NewString(),
		MRN:          req.MRN,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		DOB:          req.DOB,
		Status:       ehr.PatientStatusActive,
		Email:        req.Email,
		Phone:        req.Phone,
		AddressLine1: req.AddressLine1,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Insurance:    req.Insurance,
		CreatedAt:    s.store.timestamp(),
	}
	s.store.mu.Lock()
	s.store.patients[p.ID] = p
	s.store.mu.Unlock()
	log.Info().Str("patientId", p.ID).Msg("Patient created")
	writeData(w, http.StatusCreated, p)
}

func (s *Server) updatePatient(w http.ResponseWriter, r *http.Request) {
	var req ehr.UpdatePatientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.ID = mux.Vars(r)["id"]
	if errs := ehr.UpdatePatientRequestSchema.Validate(req); len(errs) > 0 {
		writeViolations(w, errs)
		return
	}
	s.store.mu.Lock()
	p, ok := s.store.patients[req.ID]
	if !ok {
		s.store.mu.Unlock()
		notFound(w, "Patient")
		return
	}
	if req.FirstName != nil {
		p.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		p.LastName = *req.LastName
	}
	if req.Email != nil {
		p.Email = *req.Email
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
	if req.AddressLine1 != nil {
		p.AddressLine1 = *req.AddressLine1
	}
	if req.City != nil {
		p.City = *req.City
	}
	if req.State != nil {
		p.State = *req.State
	}
	if req.PostalCode != nil {
		p.PostalCode = *req.PostalCode
	}
	if req.Insurance != nil {
		p.Insurance = req.Insurance
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.DeceasedDate != nil {
		p.DeceasedDate = *req.DeceasedDate
	}
	p.UpdatedAt = s.store.timestamp()
	s.store.patients[p.ID] = p
	s.store.mu.Unlock()
	writeData(w, http.StatusOK, p)
}

func (s *Server) listVisits(w http.ResponseWriter, r *http.Request) {
	limit, offset := paging(r)
	s.store.mu.Lock()
	items := make([]ehr.Visit, 0, len(s.store.visits))
	for _, v := range s.store.visits {
		if matchFilter(r, "patientId", v.PatientID) && matchFilter(r, "status", string(v.Status)) {
			items = append(items, v)
		}
	}
	s.store.mu.Unlock()
	sortByID(items, func(v ehr.Visit) string { return v.CreatedAt + v.ID })
	writeData(w, http.StatusOK, page(items, limit, offset))
}

func (s *Server) getVisit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.store.mu.Lock()
	v, ok := s.store.visits[id]
	s.store.mu.Unlock()
	if !ok {
		notFound(w, "Visit")
		return
	}
	writeData(w, http.StatusOK, v)
}

func (s *Server) createVisit(w http.ResponseWriter, r *http.Request) {
	var req ehr.CreateVisitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := ehr.CreateVisitRequestSchema.Validate(req); len(errs) > 0 {
		writeViolations(w, errs)
		return
	}
	now := s.store.timestamp()
	v := ehr.Visit{
		ID:          uuid.NewString(),
		PatientID:   req.PatientID,
		ProviderID:  req.ProviderID,
		LocationID:  req.LocationID,
		Type:        req.Type,
		Status:      ehr.VisitStatusCheckedIn,
		Reason:      req.Reason,
		CheckInTime: now,
		CreatedAt:   now,
	}
	s.store.mu.Lock()
	s.store.visits[v.ID] = v
	s.store.mu.Unlock()
	writeData(w, http.StatusCreated, v)
}

func (s *Server) checkOutVisit(w http.ResponseWriter, r *http.Request) {
	var req ehr.CheckOutVisitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.ID = mux.Vars(r)["id"]
	if errs := ehr.CheckOutVisitRequestSchema.Validate(req); len(errs) > 0 {
		writeViolations(w, errs)
		return
	}
	s.store.mu.Lock()
	v, ok := s.store.visits[req.ID]
	if !ok {
		s.store.mu.Unlock()
		notFound(w, "Visit")
		return
	}
	v.Status = ehr.VisitStatusCompleted
	v.CheckOutTime = req.CheckOutTime
	s.store.visits[v.ID] = v
	s.store.mu.Unlock()
	writeData(w, http.StatusOK, v)
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset := paging(r)
	s.store.mu.Lock()
	items := make([]ehr.Order, 0, len(s.store.orders))
	for _, o := range s.store.orders {
		if matchFilter(r, "patientId", o.PatientID) &&
			matchFilter(r, "urgency", string(o.Urgency)) &&
			matchFilter(r, "status", string(o.Status)) {
			items = append(items, o)
		}
	}
	s.store.mu.Unlock()
	sortByID(items, func(o ehr.Order) string { return o.StartTime + o.ID })
	writeData(w, http.StatusOK, page(items, limit, offset))
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req ehr.CreateOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := ehr.CreateOrderRequestSchema.Validate(req); len(errs) > 0 {
		writeViolations(w, errs)
		return
	}
	o := ehr.Order{
		ID:          uuid.NewString(),
		PatientID:   req.PatientID,
		VisitID:     req.VisitID,
		Type:        req.Type,
		Urgency:     req.Urgency,
		Status:      ehr.OrderStatusActive,
		Description: req.Description,
		StartTime:   req.StartTime,
		StopTime:    req.StopTime,
	}
	s.store.mu.Lock()
	s.store.orders[o.ID] = o
	s.store.mu.Unlock()
	writeData(w, http.StatusCreated, o)
}

func (s *Server) discontinueOrder(w http.ResponseWriter, r *http.Request) {
	var req ehr.DiscontinueOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.ID = mux.Vars(r)["id"]
	if errs := ehr.DiscontinueOrderRequestSchema.Validate(req); len(errs) > 0 {
		writeViolations(w, errs)
		return
	}
	s.store.mu.Lock()
	o, ok := s.store.orders[req.ID]
	if !ok {
		s.store.mu.Unlock()
		notFound(w, "Order")
		return
	}
	o.Status = ehr.OrderStatusDiscontinued
	o.DiscontinueReason = req.Reason
	o.DiscontinuedAt = s.store.timestamp()
	s.store.orders[o.ID] = o
	s.store.mu.Unlock()
	writeData(w, http.StatusOK, o)
}

func (s *Server) listMedications(w http.ResponseWriter, r *http.Request) {
	limit, offset := paging(r)
	s.store.mu.Lock()
	items := make([]ehr.Medication, 0, len(s.store.medications))
	for _, m := range s.store.medications {
		if matchFilter(r, "patientId", m.PatientID) && matchFilter(r, "status", string(m.Status)) {
			items = append(items, m)
		}
	}
	s.store.mu.Unlock()
	sortByID(items, func(m ehr.Medication) string { return m.DrugName + m.ID })
	writeData(w, http.StatusOK, page(items, limit, offset))
}

func (s *Server) createMedication(w http.ResponseWriter, r *http.Request) {
	var req ehr.CreateMedicationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := ehr.CreateMedicationRequestSchema.Validate(req); len(errs) > 0 {
		writeViolations(w, errs)
		return
	}
	m := ehr.Medication{
		ID:         uuid.NewString(),
		PatientID:  req.PatientID,
		DrugName:   req.DrugName,
		RxNormCode: req.RxNormCode,
		DoseAmount: req.DoseAmount,
		DoseUnit:   req.DoseUnit,
		Route:      req.Route,
		Frequency:  req.Frequency,
		DaysSupply: req.DaysSupply,
		Refills:    req.Refills,
		Status:     ehr.MedicationStatusActive,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
	}
	s.store.mu.Lock()
	s.store.medications[m.ID] = m
	s.store.mu.Unlock()
	writeData(w, http.StatusCreated, m)
}

func (s *Server) discontinueMedication(w http.ResponseWriter, r *http.Request) {
	var req ehr.DiscontinueMedicationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.ID = mux.Vars(r)["id"]
	if errs := ehr.DiscontinueMedicationRequestSchema.Validate(req); len(errs) > 0 {
		writeViolations(w, errs)
		return
	}
	s.store.mu.Lock()
	m, ok := s.store.medications[req.ID]
	if !ok {
		s.store.mu.Unlock()
		notFound(w, "Medication")
		return
	}
	m.Status = ehr.MedicationStatusDiscontinued
	m.DiscontinueReason = req.Reason
	m.DiscontinuedDate = req.DiscontinuedDate
	s.store.medications[m.ID] = m
	s.store.mu.Unlock()
	writeData(w, http.StatusOK, m)
}

func (s *Server) listAllergies(w http.ResponseWriter, r *http.Request) {
	limit, offset := paging(r)
	s.store.mu.Lock()
	items := make([]ehr.Allergy, 0, len(s.store.allergies))
	for _, a := range s.store.allergies {
		if matchFilter(r, "patientId", a.PatientID) {
			items = append(items, a)
		}
	}
	s.store.mu.Unlock()
	sortByID(items, func(a ehr.Allergy) string { return a.Allergen + a.ID })
	writeData(w, http.StatusOK, page(items, limit, offset))
}

func (s *Server) createAllergy(w http.ResponseWriter, r *http.Request) {
	var req ehr.CreateAllergyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := ehr.CreateAllergyRequestSchema.Validate(req); len(errs) > 0 {
		writeViolations(w, errs)
		return
	}
	a := ehr.Allergy{
		ID:        uuid.NewString(),
		PatientID: req.PatientID,
		Allergen:  req.Allergen,
		Category:  req.Category,
		Severity:  req.Severity,
		Reaction:  req.Reaction,
		Status:    ehr.AllergyStatusActive,
		OnsetDate: req.OnsetDate,
	}
	s.store.mu.Lock()
	s.store.allergies[a.ID] = a
	s.store.mu.Unlock()
	writeData(w, http.StatusCreated, a)
}

func (s *Server) listProblems(w http.ResponseWriter, r *http.Request) {
	limit, offset := paging(r)
	s.store.mu.Lock()
	items := make([]ehr.Problem, 0, len(s.store.problems))
	for _, p := range s.store.problems {
		if matchFilter(r, "patientId", p.PatientID) && matchFilter(r, "status", string(p.Status)) {
			items = append(items, p)
		}
	}
	s.store.mu.Unlock()
	sortByID(items, func(p ehr.Problem) string { return p.OnsetDate + p.ID })
	writeData(w, http.StatusOK, page(items, limit, offset))
}

func (s *Server) createProblem(w http.ResponseWriter, r *http.Request) {
	var req ehr.CreateProblemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := ehr.CreateProblemRequestSchema.Validate(req); len(errs) > 0 {
		writeViolations(w, errs)
		return
	}
	p := ehr.Problem{
		ID:          uuid.NewString(),
		PatientID:   req.PatientID,
		ICD10Code:   req.ICD10Code,
		Description: req.Description,
		Status:      ehr.ProblemStatusActive,
		OnsetDate:   req.OnsetDate,
	}
	s.store.mu.Lock()
	s.store.problems[p.ID] = p
	s.store.mu.Unlock()
	writeData(w, http.StatusCreated, p)
}

func (s *Server) resolveProblem(w http.ResponseWriter, r *http.Request) {
	var req ehr.ResolveProblemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.ID = mux.Vars(r)["id"]
	if errs := ehr.ResolveProblemRequestSchema.Validate(req); len(errs) > 0 {
		writeViolations(w, errs)
		return
	}
	s.store.mu.Lock()
	p, ok := s.store.problems[req.ID]
	if !ok {
		s.store.mu.Unlock()
		notFound(w, "Problem")
		return
	}
	p.Status = ehr.ProblemStatusResolved
	p.ResolvedDate = req.ResolvedDate
	s.store.problems[p.ID] = p
	s.store.mu.Unlock()
	writeData(w, http.StatusOK, p)
}

func (s *Server) listVitals(w http.ResponseWriter, r *http.Request) {
	limit, offset := paging(r)
	s.store.mu.Lock()
	items := make([]ehr.Vital, 0, len(s.store.vitals))
	for _, v := range s.store.vitals {
		if matchFilter(r, "patientId", v.PatientID) && matchFilter(r, "visitId", v.VisitID) {
			items = append(items, v)
		}
	}
	s.store.mu.Unlock()
	sortByID(items, func(v ehr.Vital) string { return v.RecordedAt + v.ID })
	writeData(w, http.StatusOK, page(items, limit, offset))
}

func (s *Server) recordVital(w http.ResponseWriter, r *http.Request) {
	var req ehr.RecordVitalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := ehr.RecordVitalRequestSchema.Validate(req); len(errs) > 0 {
		writeViolations(w, errs)
		return
	}
	v := ehr.Vital{
		ID:         uuid.NewString(),
		PatientID:  req.PatientID,
		VisitID:    req.VisitID,
		Type:       req.Type,
		Value:      req.Value,
		Unit:       req.Unit,
		Systolic:   req.Systolic,
		Diastolic:  req.Diastolic,
		RecordedAt: req.RecordedAt,
	}
	s.store.mu.Lock()
	s.store.vitals[v.ID] = v
	s.store.mu.Unlock()
	writeData(w, http.StatusCreated, v)
}

func (s *Server) listLabResults(w http.ResponseWriter, r *http.Request) {
	limit, offset := paging(r)
	s.store.mu.Lock()
	items := make([]ehr.LabResult, 0, len(s.store.labResults))
	for _, l := range s.store.labResults {
		if matchFilter(r, "patientId", l.PatientID) && matchFilter(r, "flag", string(l.Flag)) {
			items = append(items, l)
		}
	}
	s.store.mu.Unlock()
	sortByID(items, func(l ehr.LabResult) string { return l.CollectedAt + l.ID })
	writeData(w, http.StatusOK, page(items, limit, offset))
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	limit, offset := paging(r)
	s.store.mu.Lock()
	items := make([]ehr.Document, 0, len(s.store.documents))
	for _, d := range s.store.documents {
		if matchFilter(r, "patientId", d.PatientID) {
			items = append(items, d)
		}
	}
	s.store.mu.Unlock()
	sortByID(items, func(d ehr.Document) string { return d.CreatedAt + d.ID })
	writeData(w, http.StatusOK, page(items, limit, offset))
}

func (s *Server) listAppointments(w http.ResponseWriter, r *http.Request) {
	limit, offset := paging(r)
	date := r.URL.Query().Get("date")
	s.store.mu.Lock()
	items := make([]ehr.Appointment, 0, len(s.store.appointments))
	for _, a := range s.store.appointments {
		if !matchFilter(r, "patientId", a.PatientID) ||
			!matchFilter(r, "providerId", a.ProviderID) ||
			!matchFilter(r, "locationId", a.LocationID) {
			continue
		}
		if date != "" && (len(a.ScheduledDatetime) < 10 || a.ScheduledDatetime[:10] != date) {
			continue
		}
		items = append(items, a)
	}
	s.store.mu.Unlock()
	sortByID(items, func(a ehr.Appointment) string { return a.ScheduledDatetime + a.ID })
	writeData(w, http.StatusOK, page(items, limit, offset))
}

func (s *Server) getAppointment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.store.mu.Lock()
	a, ok := s.store.appointments[id]
	s.store.mu.Unlock()
	if !ok {
		notFound(w, "Appointment")
		return
	}
	writeData(w, http.StatusOK, a)
}

func (s *Server) createAppointment(w http.ResponseWriter, r *http.Request) {
	var req ehr.CreateAppointmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := ehr.CreateAppointmentRequestSchema.Validate(req); len(errs) > 0 {
		writeViolations(w, errs)
		return
	}
	end, err := ehr.ScheduledEnd(req.ScheduledDatetime, req.DurationMinutes, req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	duration := req.DurationMinutes
	if duration <= 0 {
		duration = ehr.DefaultDurationMinutes(req.Type)
	}
	a := ehr.Appointment{
		ID:                   uuid.NewString(),
		PatientID:            req.PatientID,
		ProviderID:           req.ProviderID,
		LocationID:           req.LocationID,
		Type:                 req.Type,
		Status:               ehr.AppointmentStatusScheduled,
		ScheduledDatetime:    req.ScheduledDatetime,
		DurationMinutes:      duration,
		ScheduledEndDatetime: end,
		Notes:                req.Notes,
	}
	s.store.mu.Lock()
	s.store.appointments[a.ID] = a
	s.store.mu.Unlock()
	writeData(w, http.StatusCreated, a)
}

func (s *Server) updateAppointment(w http.ResponseWriter, r *http.Request) {
	var req ehr.UpdateAppointmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.ID = mux.Vars(r)["id"]
	if errs := ehr.UpdateAppointmentRequestSchema.Validate(req); len(errs) > 0 {
		writeViolations(w, errs)
		return
	}
	s.store.mu.Lock()
	a, ok := s.store.appointments[req.ID]
	if !ok {
		s.store.mu.Unlock()
		notFound(w, "Appointment")
		return
	}
	if req.ProviderID != nil {
		a.ProviderID = *req.ProviderID
	}
	if req.LocationID != nil {
		a.LocationID = *req.LocationID
	}
	if req.Type != nil {
		a.Type = *req.Type
	}
	if req.ScheduledDatetime != nil {
		a.ScheduledDatetime = *req.ScheduledDatetime
	}
	if req.DurationMinutes != nil {
		a.DurationMinutes = *req.DurationMinutes
	}
	if req.Notes != nil {
		a.Notes = *req.Notes
	}
	if end, err := ehr.ScheduledEnd(a.ScheduledDatetime, a.DurationMinutes, a.Type); err == nil {
		a.ScheduledEndDatetime = end
	}
	s.store.appointments[a.ID] = a
	s.store.mu.Unlock()
	writeData(w, http.StatusOK, a)
}

func (s *Server) cancelAppointment(w http.ResponseWriter, r *http.Request) {
	var req ehr.CancelAppointmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.ID = mux.Vars(r)["id"]
	if errs := ehr.CancelAppointmentRequestSchema.Validate(req); len(errs) > 0 {
		writeViolations(w, errs)
		return
	}
	s.store.mu.Lock()
	a, ok := s.store.appointments[req.ID]
	if !ok {
		s.store.mu.Unlock()
		notFound(w, "Appointment")
		return
	}
	a.Status = ehr.AppointmentStatusCancelled
	a.CancelReason = req.Reason
	s.store.appointments[a.ID] = a
	s.store.mu.Unlock()
	writeData(w, http.StatusOK, a)
}

func (s *Server) checkInAppointment(w http.ResponseWriter, r *http.Request) {
	var req ehr.CheckInAppointmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.ID = mux.Vars(r)["id"]
	if errs := ehr.CheckInAppointmentRequestSchema.Validate(req); len(errs) > 0 {
		writeViolations(w, errs)
		return
	}
	s.store.mu.Lock()
	a, ok := s.store.appointments[req.ID]
	if !ok {
		s.store.mu.Unlock()
		notFound(w, "Appointment")
		return
	}
	a.Status = ehr.AppointmentStatusCheckedIn
	a.CheckInTime = req.CheckInTime
	s.store.appointments[a.ID] = a
	s.store.mu.Unlock()
	writeData(w, http.StatusOK, a)
}
