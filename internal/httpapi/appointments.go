package httpapi

import (
	"net/http"
	"strings"
	"time"

	"hms/clinical/internal/scheduling"
	"hms/clinical/internal/store"
)

// AppointmentHandler serves the scheduling API. The clock is injectable
// so past-time validation is testable.
type AppointmentHandler struct {
	store store.AppointmentStore
	now   func() time.Time
}

type AppointmentOptions struct {
	Now func() time.Time
}

func NewAppointmentHandler(st store.AppointmentStore, options AppointmentOptions) *AppointmentHandler {
	now := options.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &AppointmentHandler{store: st, now: now}
}

func (h *AppointmentHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/api/appointments", h.handleCollection)
	mux.HandleFunc("/api/appointments/available-slots", h.handleAvailableSlots)
	mux.HandleFunc("/api/appointments/patient/", h.handleByPatient)
	mux.HandleFunc("/api/appointments/doctor/", h.handleByDoctor)
	mux.HandleFunc("/api/appointments/", h.handleItem)
	return mux
}

type createAppointmentRequest struct {
	PatientID       string    `json:"patient_id"`
	DoctorID        string    `json:"doctor_id"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Type            string    `json:"type"`
	Notes           string    `json:"notes"`
}

type updateAppointmentRequest struct {
	ID              string    `json:"id"`
	PatientID       string    `json:"patient_id"`
	DoctorID        string    `json:"doctor_id"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Type            string    `json:"type"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *AppointmentHandler) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		appointments, err := h.store.ListAppointments(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appointments)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *AppointmentHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.PatientID = strings.TrimSpace(req.PatientID)
	req.DoctorID = strings.TrimSpace(req.DoctorID)
	req.Type = strings.TrimSpace(req.Type)

	if req.PatientID == "" || req.DoctorID == "" || req.Type == "" || req.StartTime.IsZero() {
		writeError(w, http.StatusBadRequest, "invalid_request", "patient_id, doctor_id, type, and start_time are required")
		return
	}
	if !isValidUUID(req.PatientID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "patient_id must be a UUID")
		return
	}
	if req.DurationMinutes <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "duration_minutes must be positive")
		return
	}
	if err := scheduling.CheckStartTime(req.StartTime, h.now()); err != nil {
		writeError(w, http.StatusBadRequest, "start_in_past", "cannot create appointment in the past")
		return
	}

	taken, err := h.store.HasConflict(r.Context(), req.DoctorID, req.StartTime, "")
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if taken {
		writeStoreError(w, store.ErrSlotTaken)
		return
	}

	appointment, err := h.store.CreateAppointment(r.Context(), store.CreateAppointmentInput{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Type:            req.Type,
		Notes:           req.Notes,
		CreatedAt:       h.now(),
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, appointment)
}

func (h *AppointmentHandler) handleAvailableSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	doctorID := strings.TrimSpace(r.URL.Query().Get("doctor_id"))
	rawDate := strings.TrimSpace(r.URL.Query().Get("date"))
	if doctorID == "" || rawDate == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "doctor_id and date are required")
		return
	}
	date, err := time.ParseInLocation("2006-01-02", rawDate, time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "date must be formatted YYYY-MM-DD")
		return
	}

	booked, err := h.store.BookedTimes(r.Context(), doctorID, date, date.AddDate(0, 0, 1))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scheduling.Available(date, booked))
}

func (h *AppointmentHandler) handleByPatient(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	patientID := strings.TrimPrefix(r.URL.Path, "/api/appointments/patient/")
	if !isValidUUID(patientID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "patient id must be a UUID")
		return
	}

	appointments, err := h.store.ListByPatient(r.Context(), patientID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	// Zero rows are reported as absence, indistinguishable from an
	// unknown patient id.
	if len(appointments) == 0 {
		writeError(w, http.StatusNotFound, "no_appointments", "no appointments found for patient")
		return
	}
	writeJSON(w, http.StatusOK, appointments)
}

func (h *AppointmentHandler) handleByDoctor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	doctorID := strings.TrimPrefix(r.URL.Path, "/api/appointments/doctor/")
	if doctorID == "" || strings.Contains(doctorID, "/") {
		writeError(w, http.StatusBadRequest, "invalid_request", "doctor id is required")
		return
	}

	appointments, err := h.store.ListByDoctor(r.Context(), doctorID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if len(appointments) == 0 {
		writeError(w, http.StatusNotFound, "no_appointments", "no appointments found for doctor")
		return
	}
	writeJSON(w, http.StatusOK, appointments)
}

func (h *AppointmentHandler) handleItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/appointments/")

	if id, ok := strings.CutSuffix(rest, "/status"); ok {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleStatusUpdate(w, r, id)
		return
	}

	if !isValidUUID(rest) {
		writeError(w, http.StatusBadRequest, "invalid_request", "appointment id must be a UUID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		appointment, err := h.store.GetAppointment(r.Context(), rest)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appointment)
	case http.MethodPut:
		h.handleUpdate(w, r, rest)
	case http.MethodDelete:
		if err := h.store.DeleteAppointment(r.Context(), rest); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *AppointmentHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var req updateAppointmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// Identity check comes before any store access.
	if req.ID != id {
		writeError(w, http.StatusBadRequest, "id_mismatch", "appointment id in path does not match payload")
		return
	}

	req.PatientID = strings.TrimSpace(req.PatientID)
	req.DoctorID = strings.TrimSpace(req.DoctorID)
	req.Type = strings.TrimSpace(req.Type)

	if req.PatientID == "" || req.DoctorID == "" || req.Type == "" || req.StartTime.IsZero() {
		writeError(w, http.StatusBadRequest, "invalid_request", "patient_id, doctor_id, type, and start_time are required")
		return
	}
	if !isValidUUID(req.PatientID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "patient_id must be a UUID")
		return
	}
	if req.DurationMinutes <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "duration_minutes must be positive")
		return
	}
	if !scheduling.ValidStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "invalid_status",
			"invalid status, must be one of: "+strings.Join(scheduling.StatusVocabulary(), ", "))
		return
	}

	if _, err := h.store.GetAppointment(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}

	if err := scheduling.CheckStartTime(req.StartTime, h.now()); err != nil {
		writeError(w, http.StatusBadRequest, "start_in_past", "cannot move appointment to a time in the past")
		return
	}

	// The appointment's own row must not count as a conflict when only
	// its duration, type or notes change.
	taken, err := h.store.HasConflict(r.Context(), req.DoctorID, req.StartTime, id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if taken {
		writeStoreError(w, store.ErrSlotTaken)
		return
	}

	err = h.store.UpdateAppointment(r.Context(), store.UpdateAppointmentInput{
		ID:              id,
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Type:            req.Type,
		Status:          req.Status,
		Notes:           req.Notes,
		UpdatedAt:       h.now(),
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AppointmentHandler) handleStatusUpdate(w http.ResponseWriter, r *http.Request, id string) {
	if !isValidUUID(id) {
		writeError(w, http.StatusBadRequest, "invalid_request", "appointment id must be a UUID")
		return
	}

	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.store.GetAppointment(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	if !scheduling.ValidStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "invalid_status",
			"invalid status, must be one of: "+strings.Join(scheduling.StatusVocabulary(), ", "))
		return
	}

	if err := h.store.UpdateAppointmentStatus(r.Context(), id, req.Status, h.now()); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
