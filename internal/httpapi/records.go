package httpapi

import (
	"net/http"
	"strings"
	"time"

	"hms/clinical/internal/models"
	"hms/clinical/internal/store"
)

type RecordHandler struct {
	store store.RecordStore
	now   func() time.Time
}

type RecordOptions struct {
	Now func() time.Time
}

func NewRecordHandler(st store.RecordStore, options RecordOptions) *RecordHandler {
	now := options.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &RecordHandler{store: st, now: now}
}

func (h *RecordHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/api/records", h.handleCollection)
	mux.HandleFunc("/api/records/patient/", h.handleByPatient)
	mux.HandleFunc("/api/records/doctor/", h.handleByDoctor)
	mux.HandleFunc("/api/records/", h.handleItem)
	return mux
}

var recordStatuses = []string{
	models.RecordStatusActive,
	models.RecordStatusArchived,
	models.RecordStatusDeleted,
}

func validRecordStatus(status string) bool {
	for _, s := range recordStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type recordRequest struct {
	ID           string    `json:"id,omitempty"`
	PatientID    string    `json:"patient_id"`
	VisitDate    time.Time `json:"visit_date"`
	Diagnosis    string    `json:"diagnosis"`
	Treatment    string    `json:"treatment"`
	Prescription string    `json:"prescription"`
	Notes        string    `json:"notes"`
	DoctorID     string    `json:"doctor_id"`
	Attachments  []string  `json:"attachments"`
	Status       string    `json:"status,omitempty"`
}

func (r *recordRequest) validate(w http.ResponseWriter) bool {
	r.PatientID = strings.TrimSpace(r.PatientID)
	r.DoctorID = strings.TrimSpace(r.DoctorID)
	if r.PatientID == "" || r.DoctorID == "" || r.Diagnosis == "" || r.Treatment == "" || r.Prescription == "" || r.VisitDate.IsZero() {
		writeError(w, http.StatusBadRequest, "invalid_request", "patient_id, doctor_id, visit_date, diagnosis, treatment, and prescription are required")
		return false
	}
	if !isValidUUID(r.PatientID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "patient_id must be a UUID")
		return false
	}
	return true
}

func (h *RecordHandler) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		records, err := h.store.ListRecords(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, records)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *RecordHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.validate(w) {
		return
	}
	// Visit dates describe care already given; future dates are rejected.
	if req.VisitDate.After(h.now()) {
		writeError(w, http.StatusBadRequest, "visit_in_future", "cannot create medical record with a future visit date")
		return
	}

	record, err := h.store.CreateRecord(r.Context(), store.CreateRecordInput{
		PatientID:    req.PatientID,
		VisitDate:    req.VisitDate,
		Diagnosis:    req.Diagnosis,
		Treatment:    req.Treatment,
		Prescription: req.Prescription,
		Notes:        req.Notes,
		DoctorID:     req.DoctorID,
		Attachments:  req.Attachments,
		CreatedAt:    h.now(),
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *RecordHandler) handleByPatient(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	patientID := strings.TrimPrefix(r.URL.Path, "/api/records/patient/")
	if !isValidUUID(patientID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "patient id must be a UUID")
		return
	}

	records, err := h.store.ListRecordsByPatient(r.Context(), patientID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if len(records) == 0 {
		writeError(w, http.StatusNotFound, "no_records", "no medical records found for patient")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *RecordHandler) handleByDoctor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	doctorID := strings.TrimPrefix(r.URL.Path, "/api/records/doctor/")
	if doctorID == "" || strings.Contains(doctorID, "/") {
		writeError(w, http.StatusBadRequest, "invalid_request", "doctor id is required")
		return
	}

	records, err := h.store.ListRecordsByDoctor(r.Context(), doctorID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if len(records) == 0 {
		writeError(w, http.StatusNotFound, "no_records", "no medical records found for doctor")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *RecordHandler) handleItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/records/")

	if id, ok := strings.CutSuffix(rest, "/status"); ok {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleStatusUpdate(w, r, id)
		return
	}

	if !isValidUUID(rest) {
		writeError(w, http.StatusBadRequest, "invalid_request", "record id must be a UUID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		record, err := h.store.GetRecord(r.Context(), rest)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	case http.MethodPut:
		h.handleUpdate(w, r, rest)
	case http.MethodDelete:
		if err := h.store.DeleteRecord(r.Context(), rest); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *RecordHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var req recordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ID != id {
		writeError(w, http.StatusBadRequest, "id_mismatch", "record id in path does not match payload")
		return
	}
	if !req.validate(w) {
		return
	}

	if _, err := h.store.GetRecord(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	if req.VisitDate.After(h.now()) {
		writeError(w, http.StatusBadRequest, "visit_in_future", "cannot move medical record to a future visit date")
		return
	}

	err := h.store.UpdateRecord(r.Context(), store.UpdateRecordInput{
		ID:           id,
		PatientID:    req.PatientID,
		VisitDate:    req.VisitDate,
		Diagnosis:    req.Diagnosis,
		Treatment:    req.Treatment,
		Prescription: req.Prescription,
		Notes:        req.Notes,
		DoctorID:     req.DoctorID,
		Attachments:  req.Attachments,
		Status:       req.Status,
		UpdatedAt:    h.now(),
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecordHandler) handleStatusUpdate(w http.ResponseWriter, r *http.Request, id string) {
	if !isValidUUID(id) {
		writeError(w, http.StatusBadRequest, "invalid_request", "record id must be a UUID")
		return
	}

	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.store.GetRecord(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	if !validRecordStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "invalid_status",
			"invalid status, must be one of: "+strings.Join(recordStatuses, ", "))
		return
	}

	if err := h.store.UpdateRecordStatus(r.Context(), id, req.Status, h.now()); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
