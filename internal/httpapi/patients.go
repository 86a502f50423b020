package httpapi

import (
	"net/http"
	"strings"
	"time"

	"hms/clinical/internal/store"
)

type PatientHandler struct {
	store store.PatientStore
	now   func() time.Time
}

type PatientOptions struct {
	Now func() time.Time
}

func NewPatientHandler(st store.PatientStore, options PatientOptions) *PatientHandler {
	now := options.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &PatientHandler{store: st, now: now}
}

func (h *PatientHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/api/patients", h.handleCollection)
	mux.HandleFunc("/api/patients/search", h.handleSearch)
	mux.HandleFunc("/api/patients/", h.handleItem)
	return mux
}

type patientRequest struct {
	ID                    string    `json:"id,omitempty"`
	FirstName             string    `json:"first_name"`
	LastName              string    `json:"last_name"`
	DateOfBirth           time.Time `json:"date_of_birth"`
	Gender                string    `json:"gender"`
	Email                 string    `json:"email"`
	PhoneNumber           string    `json:"phone_number"`
	Address               string    `json:"address"`
	EmergencyContact      string    `json:"emergency_contact"`
	InsuranceProvider     string    `json:"insurance_provider"`
	InsurancePolicyNumber string    `json:"insurance_policy_number"`
}

func (r *patientRequest) trim() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
}

func (r *patientRequest) validate(w http.ResponseWriter) bool {
	if r.FirstName == "" || r.LastName == "" || r.Email == "" || r.DateOfBirth.IsZero() {
		writeError(w, http.StatusBadRequest, "invalid_request", "first_name, last_name, email, and date_of_birth are required")
		return false
	}
	return true
}

func (h *PatientHandler) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		patients, err := h.store.ListPatients(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, patients)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *PatientHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req patientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.trim()
	if !req.validate(w) {
		return
	}

	patient, err := h.store.CreatePatient(r.Context(), store.CreatePatientInput{
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		DateOfBirth:           req.DateOfBirth,
		Gender:                req.Gender,
		Email:                 req.Email,
		PhoneNumber:           req.PhoneNumber,
		Address:               req.Address,
		EmergencyContact:      req.EmergencyContact,
		InsuranceProvider:     req.InsuranceProvider,
		InsurancePolicyNumber: req.InsurancePolicyNumber,
		RegistrationDate:      h.now(),
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, patient)
}

func (h *PatientHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "search term cannot be empty")
		return
	}

	patients, err := h.store.SearchPatients(r.Context(), term)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, patients)
}

func (h *PatientHandler) handleItem(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/patients/")
	if !isValidUUID(id) {
		writeError(w, http.StatusBadRequest, "invalid_request", "patient id must be a UUID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		patient, err := h.store.GetPatient(r.Context(), id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, patient)
	case http.MethodPut:
		h.handleUpdate(w, r, id)
	case http.MethodDelete:
		if err := h.store.DeletePatient(r.Context(), id); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *PatientHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var req patientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ID != id {
		writeError(w, http.StatusBadRequest, "id_mismatch", "patient id in path does not match payload")
		return
	}
	req.trim()
	if !req.validate(w) {
		return
	}

	err := h.store.UpdatePatient(r.Context(), store.UpdatePatientInput{
		ID:                    id,
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		DateOfBirth:           req.DateOfBirth,
		Gender:                req.Gender,
		Email:                 req.Email,
		PhoneNumber:           req.PhoneNumber,
		Address:               req.Address,
		EmergencyContact:      req.EmergencyContact,
		InsuranceProvider:     req.InsuranceProvider,
		InsurancePolicyNumber: req.InsurancePolicyNumber,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
