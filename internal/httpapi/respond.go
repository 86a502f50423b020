package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"hms/clinical/internal/store"

	"github.com/google/uuid"
)

type errorResponse struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// mapError turns store sentinels into the caller-visible classification:
// not-found, conflict, validation, or an opaque store failure.
func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, store.ErrAppointmentNotFound):
		return http.StatusNotFound, "appointment_not_found", "appointment not found"
	case errors.Is(err, store.ErrPatientNotFound):
		return http.StatusNotFound, "patient_not_found", "patient not found"
	case errors.Is(err, store.ErrRecordNotFound):
		return http.StatusNotFound, "record_not_found", "medical record not found"
	case errors.Is(err, store.ErrSlotTaken):
		return http.StatusConflict, "slot_taken", "the selected time slot is not available"
	case errors.Is(err, store.ErrConcurrentUpdate):
		return http.StatusConflict, "concurrent_update", "the record was modified by another request, refresh and retry"
	case errors.Is(err, store.ErrDuplicateEmail):
		return http.StatusBadRequest, "duplicate_email", "a patient with this email already exists"
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	status, code, msg := mapError(err)
	writeError(w, status, code, msg)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Error: responseError{
			Code:    code,
			Message: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return false
	}
	return true
}

func isValidUUID(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}
