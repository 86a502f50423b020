package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hms/clinical/internal/models"
	"hms/clinical/internal/store"
)

type fakeRecordStore struct {
	createFn       func(ctx context.Context, input store.CreateRecordInput) (models.MedicalRecord, error)
	getFn          func(ctx context.Context, id string) (models.MedicalRecord, error)
	listFn         func(ctx context.Context) ([]models.MedicalRecord, error)
	listPatientFn  func(ctx context.Context, patientID string) ([]models.MedicalRecord, error)
	listDoctorFn   func(ctx context.Context, doctorID string) ([]models.MedicalRecord, error)
	updateFn       func(ctx context.Context, input store.UpdateRecordInput) error
	updateStatusFn func(ctx context.Context, id, status string, updatedAt time.Time) error
	deleteFn       func(ctx context.Context, id string) error
}

func (f fakeRecordStore) CreateRecord(ctx context.Context, input store.CreateRecordInput) (models.MedicalRecord, error) {
	if f.createFn == nil {
		return models.MedicalRecord{}, nil
	}
	return f.createFn(ctx, input)
}

func (f fakeRecordStore) GetRecord(ctx context.Context, id string) (models.MedicalRecord, error) {
	if f.getFn == nil {
		return models.MedicalRecord{}, nil
	}
	return f.getFn(ctx, id)
}

func (f fakeRecordStore) ListRecords(ctx context.Context) ([]models.MedicalRecord, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx)
}

func (f fakeRecordStore) ListRecordsByPatient(ctx context.Context, patientID string) ([]models.MedicalRecord, error) {
	if f.listPatientFn == nil {
		return nil, nil
	}
	return f.listPatientFn(ctx, patientID)
}

func (f fakeRecordStore) ListRecordsByDoctor(ctx context.Context, doctorID string) ([]models.MedicalRecord, error) {
	if f.listDoctorFn == nil {
		return nil, nil
	}
	return f.listDoctorFn(ctx, doctorID)
}

func (f fakeRecordStore) UpdateRecord(ctx context.Context, input store.UpdateRecordInput) error {
	if f.updateFn == nil {
		return nil
	}
	return f.updateFn(ctx, input)
}

func (f fakeRecordStore) UpdateRecordStatus(ctx context.Context, id, status string, updatedAt time.Time) error {
	if f.updateStatusFn == nil {
		return nil
	}
	return f.updateStatusFn(ctx, id, status, updatedAt)
}

func (f fakeRecordStore) DeleteRecord(ctx context.Context, id string) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, id)
}

const testRecordID = "dddddddd-dddd-dddd-dddd-dddddddddddd"

func recordPayload(visit time.Time) map[string]interface{} {
	return map[string]interface{}{
		"patient_id":   testPatientID,
		"visit_date":   visit.Format(time.RFC3339),
		"diagnosis":    "flu",
		"treatment":    "rest",
		"prescription": "paracetamol",
		"doctor_id":    "D1",
	}
}

func newRecordHandler(st store.RecordStore) http.Handler {
	return NewRecordHandler(st, RecordOptions{Now: fixedNow}).Routes()
}

func TestCreateRecordSuccess(t *testing.T) {
	st := fakeRecordStore{
		createFn: func(ctx context.Context, input store.CreateRecordInput) (models.MedicalRecord, error) {
			return models.MedicalRecord{
				ID:        testRecordID,
				PatientID: input.PatientID,
				Status:    models.RecordStatusActive,
				CreatedAt: input.CreatedAt,
			}, nil
		},
	}

	resp := postJSON(t, newRecordHandler(st), "/api/records", recordPayload(fixedNow().Add(-24*time.Hour)))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var record models.MedicalRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if record.Status != models.RecordStatusActive {
		t.Fatalf("status = %q, want %q", record.Status, models.RecordStatusActive)
	}
}

func TestCreateRecordFutureVisit(t *testing.T) {
	resp := postJSON(t, newRecordHandler(fakeRecordStore{}), "/api/records", recordPayload(fixedNow().Add(24*time.Hour)))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestRecordStatusVocabulary(t *testing.T) {
	written := ""
	st := fakeRecordStore{
		getFn: func(ctx context.Context, id string) (models.MedicalRecord, error) {
			return models.MedicalRecord{ID: id, Status: models.RecordStatusActive}, nil
		},
		updateStatusFn: func(ctx context.Context, id, status string, updatedAt time.Time) error {
			written = status
			return nil
		},
	}
	h := newRecordHandler(st)

	resp := putJSON(t, h, "/api/records/"+testRecordID+"/status", map[string]string{"status": "Open"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("invalid status: expected 400, got %d", resp.Code)
	}

	resp = putJSON(t, h, "/api/records/"+testRecordID+"/status", map[string]string{"status": models.RecordStatusArchived})
	if resp.Code != http.StatusNoContent {
		t.Fatalf("archive: expected 204, got %d", resp.Code)
	}
	if written != models.RecordStatusArchived {
		t.Fatalf("status written = %q, want %q", written, models.RecordStatusArchived)
	}
}

func TestListRecordsByPatientEmptyIsNotFound(t *testing.T) {
	st := fakeRecordStore{
		listPatientFn: func(ctx context.Context, patientID string) ([]models.MedicalRecord, error) {
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/records/patient/"+testPatientID, nil)
	resp := httptest.NewRecorder()
	newRecordHandler(st).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestUpdateRecordIDMismatch(t *testing.T) {
	touched := false
	st := fakeRecordStore{
		getFn: func(ctx context.Context, id string) (models.MedicalRecord, error) {
			touched = true
			return models.MedicalRecord{}, nil
		},
	}
	payload := recordPayload(fixedNow().Add(-time.Hour))
	payload["id"] = testPatientID

	resp := putJSON(t, newRecordHandler(st), "/api/records/"+testRecordID, payload)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if touched {
		t.Fatal("store accessed despite id mismatch")
	}
}

func TestDeleteRecordNotFound(t *testing.T) {
	st := fakeRecordStore{
		deleteFn: func(ctx context.Context, id string) error {
			return store.ErrRecordNotFound
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/records/"+testRecordID, nil)
	resp := httptest.NewRecorder()
	newRecordHandler(st).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}
