package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"hms/clinical/internal/models"
	"hms/clinical/internal/store"
)

type fakePatientStore struct {
	createFn func(ctx context.Context, input store.CreatePatientInput) (models.Patient, error)
	getFn    func(ctx context.Context, id string) (models.Patient, error)
	listFn   func(ctx context.Context) ([]models.Patient, error)
	searchFn func(ctx context.Context, term string) ([]models.Patient, error)
	updateFn func(ctx context.Context, input store.UpdatePatientInput) error
	deleteFn func(ctx context.Context, id string) error
}

func (f fakePatientStore) CreatePatient(ctx context.Context, input store.CreatePatientInput) (models.Patient, error) {
	if f.createFn == nil {
		return models.Patient{}, nil
	}
	return f.createFn(ctx, input)
}

func (f fakePatientStore) GetPatient(ctx context.Context, id string) (models.Patient, error) {
	if f.getFn == nil {
		return models.Patient{}, nil
	}
	return f.getFn(ctx, id)
}

func (f fakePatientStore) ListPatients(ctx context.Context) ([]models.Patient, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx)
}

func (f fakePatientStore) SearchPatients(ctx context.Context, term string) ([]models.Patient, error) {
	if f.searchFn == nil {
		return nil, nil
	}
	return f.searchFn(ctx, term)
}

func (f fakePatientStore) UpdatePatient(ctx context.Context, input store.UpdatePatientInput) error {
	if f.updateFn == nil {
		return nil
	}
	return f.updateFn(ctx, input)
}

func (f fakePatientStore) DeletePatient(ctx context.Context, id string) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, id)
}

func patientPayload() map[string]interface{} {
	return map[string]interface{}{
		"first_name":    "Ada",
		"last_name":     "Lovelace",
		"date_of_birth": "1990-12-10T00:00:00Z",
		"email":         "ada@example.com",
		"phone_number":  "5550001",
	}
}

func TestCreatePatientSuccess(t *testing.T) {
	st := fakePatientStore{
		createFn: func(ctx context.Context, input store.CreatePatientInput) (models.Patient, error) {
			return models.Patient{
				ID:               testPatientID,
				FirstName:        input.FirstName,
				LastName:         input.LastName,
				Email:            input.Email,
				RegistrationDate: input.RegistrationDate,
			}, nil
		},
	}
	h := NewPatientHandler(st, PatientOptions{Now: fixedNow}).Routes()

	resp := postJSON(t, h, "/api/patients", patientPayload())

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var patient models.Patient
	if err := json.NewDecoder(resp.Body).Decode(&patient); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if patient.ID == "" || patient.RegistrationDate.IsZero() {
		t.Fatalf("unexpected patient: %+v", patient)
	}
}

func TestCreatePatientDuplicateEmail(t *testing.T) {
	st := fakePatientStore{
		createFn: func(ctx context.Context, input store.CreatePatientInput) (models.Patient, error) {
			return models.Patient{}, store.ErrDuplicateEmail
		},
	}
	h := NewPatientHandler(st, PatientOptions{}).Routes()

	resp := postJSON(t, h, "/api/patients", patientPayload())

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestCreatePatientMissingFields(t *testing.T) {
	h := NewPatientHandler(fakePatientStore{}, PatientOptions{}).Routes()

	payload := patientPayload()
	delete(payload, "email")
	resp := postJSON(t, h, "/api/patients", payload)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestSearchPatientsEmptyTerm(t *testing.T) {
	h := NewPatientHandler(fakePatientStore{}, PatientOptions{}).Routes()

	req := httptest.NewRequest(http.MethodGet, "/api/patients/search?q=+", nil)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestSearchPatients(t *testing.T) {
	st := fakePatientStore{
		searchFn: func(ctx context.Context, term string) ([]models.Patient, error) {
			if term != "ada" {
				t.Fatalf("search term = %q, want %q", term, "ada")
			}
			return []models.Patient{{ID: testPatientID, FirstName: "Ada"}}, nil
		},
	}
	h := NewPatientHandler(st, PatientOptions{}).Routes()

	req := httptest.NewRequest(http.MethodGet, "/api/patients/search?q=ada", nil)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
}

func TestUpdatePatientIDMismatch(t *testing.T) {
	touched := false
	st := fakePatientStore{
		updateFn: func(ctx context.Context, input store.UpdatePatientInput) error {
			touched = true
			return nil
		},
	}
	h := NewPatientHandler(st, PatientOptions{}).Routes()

	payload := patientPayload()
	payload["id"] = "cccccccc-cccc-cccc-cccc-cccccccccccc"
	resp := putJSON(t, h, "/api/patients/"+testPatientID, payload)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if touched {
		t.Fatal("store accessed despite id mismatch")
	}
}

func TestUpdatePatientConcurrentConflict(t *testing.T) {
	st := fakePatientStore{
		updateFn: func(ctx context.Context, input store.UpdatePatientInput) error {
			return store.ErrConcurrentUpdate
		},
	}
	h := NewPatientHandler(st, PatientOptions{}).Routes()

	payload := patientPayload()
	payload["id"] = testPatientID
	resp := putJSON(t, h, "/api/patients/"+testPatientID, payload)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}
}

func TestDeletePatientNotFound(t *testing.T) {
	st := fakePatientStore{
		deleteFn: func(ctx context.Context, id string) error {
			return store.ErrPatientNotFound
		},
	}
	h := NewPatientHandler(st, PatientOptions{}).Routes()

	req := httptest.NewRequest(http.MethodDelete, "/api/patients/"+testPatientID, nil)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}
