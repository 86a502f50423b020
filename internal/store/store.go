package store

import (
	"context"
	"time"

	"hms/clinical/internal/models"
)

type CreateAppointmentInput struct {
	PatientID       string
	DoctorID        string
	StartTime       time.Time
	DurationMinutes int
	Type            string
	Notes           string
	CreatedAt       time.Time
}

// UpdateAppointmentInput is a full-record overwrite. Every field replaces
// the stored value; UpdatedAt is stamped by the caller.
type UpdateAppointmentInput struct {
	ID              string
	PatientID       string
	DoctorID        string
	StartTime       time.Time
	DurationMinutes int
	Type            string
	Status          string
	Notes           string
	UpdatedAt       time.Time
}

// AppointmentStore is the persistence collaborator the scheduling engine
// consumes. Implementations must report a concurrent modification of a
// row between read and write as ErrConcurrentUpdate, and a vanished row
// as the not-found sentinel.
type AppointmentStore interface {
	CreateAppointment(ctx context.Context, input CreateAppointmentInput) (models.Appointment, error)
	GetAppointment(ctx context.Context, id string) (models.Appointment, error)
	ListAppointments(ctx context.Context) ([]models.Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error)
	// BookedTimes returns the start instants of non-cancelled appointments
	// for the doctor within [dayStart, dayEnd).
	BookedTimes(ctx context.Context, doctorID string, dayStart, dayEnd time.Time) ([]time.Time, error)
	// HasConflict reports whether an active appointment for the doctor
	// starts at exactly startTime. Rows whose id equals excludeID, when
	// non-empty, are left out of the check so an appointment never
	// conflicts with its own prior state.
	HasConflict(ctx context.Context, doctorID string, startTime time.Time, excludeID string) (bool, error)
	UpdateAppointment(ctx context.Context, input UpdateAppointmentInput) error
	UpdateAppointmentStatus(ctx context.Context, id, status string, updatedAt time.Time) error
	DeleteAppointment(ctx context.Context, id string) error
}

type CreatePatientInput struct {
	FirstName             string
	LastName              string
	DateOfBirth           time.Time
	Gender                string
	Email                 string
	PhoneNumber           string
	Address               string
	EmergencyContact      string
	InsuranceProvider     string
	InsurancePolicyNumber string
	RegistrationDate      time.Time
}

type UpdatePatientInput struct {
	ID                    string
	FirstName             string
	LastName              string
	DateOfBirth           time.Time
	Gender                string
	Email                 string
	PhoneNumber           string
	Address               string
	EmergencyContact      string
	InsuranceProvider     string
	InsurancePolicyNumber string
}

type PatientStore interface {
	CreatePatient(ctx context.Context, input CreatePatientInput) (models.Patient, error)
	GetPatient(ctx context.Context, id string) (models.Patient, error)
	ListPatients(ctx context.Context) ([]models.Patient, error)
	SearchPatients(ctx context.Context, term string) ([]models.Patient, error)
	UpdatePatient(ctx context.Context, input UpdatePatientInput) error
	DeletePatient(ctx context.Context, id string) error
}

type CreateRecordInput struct {
	PatientID    string
	VisitDate    time.Time
	Diagnosis    string
	Treatment    string
	Prescription string
	Notes        string
	DoctorID     string
	Attachments  []string
	CreatedAt    time.Time
}

type UpdateRecordInput struct {
	ID           string
	PatientID    string
	VisitDate    time.Time
	Diagnosis    string
	Treatment    string
	Prescription string
	Notes        string
	DoctorID     string
	Attachments  []string
	Status       string
	UpdatedAt    time.Time
}

type RecordStore interface {
	CreateRecord(ctx context.Context, input CreateRecordInput) (models.MedicalRecord, error)
	GetRecord(ctx context.Context, id string) (models.MedicalRecord, error)
	ListRecords(ctx context.Context) ([]models.MedicalRecord, error)
	ListRecordsByPatient(ctx context.Context, patientID string) ([]models.MedicalRecord, error)
	ListRecordsByDoctor(ctx context.Context, doctorID string) ([]models.MedicalRecord, error)
	UpdateRecord(ctx context.Context, input UpdateRecordInput) error
	UpdateRecordStatus(ctx context.Context, id, status string, updatedAt time.Time) error
	DeleteRecord(ctx context.Context, id string) error
}
