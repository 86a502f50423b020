package models

import "time"

// MedicalRecord is one visit entry in a patient's electronic health record.
type MedicalRecord struct {
	ID           string     `json:"id"`
	PatientID    string     `json:"patient_id"`
	VisitDate    time.Time  `json:"visit_date"`
	Diagnosis    string     `json:"diagnosis"`
	Treatment    string     `json:"treatment"`
	Prescription string     `json:"prescription"`
	Notes        string     `json:"notes,omitempty"`
	DoctorID     string     `json:"doctor_id"`
	Attachments  []string   `json:"attachments,omitempty"`
	Status       string     `json:"status"`
	Revision     int64      `json:"revision"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

const (
	RecordStatusActive   = "Active"
	RecordStatusArchived = "Archived"
	RecordStatusDeleted  = "Deleted"
)
