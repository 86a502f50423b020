package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"hms/clinical/internal/models"
	"hms/clinical/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const recordColumns = `id, patient_id, visit_date, diagnosis, treatment, prescription, notes, doctor_id, attachments, status, revision, created_at, updated_at`

func scanRecord(row pgx.Row) (models.MedicalRecord, error) {
	var r models.MedicalRecord
	var notes sql.NullString
	var updatedAt sql.NullTime
	err := row.Scan(&r.ID, &r.PatientID, &r.VisitDate, &r.Diagnosis, &r.Treatment, &r.Prescription, &notes, &r.DoctorID, &r.Attachments, &r.Status, &r.Revision, &r.CreatedAt, &updatedAt)
	if err != nil {
		return models.MedicalRecord{}, err
	}
	r.Notes = notes.String
	r.UpdatedAt = nullTimePtr(updatedAt)
	return r, nil
}

func (s *Store) CreateRecord(ctx context.Context, input store.CreateRecordInput) (models.MedicalRecord, error) {
	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	record := models.MedicalRecord{
		ID:           uuid.NewString(),
		PatientID:    input.PatientID,
		VisitDate:    input.VisitDate,
		Diagnosis:    input.Diagnosis,
		Treatment:    input.Treatment,
		Prescription: input.Prescription,
		Notes:        input.Notes,
		DoctorID:     input.DoctorID,
		Attachments:  input.Attachments,
		Status:       models.RecordStatusActive,
		Revision:     1,
		CreatedAt:    createdAt,
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO medical_records (id, patient_id, visit_date, diagnosis, treatment, prescription, notes, doctor_id, attachments, status, revision, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, record.ID, record.PatientID, record.VisitDate, record.Diagnosis, record.Treatment, record.Prescription, nullString(record.Notes), record.DoctorID, record.Attachments, record.Status, record.Revision, record.CreatedAt)
	if err != nil {
		return models.MedicalRecord{}, err
	}
	return record, nil
}

func (s *Store) GetRecord(ctx context.Context, id string) (models.MedicalRecord, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM medical_records WHERE id = $1`, id)
	record, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.MedicalRecord{}, store.ErrRecordNotFound
	}
	return record, err
}

func (s *Store) ListRecords(ctx context.Context) ([]models.MedicalRecord, error) {
	return s.listRecords(ctx, `SELECT `+recordColumns+` FROM medical_records ORDER BY visit_date DESC`)
}

func (s *Store) ListRecordsByPatient(ctx context.Context, patientID string) ([]models.MedicalRecord, error) {
	return s.listRecords(ctx, `SELECT `+recordColumns+` FROM medical_records WHERE patient_id = $1 ORDER BY visit_date DESC`, patientID)
}

func (s *Store) ListRecordsByDoctor(ctx context.Context, doctorID string) ([]models.MedicalRecord, error) {
	return s.listRecords(ctx, `SELECT `+recordColumns+` FROM medical_records WHERE doctor_id = $1 ORDER BY visit_date DESC`, doctorID)
}

func (s *Store) listRecords(ctx context.Context, query string, args ...interface{}) ([]models.MedicalRecord, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MedicalRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

func (s *Store) UpdateRecord(ctx context.Context, input store.UpdateRecordInput) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var revision int64
	err = tx.QueryRow(ctx, `SELECT revision FROM medical_records WHERE id = $1`, input.ID).Scan(&revision)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = store.ErrRecordNotFound
		}
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE medical_records
		SET patient_id = $2, visit_date = $3, diagnosis = $4, treatment = $5, prescription = $6,
		    notes = $7, doctor_id = $8, attachments = $9, status = $10, updated_at = $11,
		    revision = revision + 1
		WHERE id = $1 AND revision = $12
	`, input.ID, input.PatientID, input.VisitDate, input.Diagnosis, input.Treatment, input.Prescription,
		nullString(input.Notes), input.DoctorID, input.Attachments, input.Status, input.UpdatedAt, revision)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM medical_records WHERE id = $1)`, input.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			err = store.ErrRecordNotFound
		} else {
			err = store.ErrConcurrentUpdate
		}
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) UpdateRecordStatus(ctx context.Context, id, status string, updatedAt time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE medical_records SET status = $2, updated_at = $3, revision = revision + 1
		WHERE id = $1
	`, id, status, updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrRecordNotFound
	}
	return nil
}

func (s *Store) DeleteRecord(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM medical_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrRecordNotFound
	}
	return nil
}
