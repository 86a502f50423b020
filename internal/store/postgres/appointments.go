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

const appointmentColumns = `id, patient_id, doctor_id, start_time, duration_minutes, appointment_type, status, notes, revision, created_at, updated_at`

func scanAppointment(row pgx.Row) (models.Appointment, error) {
	var a models.Appointment
	var notes sql.NullString
	var updatedAt sql.NullTime
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.StartTime, &a.DurationMinutes, &a.Type, &a.Status, &notes, &a.Revision, &a.CreatedAt, &updatedAt)
	if err != nil {
		return models.Appointment{}, err
	}
	a.Notes = notes.String
	a.UpdatedAt = nullTimePtr(updatedAt)
	return a, nil
}

func (s *Store) CreateAppointment(ctx context.Context, input store.CreateAppointmentInput) (models.Appointment, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Appointment{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Fast-path rejection; the partial unique index is the authority.
	var taken bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1 AND start_time = $2 AND status <> $3
		)
	`, input.DoctorID, input.StartTime, models.StatusCancelled).Scan(&taken)
	if err != nil {
		return models.Appointment{}, err
	}
	if taken {
		err = store.ErrSlotTaken
		return models.Appointment{}, err
	}

	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	appointment := models.Appointment{
		ID:              uuid.NewString(),
		PatientID:       input.PatientID,
		DoctorID:        input.DoctorID,
		StartTime:       input.StartTime,
		DurationMinutes: input.DurationMinutes,
		Type:            input.Type,
		Status:          models.StatusScheduled,
		Notes:           input.Notes,
		Revision:        1,
		CreatedAt:       createdAt,
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, start_time, duration_minutes, appointment_type, status, notes, revision, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, appointment.ID, appointment.PatientID, appointment.DoctorID, appointment.StartTime, appointment.DurationMinutes, appointment.Type, appointment.Status, nullString(appointment.Notes), appointment.Revision, appointment.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			err = store.ErrSlotTaken
		}
		return models.Appointment{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Appointment{}, err
	}
	return appointment, nil
}

func (s *Store) GetAppointment(ctx context.Context, id string) (models.Appointment, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	appointment, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Appointment{}, store.ErrAppointmentNotFound
	}
	return appointment, err
}

func (s *Store) ListAppointments(ctx context.Context) ([]models.Appointment, error) {
	return s.listAppointments(ctx, `SELECT `+appointmentColumns+` FROM appointments ORDER BY start_time DESC`)
}

func (s *Store) ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	return s.listAppointments(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE patient_id = $1 ORDER BY start_time DESC`, patientID)
}

func (s *Store) ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	return s.listAppointments(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE doctor_id = $1 ORDER BY start_time DESC`, doctorID)
}

func (s *Store) listAppointments(ctx context.Context, query string, args ...interface{}) ([]models.Appointment, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, appointment)
	}
	return out, rows.Err()
}

func (s *Store) BookedTimes(ctx context.Context, doctorID string, dayStart, dayEnd time.Time) ([]time.Time, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT start_time FROM appointments
		WHERE doctor_id = $1 AND start_time >= $2 AND start_time < $3 AND status <> $4
		ORDER BY start_time
	`, doctorID, dayStart, dayEnd, models.StatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) HasConflict(ctx context.Context, doctorID string, startTime time.Time, excludeID string) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM appointments
		WHERE doctor_id = $1 AND start_time = $2 AND status <> $3`
	args := []interface{}{doctorID, startTime, models.StatusCancelled}

	if excludeID != "" {
		query += ` AND id <> $4`
		args = append(args, excludeID)
	}
	query += `)`

	var exists bool
	err := s.pool.QueryRow(ctx, query, args...).Scan(&exists)
	return exists, err
}

// UpdateAppointment overwrites every mutable field. The write is a
// compare-and-swap on the revision read at the start of the transaction;
// a zero-row update is re-checked for existence to distinguish a
// concurrent delete from a concurrent modification.
func (s *Store) UpdateAppointment(ctx context.Context, input store.UpdateAppointmentInput) error {
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
	err = tx.QueryRow(ctx, `SELECT revision FROM appointments WHERE id = $1`, input.ID).Scan(&revision)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = store.ErrAppointmentNotFound
		}
		return err
	}

	var taken bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1 AND start_time = $2 AND status <> $3 AND id <> $4
		)
	`, input.DoctorID, input.StartTime, models.StatusCancelled, input.ID).Scan(&taken)
	if err != nil {
		return err
	}
	if taken {
		err = store.ErrSlotTaken
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE appointments
		SET patient_id = $2, doctor_id = $3, start_time = $4, duration_minutes = $5,
		    appointment_type = $6, status = $7, notes = $8, updated_at = $9,
		    revision = revision + 1
		WHERE id = $1 AND revision = $10
	`, input.ID, input.PatientID, input.DoctorID, input.StartTime, input.DurationMinutes,
		input.Type, input.Status, nullString(input.Notes), input.UpdatedAt, revision)
	if err != nil {
		if isUniqueViolation(err) {
			err = store.ErrSlotTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM appointments WHERE id = $1)`, input.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			err = store.ErrAppointmentNotFound
		} else {
			err = store.ErrConcurrentUpdate
		}
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) UpdateAppointmentStatus(ctx context.Context, id, status string, updatedAt time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE appointments SET status = $2, updated_at = $3, revision = revision + 1
		WHERE id = $1
	`, id, status, updatedAt)
	if err != nil {
		// Reviving a cancelled appointment can collide with a newer
		// booking in the same slot via the partial unique index.
		if isUniqueViolation(err) {
			return store.ErrSlotTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrAppointmentNotFound
	}
	return nil
}

func (s *Store) DeleteAppointment(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrAppointmentNotFound
	}
	return nil
}
