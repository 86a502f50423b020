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

const patientColumns = `id, first_name, last_name, date_of_birth, gender, email, phone_number, address, emergency_contact, insurance_provider, insurance_policy_number, revision, registration_date`

func scanPatient(row pgx.Row) (models.Patient, error) {
	var p models.Patient
	var gender, phone, address, emergency, provider, policy sql.NullString
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.DateOfBirth, &gender, &p.Email, &phone, &address, &emergency, &provider, &policy, &p.Revision, &p.RegistrationDate)
	if err != nil {
		return models.Patient{}, err
	}
	p.Gender = gender.String
	p.PhoneNumber = phone.String
	p.Address = address.String
	p.EmergencyContact = emergency.String
	p.InsuranceProvider = provider.String
	p.InsurancePolicyNumber = policy.String
	return p, nil
}

func (s *Store) CreatePatient(ctx context.Context, input store.CreatePatientInput) (models.Patient, error) {
	registered := input.RegistrationDate
	if registered.IsZero() {
		registered = time.Now().UTC()
	}

	patient := models.Patient{
		ID:                    uuid.NewString(),
		FirstName:             input.FirstName,
		LastName:              input.LastName,
		DateOfBirth:           input.DateOfBirth,
		Gender:                input.Gender,
		Email:                 input.Email,
		PhoneNumber:           input.PhoneNumber,
		Address:               input.Address,
		EmergencyContact:      input.EmergencyContact,
		InsuranceProvider:     input.InsuranceProvider,
		InsurancePolicyNumber: input.InsurancePolicyNumber,
		Revision:              1,
		RegistrationDate:      registered,
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO patients (id, first_name, last_name, date_of_birth, gender, email, phone_number, address, emergency_contact, insurance_provider, insurance_policy_number, revision, registration_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, patient.ID, patient.FirstName, patient.LastName, patient.DateOfBirth, nullString(patient.Gender), patient.Email, nullString(patient.PhoneNumber), nullString(patient.Address), nullString(patient.EmergencyContact), nullString(patient.InsuranceProvider), nullString(patient.InsurancePolicyNumber), patient.Revision, patient.RegistrationDate)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Patient{}, store.ErrDuplicateEmail
		}
		return models.Patient{}, err
	}
	return patient, nil
}

func (s *Store) GetPatient(ctx context.Context, id string) (models.Patient, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, id)
	patient, err := scanPatient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Patient{}, store.ErrPatientNotFound
	}
	return patient, err
}

func (s *Store) ListPatients(ctx context.Context) ([]models.Patient, error) {
	return s.listPatients(ctx, `SELECT `+patientColumns+` FROM patients ORDER BY last_name, first_name`)
}

func (s *Store) SearchPatients(ctx context.Context, term string) ([]models.Patient, error) {
	pattern := "%" + term + "%"
	return s.listPatients(ctx, `
		SELECT `+patientColumns+` FROM patients
		WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1 OR phone_number ILIKE $1
		ORDER BY last_name, first_name
	`, pattern)
}

func (s *Store) listPatients(ctx context.Context, query string, args ...interface{}) ([]models.Patient, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Patient
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, patient)
	}
	return out, rows.Err()
}

func (s *Store) UpdatePatient(ctx context.Context, input store.UpdatePatientInput) error {
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
	err = tx.QueryRow(ctx, `SELECT revision FROM patients WHERE id = $1`, input.ID).Scan(&revision)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = store.ErrPatientNotFound
		}
		return err
	}

	var emailTaken bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM patients WHERE email = $1 AND id <> $2)`, input.Email, input.ID).Scan(&emailTaken)
	if err != nil {
		return err
	}
	if emailTaken {
		err = store.ErrDuplicateEmail
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE patients
		SET first_name = $2, last_name = $3, date_of_birth = $4, gender = $5, email = $6,
		    phone_number = $7, address = $8, emergency_contact = $9, insurance_provider = $10,
		    insurance_policy_number = $11, revision = revision + 1
		WHERE id = $1 AND revision = $12
	`, input.ID, input.FirstName, input.LastName, input.DateOfBirth, nullString(input.Gender), input.Email,
		nullString(input.PhoneNumber), nullString(input.Address), nullString(input.EmergencyContact), nullString(input.InsuranceProvider),
		nullString(input.InsurancePolicyNumber), revision)
	if err != nil {
		if isUniqueViolation(err) {
			err = store.ErrDuplicateEmail
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1)`, input.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			err = store.ErrPatientNotFound
		} else {
			err = store.ErrConcurrentUpdate
		}
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) DeletePatient(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrPatientNotFound
	}
	return nil
}
