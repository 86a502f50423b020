package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The partial unique index on (doctor_id, start_time) is the
// authoritative double-booking guard: the in-transaction conflict
// pre-check is only a fast-path rejection, and two writers racing
// through it both land on this index.
const schema = `
CREATE TABLE IF NOT EXISTS appointments (
	id uuid PRIMARY KEY,
	patient_id uuid NOT NULL,
	doctor_id varchar(50) NOT NULL,
	start_time timestamptz NOT NULL,
	duration_minutes int NOT NULL,
	appointment_type varchar(50) NOT NULL,
	status varchar(50) NOT NULL,
	notes varchar(500),
	revision bigint NOT NULL DEFAULT 1,
	created_at timestamptz NOT NULL,
	updated_at timestamptz
);
CREATE INDEX IF NOT EXISTS idx_appointments_patient ON appointments (patient_id);
CREATE INDEX IF NOT EXISTS idx_appointments_doctor ON appointments (doctor_id);
CREATE INDEX IF NOT EXISTS idx_appointments_start ON appointments (start_time);
CREATE UNIQUE INDEX IF NOT EXISTS uniq_appointments_active_slot
	ON appointments (doctor_id, start_time) WHERE status <> 'Cancelled';

CREATE TABLE IF NOT EXISTS patients (
	id uuid PRIMARY KEY,
	first_name varchar(100) NOT NULL,
	last_name varchar(100) NOT NULL,
	date_of_birth timestamptz NOT NULL,
	gender varchar(20),
	email varchar(255) NOT NULL,
	phone_number varchar(30),
	address varchar(255),
	emergency_contact varchar(255),
	insurance_provider varchar(100),
	insurance_policy_number varchar(100),
	revision bigint NOT NULL DEFAULT 1,
	registration_date timestamptz NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS uniq_patients_email ON patients (email);
CREATE INDEX IF NOT EXISTS idx_patients_name ON patients (last_name, first_name);

CREATE TABLE IF NOT EXISTS medical_records (
	id uuid PRIMARY KEY,
	patient_id uuid NOT NULL,
	visit_date timestamptz NOT NULL,
	diagnosis text NOT NULL,
	treatment text NOT NULL,
	prescription text NOT NULL,
	notes text,
	doctor_id varchar(50) NOT NULL,
	attachments text[],
	status varchar(50) NOT NULL,
	revision bigint NOT NULL DEFAULT 1,
	created_at timestamptz NOT NULL,
	updated_at timestamptz
);
CREATE INDEX IF NOT EXISTS idx_records_patient ON medical_records (patient_id);
CREATE INDEX IF NOT EXISTS idx_records_doctor ON medical_records (doctor_id);
CREATE INDEX IF NOT EXISTS idx_records_visit ON medical_records (visit_date);
`

// EnsureSchema applies the idempotent DDL above.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
