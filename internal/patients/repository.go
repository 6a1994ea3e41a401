package patients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository defines the interface for patient storage.
type Repository interface {
	Create(ctx context.Context, req *CreateRequest) (*Patient, error)
	GetByID(ctx context.Context, id string) (*Patient, error)
	List(ctx context.Context, search string) ([]*Patient, error)
	Update(ctx context.Context, id string, req *UpdateRequest) (*Patient, error)
	Delete(ctx context.Context, id string) error
}

// PgxDB is the subset of pgxpool.Pool the repository uses.
type PgxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const patientColumns = `id, cedula, first_name, last_name,
	COALESCE(to_char(date_birth, 'YYYY-MM-DD'), ''), COALESCE(gender, ''),
	phone, COALESCE(email, ''), COALESCE(address, ''), COALESCE(occupation, ''),
	COALESCE(blood_type, ''), COALESCE(chronic_diseases, ''), COALESCE(medications, ''),
	COALESCE(allergies, ''), pregnant, COALESCE(contagious_disease, ''),
	COALESCE(status, ''), created_at`

// PostgresRepository stores patients in the relational database.
type PostgresRepository struct {
	db PgxDB
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db PgxDB) *PostgresRepository {
	if db == nil {
		panic("patients: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a new patient row. Cedula uniqueness is enforced by the
// storage engine.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateRequest) (*Patient, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	query := `
		INSERT INTO patients (id, cedula, first_name, last_name, date_birth, gender, phone,
			email, address, occupation, blood_type, chronic_diseases, medications,
			allergies, pregnant, contagious_disease, status)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')::date, NULLIF($6, ''), $7,
			NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, ''), NULLIF($13, ''),
			NULLIF($14, ''), $15, NULLIF($16, ''), NULLIF($17, ''))
		RETURNING ` + patientColumns

	row := r.db.QueryRow(ctx, query,
		id, req.Cedula, req.FirstName, req.LastName, req.DateBirth, req.Gender, req.Phone,
		req.Email, req.Address, req.Occupation, req.BloodType, req.ChronicDiseases, req.Medications,
		req.Allergies, req.Pregnant, req.ContagiousDisease, req.Status,
	)
	patient, err := scanPatient(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateCedula
		}
		return nil, fmt.Errorf("patients: insert failed: %w", err)
	}
	return patient, nil
}

// GetByID fetches a patient.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	patient, err := scanPatient(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("patients: select failed: %w", err)
	}
	return patient, nil
}

// List returns patients, optionally filtered by a search over name and
// cedula, newest first.
func (r *PostgresRepository) List(ctx context.Context, search string) ([]*Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients`
	var args []any
	if s := strings.TrimSpace(search); s != "" {
		query += ` WHERE first_name ILIKE '%' || $1 || '%'
			OR last_name ILIKE '%' || $1 || '%'
			OR cedula LIKE '%' || $1 || '%'`
		args = append(args, s)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("patients: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Patient
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("patients: scan failed: %w", err)
		}
		out = append(out, patient)
	}
	return out, rows.Err()
}

// Update applies a partial edit and returns the stored row.
func (r *PostgresRepository) Update(ctx context.Context, id string, req *UpdateRequest) (*Patient, error) {
	query := `
		UPDATE patients SET
			cedula = COALESCE($2, cedula),
			first_name = COALESCE($3, first_name),
			last_name = COALESCE($4, last_name),
			date_birth = COALESCE($5::date, date_birth),
			gender = COALESCE($6, gender),
			phone = COALESCE($7, phone),
			email = COALESCE($8, email),
			address = COALESCE($9, address),
			occupation = COALESCE($10, occupation),
			blood_type = COALESCE($11, blood_type),
			chronic_diseases = COALESCE($12, chronic_diseases),
			medications = COALESCE($13, medications),
			allergies = COALESCE($14, allergies),
			pregnant = COALESCE($15, pregnant),
			contagious_disease = COALESCE($16, contagious_disease),
			status = COALESCE($17, status)
		WHERE id = $1
		RETURNING ` + patientColumns

	row := r.db.QueryRow(ctx, query, id,
		req.Cedula, req.FirstName, req.LastName, req.DateBirth, req.Gender, req.Phone,
		req.Email, req.Address, req.Occupation, req.BloodType, req.ChronicDiseases,
		req.Medications, req.Allergies, req.Pregnant, req.ContagiousDisease, req.Status,
	)
	patient, err := scanPatient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicateCedula
		}
		return nil, fmt.Errorf("patients: update failed: %w", err)
	}
	return patient, nil
}

// Delete removes a patient. Dependent treatments and appointments are
// removed by the schema's ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("patients: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	if err := row.Scan(
		&p.ID, &p.Cedula, &p.FirstName, &p.LastName,
		&p.DateBirth, &p.Gender,
		&p.Phone, &p.Email, &p.Address, &p.Occupation,
		&p.BloodType, &p.ChronicDiseases, &p.Medications,
		&p.Allergies, &p.Pregnant, &p.ContagiousDisease,
		&p.Status, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
