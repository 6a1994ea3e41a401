package odontogram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository provides access to dental treatment records.
type Repository interface {
	Create(ctx context.Context, req *CreateRequest) (*Treatment, error)
	GetByID(ctx context.Context, id string) (*Treatment, error)
	ListByPatient(ctx context.Context, patientID string) ([]*Treatment, error)
	Update(ctx context.Context, id string, req *UpdateRequest) (*Treatment, error)
	Delete(ctx context.Context, id string) error
}

// PgxDB is the subset of pgxpool.Pool this repository needs.
type PgxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores treatments in the dental_treatments table.
// Images live in a jsonb column so attachments travel with the record.
type PostgresRepository struct {
	db PgxDB
}

func NewPostgresRepository(db PgxDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const treatmentColumns = `id, patient_id, tooth_number, tooth_zone, treatment_type,
		to_char(treatment_date, 'YYYY-MM-DD'), COALESCE(details, ''), status, images, created_at`

func (r *PostgresRepository) Create(ctx context.Context, req *CreateRequest) (*Treatment, error) {
	status := req.Status
	if status == "" {
		status = StatusPending
	}
	images := req.Images
	if images == nil {
		images = []TreatmentImage{}
	}
	imagesJSON, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("odontogram: marshal images: %w", err)
	}

	query := `
		INSERT INTO dental_treatments (
			id, patient_id, tooth_number, tooth_zone, treatment_type,
			treatment_date, details, status, images
		) VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::date, NULLIF($7, ''), $8, $9)
		RETURNING ` + treatmentColumns

	row := r.db.QueryRow(ctx, query,
		uuid.New().String(), req.PatientID, req.ToothNumber, req.ToothZone,
		req.TreatmentType, req.TreatmentDate, req.Details, status, imagesJSON,
	)

	t, err := scanTreatment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateZone
		}
		return nil, fmt.Errorf("odontogram: create treatment: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Treatment, error) {
	query := `SELECT ` + treatmentColumns + ` FROM dental_treatments WHERE id = $1`

	t, err := scanTreatment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTreatmentNotFound
		}
		return nil, fmt.Errorf("odontogram: get treatment: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) ListByPatient(ctx context.Context, patientID string) ([]*Treatment, error) {
	query := `
		SELECT ` + treatmentColumns + `
		FROM dental_treatments
		WHERE patient_id = $1
		ORDER BY tooth_number, treatment_date DESC NULLS LAST, created_at DESC`

	rows, err := r.db.Query(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("odontogram: list treatments: %w", err)
	}
	defer rows.Close()

	var treatments []*Treatment
	for rows.Next() {
		t, err := scanTreatment(rows)
		if err != nil {
			return nil, fmt.Errorf("odontogram: scan treatment: %w", err)
		}
		treatments = append(treatments, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("odontogram: list treatments: %w", err)
	}
	return treatments, nil
}

// Update applies partial edits. Images are replaced only when the request
// carries a non-nil slice; existing attachments are preserved otherwise.
func (r *PostgresRepository) Update(ctx context.Context, id string, req *UpdateRequest) (*Treatment, error) {
	var imagesJSON []byte
	if req.Images != nil {
		b, err := json.Marshal(req.Images)
		if err != nil {
			return nil, fmt.Errorf("odontogram: marshal images: %w", err)
		}
		imagesJSON = b
	}

	query := `
		UPDATE dental_treatments SET
			treatment_type = COALESCE($2, treatment_type),
			treatment_date = COALESCE($3::date, treatment_date),
			details = COALESCE($4, details),
			status = COALESCE($5, status),
			images = COALESCE($6::jsonb, images)
		WHERE id = $1
		RETURNING ` + treatmentColumns

	row := r.db.QueryRow(ctx, query, id,
		req.TreatmentType, req.TreatmentDate, req.Details, req.Status, imagesJSON,
	)

	t, err := scanTreatment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTreatmentNotFound
		}
		return nil, fmt.Errorf("odontogram: update treatment: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM dental_treatments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("odontogram: delete treatment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTreatmentNotFound
	}
	return nil
}

func scanTreatment(row pgx.Row) (*Treatment, error) {
	var t Treatment
	var date *string
	var imagesJSON []byte
	err := row.Scan(
		&t.ID, &t.PatientID, &t.ToothNumber, &t.ToothZone, &t.TreatmentType,
		&date, &t.Details, &t.Status, &imagesJSON, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if date != nil {
		t.TreatmentDate = *date
	}
	t.Images = []TreatmentImage{}
	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, &t.Images); err != nil {
			return nil, fmt.Errorf("decode images: %w", err)
		}
	}
	return &t, nil
}
