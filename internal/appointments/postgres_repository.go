package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const apptColumns = `id, patient_id,
	to_char(appointment_date, 'YYYY-MM-DD'),
	to_char(start_time, 'HH24:MI'),
	to_char(end_time, 'HH24:MI'),
	title, treatment_type, COALESCE(doctor, ''), COALESCE(notes, ''), status, created_at`

// PgxDB is the subset of pgxpool.Pool used by PostgresRepository. pgxmock
// satisfies it in tests.
type PgxDB interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores appointments in the relational database.
type PostgresRepository struct {
	db PgxDB
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db PgxDB) *PostgresRepository {
	if db == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Create books an appointment. The availability recheck and the insert run
// in one serializable transaction, with the partial unique index on
// (appointment_date, start_time, doctor) as backstop, so two clients racing
// for the same slot cannot both win.
func (r *PostgresRepository) Create(ctx context.Context, appt *Appointment) (*Appointment, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, fmt.Errorf("appointments: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var taken bool
	checkQuery := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE appointment_date = $1::date
			  AND status <> 'cancelled'
			  AND start_time < $3::time
			  AND end_time > $2::time
		)
	`
	if err := tx.QueryRow(ctx, checkQuery, appt.Date, appt.StartTime, appt.EndTime).Scan(&taken); err != nil {
		return nil, fmt.Errorf("appointments: availability recheck: %w", err)
	}
	if taken {
		return nil, ErrSlotTaken
	}

	id := uuid.New().String()
	insertQuery := `
		INSERT INTO appointments (id, patient_id, appointment_date, start_time, end_time, title, treatment_type, doctor, notes, status)
		VALUES ($1, $2, $3::date, $4::time, $5::time, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10)
		RETURNING created_at
	`
	stored := *appt
	stored.ID = id
	if err := tx.QueryRow(ctx, insertQuery,
		id,
		appt.PatientID,
		appt.Date,
		appt.StartTime,
		appt.EndTime,
		appt.Title,
		appt.TreatmentType,
		appt.Doctor,
		appt.Notes,
		appt.Status,
	).Scan(&stored.CreatedAt); err != nil {
		if isSlotConflict(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("appointments: insert failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isSlotConflict(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("appointments: commit: %w", err)
	}
	return &stored, nil
}

// GetByID fetches a single appointment.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	query := `SELECT ` + apptColumns + ` FROM appointments WHERE id = $1`
	appt, err := scanAppointment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	return appt, nil
}

// List returns appointments matching the filter, ordered by date then start
// time.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Appointment, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.PatientID != "" {
		add("patient_id = $%d", filter.PatientID)
	}
	if filter.StartDate != "" {
		add("appointment_date >= $%d::date", filter.StartDate)
	}
	if filter.EndDate != "" {
		add("appointment_date <= $%d::date", filter.EndDate)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}

	query := `SELECT ` + apptColumns + ` FROM appointments`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY appointment_date ASC, start_time ASC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		out = append(out, appt)
	}
	return out, rows.Err()
}

// ListBlockingByDate returns the non-cancelled appointments for a date,
// i.e. those whose slots count against availability.
func (r *PostgresRepository) ListBlockingByDate(ctx context.Context, date string) ([]*Appointment, error) {
	query := `SELECT ` + apptColumns + `
		FROM appointments
		WHERE appointment_date = $1::date AND status <> 'cancelled'
		ORDER BY start_time ASC`

	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("appointments: list by date failed: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		out = append(out, appt)
	}
	return out, rows.Err()
}

const updateQuery = `
	UPDATE appointments SET
		appointment_date = COALESCE($2::date, appointment_date),
		start_time = COALESCE($3::time, start_time),
		end_time = COALESCE($4::time, end_time),
		title = COALESCE($5, title),
		treatment_type = COALESCE($6, treatment_type),
		doctor = COALESCE($7, doctor),
		notes = COALESCE($8, notes)
	WHERE id = $1
	RETURNING ` + apptColumns

// Update applies a partial edit and returns the stored row. A reschedule
// (any of date, start or end changing) goes through the same serializable
// recheck-then-write transaction as Create so the moved appointment cannot
// land on top of an existing one.
func (r *PostgresRepository) Update(ctx context.Context, id string, req *UpdateRequest) (*Appointment, error) {
	if req.Date == nil && req.StartTime == nil && req.EndTime == nil {
		appt, err := scanAppointment(r.db.QueryRow(ctx, updateQuery, id,
			req.Date, req.StartTime, req.EndTime, req.Title, req.TreatmentType, req.Doctor, req.Notes))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrAppointmentNotFound
			}
			return nil, fmt.Errorf("appointments: update failed: %w", err)
		}
		return appt, nil
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, fmt.Errorf("appointments: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Fields left nil keep the stored value, so the overlap window is the
	// target row's values overlaid with the request. The row itself is
	// excluded from the check.
	var taken bool
	checkQuery := `
		SELECT EXISTS (
			SELECT 1
			FROM appointments other
			JOIN appointments cur ON cur.id = $1
			WHERE other.id <> $1
			  AND other.status <> 'cancelled'
			  AND other.appointment_date = COALESCE($2::date, cur.appointment_date)
			  AND other.start_time < COALESCE($4::time, cur.end_time)
			  AND other.end_time > COALESCE($3::time, cur.start_time)
		)
	`
	if err := tx.QueryRow(ctx, checkQuery, id, req.Date, req.StartTime, req.EndTime).Scan(&taken); err != nil {
		return nil, fmt.Errorf("appointments: availability recheck: %w", err)
	}
	if taken {
		return nil, ErrSlotTaken
	}

	appt, err := scanAppointment(tx.QueryRow(ctx, updateQuery, id,
		req.Date, req.StartTime, req.EndTime, req.Title, req.TreatmentType, req.Doctor, req.Notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		if isSlotConflict(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("appointments: update failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isSlotConflict(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("appointments: commit: %w", err)
	}
	return appt, nil
}

// UpdateStatus changes the lifecycle status.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status string) (*Appointment, error) {
	query := `UPDATE appointments SET status = $2 WHERE id = $1 RETURNING ` + apptColumns

	appt, err := scanAppointment(r.db.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: status update failed: %w", err)
	}
	return appt, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var appt Appointment
	if err := row.Scan(
		&appt.ID,
		&appt.PatientID,
		&appt.Date,
		&appt.StartTime,
		&appt.EndTime,
		&appt.Title,
		&appt.TreatmentType,
		&appt.Doctor,
		&appt.Notes,
		&appt.Status,
		&appt.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &appt, nil
}

// isSlotConflict matches both the unique index violation and a serialization
// failure, either of which means the slot was lost to a concurrent booking.
func isSlotConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" || pgErr.Code == "40001"
}
