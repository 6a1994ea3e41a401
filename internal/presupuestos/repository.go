package presupuestos

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository provides access to quote records.
type Repository interface {
	Create(ctx context.Context, req *CreateRequest) (*Presupuesto, error)
	GetByID(ctx context.Context, id string) (*Presupuesto, error)
	List(ctx context.Context, filter ListFilter) ([]*Presupuesto, error)
	Update(ctx context.Context, id string, req *UpdateRequest) (*Presupuesto, error)
	Delete(ctx context.Context, id string) error
	MarkSent(ctx context.Context, id string, sentAt time.Time) (*Presupuesto, error)
	SetEstado(ctx context.Context, id, estado string) (*Presupuesto, error)
	SetRespuesta(ctx context.Context, id, respuesta string) (*Presupuesto, error)
	Stats(ctx context.Context) (*Stats, error)
}

// PgxDB is the subset of pgxpool.Pool this repository needs.
type PgxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores quotes in the presupuestos table.
type PostgresRepository struct {
	db PgxDB
}

func NewPostgresRepository(db PgxDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const presupuestoColumns = `id, COALESCE(patient_id::text, ''), nombre, apellido,
		COALESCE(cedula, ''), COALESCE(email, ''), COALESCE(telefono, ''),
		tratamiento, COALESCE(descripcion, ''), monto, COALESCE(imagen_url, ''),
		metodo_envio, estado, respuesta_cliente, fecha_envio, created_at`

func (r *PostgresRepository) Create(ctx context.Context, req *CreateRequest) (*Presupuesto, error) {
	query := `
		INSERT INTO presupuestos (
			id, patient_id, nombre, apellido, cedula, email, telefono,
			tratamiento, descripcion, monto, imagen_url, metodo_envio,
			estado, respuesta_cliente
		) VALUES ($1, NULLIF($2, '')::uuid, $3, $4, NULLIF($5, ''), NULLIF($6, ''),
			NULLIF($7, ''), $8, NULLIF($9, ''), $10, NULLIF($11, ''), $12, $13, $14)
		RETURNING ` + presupuestoColumns

	row := r.db.QueryRow(ctx, query,
		uuid.New().String(), req.PatientID, req.Nombre, req.Apellido,
		req.Cedula, req.Email, req.Telefono, req.Tratamiento, req.Descripcion,
		req.Monto, req.ImagenURL, req.MetodoEnvio, EstadoPendiente, RespuestaPendiente,
	)

	p, err := scanPresupuesto(row)
	if err != nil {
		return nil, fmt.Errorf("presupuestos: create: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Presupuesto, error) {
	query := `SELECT ` + presupuestoColumns + ` FROM presupuestos WHERE id = $1`

	p, err := scanPresupuesto(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPresupuestoNotFound
		}
		return nil, fmt.Errorf("presupuestos: get: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Presupuesto, error) {
	query := `SELECT ` + presupuestoColumns + ` FROM presupuestos`

	var conditions []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Estado != "" {
		conditions = append(conditions, "estado = "+arg(NormalizeEstado(filter.Estado)))
	}
	if filter.PatientID != "" {
		conditions = append(conditions, "patient_id = "+arg(filter.PatientID)+"::uuid")
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		conditions = append(conditions,
			"(nombre ILIKE "+arg(pattern)+" OR apellido ILIKE "+arg(pattern)+
				" OR tratamiento ILIKE "+arg(pattern)+")")
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("presupuestos: list: %w", err)
	}
	defer rows.Close()

	var out []*Presupuesto
	for rows.Next() {
		p, err := scanPresupuesto(rows)
		if err != nil {
			return nil, fmt.Errorf("presupuestos: scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("presupuestos: list: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, req *UpdateRequest) (*Presupuesto, error) {
	query := `
		UPDATE presupuestos SET
			nombre = COALESCE($2, nombre),
			apellido = COALESCE($3, apellido),
			cedula = COALESCE($4, cedula),
			email = COALESCE($5, email),
			telefono = COALESCE($6, telefono),
			tratamiento = COALESCE($7, tratamiento),
			descripcion = COALESCE($8, descripcion),
			monto = COALESCE($9, monto),
			imagen_url = COALESCE($10, imagen_url),
			metodo_envio = COALESCE($11, metodo_envio)
		WHERE id = $1
		RETURNING ` + presupuestoColumns

	row := r.db.QueryRow(ctx, query, id,
		req.Nombre, req.Apellido, req.Cedula, req.Email, req.Telefono,
		req.Tratamiento, req.Descripcion, req.Monto, req.ImagenURL, req.MetodoEnvio,
	)

	p, err := scanPresupuesto(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPresupuestoNotFound
		}
		return nil, fmt.Errorf("presupuestos: update: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM presupuestos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("presupuestos: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPresupuestoNotFound
	}
	return nil
}

// MarkSent flips a quote to enviado after a confirmed delivery. The estado
// guard keeps already-decided quotes out of the send path.
func (r *PostgresRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) (*Presupuesto, error) {
	query := `
		UPDATE presupuestos
		SET estado = $2, fecha_envio = $3
		WHERE id = $1 AND estado IN ($4, $2)
		RETURNING ` + presupuestoColumns

	row := r.db.QueryRow(ctx, query, id, EstadoEnviado, sentAt, EstadoPendiente)

	p, err := scanPresupuesto(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either missing or in a state that cannot be sent.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("presupuestos: mark sent: %w", err)
	}
	return p, nil
}

// SetEstado applies an internal state change through the transition rules.
func (r *PostgresRepository) SetEstado(ctx context.Context, id, estado string) (*Presupuesto, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := Transition(current.Estado, estado)
	if err != nil {
		return nil, err
	}

	query := `UPDATE presupuestos SET estado = $2 WHERE id = $1 RETURNING ` + presupuestoColumns

	p, err := scanPresupuesto(r.db.QueryRow(ctx, query, id, next))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPresupuestoNotFound
		}
		return nil, fmt.Errorf("presupuestos: set estado: %w", err)
	}
	return p, nil
}

// SetRespuesta records the patient's answer without touching estado.
func (r *PostgresRepository) SetRespuesta(ctx context.Context, id, respuesta string) (*Presupuesto, error) {
	query := `UPDATE presupuestos SET respuesta_cliente = $2 WHERE id = $1 RETURNING ` + presupuestoColumns

	p, err := scanPresupuesto(r.db.QueryRow(ctx, query, id, respuesta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPresupuestoNotFound
		}
		return nil, fmt.Errorf("presupuestos: set respuesta: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Stats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE estado = 'pendiente'),
			COUNT(*) FILTER (WHERE estado = 'enviado'),
			COUNT(*) FILTER (WHERE estado = 'aprobado'),
			COUNT(*) FILTER (WHERE estado = 'rechazado'),
			COALESCE(SUM(monto) FILTER (WHERE estado = 'aprobado'), 0)
		FROM presupuestos`

	var s Stats
	err := r.db.QueryRow(ctx, query).Scan(
		&s.Total, &s.Pendientes, &s.Enviados, &s.Aprobados, &s.Rechazados, &s.MontoAprobado,
	)
	if err != nil {
		return nil, fmt.Errorf("presupuestos: stats: %w", err)
	}
	return &s, nil
}

func scanPresupuesto(row pgx.Row) (*Presupuesto, error) {
	var p Presupuesto
	err := row.Scan(
		&p.ID, &p.PatientID, &p.Nombre, &p.Apellido, &p.Cedula, &p.Email,
		&p.Telefono, &p.Tratamiento, &p.Descripcion, &p.Monto, &p.ImagenURL,
		&p.MetodoEnvio, &p.Estado, &p.RespuestaCliente, &p.FechaEnvio, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Estado = NormalizeEstado(p.Estado)
	p.RespuestaCliente = NormalizeEstado(p.RespuestaCliente)
	return &p, nil
}
