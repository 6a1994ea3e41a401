package presupuestos

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/odontosys/clinic-api/internal/notify"
	"github.com/odontosys/clinic-api/internal/observability/metrics"
	"github.com/odontosys/clinic-api/pkg/logging"
)

var quoteTracer = otel.Tracer("clinic.internal.presupuestos")

// Deliverer posts a quote to the automation endpoint.
type Deliverer interface {
	Deliver(ctx context.Context, payload *DeliveryPayload) error
}

// Service drives the quote lifecycle: create, send, record the patient's
// answer.
type Service struct {
	repo          Repository
	deliverer     Deliverer
	tokens        *TokenSigner
	notifier      notify.Sender
	metrics       *metrics.DeliveryMetrics
	logger        *logging.Logger
	publicBaseURL string
	clinicEmail   string
	now           func() time.Time
}

// ServiceConfig carries the service collaborators.
type ServiceConfig struct {
	Repo          Repository
	Deliverer     Deliverer
	Tokens        *TokenSigner
	Notifier      notify.Sender
	Metrics       *metrics.DeliveryMetrics
	Logger        *logging.Logger
	PublicBaseURL string
	ClinicEmail   string
}

func NewService(cfg ServiceConfig) *Service {
	if cfg.Repo == nil {
		panic("presupuestos: repository required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.NoopSender{}
	}
	return &Service{
		repo:          cfg.Repo,
		deliverer:     cfg.Deliverer,
		tokens:        cfg.Tokens,
		notifier:      cfg.Notifier,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
		publicBaseURL: cfg.PublicBaseURL,
		clinicEmail:   cfg.ClinicEmail,
		now:           time.Now,
	}
}

// Send delivers a quote through the automation webhook and, only after a
// confirmed 2xx, marks it enviado with the delivery timestamp. A failed or
// timed-out delivery leaves the quote untouched.
func (s *Service) Send(ctx context.Context, id string) (*Presupuesto, error) {
	ctx, span := quoteTracer.Start(ctx, "presupuestos.Send")
	defer span.End()
	span.SetAttributes(attribute.String("presupuesto.id", id))

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Estado != EstadoPendiente && p.Estado != EstadoEnviado {
		return nil, ErrInvalidTransition
	}
	if s.deliverer == nil {
		return nil, fmt.Errorf("presupuestos: no deliverer configured")
	}

	callbackURL, err := s.callbackURL(p.ID)
	if err != nil {
		return nil, err
	}

	payload := &DeliveryPayload{
		PresupuestoID: p.ID,
		Paciente: PayloadPaciente{
			Nombre:   p.Nombre,
			Apellido: p.Apellido,
			Email:    p.Email,
			Telefono: p.Telefono,
		},
		Presupuesto: PayloadDetalle{
			Tratamiento: p.Tratamiento,
			Descripcion: p.Descripcion,
			Monto:       p.Monto,
			ImagenURL:   p.ImagenURL,
		},
		MetodoEnvio: p.MetodoEnvio,
		CallbackURL: callbackURL,
	}

	if err := s.deliverer.Deliver(ctx, payload); err != nil {
		s.logger.Error("presupuesto delivery failed", "presupuesto_id", p.ID, "error", err)
		return nil, err
	}

	sent, err := s.repo.MarkSent(ctx, p.ID, s.now())
	if err != nil {
		// Delivered but not recorded; surface loudly so staff can reconcile.
		s.logger.Error("delivered but mark sent failed", "presupuesto_id", p.ID, "error", err)
		return nil, err
	}
	s.logger.Info("presupuesto enviado", "presupuesto_id", p.ID, "metodo", p.MetodoEnvio)
	return sent, nil
}

// HandleCallback verifies the token and records the patient's answer. Estado
// is never changed here; staff decide the final estado from the recorded
// respuesta.
func (s *Service) HandleCallback(ctx context.Context, id, accion, token string) (*Presupuesto, error) {
	ctx, span := quoteTracer.Start(ctx, "presupuestos.HandleCallback")
	defer span.End()
	span.SetAttributes(
		attribute.String("presupuesto.id", id),
		attribute.String("presupuesto.accion", accion),
	)

	respuesta, err := RespuestaForAction(accion)
	if err != nil {
		s.metrics.ObserveCallback(accion, "invalid_action")
		return nil, err
	}
	if s.tokens != nil {
		if err := s.tokens.Verify(token, id); err != nil {
			s.metrics.ObserveCallback(accion, "invalid_token")
			return nil, err
		}
	}

	p, err := s.repo.SetRespuesta(ctx, id, respuesta)
	if err != nil {
		s.metrics.ObserveCallback(accion, "error")
		return nil, err
	}
	s.metrics.ObserveCallback(accion, "recorded")
	s.logger.Info("respuesta de presupuesto registrada",
		"presupuesto_id", id, "accion", accion, "respuesta", respuesta)

	s.notifyStaff(ctx, p, respuesta)
	return p, nil
}

// Decide applies the staff's final estado (aprobado or rechazado).
func (s *Service) Decide(ctx context.Context, id, estado string) (*Presupuesto, error) {
	return s.repo.SetEstado(ctx, id, estado)
}

func (s *Service) callbackURL(id string) (string, error) {
	base, err := url.Parse(s.publicBaseURL)
	if err != nil {
		return "", fmt.Errorf("presupuestos: parse public base url: %w", err)
	}
	base = base.JoinPath("presupuesto", "respuesta")

	q := base.Query()
	q.Set("id", id)
	if s.tokens != nil {
		token, err := s.tokens.Mint(id)
		if err != nil {
			return "", err
		}
		q.Set("token", token)
	}
	base.RawQuery = q.Encode()
	return base.String(), nil
}

func (s *Service) notifyStaff(ctx context.Context, p *Presupuesto, respuesta string) {
	if s.clinicEmail == "" {
		return
	}
	msg := notify.EmailMessage{
		To:      []string{s.clinicEmail},
		Subject: fmt.Sprintf("Respuesta de presupuesto: %s %s", p.Nombre, p.Apellido),
		Body: fmt.Sprintf(
			"El paciente %s %s respondió al presupuesto de %s (%.2f): %s",
			p.Nombre, p.Apellido, p.Tratamiento, p.Monto, respuesta,
		),
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Warn("staff notification failed", "presupuesto_id", p.ID, "error", err)
	}
}
