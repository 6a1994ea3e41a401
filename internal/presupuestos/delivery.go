package presupuestos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/odontosys/clinic-api/internal/observability/metrics"
	"github.com/odontosys/clinic-api/pkg/logging"
)

// DeliveryPayload is the JSON body posted to the automation webhook. The
// webhook fans the quote out over email or WhatsApp and calls back with the
// patient's answer.
type DeliveryPayload struct {
	PresupuestoID string          `json:"presupuestoId"`
	Paciente      PayloadPaciente `json:"paciente"`
	Presupuesto   PayloadDetalle  `json:"presupuesto"`
	MetodoEnvio   string          `json:"metodo_envio"`
	CallbackURL   string          `json:"callback_url"`
}

type PayloadPaciente struct {
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Email    string `json:"email,omitempty"`
	Telefono string `json:"telefono,omitempty"`
}

type PayloadDetalle struct {
	Tratamiento string  `json:"tratamiento"`
	Descripcion string  `json:"descripcion,omitempty"`
	Monto       float64 `json:"monto"`
	ImagenURL   string  `json:"imagen_url,omitempty"`
}

// WebhookDeliverer posts quotes to the automation endpoint. Only a 2xx
// response counts as delivered; 5xx and transport errors are retried with a
// fixed delay, 4xx fail immediately.
type WebhookDeliverer struct {
	url         string
	client      *http.Client
	maxAttempts int
	retryDelay  time.Duration
	metrics     *metrics.DeliveryMetrics
	logger      *logging.Logger
}

type WebhookOption func(*WebhookDeliverer)

func WithDeliveryMetrics(m *metrics.DeliveryMetrics) WebhookOption {
	return func(d *WebhookDeliverer) { d.metrics = m }
}

func WithRetry(maxAttempts int, delay time.Duration) WebhookOption {
	return func(d *WebhookDeliverer) {
		if maxAttempts > 0 {
			d.maxAttempts = maxAttempts
		}
		d.retryDelay = delay
	}
}

func NewWebhookDeliverer(url string, timeout time.Duration, logger *logging.Logger, opts ...WebhookOption) *WebhookDeliverer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	d := &WebhookDeliverer{
		url:         url,
		client:      &http.Client{Timeout: timeout},
		maxAttempts: 3,
		retryDelay:  2 * time.Second,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deliver posts the payload, returning nil only on a confirmed 2xx.
func (d *WebhookDeliverer) Deliver(ctx context.Context, payload *DeliveryPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("presupuestos: encode delivery payload: %w", err)
	}

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if attempt > 1 && d.retryDelay > 0 {
			select {
			case <-time.After(d.retryDelay):
			case <-ctx.Done():
				d.observe(payload.MetodoEnvio, "timeout", start)
				return fmt.Errorf("%w: %v", ErrDeliveryTimeout, ctx.Err())
			}
		}

		retryable, err := d.attempt(ctx, body)
		if err == nil {
			d.observe(payload.MetodoEnvio, "delivered", start)
			return nil
		}
		lastErr = err
		if !retryable {
			break
		}
		d.logger.Warn("presupuesto delivery attempt failed",
			"attempt", attempt, "presupuesto_id", payload.PresupuestoID, "error", err)
	}

	status := "failed"
	if errors.Is(lastErr, ErrDeliveryTimeout) {
		status = "timeout"
	}
	d.observe(payload.MetodoEnvio, status, start)
	return lastErr
}

// attempt reports whether the failure is retryable.
func (d *WebhookDeliverer) attempt(ctx context.Context, body []byte) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("presupuestos: build delivery request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		var urlErr interface{ Timeout() bool }
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return true, fmt.Errorf("%w: %v", ErrDeliveryTimeout, err)
		}
		return true, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return false, nil
	case resp.StatusCode >= 500:
		return true, fmt.Errorf("%w: webhook returned %d", ErrDeliveryFailed, resp.StatusCode)
	default:
		return false, fmt.Errorf("%w: webhook returned %d", ErrDeliveryFailed, resp.StatusCode)
	}
}

func (d *WebhookDeliverer) observe(method, status string, start time.Time) {
	d.metrics.ObserveDelivery(method, status, time.Since(start).Seconds())
}
