package presupuestos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPayload() *DeliveryPayload {
	return &DeliveryPayload{
		PresupuestoID: "q-1",
		Paciente:      PayloadPaciente{Nombre: "Ana", Apellido: "Pérez", Email: "ana@example.com"},
		Presupuesto:   PayloadDetalle{Tratamiento: "Corona zirconio", Monto: 350},
		MetodoEnvio:   MetodoEmail,
		CallbackURL:   "https://clinica.example/presupuesto/respuesta?id=q-1",
	}
}

func TestDeliverPostsPayload(t *testing.T) {
	var got DeliveryPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewWebhookDeliverer(srv.URL, 5*time.Second, nil, WithRetry(3, 0))
	err := d.Deliver(context.Background(), testPayload())
	require.NoError(t, err)

	assert.Equal(t, "q-1", got.PresupuestoID)
	assert.Equal(t, "Ana", got.Paciente.Nombre)
	assert.Equal(t, 350.0, got.Presupuesto.Monto)
	assert.Contains(t, got.CallbackURL, "id=q-1")
}

func TestDeliverRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewWebhookDeliverer(srv.URL, 5*time.Second, nil, WithRetry(3, time.Millisecond))
	err := d.Deliver(context.Background(), testPayload())
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDeliverDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	d := NewWebhookDeliverer(srv.URL, 5*time.Second, nil, WithRetry(3, time.Millisecond))
	err := d.Deliver(context.Background(), testPayload())
	require.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDeliverFailsAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewWebhookDeliverer(srv.URL, 5*time.Second, nil, WithRetry(2, time.Millisecond))
	err := d.Deliver(context.Background(), testPayload())
	require.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDeliverTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	d := NewWebhookDeliverer(srv.URL, 20*time.Millisecond, nil, WithRetry(1, 0))
	err := d.Deliver(context.Background(), testPayload())
	assert.ErrorIs(t, err, ErrDeliveryTimeout)
}
