package presupuestos

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(repo Repository, svc *Service, confirmationURL string) http.Handler {
	h := NewHandler(repo, svc, confirmationURL, nil)
	r := chi.NewRouter()
	r.Post("/api/presupuestos", h.Create)
	r.Get("/api/presupuestos", h.List)
	r.Get("/api/presupuestos/stats", h.Stats)
	r.Get("/api/presupuestos/{id}", h.Get)
	r.Put("/api/presupuestos/{id}", h.Update)
	r.Delete("/api/presupuestos/{id}", h.Delete)
	r.Post("/api/presupuestos/{id}/enviar", h.Send)
	r.Patch("/api/presupuestos/{id}/estado", h.Decide)
	r.Get("/presupuesto/respuesta", h.Callback)
	r.Post("/presupuesto/respuesta", h.Callback)
	return r
}

func TestHandlerCreateValidatesMetodo(t *testing.T) {
	repo := newStubRepository()
	router := newTestRouter(repo, newTestService(repo, &stubDeliverer{}, nil), "")

	body, _ := json.Marshal(CreateRequest{
		Nombre: "Ana", Apellido: "Pérez", Tratamiento: "Corona", Monto: 100,
		MetodoEnvio: "paloma",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/presupuestos", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "metodo_envio")
}

func TestHandlerCreateRequiresContactForMetodo(t *testing.T) {
	repo := newStubRepository()
	router := newTestRouter(repo, newTestService(repo, &stubDeliverer{}, nil), "")

	// whatsapp needs a phone number
	body, _ := json.Marshal(CreateRequest{
		Nombre: "Ana", Apellido: "Pérez", Tratamiento: "Corona", Monto: 100,
		MetodoEnvio: MetodoWhatsApp,
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/presupuestos", bytes.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "telefono")
}

func TestHandlerSendConflictsWhenDecided(t *testing.T) {
	repo := newStubRepository()
	svc := newTestService(repo, &stubDeliverer{}, nil)
	router := newTestRouter(repo, svc, "")

	p := createQuote(t, repo)
	p.Estado = EstadoRechazado

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/presupuestos/"+p.ID+"/enviar", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandlerSendBadGatewayOnDeliveryFailure(t *testing.T) {
	repo := newStubRepository()
	svc := newTestService(repo, &stubDeliverer{err: ErrDeliveryFailed}, nil)
	router := newTestRouter(repo, svc, "")

	p := createQuote(t, repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/presupuestos/"+p.ID+"/enviar", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandlerCallbackGetRedirects(t *testing.T) {
	repo := newStubRepository()
	svc := newTestService(repo, &stubDeliverer{}, nil)
	router := newTestRouter(repo, svc, "https://clinica.example/gracias")

	p := createQuote(t, repo)
	token, err := svc.tokens.Mint(p.ID)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/presupuesto/respuesta?id="+p.ID+"&accion=aceptar&token="+token, nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "https://clinica.example/gracias", rec.Header().Get("Location"))

	stored, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, RespuestaAprobado, stored.RespuestaCliente)
}

func TestHandlerCallbackPostJSONBody(t *testing.T) {
	repo := newStubRepository()
	svc := newTestService(repo, &stubDeliverer{}, nil)
	router := newTestRouter(repo, svc, "https://clinica.example/gracias")

	p := createQuote(t, repo)
	token, err := svc.tokens.Mint(p.ID)
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]string{"id": p.ID, "accion": "no_aprobado", "token": token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/presupuesto/respuesta", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var got Presupuesto
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, RespuestaRechazado, got.RespuestaCliente)
}

func TestHandlerCallbackRejectsBadToken(t *testing.T) {
	repo := newStubRepository()
	svc := newTestService(repo, &stubDeliverer{}, nil)
	router := newTestRouter(repo, svc, "")

	p := createQuote(t, repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/presupuesto/respuesta?id="+p.ID+"&accion=aceptar&token=forged", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandlerCallbackMissingParams(t *testing.T) {
	repo := newStubRepository()
	svc := newTestService(repo, &stubDeliverer{}, nil)
	router := newTestRouter(repo, svc, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/presupuesto/respuesta?accion=aceptar", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerListFiltersByEstado(t *testing.T) {
	repo := newStubRepository()
	svc := newTestService(repo, &stubDeliverer{}, nil)
	router := newTestRouter(repo, svc, "")

	createQuote(t, repo)
	sentQuote := createQuote(t, repo)
	_, err := svc.Send(context.Background(), sentQuote.ID)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/presupuestos?estado=enviado", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var out []*Presupuesto
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, sentQuote.ID, out[0].ID)
}

func TestHandlerListRejectsUnknownEstado(t *testing.T) {
	repo := newStubRepository()
	router := newTestRouter(repo, newTestService(repo, &stubDeliverer{}, nil), "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/presupuestos?estado=archivado", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
