package presupuestos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEstado(t *testing.T) {
	assert.Equal(t, "pendiente", NormalizeEstado("Pendiente"))
	assert.Equal(t, "enviado", NormalizeEstado("  ENVIADO "))
	assert.Equal(t, "aprobado", NormalizeEstado("aprobado"))
}

func TestTransition(t *testing.T) {
	tests := []struct {
		from, to string
		ok       bool
	}{
		{EstadoPendiente, EstadoEnviado, true},
		{EstadoEnviado, EstadoEnviado, true}, // re-send
		{EstadoEnviado, EstadoAprobado, true},
		{EstadoEnviado, EstadoRechazado, true},
		{"Pendiente", "Enviado", true}, // legacy capitalization
		{EstadoPendiente, EstadoAprobado, false},
		{EstadoAprobado, EstadoEnviado, false},
		{EstadoRechazado, EstadoPendiente, false},
		{EstadoEnviado, "archivado", false},
	}

	for _, tt := range tests {
		got, err := Transition(tt.from, tt.to)
		if tt.ok {
			assert.NoError(t, err, "%s -> %s", tt.from, tt.to)
			assert.Equal(t, NormalizeEstado(tt.to), got)
		} else {
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", tt.from, tt.to)
		}
	}
}

func TestRespuestaForAction(t *testing.T) {
	tests := []struct {
		accion string
		want   string
	}{
		{AccionAceptar, RespuestaAprobado},
		{AccionRechazar, RespuestaPendiente}, // keeps the quote in play
		{AccionNoAprobado, RespuestaRechazado},
		{"Aceptar", RespuestaAprobado},
	}
	for _, tt := range tests {
		got, err := RespuestaForAction(tt.accion)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := RespuestaForAction("tal_vez")
	assert.ErrorIs(t, err, ErrInvalidAction)
}
