package presupuestos

import "strings"

// NormalizeEstado lowercases legacy capitalized estados ("Pendiente",
// "Enviado") left behind by earlier imports.
func NormalizeEstado(estado string) string {
	return strings.ToLower(strings.TrimSpace(estado))
}

// ValidEstado reports whether estado is a known state after normalization.
func ValidEstado(estado string) bool {
	switch NormalizeEstado(estado) {
	case EstadoPendiente, EstadoEnviado, EstadoAprobado, EstadoRechazado:
		return true
	}
	return false
}

// CanTransition reports whether a quote may move from one estado to another.
// Sending is re-entrant so a quote can be re-delivered; terminal states only
// admit themselves.
func CanTransition(from, to string) bool {
	from, to = NormalizeEstado(from), NormalizeEstado(to)
	if from == to {
		return true
	}
	switch from {
	case EstadoPendiente:
		return to == EstadoEnviado
	case EstadoEnviado:
		return to == EstadoAprobado || to == EstadoRechazado
	}
	return false
}

// Transition validates a state change, returning the normalized target.
func Transition(from, to string) (string, error) {
	if !ValidEstado(to) {
		return "", ErrInvalidTransition
	}
	if !CanTransition(from, to) {
		return "", ErrInvalidTransition
	}
	return NormalizeEstado(to), nil
}

// RespuestaForAction maps a patient callback action to the recorded
// respuesta_cliente. "rechazar" records pendiente so the clinic keeps the
// quote in play for follow-up; "no_aprobado" is the definitive refusal.
func RespuestaForAction(accion string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(accion)) {
	case AccionAceptar:
		return RespuestaAprobado, nil
	case AccionRechazar:
		return RespuestaPendiente, nil
	case AccionNoAprobado:
		return RespuestaRechazado, nil
	}
	return "", ErrInvalidAction
}
