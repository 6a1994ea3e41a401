package presupuestos

import "errors"

var (
	ErrPresupuestoNotFound = errors.New("presupuestos: presupuesto not found")
	ErrInvalidTransition   = errors.New("presupuestos: invalid estado transition")
	ErrInvalidAction       = errors.New("presupuestos: unknown callback action")
	ErrDeliveryFailed      = errors.New("presupuestos: delivery failed")
	ErrDeliveryTimeout     = errors.New("presupuestos: delivery timed out")
	ErrInvalidToken        = errors.New("presupuestos: invalid callback token")

	ErrMissingName        = errors.New("presupuestos: nombre and apellido are required")
	ErrMissingTratamiento = errors.New("presupuestos: tratamiento is required")
	ErrInvalidMonto       = errors.New("presupuestos: monto must be greater than zero")
	ErrInvalidMetodo      = errors.New("presupuestos: metodo_envio must be email, whatsapp or both")
	ErrMissingEmail       = errors.New("presupuestos: email is required for email delivery")
	ErrMissingTelefono    = errors.New("presupuestos: telefono is required for whatsapp delivery")
)
