package presupuestos

import "net/http"

// confirmationPage is shown to patients after the GET answer link when no
// external confirmation page is configured.
const confirmationPage = `<!DOCTYPE html>
<html lang="es">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Respuesta registrada</title>
  <style>
    body { font-family: sans-serif; background: #f4f7f6; margin: 0; }
    main { max-width: 28rem; margin: 15vh auto; background: #fff; padding: 2rem;
           border-radius: 8px; box-shadow: 0 1px 4px rgba(0,0,0,.1); text-align: center; }
    h1 { color: #1a7f64; font-size: 1.4rem; }
  </style>
</head>
<body>
  <main>
    <h1>¡Gracias!</h1>
    <p>Su respuesta fue registrada. La clínica se pondrá en contacto con usted.</p>
  </main>
</body>
</html>
`

// ConfirmationPage handles GET /presupuesto/confirmacion.
func (h *Handler) ConfirmationPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(confirmationPage))
}
