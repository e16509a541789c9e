package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Enviar    Enviador
	Envios    EnvioLister // nil = bitácora desactivada, la ruta no se registra
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	facturas := api.Group("/facturas")
	facturaHandler := NewFacturaHandler(deps.Enviar)
	facturas.Post("/", facturaHandler.Enviar)

	if deps.Envios != nil {
		enviosHandler := NewEnviosHandler(deps.Envios)
		facturas.Get("/envios", enviosHandler.List)
	}
}
