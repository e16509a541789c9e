package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/dulcepan/facturacion-api/internal/application/billing"
	"github.com/dulcepan/facturacion-api/internal/application/dto"
	"github.com/dulcepan/facturacion-api/internal/domain/entity"
)

// Enviador es el puerto del handler hacia el caso de uso de envío.
type Enviador interface {
	Enviar(ctx context.Context, f *entity.Factura) (*billing.ResultadoEnvio, error)
}

// FacturaHandler maneja las peticiones HTTP de factura electrónica.
type FacturaHandler struct {
	uc Enviador
}

// NewFacturaHandler construye el handler.
func NewFacturaHandler(uc Enviador) *FacturaHandler {
	return &FacturaHandler{uc: uc}
}

// Enviar genera, firma y envía una factura electrónica a Hacienda.
// POST /api/facturas
//
// 200: el comprobante llegó a Hacienda; el cuerpo relata el desenlace (un
// rechazo de validación de Hacienda también es 200 con su status y causa).
// 500: el pipeline falló (datos inválidos, credencial, firma, red o auth).
func (h *FacturaHandler) Enviar(c *fiber.Ctx) error {
	var in dto.EnviarFacturaRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "cuerpo inválido: " + err.Error()})
	}

	res, err := h.uc.Enviar(c.Context(), in.ToEntity())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.EnviarFacturaResponse{
		Success:    true,
		Clave:      res.Clave,
		Status:     res.Hacienda.Status,
		StatusText: res.Hacienda.StatusText,
		ErrorCause: res.Hacienda.ErrorCause,
	})
}
