package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/dulcepan/facturacion-api/internal/application/dto"
	"github.com/dulcepan/facturacion-api/internal/domain/entity"
)

// EnvioLister es el puerto de consulta de la bitácora de envíos.
type EnvioLister interface {
	ListByEmisor(ctx context.Context, emisorID string, limit int) ([]entity.EnvioFactura, error)
}

// EnviosHandler expone la bitácora de envíos a Hacienda.
type EnviosHandler struct {
	repo EnvioLister
}

// NewEnviosHandler construye el handler.
func NewEnviosHandler(repo EnvioLister) *EnviosHandler {
	return &EnviosHandler{repo: repo}
}

// List devuelve los envíos registrados de un emisor, del más reciente al más antiguo.
// GET /api/facturas/envios?emisor=<cedula>&limit=<n>
func (h *EnviosHandler) List(c *fiber.Ctx) error {
	emisor := c.Query("emisor")
	if emisor == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "parámetro emisor requerido"})
	}
	envios, err := h.repo.ListByEmisor(c.Context(), emisor, c.QueryInt("limit"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	out := make([]dto.EnvioResponse, 0, len(envios))
	for _, e := range envios {
		out = append(out, dto.EnvioFromEntity(e))
	}
	return c.JSON(out)
}
