package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dulcepan/facturacion-api/internal/application/dto"
	"github.com/dulcepan/facturacion-api/pkg/jwt"
)

// LocalClientRef clave de c.Locals con la referencia del cliente autenticado.
const LocalClientRef = "client_ref"

// AuthMiddleware valida el Bearer Token JWT y deja la referencia del cliente
// en c.Locals. Con secret vacío el endpoint queda abierto (desarrollo local).
func AuthMiddleware(jwtSecret string) fiber.Handler {
	if jwtSecret == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "token vacío"})
		}
		clientRef, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "token inválido o expirado"})
		}
		c.Locals(LocalClientRef, clientRef)
		return c.Next()
	}
}

// GetClientRef devuelve la referencia del cliente (después del middleware de auth).
func GetClientRef(c *fiber.Ctx) string {
	v := c.Locals(LocalClientRef)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
