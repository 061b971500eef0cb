package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/clinic-ledger/internal/application/dto"
	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
	"github.com/jhoicas/clinic-ledger/pkg/jwt"
)

// LocalActor clave en c.Locals del actor autenticado.
const LocalActor = "actor"

// AuthMiddleware valida el Bearer Token JWT y deja el entity.Actor en c.Locals.
// La autorización por clínica y permiso la decide AccessScope en cada caso de uso.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		id, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		if id.Role == "" && !id.System {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "el token no incluye rol"})
		}
		actor := entity.Actor{
			ID:          id.UserID,
			ClinicID:    id.ClinicID,
			Role:        id.Role,
			Permissions: id.Permissions,
			System:      id.System,
		}
		if actor.System && actor.Role == "" {
			actor.Role = entity.RoleSystem
		}
		c.Locals(LocalActor, actor)
		return c.Next()
	}
}

// GetActor devuelve el actor del contexto (después del middleware de auth).
func GetActor(c *fiber.Ctx) entity.Actor {
	actor, _ := c.Locals(LocalActor).(entity.Actor)
	return actor
}

// clinicFor clínica objetivo: la pedida explícitamente o la del token.
func clinicFor(actor entity.Actor, requested string) string {
	if requested != "" {
		return requested
	}
	return actor.ClinicID
}
