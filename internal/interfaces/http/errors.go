package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/domain"
)

// LocalError guarda el error original para el access log (el cliente solo recibe code y message).
const LocalError = "error"

// statusByCode traduce el código estable de dominio a status HTTP.
var statusByCode = map[string]int{
	"VALIDATION":           fiber.StatusBadRequest,
	"INVALID_LINE":         fiber.StatusBadRequest,
	"INVALID_STATE":        fiber.StatusBadRequest,
	"ALREADY_VOIDED":       fiber.StatusBadRequest,
	"STOCK_NOT_CONFIGURED": fiber.StatusBadRequest,
	"INSUFFICIENT_STOCK":   fiber.StatusBadRequest,
	"NOT_FOUND":            fiber.StatusNotFound,
	"DUPLICATE":            fiber.StatusConflict,
	"UNAUTHORIZED":         fiber.StatusUnauthorized,
	"FORBIDDEN":            fiber.StatusForbidden,
	"STORE_FAILURE":        fiber.StatusInternalServerError,
}

// StatusFor devuelve el status HTTP de err.
func StatusFor(err error) int {
	if status, ok := statusByCode[domain.Code(err)]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// respondError escribe {code, message}. Los detalles de fallos internos no salen al cliente.
func respondError(c *fiber.Ctx, err error) error {
	c.Locals(LocalError, err)
	code := domain.Code(err)
	status := StatusFor(err)
	message := domain.Message(err)
	if status >= fiber.StatusInternalServerError {
		message = "Error interno, intente nuevamente"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: message})
}
