package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvalidLine        = fmt.Errorf("%w: ítem inválido (productId, cantidad, precio)", ErrInvalidInput)
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrInvalidState       = errors.New("operación no permitida para el estado actual")
	ErrAlreadyVoided      = fmt.Errorf("%w: venta ya anulada", ErrInvalidState)
	ErrStockNotConfigured = errors.New("sin stock configurado")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrStoreFailure       = errors.New("error de almacenamiento")
)

// Error es un error de dominio con mensaje legible para el usuario.
// Unwrap devuelve Kind, de modo que errors.Is(err, domain.ErrInsufficientStock) funciona.
type Error struct {
	Kind    error
	Message string
}

// NewError construye un error de dominio del tipo kind con un mensaje formateado.
func NewError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// codes en orden de especificidad: los errores derivados van antes que su base.
var codes = []struct {
	kind error
	code string
}{
	{ErrInvalidLine, "INVALID_LINE"},
	{ErrInvalidInput, "VALIDATION"},
	{ErrUserNotFound, "NOT_FOUND"},
	{ErrNotFound, "NOT_FOUND"},
	{ErrAlreadyVoided, "ALREADY_VOIDED"},
	{ErrInvalidState, "INVALID_STATE"},
	{ErrStockNotConfigured, "STOCK_NOT_CONFIGURED"},
	{ErrInsufficientStock, "INSUFFICIENT_STOCK"},
	{ErrDuplicate, "DUPLICATE"},
	{ErrUnauthorized, "UNAUTHORIZED"},
	{ErrForbidden, "FORBIDDEN"},
	{ErrStoreFailure, "STORE_FAILURE"},
}

// Code devuelve el código estable del error (INTERNAL si no es de dominio).
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.kind) {
			return c.code
		}
	}
	return "INTERNAL"
}

// IsDomain indica si err pertenece a la taxonomía de dominio (excepto ErrStoreFailure).
func IsDomain(err error) bool {
	code := Code(err)
	return code != "INTERNAL" && code != "STORE_FAILURE"
}

// Message devuelve el mensaje para el usuario: el de *Error si existe, si no el del sentinel.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	for _, c := range codes {
		if errors.Is(err, c.kind) {
			return c.kind.Error()
		}
	}
	return "error interno"
}
