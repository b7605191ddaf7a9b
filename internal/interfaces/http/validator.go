package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-api/internal/domain"
)

// RequestValidator valida los DTO de entrada con las etiquetas `validate`.
type RequestValidator struct {
	v *validator.Validate
}

// NewRequestValidator usa el nombre JSON de cada campo en los mensajes.
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{v: v}
}

// Struct valida s y devuelve un error VALIDATION con un mensaje por campo.
func (rv *RequestValidator) Struct(s any) error {
	err := rv.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.NewError(domain.ErrInvalidInput, "entrada inválida")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Field()+": "+fieldMessage(fe))
	}
	return domain.NewError(domain.ErrInvalidInput, "%s", strings.Join(msgs, "; "))
}

// parseBody decodifica el JSON del body en out y lo valida.
func (rv *RequestValidator) parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return domain.NewError(domain.ErrInvalidInput, "cuerpo inválido")
	}
	return rv.Struct(out)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "requerido"
	case "email":
		return "email inválido"
	case "min":
		if fe.Kind() == reflect.String {
			return "mínimo " + fe.Param() + " caracteres"
		}
		if fe.Kind() == reflect.Slice {
			return "mínimo " + fe.Param() + " elementos"
		}
		return "debe ser mayor o igual a " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "máximo " + fe.Param() + " caracteres"
		}
		return "debe ser menor o igual a " + fe.Param()
	case "gt":
		return "debe ser mayor que " + fe.Param()
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	default:
		return "valor inválido"
	}
}
