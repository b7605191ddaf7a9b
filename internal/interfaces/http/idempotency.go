package http

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/infrastructure/cache"
)

// Cabeceras de idempotencia.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
	maxIdempotencyKeyLen = 200
)

// IdempotencyStore lo implementa *cache.RedisIdempotencyStore.
type IdempotencyStore interface {
	Begin(ctx context.Context, key string) (*cache.StoredResponse, error)
	Complete(ctx context.Context, key string, resp cache.StoredResponse) error
	Release(ctx context.Context, key string) error
}

// Idempotency reproduce la primera respuesta 2xx de una petición con la misma Idempotency-Key
// del mismo usuario. Va DESPUÉS de AuthMiddleware. Con store nil no hace nada.
//   - 409 IDEMPOTENCY_IN_PROGRESS si otra petición con la clave sigue en curso.
//   - Respuestas no 2xx liberan la clave para que el cliente pueda reintentar.
//   - Si el store falla, la petición se procesa sin idempotencia.
func Idempotency(store IdempotencyStore, log zerolog.Logger) fiber.Handler {
	if store == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return func(c *fiber.Ctx) error {
		key := strings.TrimSpace(c.Get(HeaderIdempotencyKey))
		if key == "" {
			return c.Next()
		}
		if len(key) > maxIdempotencyKeyLen {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "Idempotency-Key demasiado larga"})
		}
		scoped := GetUserID(c) + ":" + key
		ctx := c.UserContext()

		stored, err := store.Begin(ctx, scoped)
		switch {
		case errors.Is(err, cache.ErrInProgress):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Code:    "IDEMPOTENCY_IN_PROGRESS",
				Message: "Ya hay una petición en curso con esta Idempotency-Key",
			})
		case err != nil:
			log.Warn().Err(err).Str("key", key).Msg("idempotencia no disponible, se procesa sin ella")
			return c.Next()
		case stored != nil:
			c.Set(HeaderReplayed, "true")
			if stored.ContentType != "" {
				c.Set(fiber.HeaderContentType, stored.ContentType)
			}
			return c.Status(stored.Status).Send(stored.Body)
		}

		if err := c.Next(); err != nil {
			release(ctx, store, scoped, log)
			return err
		}
		status := c.Response().StatusCode()
		if status < 200 || status >= 300 {
			release(ctx, store, scoped, log)
			return nil
		}
		body := append([]byte(nil), c.Response().Body()...)
		resp := cache.StoredResponse{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        body,
		}
		if err := store.Complete(ctx, scoped, resp); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("no se pudo guardar la respuesta idempotente")
		}
		return nil
	}
}

func release(ctx context.Context, store IdempotencyStore, key string, log zerolog.Logger) {
	if err := store.Release(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar la clave idempotente")
	}
}
