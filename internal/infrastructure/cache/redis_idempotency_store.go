// Package cache guarda respuestas idempotentes en Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultIdempotencyTTL tiempo durante el que se reproduce una respuesta guardada.
const DefaultIdempotencyTTL = 24 * time.Hour

const inFlight = "in-flight"

// ErrInProgress otra petición con la misma clave sigue en curso.
var ErrInProgress = errors.New("petición idempotente en curso")

// StoredResponse respuesta HTTP guardada para una clave de idempotencia.
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// RedisIdempotencyStore reserva claves con SETNX y guarda la primera respuesta.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisClient conecta y verifica Redis con PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// NewRedisIdempotencyStore construye el store. ttl <= 0 usa DefaultIdempotencyTTL.
func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: "idem:", ttl: ttl}
}

// Begin reserva key. Devuelve (nil, nil) si la reserva es nueva y el llamador debe procesar la petición,
// la respuesta guardada si ya se completó, o ErrInProgress si otra petición la tiene reservada.
func (s *RedisIdempotencyStore) Begin(ctx context.Context, key string) (*StoredResponse, error) {
	k := s.keyPrefix + key
	ok, err := s.client.SetNX(ctx, k, inFlight, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("idempotency begin: %w", err)
	}
	if ok {
		return nil, nil
	}

	raw, err := s.client.Get(ctx, k).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// expiró entre SETNX y GET
			return s.Begin(ctx, key)
		}
		return nil, fmt.Errorf("idempotency get: %w", err)
	}
	if string(raw) == inFlight {
		return nil, ErrInProgress
	}
	var resp StoredResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("idempotency decode: %w", err)
	}
	return &resp, nil
}

// Complete guarda la respuesta final para key.
func (s *RedisIdempotencyStore) Complete(ctx context.Context, key string, resp StoredResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("idempotency encode: %w", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

// Release libera la reserva sin guardar respuesta (la petición puede reintentarse).
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}
