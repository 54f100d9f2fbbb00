package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrMiss indica que la clave no está en la cache.
var ErrMiss = errors.New("cache miss")

// KV es el almacenamiento clave/valor con TTL que usa CandleCache.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisKV implementa KV sobre Redis con un prefijo común para todas las claves.
type RedisKV struct {
	client *redis.Client
	prefix string
}

// NewRedisKV crea el cliente; no abre conexión hasta el primer comando (ver Ping).
func NewRedisKV(addr, password string, db int) *RedisKV {
	return &RedisKV{
		client: redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			DialTimeout:  3 * time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		}),
		prefix: "sniperbot:",
	}
}

// Ping comprueba la conexión.
func (r *RedisKV) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache.Ping: %w", err)
	}
	return nil
}

// Get devuelve ErrMiss si la clave no existe o expiró.
func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return data, err
}

// Set guarda value con TTL (0 = sin expiración).
func (r *RedisKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

// Close cierra el pool de conexiones.
func (r *RedisKV) Close() error {
	return r.client.Close()
}
