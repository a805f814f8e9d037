package middlewares

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"
)

// IdempotencyStore хранилище ключей идемпотентности.
type IdempotencyStore interface {
	// Begin резервирует key на ttl. Если ключ уже занят, возвращает сохраненный ответ (nil пока первый
	// запрос не завершился) и reserved=false.
	Begin(ctx context.Context, key string, ttl time.Duration) (stored *StoredResponse, reserved bool, err error)
	// Save сохраняет ответ для зарезервированного ключа.
	Save(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error
	// Release освобождает ключ, повторный запрос выполнится заново.
	Release(ctx context.Context, key string) error
}
