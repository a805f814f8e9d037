package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// pendingMarker значение ключа, пока первый запрос выполняется.
const pendingMarker = "pending"

// RedisIdempotencyStore хранит ключи идемпотентности в redis.
type RedisIdempotencyStore struct {
	rdb *redis.Client
}

func NewRedisIdempotencyStore(rdb *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{rdb: rdb}
}

func (r *RedisIdempotencyStore) Begin(
	ctx context.Context,
	key string,
	ttl time.Duration,
) (*StoredResponse, bool, error) {
	reserved, err := r.rdb.SetNX(ctx, key, pendingMarker, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if reserved {
		return nil, true, nil
	}

	value, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		// ключ истек между SETNX и GET, клиент повторит запрос.
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get idempotency key: %w", err)
	}
	if value == pendingMarker {
		return nil, false, nil
	}

	var stored StoredResponse
	if unmarshalErr := json.Unmarshal([]byte(value), &stored); unmarshalErr != nil {
		return nil, false, fmt.Errorf("decode stored response: %w", unmarshalErr)
	}
	return &stored, false, nil
}

func (r *RedisIdempotencyStore) Save(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode stored response: %w", err)
	}
	if setErr := r.rdb.Set(ctx, key, data, ttl).Err(); setErr != nil {
		return fmt.Errorf("save idempotent response: %w", setErr)
	}
	return nil
}

func (r *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

// ConnectRedis подключается к redis. Пустой addr означает что redis не настроен, возвращается nil без ошибки.
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, nil //nolint:nilnil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return rdb, nil
}
