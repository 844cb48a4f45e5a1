package ledger

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/gymledger/internal/telemetry/tracing"
)

const (
	// LedgerStorageKey holds the whole serialized ledger document.
	LedgerStorageKey = "gymledger::entries::v1"
)

// LegacyStorageKeys are read once during migration and cleared afterwards.
var LegacyStorageKeys = []string{
	"workout-history",
	"training-log",
	"gymledger::entries::v0",
}

// Storage is the whole-document key-value persistence the store writes
// through. A missing key yields (nil, nil), never an error.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, payload []byte) error
	Del(ctx context.Context, keys ...string) error
}

// RedisStorage is the default Storage backend.
type RedisStorage struct {
	client *redis.Client
}

func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

func (s *RedisStorage) Get(ctx context.Context, key string) (_ []byte, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.redis.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("key", key))

	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *RedisStorage) Set(ctx context.Context, key string, payload []byte) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.redis.set")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("key", key))
	span.SetAttributes(attribute.Int("payload.size", len(payload)))

	return s.client.Set(ctx, key, payload, 0).Err()
}

func (s *RedisStorage) Del(ctx context.Context, keys ...string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.redis.del")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.client.Del(ctx, keys...).Err()
}
