package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// IdempotencyPending marks a key whose request is still in flight.
const IdempotencyPending = "pending"

type IdempotencyRepository interface {
	// Reserve claims key. When it is already held, existing carries its value.
	Reserve(ctx context.Context, key string, ttl time.Duration) (existing string, reserved bool, err error)
	Complete(ctx context.Context, key, value string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

type idempotencyRepository struct {
	rdb *redis.Client
	log *zap.Logger
}

func NewIdempotencyRepository(rdb *redis.Client, log *zap.Logger) IdempotencyRepository {
	return &idempotencyRepository{
		rdb: rdb,
		log: log.With(zap.String("repository", "idempotency")),
	}
}

func (r *idempotencyRepository) Reserve(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	ok, err := r.rdb.SetNX(ctx, key, IdempotencyPending, ttl).Result()
	if err != nil {
		r.log.Error("Failed to reserve idempotency key", zap.Error(err), zap.String("key", key))
		return "", false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if ok {
		return "", true, nil
	}

	value, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		// expired between SETNX and GET: try once more
		if errors.Is(err, redis.Nil) {
			ok, err = r.rdb.SetNX(ctx, key, IdempotencyPending, ttl).Result()
			if err != nil {
				return "", false, fmt.Errorf("reserve idempotency key: %w", err)
			}
			if ok {
				return "", true, nil
			}
			return IdempotencyPending, false, nil
		}
		r.log.Error("Failed to read idempotency key", zap.Error(err), zap.String("key", key))
		return "", false, fmt.Errorf("read idempotency key: %w", err)
	}
	return value, false, nil
}

func (r *idempotencyRepository) Complete(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		r.log.Error("Failed to complete idempotency key", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

func (r *idempotencyRepository) Release(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		r.log.Warn("Failed to release idempotency key", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

// noopIdempotencyRepository always grants the key; the orders unique index still catches replays.
type noopIdempotencyRepository struct{}

func NewNoopIdempotencyRepository() IdempotencyRepository {
	return noopIdempotencyRepository{}
}

func (noopIdempotencyRepository) Reserve(context.Context, string, time.Duration) (string, bool, error) {
	return "", true, nil
}

func (noopIdempotencyRepository) Complete(context.Context, string, string, time.Duration) error {
	return nil
}

func (noopIdempotencyRepository) Release(context.Context, string) error {
	return nil
}
