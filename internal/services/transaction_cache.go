package services

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	ierr "payment-api/internal/errors"
	"payment-api/pkg/logging"
)

// TransactionCache remembers gateway transaction ids whose subscription patch
// has already been applied, so rapid redeliveries skip the downstream calls.
type TransactionCache interface {
	Seen(ctx context.Context, transID string) (bool, error)
	Remember(ctx context.Context, transID string) error
}

// RedisTransactionCache stores applied transaction ids in Redis
type RedisTransactionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTransactionCache creates a Redis backed cache
func NewRedisTransactionCache(client *redis.Client, ttl time.Duration) *RedisTransactionCache {
	return &RedisTransactionCache{client: client, ttl: ttl}
}

func transactionKey(transID string) string {
	return fmt.Sprintf("momo_ipn_applied:%s", transID)
}

// Seen reports whether transID was remembered and has not expired
func (r *RedisTransactionCache) Seen(ctx context.Context, transID string) (bool, error) {
	exists, err := r.client.Exists(ctx, transactionKey(transID)).Result()
	if err != nil {
		return false, ierr.WithError(err).WithMessage("failed to read transaction cache").Mark(ierr.ErrDownstream)
	}
	return exists > 0, nil
}

// Remember records transID for the configured TTL
func (r *RedisTransactionCache) Remember(ctx context.Context, transID string) error {
	data := map[string]interface{}{
		"trans_id":   transID,
		"applied_at": time.Now().Unix(),
	}

	key := transactionKey(transID)
	if err := r.client.HSet(ctx, key, data).Err(); err != nil {
		return ierr.WithError(err).WithMessage("failed to write transaction cache").Mark(ierr.ErrDownstream)
	}
	if err := r.client.Expire(ctx, key, r.ttl).Err(); err != nil {
		return ierr.WithError(err).WithMessage("failed to expire transaction cache entry").Mark(ierr.ErrDownstream)
	}
	return nil
}

// MemoryTransactionCache keeps applied transaction ids in process memory.
// Used when no Redis is configured; entries are lost on restart.
type MemoryTransactionCache struct {
	entries *cache.Cache
}

// NewMemoryTransactionCache creates an in-process cache with the given TTL
func NewMemoryTransactionCache(ttl time.Duration) *MemoryTransactionCache {
	return &MemoryTransactionCache{entries: cache.New(ttl, 2*ttl)}
}

// Seen reports whether transID was remembered and has not expired
func (m *MemoryTransactionCache) Seen(_ context.Context, transID string) (bool, error) {
	appliedAt, found := m.entries.Get(transID)
	if found {
		logging.Debugw("transaction already applied", "trans_id", transID, "applied_at", appliedAt)
	}
	return found, nil
}

// Remember records transID for the cache TTL
func (m *MemoryTransactionCache) Remember(_ context.Context, transID string) error {
	m.entries.SetDefault(transID, time.Now())
	return nil
}
