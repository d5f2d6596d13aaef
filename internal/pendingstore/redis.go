package pendingstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"pymepos-backend-go/internal/models"
)

const redisKeyPrefix = "pending-tx:"

// RedisStore keeps pending transactions in Redis for deployments running
// more than one backend process. Expiry is delegated to per-key TTLs, so the
// retention sweep that the other implementations perform on access happens
// server-side here.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore over an initialized client and verifies
// the connection.
func NewRedisStore(ctx context.Context, client *redis.Client) (*RedisStore, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// Put stores the intent keyed by sessionID with the retention window as TTL.
func (s *RedisStore) Put(ctx context.Context, sessionID string, tx models.PendingTransaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to encode pending transaction: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+sessionID, data, RetentionWindow).Err(); err != nil {
		return fmt.Errorf("failed to store pending transaction '%s': %w", sessionID, err)
	}
	return nil
}

// TakeAndExpire atomically reads and deletes the entry for sessionID via GETDEL.
func (s *RedisStore) TakeAndExpire(ctx context.Context, sessionID string) (models.PendingTransaction, bool, error) {
	data, err := s.client.GetDel(ctx, redisKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.PendingTransaction{}, false, nil
	}
	if err != nil {
		return models.PendingTransaction{}, false, fmt.Errorf("failed to take pending transaction '%s': %w", sessionID, err)
	}

	var tx models.PendingTransaction
	if err := json.Unmarshal(data, &tx); err != nil {
		return models.PendingTransaction{}, false, fmt.Errorf("failed to decode pending transaction '%s': %w", sessionID, err)
	}
	return tx, true, nil
}
