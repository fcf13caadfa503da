package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const quotaKeyPrefix = "quota:generations:"

// decrementScript initializes a missing balance, then decrements it only when
// positive. Returns {taken, balance}.
var decrementScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then
	redis.call('SET', KEYS[1], ARGV[1])
	v = ARGV[1]
end
v = tonumber(v)
if v <= 0 then
	return {0, v}
end
return {1, redis.call('DECR', KEYS[1])}
`)

// RedisQuotaStore keeps balances as plain integer keys.
type RedisQuotaStore struct {
	client redis.UniversalClient
}

func NewRedisQuotaStore(client redis.UniversalClient) *RedisQuotaStore {
	return &RedisQuotaStore{client: client}
}

func (s *RedisQuotaStore) GetOrInit(ctx context.Context, userID string, initial int) (int, error) {
	key := quotaKey(userID)
	if err := s.client.SetNX(ctx, key, initial, 0).Err(); err != nil {
		return 0, fmt.Errorf("failed to initialize quota: %w", err)
	}
	val, err := s.client.Get(ctx, key).Int()
	if errors.Is(err, redis.Nil) {
		return initial, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read quota: %w", err)
	}
	return val, nil
}

func (s *RedisQuotaStore) DecrementIfPositive(ctx context.Context, userID string, initial int) (int, bool, error) {
	res, err := decrementScript.Run(ctx, s.client, []string{quotaKey(userID)}, initial).Int64Slice()
	if err != nil {
		return 0, false, fmt.Errorf("failed to decrement quota: %w", err)
	}
	if len(res) != 2 {
		return 0, false, fmt.Errorf("unexpected decrement reply: %v", res)
	}
	return int(res[1]), res[0] == 1, nil
}

func (s *RedisQuotaStore) Set(ctx context.Context, userID string, amount int) error {
	if err := s.client.Set(ctx, quotaKey(userID), amount, 0).Err(); err != nil {
		return fmt.Errorf("failed to set quota: %w", err)
	}
	return nil
}

func quotaKey(userID string) string {
	return quotaKeyPrefix + userID
}
