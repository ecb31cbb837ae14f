package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-redis/redis/v8"
)

const nameCachePrefix = "ens:"

// NameCacheRepository caches resolved names in Redis.
type NameCacheRepository struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewNameCacheRepository(redis *redis.Client, ttl time.Duration) *NameCacheRepository {
	return &NameCacheRepository{
		redis: redis,
		ttl:   ttl,
	}
}

// names are case-insensitive
func nameKey(name string) string {
	return nameCachePrefix + strings.ToLower(name)
}

// Get returns the cached address of name. The bool is false on a miss.
func (r *NameCacheRepository) Get(ctx context.Context, name string) (common.Address, bool, error) {
	value, err := r.redis.Get(ctx, nameKey(name)).Result()
	if errors.Is(err, redis.Nil) {
		return common.Address{}, false, nil
	}
	if err != nil {
		return common.Address{}, false, err
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, false, fmt.Errorf("invalid cached address for %s: %q", name, value)
	}
	return common.HexToAddress(value), true, nil
}

// Set caches addr for name with the repository TTL.
func (r *NameCacheRepository) Set(ctx context.Context, name string, addr common.Address) error {
	return r.redis.Set(ctx, nameKey(name), addr.Hex(), r.ttl).Err()
}

func (r *NameCacheRepository) Delete(ctx context.Context, name string) error {
	return r.redis.Del(ctx, nameKey(name)).Err()
}
