package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/oggyb/muzz-matching/internal/config"
	"github.com/redis/go-redis/v9"
)

// RedisCache keeps derived per-user counters (likes received, unread messages).
// The database stays the source of truth; every entry can be dropped at any time.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	ttl := cfg.Redis.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisCache{Client: redis.NewClient(opts), TTL: ttl}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// KeyForLikeCount generates Redis key for the number of users liking userID.
func (c *RedisCache) KeyForLikeCount(userID uint64) string {
	return fmt.Sprintf("likes:count:%d", userID)
}

// KeyForUnreadCount generates Redis key for the size of userID's Unread folder.
func (c *RedisCache) KeyForUnreadCount(userID uint64) string {
	return fmt.Sprintf("messages:unread:%d", userID)
}

// GetCount reads a cached counter. ok is false on a miss.
// Hits refresh the TTL since the user is active.
func (c *RedisCache) GetCount(ctx context.Context, key string) (n int64, ok bool, err error) {
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}

	n, err = strconv.ParseInt(val, 10, 64)
	if err != nil {
		// corrupt entry, treat as miss
		_ = c.Client.Del(ctx, key).Err()
		return 0, false, nil
	}
	_ = c.Client.Expire(ctx, key, c.TTL).Err()
	return n, true, nil
}

// SetCount stores a counter. Always refreshes TTL when updating.
func (c *RedisCache) SetCount(ctx context.Context, key string, n int64) error {
	return c.Client.Set(ctx, key, strconv.FormatInt(n, 10), c.TTL).Err()
}

// incrIfExists increments KEYS[1] and resets its TTL to ARGV[1] ms, but only
// when the key exists. A nil reply means the key was missing.
var incrIfExists = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return false
end
local n = redis.call("INCR", KEYS[1])
redis.call("PEXPIRE", KEYS[1], ARGV[1])
return n
`)

// IncrIfCached bumps a counter only when it is already cached, so a miss is
// never turned into a wrong partial count. Check and increment run as one
// script, so a key expiring in between cannot be recreated at 1.
func (c *RedisCache) IncrIfCached(ctx context.Context, key string) error {
	err := incrIfExists.Run(ctx, c.Client, []string{key}, c.TTL.Milliseconds()).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// Invalidate drops the given keys.
func (c *RedisCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.Client.Del(ctx, keys...).Err()
}
