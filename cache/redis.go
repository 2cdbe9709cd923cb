package cache

import (
	"context"
	"errors"
	"fmt"
	"spotifylyrics-go/logcolors"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	keyPrefix = "spotifylyrics:"
	opTimeout = 2 * time.Second
	scanBatch = 200
)

// redisClient is the subset of *redis.Client the cache needs
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	StrLen(ctx context.Context, key string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Close() error
}

// RedisCache stores lyrics in Redis and lets the server expire them
type RedisCache struct {
	rdb redisClient
	ttl time.Duration
}

// NewRedisCache connects to addr and checks the connection
func NewRedisCache(addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
	}

	log.Infof("%s Connected to %s (db %d, ttl: %s)", logcolors.LogCacheRedis, addr, db, ttl)
	return &RedisCache{rdb: rdb, ttl: ttl}, nil
}

func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

// Get returns the value under key; redis errors count as misses
func (rc *RedisCache) Get(key string) (string, bool) {
	ctx, cancel := opContext()
	defer cancel()

	value, err := rc.rdb.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warnf("%s Get %s failed: %v", logcolors.LogCacheRedis, key, err)
		}
		return "", false
	}
	return value, true
}

// Set overwrites key with value and the configured expiration
func (rc *RedisCache) Set(key, value string) error {
	ctx, cancel := opContext()
	defer cancel()
	return rc.rdb.Set(ctx, keyPrefix+key, value, rc.ttl).Err()
}

// Delete removes key
func (rc *RedisCache) Delete(key string) error {
	ctx, cancel := opContext()
	defer cancel()
	return rc.rdb.Del(ctx, keyPrefix+key).Err()
}

// keys walks every key carrying the cache prefix
func (rc *RedisCache) keys(ctx context.Context, fn func(key string) error) error {
	var cursor uint64
	for {
		batch, next, err := rc.rdb.Scan(ctx, cursor, keyPrefix+"*", scanBatch).Result()
		if err != nil {
			return err
		}
		for _, k := range batch {
			if err := fn(k); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Clear removes every cache key, leaving other data in the database alone
func (rc *RedisCache) Clear() error {
	ctx, cancel := opContext()
	defer cancel()

	removed := 0
	err := rc.keys(ctx, func(k string) error {
		removed++
		return rc.rdb.Del(ctx, k).Err()
	})
	if err != nil {
		return err
	}
	log.Infof("%s Removed %d keys", logcolors.LogCacheClear, removed)
	return nil
}

// Stats counts cache keys and sums their value lengths
func (rc *RedisCache) Stats() (numKeys int, sizeInKB int) {
	ctx, cancel := opContext()
	defer cancel()

	size := int64(0)
	err := rc.keys(ctx, func(k string) error {
		n, err := rc.rdb.StrLen(ctx, k).Result()
		if err != nil {
			return err
		}
		numKeys++
		size += int64(len(k)) + n
		return nil
	})
	if err != nil {
		log.Warnf("%s Stats failed: %v", logcolors.LogCacheRedis, err)
	}
	return numKeys, int(size / 1024)
}

// Close closes the client
func (rc *RedisCache) Close() error {
	return rc.rdb.Close()
}
