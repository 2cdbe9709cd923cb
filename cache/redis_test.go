package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

// fakeRedis is an in-memory stand-in for the redis client
type fakeRedis struct {
	data    map[string]string
	ttls    map[string]time.Duration
	failGet bool
	closed  bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.failGet {
		return redis.NewStringResult("", errors.New("connection refused"))
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.data[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	n := int64(0)
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) StrLen(ctx context.Context, key string) *redis.IntCmd {
	return redis.NewIntResult(int64(len(f.data[key])), nil)
}

func (f *fakeRedis) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	prefix := strings.TrimSuffix(match, "*")
	var keys []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return redis.NewScanCmdResult(keys, 0, nil)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedisCache_SetGet(t *testing.T) {
	fake := newFakeRedis()
	rc := &RedisCache{rdb: fake, ttl: week}

	if err := rc.Set("Queen-Bohemian Rhapsody", "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if fake.ttls[keyPrefix+"Queen-Bohemian Rhapsody"] != week {
		t.Errorf("Expected expiration %s, got %s", week, fake.ttls[keyPrefix+"Queen-Bohemian Rhapsody"])
	}
	if got, ok := rc.Get("Queen-Bohemian Rhapsody"); !ok || got != "value" {
		t.Errorf("Expected hit with value, got %q / %v", got, ok)
	}
	if _, ok := rc.Get("Nobody-Nothing"); ok {
		t.Error("Expected miss for unknown key")
	}
}

func TestRedisCache_ErrorIsMiss(t *testing.T) {
	fake := newFakeRedis()
	fake.data[keyPrefix+"k"] = "v"
	fake.failGet = true
	rc := &RedisCache{rdb: fake, ttl: week}

	if _, ok := rc.Get("k"); ok {
		t.Error("Expected connection error to be reported as a miss")
	}
}

func TestRedisCache_ClearKeepsForeignKeys(t *testing.T) {
	fake := newFakeRedis()
	rc := &RedisCache{rdb: fake, ttl: week}
	rc.Set("a", "1")
	rc.Set("b", "22")
	fake.data["other:key"] = "keep"

	numKeys, _ := rc.Stats()
	if numKeys != 2 {
		t.Errorf("Expected 2 cache keys, got %d", numKeys)
	}

	if err := rc.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if numKeys, _ := rc.Stats(); numKeys != 0 {
		t.Errorf("Expected 0 cache keys after clear, got %d", numKeys)
	}
	if fake.data["other:key"] != "keep" {
		t.Error("Expected keys outside the cache prefix to survive")
	}
}

func TestRedisCache_DeleteAndClose(t *testing.T) {
	fake := newFakeRedis()
	rc := &RedisCache{rdb: fake, ttl: week}
	rc.Set("a", "1")

	if err := rc.Delete("a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := rc.Get("a"); ok {
		t.Error("Expected key to be deleted")
	}

	rc.Close()
	if !fake.closed {
		t.Error("Expected Close to close the client")
	}
}

var (
	_ Store = (*PersistentCache)(nil)
	_ Store = (*RedisCache)(nil)
)
