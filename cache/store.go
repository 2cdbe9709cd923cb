package cache

import "time"

// Store is the lyrics cache contract. Values are opaque strings; entries
// expire after the TTL the store was built with.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
	Clear() error
	Stats() (numKeys int, sizeInKB int)
	Close() error
}

// Entry is a cached value as persisted (the value may be compressed)
type Entry struct {
	Value     string `json:"value"`
	ExpiresAt int64  `json:"expiresAt"` // unix milliseconds, 0 never expires
}

// Expired reports whether the entry is past its expiry at now
func (e Entry) Expired(now time.Time) bool {
	return e.ExpiresAt > 0 && now.UnixMilli() >= e.ExpiresAt
}

func expiry(now time.Time, ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return now.Add(ttl).UnixMilli()
}
