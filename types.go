package main

import (
	"spotifylyrics-go/cache"
	"spotifylyrics-go/circuitbreaker"
	"spotifylyrics-go/engine"
)

// backupStore is implemented by cache backends that keep snapshot files
type backupStore interface {
	Backup() (string, error)
	BackupAndClear() (string, error)
	ListBackups() ([]cache.BackupInfo, error)
}

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// LyricsResponse is returned by /lyrics and /lyrics/next
type LyricsResponse struct {
	Artist   string `json:"artist"`
	Title    string `json:"title"`
	Lyrics   string `json:"lyrics"`
	Provider string `json:"provider"`
	URL      string `json:"url,omitempty"`
	Synced   bool   `json:"synced"`
	Found    bool   `json:"found"`
}

// ChordsResponse is returned by /chords
type ChordsResponse struct {
	Artist string   `json:"artist"`
	Title  string   `json:"title"`
	URLs   []string `json:"urls"`
}

// CachePerformance contains cache hit/miss statistics
type CachePerformance struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate_percent"`
}

// CacheStatsResponse is the response format for GET /cache
type CacheStatsResponse struct {
	Backend      string             `json:"backend"`
	NumberOfKeys int                `json:"number_of_keys"`
	SizeInKB     int                `json:"size_kb"`
	SizeInMB     float64            `json:"size_mb"`
	Performance  CachePerformance   `json:"performance"`
	Backups      []cache.BackupInfo `json:"backups,omitempty"`
}

// HealthResponse is the response format for /health
type HealthResponse struct {
	Status       string                    `json:"status"`
	Source       string                    `json:"source"`
	LaunchPath   string                    `json:"launch_path,omitempty"`
	Strategy     string                    `json:"strategy"`
	CacheBackend string                    `json:"cache_backend"`
	Providers    map[string][]string       `json:"providers"`
	OpenBreakers []circuitbreaker.Snapshot `json:"open_breakers,omitempty"`
	Cursor       engine.Cursor             `json:"cursor"`
	Uptime       string                    `json:"uptime"`
}

// BreakerResetResponse is the response format for POST /circuit-breaker/{provider}/reset
type BreakerResetResponse struct {
	Group   string                  `json:"group"`
	Breaker circuitbreaker.Snapshot `json:"breaker"`
}
