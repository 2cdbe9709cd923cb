package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// unsetEnv clears the given variables for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	originalValues := make(map[string]string)
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			originalValues[key] = value
		}
		os.Unsetenv(key)
	}
	t.Cleanup(func() {
		for key, value := range originalValues {
			os.Setenv(key, value)
		}
	})
}

func TestConfigDefaultValues(t *testing.T) {
	unsetEnv(t,
		"SOURCE",
		"POLL_INTERVAL_MS",
		"DETECT_TIMEOUT_MS",
		"SYNC_LYRICS",
		"PROVIDER_TIMEOUT_SECS",
		"LYRICS_CACHE_TTL_IN_SECONDS",
		"CACHE_BACKEND",
		"CIRCUIT_BREAKER_THRESHOLD",
		"CIRCUIT_BREAKER_COOLDOWN_SECS",
		"API_PORT",
		"FF_CACHE_COMPRESSION",
	)

	cfg, err := load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Source default", cfg.Playback.Source, "spotify"},
		{"PollIntervalMs default", cfg.Playback.PollIntervalMs, 1000},
		{"DetectTimeoutMs default", cfg.Playback.DetectTimeoutMs, 3000},
		{"SyncLyrics default", cfg.Lyrics.SyncLyrics, true},
		{"ProviderTimeoutSecs default", cfg.Lyrics.ProviderTimeoutSecs, 10},
		{"LyricsCacheTTLInSeconds default", cfg.Cache.LyricsCacheTTLInSeconds, 604800},
		{"Backend default", cfg.Cache.Backend, "bolt"},
		{"CircuitBreakerThreshold default", cfg.Lyrics.CircuitBreakerThreshold, 5},
		{"CircuitBreakerCooldownSecs default", cfg.Lyrics.CircuitBreakerCooldownSecs, 300},
		{"API port default", cfg.API.Port, 0},
		{"CacheCompression default", cfg.FeatureFlags.CacheCompression, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, tt.got)
			}
		})
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	unsetEnv(t, "SOURCE", "LYRICS_CACHE_TTL_IN_SECONDS", "SYNC_LYRICS")
	os.Setenv("SOURCE", "vlc")
	os.Setenv("LYRICS_CACHE_TTL_IN_SECONDS", "60")
	os.Setenv("SYNC_LYRICS", "false")

	cfg, err := load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Playback.Source != "vlc" {
		t.Errorf("Expected source vlc, got %s", cfg.Playback.Source)
	}
	if cfg.CacheTTL() != time.Minute {
		t.Errorf("Expected cache TTL 1m, got %v", cfg.CacheTTL())
	}
	if cfg.Lyrics.SyncLyrics {
		t.Error("Expected SyncLyrics to be false")
	}
}

func TestConfigInvalidValue(t *testing.T) {
	unsetEnv(t, "POLL_INTERVAL_MS")
	os.Setenv("POLL_INTERVAL_MS", "not-a-number")

	if _, err := load(); err == nil {
		t.Error("Expected error for invalid POLL_INTERVAL_MS")
	}
}

func TestSettingsDir(t *testing.T) {
	var cfg Config
	cfg.Cache.SettingsDir = "/tmp/lyrics-settings"

	if got := cfg.SettingsDir(); got != "/tmp/lyrics-settings" {
		t.Errorf("Expected explicit settings dir, got %s", got)
	}
	if got := cfg.CacheDir(); got != filepath.Join("/tmp/lyrics-settings", "cache") {
		t.Errorf("Expected cache subdirectory, got %s", got)
	}

	cfg.Cache.SettingsDir = ""
	if got := cfg.SettingsDir(); filepath.Base(got) != AppName {
		t.Errorf("Expected default settings dir to end in %s, got %s", AppName, got)
	}
}

func TestDurations(t *testing.T) {
	var cfg Config
	cfg.Playback.PollIntervalMs = 1500
	cfg.Playback.DetectTimeoutMs = 250
	cfg.Lyrics.ProviderTimeoutSecs = 4

	if cfg.PollInterval() != 1500*time.Millisecond {
		t.Errorf("Expected 1.5s, got %v", cfg.PollInterval())
	}
	if cfg.DetectTimeout() != 250*time.Millisecond {
		t.Errorf("Expected 250ms, got %v", cfg.DetectTimeout())
	}
	if cfg.ProviderTimeout() != 4*time.Second {
		t.Errorf("Expected 4s, got %v", cfg.ProviderTimeout())
	}
}
