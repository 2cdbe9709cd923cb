package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

// AppName names the per-user settings directory.
const AppName = "spotifylyrics"

var conf = mustLoad()

type Config struct {
	Playback struct {
		Source          string `envconfig:"SOURCE" default:"spotify"`
		PollIntervalMs  int    `envconfig:"POLL_INTERVAL_MS" default:"1000"`
		DetectTimeoutMs int    `envconfig:"DETECT_TIMEOUT_MS" default:"3000"`
	}

	Lyrics struct {
		SyncLyrics                 bool   `envconfig:"SYNC_LYRICS" default:"true"`
		ProviderTimeoutSecs        int    `envconfig:"PROVIDER_TIMEOUT_SECS" default:"10"`
		ProviderRateLimitPerSecond int    `envconfig:"PROVIDER_RATE_LIMIT_PER_SECOND" default:"2"`
		LocalLyricsDir             string `envconfig:"LOCAL_LYRICS_DIR" default:""`
		GeniusUserAgent            string `envconfig:"GENIUS_USER_AGENT" default:""`
		CircuitBreakerThreshold    int    `envconfig:"CIRCUIT_BREAKER_THRESHOLD" default:"5"`     // Consecutive failures before a provider is skipped
		CircuitBreakerCooldownSecs int    `envconfig:"CIRCUIT_BREAKER_COOLDOWN_SECS" default:"300"` // Seconds before a skipped provider is retried
		OpenChords                 bool   `envconfig:"OPEN_CHORDS" default:"false"`
		EnrichMetadata             bool   `envconfig:"ENRICH_METADATA" default:"true"`
	}

	Cache struct {
		SettingsDir                 string `envconfig:"SETTINGS_DIR" default:""`
		Backend                     string `envconfig:"CACHE_BACKEND" default:"bolt"`
		LyricsCacheTTLInSeconds     int    `envconfig:"LYRICS_CACHE_TTL_IN_SECONDS" default:"604800"`
		CacheSweepIntervalInSeconds int    `envconfig:"CACHE_SWEEP_INTERVAL_IN_SECONDS" default:"3600"`
		RedisAddr                   string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
		RedisPassword               string `envconfig:"REDIS_PASSWORD" default:""`
		RedisDB                     int    `envconfig:"REDIS_DB" default:"0"`
	}

	API struct {
		Port                int    `envconfig:"API_PORT" default:"0"`
		APIKey              string `envconfig:"API_KEY" default:""`
		APIKeyRequired      bool   `envconfig:"API_KEY_REQUIRED" default:"false"`
		RateLimitPerSecond  int    `envconfig:"RATE_LIMIT_PER_SECOND" default:"5"`
		RateLimitBurstLimit int    `envconfig:"RATE_LIMIT_BURST_LIMIT" default:"10"`
	}

	Notifier struct {
		NtfyTopic        string `envconfig:"NOTIFIER_NTFY_TOPIC" default:""`
		NtfyServer       string `envconfig:"NOTIFIER_NTFY_SERVER" default:""`
		TelegramBotToken string `envconfig:"NOTIFIER_TELEGRAM_BOT_TOKEN" default:""`
		TelegramChatID   string `envconfig:"NOTIFIER_TELEGRAM_CHAT_ID" default:""`
		TrackChanges     bool   `envconfig:"NOTIFY_TRACK_CHANGES" default:"false"`
		CooldownMinutes  int    `envconfig:"NOTIFIER_COOLDOWN_MINUTES" default:"15"`
	}

	Logging struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"text"`
	}

	FeatureFlags struct {
		CacheCompression bool `envconfig:"FF_CACHE_COMPRESSION" default:"true"`
	}
}

// SettingsDir returns the configured settings directory, falling back to the
// XDG config home.
func (c Config) SettingsDir() string {
	if c.Cache.SettingsDir != "" {
		return c.Cache.SettingsDir
	}
	return filepath.Join(xdg.ConfigHome, AppName)
}

// CacheDir is the directory holding the persistent lyrics cache.
func (c Config) CacheDir() string {
	return filepath.Join(c.SettingsDir(), "cache")
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.LyricsCacheTTLInSeconds) * time.Second
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Playback.PollIntervalMs) * time.Millisecond
}

func (c Config) DetectTimeout() time.Duration {
	return time.Duration(c.Playback.DetectTimeoutMs) * time.Millisecond
}

func (c Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Lyrics.ProviderTimeoutSecs) * time.Second
}

// load loads the configuration from the environment.
func load() (Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Debugf("No .env file loaded: %v", err)
	}

	cfg := Config{}
	err = envconfig.Process("", &cfg)
	return cfg, err
}

func mustLoad() Config {
	c, err := load()
	if err != nil {
		log.WithError(err).Warnf("Unable to load configuration")
	}

	return c
}

func Get() Config {
	return conf
}
