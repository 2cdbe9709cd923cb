package main

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"spotifylyrics-go/cache"
	"spotifylyrics-go/circuitbreaker"
	"spotifylyrics-go/config"
	"spotifylyrics-go/engine"
	"spotifylyrics-go/logcolors"
	"spotifylyrics-go/nowplaying"
	"spotifylyrics-go/services/metadata/musicbrainz"
	"spotifylyrics-go/services/notifier"
	"spotifylyrics-go/services/providers"
	"spotifylyrics-go/services/providers/azlyrics"
	"spotifylyrics-go/services/providers/cifraclub"
	"spotifylyrics-go/services/providers/genius"
	"spotifylyrics-go/services/providers/kugou"
	"spotifylyrics-go/services/providers/local"
	"spotifylyrics-go/services/providers/lrclib"
	"spotifylyrics-go/services/providers/lyricsovh"
	"spotifylyrics-go/services/providers/netease"
	"spotifylyrics-go/services/providers/songlyrics"
	"spotifylyrics-go/services/providers/songsterr"
	"spotifylyrics-go/services/providers/ultimateguitar"
	"spotifylyrics-go/song"
	"spotifylyrics-go/stats"
	"time"

	log "github.com/sirupsen/logrus"
)

const statsSaveInterval = 5 * time.Minute

// app holds every long-lived component
type app struct {
	conf       config.Config
	stats      *stats.Stats
	statsStore *stats.Store
	store      cache.Store
	backups    backupStore
	sweeper    *cache.PersistentCache
	breakers   *circuitbreaker.Set
	registry   *providers.Registry
	engine     *engine.Engine
	source     nowplaying.Source
	detector   *nowplaying.Detector
	tracker    *Tracker
}

// openStore opens the lyrics cache backend named by the configuration
func openStore(conf config.Config) (cache.Store, *cache.PersistentCache, error) {
	switch conf.Cache.Backend {
	case "redis":
		rc, err := cache.NewRedisCache(conf.Cache.RedisAddr, conf.Cache.RedisPassword, conf.Cache.RedisDB, conf.CacheTTL())
		if err != nil {
			return nil, nil, err
		}
		return rc, nil, nil
	case "bolt", "":
		dir := conf.CacheDir()
		pc, err := cache.NewPersistentCache(
			filepath.Join(dir, "lyrics.db"),
			filepath.Join(dir, "backups"),
			conf.CacheTTL(),
			conf.FeatureFlags.CacheCompression,
		)
		if err != nil {
			return nil, nil, err
		}
		return pc, pc, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", conf.Cache.Backend)
	}
}

// registerProviders fills the three groups in lookup order. Every web
// provider gets its own client from newClient so one slow site cannot use
// up the others' request budget.
func registerProviders(reg *providers.Registry, conf config.Config, newClient func() *providers.Client) {
	reg.RegisterSynced(local.NewProvider(conf.Lyrics.LocalLyricsDir))
	reg.RegisterSynced(lrclib.NewProvider(newClient()))
	reg.RegisterSynced(netease.NewProvider(newClient()))
	reg.RegisterSynced(kugou.NewProvider(newClient()))

	geniusClient := newClient()
	if conf.Lyrics.GeniusUserAgent != "" {
		geniusClient.UserAgent = conf.Lyrics.GeniusUserAgent
	}

	reg.RegisterPlain(lyricsovh.NewProvider(newClient()))
	reg.RegisterPlain(songlyrics.NewProvider(newClient()))
	reg.RegisterPlain(genius.NewProvider(geniusClient))
	reg.RegisterPlain(azlyrics.NewProvider(newClient()))

	reg.RegisterChords(ultimateguitar.NewProvider(newClient()))
	reg.RegisterChords(cifraclub.NewProvider(newClient()))
	reg.RegisterChords(songsterr.NewProvider(newClient()))

	for group, names := range reg.List() {
		log.Infof("%s %s providers: %v", logcolors.LogConfig, group, names)
	}
}

func newBreakers(conf config.Config, st *stats.Stats) *circuitbreaker.Set {
	cooldown := time.Duration(conf.Lyrics.CircuitBreakerCooldownSecs) * time.Second
	return circuitbreaker.NewSet(circuitbreaker.Config{
		Threshold: conf.Lyrics.CircuitBreakerThreshold,
		Cooldown:  cooldown,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			switch {
			case to == circuitbreaker.StateOpen:
				st.RecordBreakerTrip()
				notifier.PublishCircuitBreakerOpen(name, cooldown)
			case from == circuitbreaker.StateHalfOpen && to == circuitbreaker.StateClosed:
				notifier.PublishCircuitBreakerRecovered(name)
			}
		},
	})
}

// newApp wires the components described by conf
func newApp(conf config.Config) (*app, error) {
	source, ok := nowplaying.SourceByName(conf.Playback.Source)
	if !ok {
		return nil, fmt.Errorf("unknown playback source %q", conf.Playback.Source)
	}

	st := stats.Get()
	store, pc, err := openStore(conf)
	if err != nil {
		return nil, fmt.Errorf("failed to open lyrics cache: %w", err)
	}

	a := &app{
		conf:     conf,
		stats:    st,
		store:    store,
		source:   source,
		breakers: newBreakers(conf, st),
		registry: providers.GetRegistry(),
	}
	if pc != nil {
		a.backups = pc
		a.sweeper = pc
	}

	statsStore, err := stats.NewStore(filepath.Join(conf.SettingsDir(), "stats.db"), st)
	if err != nil {
		log.Warnf("%s Statistics will not persist: %v", logcolors.LogStats, err)
	} else {
		if err := statsStore.Load(); err != nil {
			log.Warnf("%s Failed to load saved statistics: %v", logcolors.LogStats, err)
		}
		a.statsStore = statsStore
	}

	registerProviders(a.registry, conf, func() *providers.Client {
		return providers.NewClient(conf.Lyrics.ProviderRateLimitPerSecond)
	})

	opts := engine.Options{
		ProviderTimeout: conf.ProviderTimeout(),
		Breakers:        a.breakers,
		Stats:           st,
	}
	if conf.Lyrics.OpenChords {
		opts.Opener = newBrowserOpener()
	}
	a.engine = engine.New(a.registry, store, opts)

	a.detector = nowplaying.NewDetector(nowplaying.StrategyFor(runtime.GOOS), conf.DetectTimeout(), st)

	var enrichers []song.Enricher
	if conf.Lyrics.EnrichMetadata {
		enrichers = append(enrichers, musicbrainz.NewEnricher(providers.NewClient(1)))
	}
	a.tracker = NewTracker(a.engine, enrichers, TrackerOptions{
		Synced:     conf.Lyrics.SyncLyrics,
		OpenChords: conf.Lyrics.OpenChords,
		Stats:      st,
		OnLyrics: func(s song.Song, res providers.Result) {
			notifier.PublishTrackChanged(s.DisplayString(), res.Provider)
		},
	})

	startAlerts(conf)
	return a, nil
}

// startAlerts subscribes the alert handler when at least one notifier is
// configured
func startAlerts(conf config.Config) {
	var notifiers []notifier.Notifier
	if conf.Notifier.NtfyTopic != "" {
		notifiers = append(notifiers, &notifier.NtfyNotifier{
			Topic:  conf.Notifier.NtfyTopic,
			Server: conf.Notifier.NtfyServer,
		})
	}
	if conf.Notifier.TelegramBotToken != "" && conf.Notifier.TelegramChatID != "" {
		notifiers = append(notifiers, &notifier.TelegramNotifier{
			BotToken: conf.Notifier.TelegramBotToken,
			ChatID:   conf.Notifier.TelegramChatID,
		})
	}
	if len(notifiers) == 0 {
		return
	}

	notifier.NewAlertHandler(notifier.AlertConfig{
		Notifiers:        notifiers,
		CooldownDuration: time.Duration(conf.Notifier.CooldownMinutes) * time.Minute,
		TrackChanges:     conf.Notifier.TrackChanges,
	}).Start(notifier.GetEventBus())
}

// run starts the background jobs and the API, then watches the player
// until ctx is done
func (a *app) run(ctx context.Context) error {
	if a.sweeper != nil {
		a.sweeper.StartSweeper(ctx, time.Duration(a.conf.Cache.CacheSweepIntervalInSeconds)*time.Second)
	}
	if a.statsStore != nil {
		a.statsStore.StartAutoSave(statsSaveInterval)
	}

	if a.conf.API.Port > 0 {
		go a.serve(ctx)
	}

	updates, unsubscribe := a.tracker.Subscribe()
	defer unsubscribe()
	go display(updates)

	watcher := &nowplaying.Watcher{
		Detector: a.detector,
		Source:   a.source,
		Interval: a.conf.PollInterval(),
		OnChange: func(title string) { a.tracker.HandleTitle(ctx, title) },
		OnIdle:   a.tracker.SetIdle,
		OnResume: a.tracker.Resume,
	}
	return watcher.Run(ctx)
}

// shutdown releases files and connections, saving statistics one last time
func (a *app) shutdown() {
	if a.statsStore != nil {
		if err := a.statsStore.Close(); err != nil {
			log.Warnf("%s Failed to close stats store: %v", logcolors.LogStats, err)
		}
	}
	if closer, ok := a.detector.Strategy().(interface{ Close() error }); ok {
		closer.Close()
	}
	if err := a.store.Close(); err != nil {
		log.Warnf("%s Failed to close cache: %v", logcolors.LogCache, err)
	}
}
