package main

import (
	"errors"
	"fmt"
	"net/http"
	"spotifylyrics-go/circuitbreaker"
	"spotifylyrics-go/logcolors"
	"spotifylyrics-go/middleware"
	"spotifylyrics-go/services/notifier"
	"spotifylyrics-go/services/providers"
	"spotifylyrics-go/song"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

var errNoSong = errors.New("song name or artist name not provided")

// songFromRequest reads the song from the artist/title query parameters or
// an "Artist - Title" song parameter, falling back to the current track.
func (a *app) songFromRequest(r *http.Request) (song.Song, int, error) {
	q := r.URL.Query()
	artist := strings.TrimSpace(q.Get("artist") + q.Get("a"))
	title := strings.TrimSpace(q.Get("title") + q.Get("s"))

	if display := q.Get("song"); display != "" {
		s, err := song.FromDisplayString(display)
		if err != nil {
			return song.Song{}, http.StatusBadRequest, err
		}
		return s, http.StatusOK, nil
	}
	if artist != "" || title != "" {
		return song.New(artist, title), http.StatusOK, nil
	}
	if s, ok := a.tracker.Playing(); ok {
		return s, http.StatusOK, nil
	}
	return song.Song{}, http.StatusUnprocessableEntity, errNoSong
}

func (a *app) syncedFromRequest(r *http.Request) bool {
	v := r.URL.Query().Get("sync")
	if v == "" {
		return a.conf.Lyrics.SyncLyrics
	}
	synced, err := strconv.ParseBool(v)
	if err != nil {
		return a.conf.Lyrics.SyncLyrics
	}
	return synced
}

func lyricsResponse(s song.Song, res providers.Result) LyricsResponse {
	return LyricsResponse{
		Artist:   s.Artist,
		Title:    s.Title,
		Lyrics:   res.Lyrics,
		Provider: res.Provider,
		URL:      res.URL,
		Synced:   res.Synced,
		Found:    res.Found(),
	}
}

func writeLyrics(w http.ResponseWriter, r *http.Request, s song.Song, res providers.Result, cacheStatus string) {
	resp := Respond(w, r).SetCacheStatus(cacheStatus).SetProvider(res.Provider)
	if !res.Found() {
		resp.Error(http.StatusNotFound, lyricsResponse(s, res))
		return
	}
	resp.JSON(lyricsResponse(s, res))
}

func cacheOnlyRefusal(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "60")
	Respond(w, r).SetCacheStatus("MISS").Error(http.StatusTooManyRequests, ErrorResponse{
		Error:   "Rate limit exceeded. This request requires cached data, but no cache is available for this query.",
		Message: "Please try again later or reduce your request rate.",
	})
}

func (a *app) getLyrics(w http.ResponseWriter, r *http.Request) {
	s, status, err := a.songFromRequest(r)
	if err != nil {
		Respond(w, r).Error(status, ErrorResponse{Error: err.Error()})
		return
	}

	if middleware.CacheOnly(r.Context()) {
		res, ok := a.engine.Peek(s)
		a.stats.RecordCache(ok)
		if !ok {
			log.Warnf("%s Cache-only mode but no cache found for: %s", logcolors.LogCacheLyrics, s.DisplayString())
			cacheOnlyRefusal(w, r)
			return
		}
		writeLyrics(w, r, s, res, "HIT")
		return
	}

	res, hit := a.engine.GetLyricsCached(r.Context(), s, a.syncedFromRequest(r))
	cacheStatus := "MISS"
	if hit {
		cacheStatus = "HIT"
	}
	writeLyrics(w, r, s, res, cacheStatus)
}

func (a *app) nextLyrics(w http.ResponseWriter, r *http.Request) {
	if middleware.CacheOnly(r.Context()) {
		cacheOnlyRefusal(w, r)
		return
	}

	s, status, err := a.songFromRequest(r)
	if err != nil {
		Respond(w, r).Error(status, ErrorResponse{Error: err.Error()})
		return
	}

	var res providers.Result
	if current, ok := a.tracker.Playing(); ok && current.Same(s) {
		res, _ = a.tracker.Next(r.Context())
	} else {
		res = a.engine.NextLyrics(r.Context(), s)
	}
	writeLyrics(w, r, s, res, "BYPASS")
}

func (a *app) getChords(w http.ResponseWriter, r *http.Request) {
	if middleware.CacheOnly(r.Context()) {
		cacheOnlyRefusal(w, r)
		return
	}

	s, status, err := a.songFromRequest(r)
	if err != nil {
		Respond(w, r).Error(status, ErrorResponse{Error: err.Error()})
		return
	}

	urls := a.engine.GetChords(r.Context(), s)
	Respond(w, r).JSON(ChordsResponse{Artist: s.Artist, Title: s.Title, URLs: urls})
}

func (a *app) getNowPlaying(w http.ResponseWriter, r *http.Request) {
	Respond(w, r).JSON(a.tracker.Snapshot())
}

func (a *app) getCacheStats(w http.ResponseWriter, r *http.Request) {
	numKeys, sizeInKB := a.store.Stats()
	resp := CacheStatsResponse{
		Backend:      a.conf.Cache.Backend,
		NumberOfKeys: numKeys,
		SizeInKB:     sizeInKB,
		SizeInMB:     float64(sizeInKB) / 1024,
		Performance: CachePerformance{
			Hits:    a.stats.CacheHits.Load(),
			Misses:  a.stats.CacheMisses.Load(),
			HitRate: a.stats.CacheHitRate(),
		},
	}

	if a.backups != nil {
		backups, err := a.backups.ListBackups()
		if err != nil {
			log.Warnf("%s Failed to list backups: %v", logcolors.LogCacheBackup, err)
		}
		resp.Backups = backups
	}

	Respond(w, r).JSON(resp)
}

// clearCache empties the cache, snapshotting it first when the backend
// keeps backups
func (a *app) clearCache(w http.ResponseWriter, r *http.Request) {
	if a.backups != nil {
		path, err := a.backups.BackupAndClear()
		if err != nil {
			log.Errorf("%s Failed to clear cache: %v", logcolors.LogCacheClear, err)
			notifier.PublishCacheBackupFailed(err)
			Respond(w, r).Error(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
			return
		}
		notifier.PublishCacheCleared(path)
		Respond(w, r).JSON(map[string]interface{}{
			"message": "Cache backed up and cleared",
			"backup":  path,
		})
		return
	}

	if err := a.store.Clear(); err != nil {
		log.Errorf("%s Failed to clear cache: %v", logcolors.LogCacheClear, err)
		Respond(w, r).Error(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	Respond(w, r).JSON(map[string]interface{}{"message": "Cache cleared"})
}

func (a *app) backupCache(w http.ResponseWriter, r *http.Request) {
	if a.backups == nil {
		Respond(w, r).Error(http.StatusNotImplemented, ErrorResponse{
			Error: fmt.Sprintf("the %s cache backend does not keep backups", a.conf.Cache.Backend),
		})
		return
	}

	path, err := a.backups.Backup()
	if err != nil {
		log.Errorf("%s Failed to create backup: %v", logcolors.LogCacheBackup, err)
		notifier.PublishCacheBackupFailed(err)
		Respond(w, r).Error(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	Respond(w, r).JSON(map[string]interface{}{
		"message": "Backup created",
		"backup":  path,
	})
}

func (a *app) getStats(w http.ResponseWriter, r *http.Request) {
	snapshot := a.stats.Snapshot()

	numKeys, sizeInKB := a.store.Stats()
	snapshot["cache_storage"] = map[string]interface{}{
		"backend": a.conf.Cache.Backend,
		"keys":    numKeys,
		"size_kb": sizeInKB,
	}
	snapshot["circuit_breakers"] = a.breakers.Snapshots()
	snapshot["cursor"] = a.engine.Cursor()

	Respond(w, r).JSON(snapshot)
}

func (a *app) getHealthStatus(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:       "ok",
		Source:       a.source.Name,
		LaunchPath:   a.source.ExpandedLaunchPath(),
		Strategy:     a.detector.Strategy().Name(),
		CacheBackend: a.conf.Cache.Backend,
		Providers:    map[string][]string{},
		Cursor:       a.engine.Cursor(),
		Uptime:       a.stats.Uptime().Round(time.Second).String(),
	}
	for group, names := range a.registry.List() {
		health.Providers[string(group)] = names
	}

	for _, snap := range a.breakers.Snapshots() {
		if snap.State == circuitbreaker.StateOpen.String() {
			health.OpenBreakers = append(health.OpenBreakers, snap)
		}
	}
	if len(health.OpenBreakers) > 0 {
		health.Status = "degraded"
	}

	Respond(w, r).JSON(health)
}

func (a *app) resetCircuitBreaker(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["provider"]
	group, err := a.registry.GroupOf(name)
	if err != nil {
		Respond(w, r).Error(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}

	a.breakers.For(name).Reset()
	log.Infof("%s Circuit breaker manually reset (%s)", logcolors.CircuitBreakerPrefix(name), group)
	Respond(w, r).JSON(BreakerResetResponse{Group: string(group), Breaker: a.breakers.For(name).Snapshot()})
}

func helpHandler(w http.ResponseWriter, r *http.Request) {
	Respond(w, r).JSON(map[string]interface{}{
		"endpoints": map[string]string{
			"GET /nowplaying":                        "Current track, its metadata and lyrics",
			"GET /lyrics?artist=&title=&sync=":       "Lyrics for a song (cached for a week); defaults to the current track",
			"POST /lyrics/next?artist=&title=":       "Lyrics from the next plain provider, bypassing the cache",
			"GET /chords?artist=&title=":             "Chord chart URLs from every chord provider",
			"GET /cache":                             "Cache statistics",
			"POST /cache/backup":                     "Snapshot the cache file",
			"DELETE /cache":                          "Back up and clear the cache",
			"GET /stats":                             "Request, provider and detection counters",
			"GET /metrics":                           "Prometheus metrics",
			"GET /health":                            "Health status",
			"POST /circuit-breaker/{provider}/reset": "Close a provider's circuit breaker",
		},
		"example": "/lyrics?song=Queen%20-%20Bohemian%20Rhapsody",
	})
}
