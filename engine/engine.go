package engine

import (
	"context"
	"encoding/json"
	"spotifylyrics-go/cache"
	"spotifylyrics-go/circuitbreaker"
	"spotifylyrics-go/logcolors"
	"spotifylyrics-go/services/providers"
	"spotifylyrics-go/song"
	"spotifylyrics-go/stats"
	"spotifylyrics-go/utils"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultProviderTimeout bounds a single provider call
const DefaultProviderTimeout = 10 * time.Second

// Opener shows a URL to the user, typically in a browser. Implementations
// must not wait for the viewer to exit.
type Opener interface {
	Open(url string) error
}

// Options configures an Engine. Every field is optional.
type Options struct {
	ProviderTimeout time.Duration
	Breakers        *circuitbreaker.Set
	Opener          Opener
	Stats           *stats.Stats
}

// Engine walks the provider groups to answer lyrics and chords lookups
type Engine struct {
	reg   *providers.Registry
	store cache.Store
	opts  Options

	// mu serializes lookups that move the cursor
	mu     sync.Mutex
	cursor Cursor

	// published mirrors cursor for readers that must not wait on a walk
	cursorMu  sync.RWMutex
	published Cursor
}

// New builds an engine over reg, caching results in store
func New(reg *providers.Registry, store cache.Store, opts Options) *Engine {
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = DefaultProviderTimeout
	}
	start := Cursor{Index: -1}
	return &Engine{reg: reg, store: store, opts: opts, cursor: start, published: start}
}

// Cursor returns a copy of the current cursor. It does not wait for a
// lookup in progress.
func (e *Engine) Cursor() Cursor {
	e.cursorMu.RLock()
	defer e.cursorMu.RUnlock()
	return e.published
}

// moveCursor must be called with mu held
func (e *Engine) moveCursor(c Cursor) {
	e.cursor = c
	e.cursorMu.Lock()
	e.published = c
	e.cursorMu.Unlock()
}

// GetLyricsCached answers from the cache when it holds a live entry for s
// and otherwise runs GetLyrics. The flag reports a cache hit.
func (e *Engine) GetLyricsCached(ctx context.Context, s song.Song, synced bool) (providers.Result, bool) {
	if res, ok := e.cached(s); ok {
		e.opts.Stats.RecordCache(true)
		log.Infof("%s Cache hit for %s (%s)", logcolors.LogCacheLyrics, s.DisplayString(), res.Provider)
		return res, true
	}
	e.opts.Stats.RecordCache(false)
	return e.GetLyrics(ctx, s, synced), false
}

// Peek returns the cached result for s without asking any provider
func (e *Engine) Peek(s song.Song) (providers.Result, bool) {
	return e.cached(s)
}

// GetLyrics runs a fresh lookup for s, starting over from the first plain
// provider. With synced set the synced group is tried first and a timed
// result wins outright; an untimed one found there is kept as a last
// resort for when the plain group comes up empty too.
func (e *Engine) GetLyrics(ctx context.Context, s song.Song, synced bool) providers.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := s.CacheKey()
	e.moveCursor(Cursor{Key: key, Index: -1})
	log.Infof("%s Looking up %s (synced: %v)", logcolors.LogEngine, s.DisplayString(), synced)

	var candidate *providers.Result
	if synced {
		for _, p := range e.reg.Synced() {
			res := e.fetch(ctx, p, s)
			if !res.Found() {
				continue
			}
			if res.Synced {
				log.Infof("%s Synced lyrics from %s", logcolors.LogMatch, res.Provider)
				e.save(s, res)
				return res
			}
			r := res
			candidate = &r
		}
	}

	res := e.walkPlain(ctx, s, 0)
	if !res.Found() && candidate != nil {
		log.Infof("%s Using unsynced lyrics from %s", logcolors.LogFallback, candidate.Provider)
		res = *candidate
	}

	e.save(s, res)
	return res
}

// NextLyrics asks the plain providers after the one that answered last for
// s. It never reads the cache but replaces the cached entry with whatever
// it finds.
func (e *Engine) NextLyrics(ctx context.Context, s song.Song) providers.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := s.CacheKey()
	start := e.cursor.start(key, len(e.reg.Plain()))
	e.moveCursor(Cursor{Key: key, Index: start - 1})
	log.Infof("%s Next lyrics for %s from provider #%d", logcolors.LogCursor, s.DisplayString(), start)

	res := e.walkPlain(ctx, s, start)
	e.save(s, res)
	return res
}

// walkPlain tries the plain group from index start, moving the cursor onto
// every provider it asks. Must be called with mu held.
func (e *Engine) walkPlain(ctx context.Context, s song.Song, start int) providers.Result {
	plain := e.reg.Plain()
	for i := start; i < len(plain); i++ {
		e.moveCursor(Cursor{Key: e.cursor.Key, Index: i})
		res := e.fetch(ctx, plain[i], s)
		if res.Found() {
			res.Lyrics = utils.CleanLyrics(res.Lyrics)
			res.Synced = false
			log.Infof("%s Lyrics from %s", logcolors.LogMatch, res.Provider)
			return res
		}
	}

	log.Infof("%s No provider had lyrics for %s", logcolors.LogEngine, s.DisplayString())
	return providers.Exhausted()
}

// fetch calls one provider with a timeout. Faults and open breakers come
// back as misses.
func (e *Engine) fetch(ctx context.Context, p providers.LyricsProvider, s song.Song) providers.Result {
	name := p.Name()
	var breaker *circuitbreaker.Breaker
	if e.opts.Breakers != nil {
		breaker = e.opts.Breakers.For(name)
		if !breaker.Allow() {
			log.Debugf("%s %s skipped: %v", logcolors.LogEngine, name, circuitbreaker.ErrCircuitOpen)
			e.opts.Stats.RecordProvider(name, stats.OutcomeSkipped)
			return providers.Miss(name)
		}
	}

	pctx, cancel := context.WithTimeout(ctx, e.opts.ProviderTimeout)
	defer cancel()

	res, err := p.FetchLyrics(pctx, s)
	if breaker != nil {
		breaker.Record(err)
	}
	if err != nil {
		log.Warnf("%s %s %v", logcolors.LogWarning, logcolors.Provider(name), err)
		e.opts.Stats.RecordProvider(name, stats.OutcomeFault)
		return providers.Miss(name)
	}
	if !res.Found() {
		log.Debugf("%s %s has nothing for %s", logcolors.LogSearch, logcolors.Provider(name), s.DisplayString())
		e.opts.Stats.RecordProvider(name, stats.OutcomeMiss)
		return providers.Miss(name)
	}

	e.opts.Stats.RecordProvider(name, stats.OutcomeHit)
	if res.Provider == "" {
		res.Provider = name
	}
	return res
}

func (e *Engine) cached(s song.Song) (providers.Result, bool) {
	if e.store == nil {
		return providers.Result{}, false
	}
	raw, ok := e.store.Get(s.CacheKey())
	if !ok {
		return providers.Result{}, false
	}
	var res providers.Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		log.Warnf("%s Discarding unreadable entry for %s: %v", logcolors.LogCache, s.CacheKey(), err)
		return providers.Result{}, false
	}
	return res, true
}

func (e *Engine) save(s song.Song, res providers.Result) {
	if e.store == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := e.store.Set(s.CacheKey(), string(data)); err != nil {
		log.Warnf("%s Failed to cache %s: %v", logcolors.LogCache, s.CacheKey(), err)
	}
}
