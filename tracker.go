package main

import (
	"context"
	"spotifylyrics-go/engine"
	"spotifylyrics-go/logcolors"
	"spotifylyrics-go/services/providers"
	"spotifylyrics-go/song"
	"spotifylyrics-go/stats"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultEnrichTimeout = 15 * time.Second

// NowPlaying is the tracker state handed to subscribers and the API
type NowPlaying struct {
	Playing bool              `json:"playing"`
	Title   string            `json:"title"`
	Song    *song.Song        `json:"song,omitempty"`
	Lyrics  *providers.Result `json:"lyrics,omitempty"`
	Chords  []string          `json:"chords,omitempty"`
}

// TrackerOptions configures a Tracker
type TrackerOptions struct {
	Synced        bool
	OpenChords    bool
	EnrichTimeout time.Duration
	Stats         *stats.Stats

	// OnLyrics, when set, is called once per track after the first lookup
	OnLyrics func(s song.Song, res providers.Result)
}

// Tracker owns the current song. It reacts to title changes by fetching
// lyrics and running the enrichers, whose patches are applied only while
// their song is still current.
type Tracker struct {
	engine    *engine.Engine
	enrichers []song.Enricher
	opts      TrackerOptions

	mu      sync.RWMutex
	state   NowPlaying
	subs    map[int]chan NowPlaying
	nextSub int

	enriching sync.WaitGroup
}

// NewTracker builds a tracker over e
func NewTracker(e *engine.Engine, enrichers []song.Enricher, opts TrackerOptions) *Tracker {
	if opts.EnrichTimeout <= 0 {
		opts.EnrichTimeout = defaultEnrichTimeout
	}
	return &Tracker{
		engine:    e,
		enrichers: enrichers,
		opts:      opts,
		subs:      make(map[int]chan NowPlaying),
	}
}

// Snapshot returns a copy of the current state
func (t *Tracker) Snapshot() NowPlaying {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.copyLocked()
}

func (t *Tracker) copyLocked() NowPlaying {
	out := t.state
	if t.state.Song != nil {
		s := *t.state.Song
		out.Song = &s
	}
	if t.state.Lyrics != nil {
		r := *t.state.Lyrics
		out.Lyrics = &r
	}
	out.Chords = append([]string(nil), t.state.Chords...)
	return out
}

// Current returns the current song, if any
func (t *Tracker) Current() (song.Song, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.state.Song == nil {
		return song.Song{}, false
	}
	return *t.state.Song, true
}

// Playing returns the current song only while the source is playing it
func (t *Tracker) Playing() (song.Song, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.state.Playing || t.state.Song == nil {
		return song.Song{}, false
	}
	return *t.state.Song, true
}

// SetIdle marks the source as not playing. The last song and its lyrics
// are kept for a resume.
func (t *Tracker) SetIdle() {
	t.setPlaying(false)
}

// Resume marks the last song as playing again
func (t *Tracker) Resume() {
	t.setPlaying(true)
}

func (t *Tracker) setPlaying(playing bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Playing == playing || (playing && t.state.Song == nil) {
		return
	}
	t.state.Playing = playing
	t.notifyLocked()
}

// Subscribe returns a channel receiving the latest state after every
// change. A slow reader only ever misses intermediate states.
func (t *Tracker) Subscribe() (<-chan NowPlaying, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextSub
	t.nextSub++
	ch := make(chan NowPlaying, 1)
	t.subs[id] = ch

	return ch, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if _, ok := t.subs[id]; ok {
			delete(t.subs, id)
			close(ch)
		}
	}
}

// notifyLocked must be called with mu held
func (t *Tracker) notifyLocked() {
	snap := t.copyLocked()
	for _, ch := range t.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

// HandleTitle is the watcher callback for a new now-playing title
func (t *Tracker) HandleTitle(ctx context.Context, title string) {
	s, err := song.FromDisplayString(title)
	if err != nil {
		log.Warnf("%s Ignoring title %q: %v", logcolors.LogTrack, title, err)
		return
	}

	t.mu.Lock()
	t.state = NowPlaying{Playing: true, Title: title, Song: &s}
	t.notifyLocked()
	t.mu.Unlock()

	t.opts.Stats.RecordTrackChange()
	log.Infof("%s Now playing %s", logcolors.LogTrack, s.DisplayString())

	t.enrich(ctx, s)

	res, hit := t.engine.GetLyricsCached(ctx, s, t.opts.Synced)
	if hit {
		log.Debugf("%s Lyrics for %s served from cache", logcolors.LogTrack, s.DisplayString())
	}
	t.setLyrics(s, res)
	if t.opts.OnLyrics != nil {
		t.opts.OnLyrics(s, res)
	}

	if t.opts.OpenChords {
		t.setChords(s, t.engine.GetChords(ctx, s))
	}
}

// Next replaces the lyrics of the current song with the next provider's
func (t *Tracker) Next(ctx context.Context) (providers.Result, bool) {
	s, ok := t.Current()
	if !ok {
		return providers.Result{}, false
	}
	res := t.engine.NextLyrics(ctx, s)
	t.setLyrics(s, res)
	return res, true
}

func (t *Tracker) setLyrics(s song.Song, res providers.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Song == nil || !t.state.Song.Same(s) {
		return
	}
	t.state.Lyrics = &res
	t.notifyLocked()
}

func (t *Tracker) setChords(s song.Song, urls []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Song == nil || !t.state.Song.Same(s) {
		return
	}
	t.state.Chords = urls
	t.notifyLocked()
}

// enrich starts one goroutine per enricher and a collector applying their
// patches as they arrive.
func (t *Tracker) enrich(ctx context.Context, s song.Song) {
	if len(t.enrichers) == 0 {
		return
	}

	patches := make(chan song.Patch, len(t.enrichers))
	var wg sync.WaitGroup
	for _, e := range t.enrichers {
		wg.Add(1)
		go func(e song.Enricher) {
			defer wg.Done()
			ectx, cancel := context.WithTimeout(ctx, t.opts.EnrichTimeout)
			defer cancel()

			patch, err := e.Enrich(ectx, s)
			if err != nil {
				log.Warnf("%s %s %v", logcolors.LogEnrich, logcolors.Provider(e.Name()), err)
				return
			}
			patches <- patch
		}(e)
	}

	t.enriching.Add(1)
	go func() {
		wg.Wait()
		close(patches)
	}()
	go func() {
		defer t.enriching.Done()
		for p := range patches {
			t.apply(s, p)
		}
	}()
}

func (t *Tracker) apply(s song.Song, p song.Patch) {
	if p.Empty() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Song == nil || !t.state.Song.Same(s) {
		log.Debugf("%s Dropping %s patch for %s, track changed", logcolors.LogEnrich, p.Source, s.DisplayString())
		return
	}
	updated := t.state.Song.Apply(p)
	t.state.Song = &updated
	t.notifyLocked()
}

// Wait blocks until every enrichment started so far has been applied
func (t *Tracker) Wait() {
	t.enriching.Wait()
}
