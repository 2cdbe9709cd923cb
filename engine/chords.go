package engine

import (
	"context"
	"spotifylyrics-go/circuitbreaker"
	"spotifylyrics-go/logcolors"
	"spotifylyrics-go/services/providers"
	"spotifylyrics-go/song"
	"spotifylyrics-go/stats"

	log "github.com/sirupsen/logrus"
)

// GetChords asks every chord provider and hands each URL found to the
// Opener. Providers are not short-circuited; all URLs are returned in
// provider order.
func (e *Engine) GetChords(ctx context.Context, s song.Song) []string {
	urls := []string{}
	for _, p := range e.reg.Chords() {
		urls = append(urls, e.chordURLs(ctx, p, s)...)
	}

	log.Infof("%s %d chord charts for %s", logcolors.LogChords, len(urls), s.DisplayString())
	if e.opts.Opener != nil {
		for _, u := range urls {
			if err := e.opts.Opener.Open(u); err != nil {
				log.Warnf("%s Could not open %s: %v", logcolors.LogChords, u, err)
			}
		}
	}
	return urls
}

func (e *Engine) chordURLs(ctx context.Context, p providers.ChordProvider, s song.Song) []string {
	name := p.Name()
	var breaker *circuitbreaker.Breaker
	if e.opts.Breakers != nil {
		breaker = e.opts.Breakers.For(name)
		if !breaker.Allow() {
			e.opts.Stats.RecordProvider(name, stats.OutcomeSkipped)
			return nil
		}
	}

	pctx, cancel := context.WithTimeout(ctx, e.opts.ProviderTimeout)
	defer cancel()

	urls, err := p.ChordURLs(pctx, s)
	if breaker != nil {
		breaker.Record(err)
	}
	switch {
	case err != nil:
		log.Warnf("%s %s %v", logcolors.LogWarning, logcolors.Provider(name), err)
		e.opts.Stats.RecordProvider(name, stats.OutcomeFault)
		return nil
	case len(urls) == 0:
		e.opts.Stats.RecordProvider(name, stats.OutcomeMiss)
	default:
		e.opts.Stats.RecordProvider(name, stats.OutcomeHit)
	}
	return urls
}
