package nowplaying

import (
	"context"
	"spotifylyrics-go/logcolors"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultInterval is the time between polls
const DefaultInterval = time.Second

// Watcher polls a Detector and calls OnChange for every new track
type Watcher struct {
	Detector *Detector
	Source   Source
	Interval time.Duration

	// OnChange runs on the polling goroutine; the next poll waits for it
	OnChange func(title string)

	// OnIdle runs when a playing source shows one of its idle titles, and
	// OnResume when the same track comes back after that
	OnIdle   func()
	OnResume func()

	playing bool
}

// Run polls until ctx is done and returns ctx.Err()
func (w *Watcher) Run(ctx context.Context) error {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	log.Infof("%s Watching %s via %s every %s", logcolors.LogWatcher, w.Source.Name, w.Detector.Strategy().Name(), interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		w.poll(ctx)
		select {
		case <-ctx.Done():
			log.Infof("%s Stopped", logcolors.LogWatcher)
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	title, changed := w.Detector.Poll(ctx, w.Source)
	switch {
	case changed:
		w.playing = true
		log.Infof("%s %s", logcolors.LogTrack, title)
		if w.OnChange != nil {
			w.OnChange(title)
		}
	case !w.Source.IsPlaying(title):
		if !w.playing {
			return
		}
		w.playing = false
		log.Infof("%s %s is idle", logcolors.LogWatcher, w.Source.Name)
		if w.OnIdle != nil {
			w.OnIdle()
		}
	case !w.playing && title == w.Detector.Last():
		w.playing = true
		log.Infof("%s Resumed %s", logcolors.LogWatcher, title)
		if w.OnResume != nil {
			w.OnResume()
		}
	}
}
