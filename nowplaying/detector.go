package nowplaying

import (
	"context"
	"spotifylyrics-go/logcolors"
	"spotifylyrics-go/stats"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultTimeout bounds a single detection
const DefaultTimeout = 3 * time.Second

// Detector reads now-playing titles through one Strategy and remembers the
// last track it reported.
type Detector struct {
	strategy Strategy
	timeout  time.Duration
	stats    *stats.Stats

	mu   sync.Mutex
	last string
}

// NewDetector builds a detector; a non-positive timeout uses DefaultTimeout
func NewDetector(strategy Strategy, timeout time.Duration, st *stats.Stats) *Detector {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Detector{strategy: strategy, timeout: timeout, stats: st}
}

// Strategy returns the strategy in use
func (d *Detector) Strategy() Strategy {
	return d.strategy
}

// WindowTitle returns the normalized now-playing title of src, or "" when
// it cannot be determined. It never fails.
func (d *Detector) WindowTitle(ctx context.Context, src Source) string {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	title, err := d.strategy.WindowTitle(ctx, src)
	if err != nil {
		log.Debugf("%s %s via %s: %v", logcolors.LogDetector, src.Name, d.strategy.Name(), err)
		title = ""
	}
	title = strings.ReplaceAll(title, "—", "-")

	d.stats.RecordDetection(title)
	return title
}

// Poll reads the current title and reports whether it is a new track.
// Idle titles are returned but never count as a change, so resuming the
// same track after a pause is not reported twice.
func (d *Detector) Poll(ctx context.Context, src Source) (string, bool) {
	title := d.WindowTitle(ctx, src)

	d.mu.Lock()
	defer d.mu.Unlock()
	if title == d.last || !src.IsPlaying(title) {
		return title, false
	}
	d.last = title
	return title, true
}

// Last returns the last track Poll reported
func (d *Detector) Last() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}
