package stats

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Outcome is what a single provider call produced
type Outcome int

const (
	OutcomeHit     Outcome = iota // lyrics or chord URLs found
	OutcomeMiss                   // provider answered without a match
	OutcomeFault                  // provider errored or timed out
	OutcomeSkipped                // circuit breaker refused the call
)

// ProviderCounters counts outcomes for one provider
type ProviderCounters struct {
	Hits    atomic.Int64
	Misses  atomic.Int64
	Faults  atomic.Int64
	Skipped atomic.Int64
}

// Stats holds process-wide counters. All methods are safe on a nil
// receiver so components can run without statistics.
type Stats struct {
	StartTime time.Time

	// Local API
	Requests       atomic.Int64
	LyricsRequests atomic.Int64
	ChordsRequests atomic.Int64
	RateLimited    atomic.Int64
	Status2xx      atomic.Int64
	Status4xx      atomic.Int64
	Status5xx      atomic.Int64

	// Lyrics cache
	CacheHits   atomic.Int64
	CacheMisses atomic.Int64

	// Now playing
	Detections        atomic.Int64
	DetectionFailures atomic.Int64
	TrackChanges      atomic.Int64

	// Circuit breakers
	BreakerTrips atomic.Int64

	providersMu sync.RWMutex
	providers   map[string]*ProviderCounters

	totalResponseTime atomic.Int64 // microseconds
	responseCount     atomic.Int64
}

var global = New()

// New returns an empty Stats starting now
func New() *Stats {
	return &Stats{StartTime: time.Now(), providers: make(map[string]*ProviderCounters)}
}

// Get returns the process-wide instance
func Get() *Stats {
	return global
}

// Provider returns the counters for name, creating them on first use
func (s *Stats) Provider(name string) *ProviderCounters {
	s.providersMu.RLock()
	pc, ok := s.providers[name]
	s.providersMu.RUnlock()
	if ok {
		return pc
	}

	s.providersMu.Lock()
	defer s.providersMu.Unlock()
	if pc, ok = s.providers[name]; !ok {
		pc = &ProviderCounters{}
		s.providers[name] = pc
	}
	return pc
}

// RecordProvider counts one call outcome for a provider
func (s *Stats) RecordProvider(name string, outcome Outcome) {
	if s == nil {
		return
	}
	pc := s.Provider(name)
	switch outcome {
	case OutcomeHit:
		pc.Hits.Add(1)
	case OutcomeMiss:
		pc.Misses.Add(1)
	case OutcomeFault:
		pc.Faults.Add(1)
	case OutcomeSkipped:
		pc.Skipped.Add(1)
	}
}

// RecordCache counts a lyrics cache lookup
func (s *Stats) RecordCache(hit bool) {
	if s == nil {
		return
	}
	if hit {
		s.CacheHits.Add(1)
	} else {
		s.CacheMisses.Add(1)
	}
}

// RecordDetection counts one now-playing lookup; an empty title is a failure
func (s *Stats) RecordDetection(title string) {
	if s == nil {
		return
	}
	s.Detections.Add(1)
	if title == "" {
		s.DetectionFailures.Add(1)
	}
}

// RecordTrackChange counts a newly detected track
func (s *Stats) RecordTrackChange() {
	if s == nil {
		return
	}
	s.TrackChanges.Add(1)
}

// RecordBreakerTrip counts a circuit opening
func (s *Stats) RecordBreakerTrip() {
	if s == nil {
		return
	}
	s.BreakerTrips.Add(1)
}

// RecordRateLimited counts a request refused by the API rate limiter
func (s *Stats) RecordRateLimited() {
	if s == nil {
		return
	}
	s.RateLimited.Add(1)
}

// RecordRequest counts an API request by path
func (s *Stats) RecordRequest(path string) {
	if s == nil {
		return
	}
	s.Requests.Add(1)
	switch path {
	case "/lyrics", "/lyrics/next":
		s.LyricsRequests.Add(1)
	case "/chords":
		s.ChordsRequests.Add(1)
	}
}

// RecordStatusCode counts a response status class
func (s *Stats) RecordStatusCode(code int) {
	if s == nil {
		return
	}
	switch {
	case code >= 200 && code < 300:
		s.Status2xx.Add(1)
	case code >= 400 && code < 500:
		s.Status4xx.Add(1)
	case code >= 500:
		s.Status5xx.Add(1)
	}
}

// RecordResponseTime adds one API response duration
func (s *Stats) RecordResponseTime(d time.Duration) {
	if s == nil {
		return
	}
	s.totalResponseTime.Add(d.Microseconds())
	s.responseCount.Add(1)
}

// AvgResponseTime returns the mean API response duration
func (s *Stats) AvgResponseTime() time.Duration {
	n := s.responseCount.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(s.totalResponseTime.Load()/n) * time.Microsecond
}

// CacheHitRate returns hits as a percentage of lookups
func (s *Stats) CacheHitRate() float64 {
	hits, misses := s.CacheHits.Load(), s.CacheMisses.Load()
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses) * 100
}

// Uptime returns time since StartTime
func (s *Stats) Uptime() time.Duration {
	return time.Since(s.StartTime)
}

// ProviderTotals is a plain copy of ProviderCounters
type ProviderTotals struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Faults  int64 `json:"faults"`
	Skipped int64 `json:"skipped"`
}

// Totals is a plain, serializable copy of every counter
type Totals struct {
	Requests          int64                     `json:"requests"`
	LyricsRequests    int64                     `json:"lyricsRequests"`
	ChordsRequests    int64                     `json:"chordsRequests"`
	RateLimited       int64                     `json:"rateLimited"`
	Status2xx         int64                     `json:"status2xx"`
	Status4xx         int64                     `json:"status4xx"`
	Status5xx         int64                     `json:"status5xx"`
	CacheHits         int64                     `json:"cacheHits"`
	CacheMisses       int64                     `json:"cacheMisses"`
	Detections        int64                     `json:"detections"`
	DetectionFailures int64                     `json:"detectionFailures"`
	TrackChanges      int64                     `json:"trackChanges"`
	BreakerTrips      int64                     `json:"breakerTrips"`
	TotalResponseTime int64                     `json:"totalResponseTimeMicros"`
	ResponseCount     int64                     `json:"responseCount"`
	Providers         map[string]ProviderTotals `json:"providers"`
}

// Totals copies the current counter values
func (s *Stats) Totals() Totals {
	t := Totals{
		Requests:          s.Requests.Load(),
		LyricsRequests:    s.LyricsRequests.Load(),
		ChordsRequests:    s.ChordsRequests.Load(),
		RateLimited:       s.RateLimited.Load(),
		Status2xx:         s.Status2xx.Load(),
		Status4xx:         s.Status4xx.Load(),
		Status5xx:         s.Status5xx.Load(),
		CacheHits:         s.CacheHits.Load(),
		CacheMisses:       s.CacheMisses.Load(),
		Detections:        s.Detections.Load(),
		DetectionFailures: s.DetectionFailures.Load(),
		TrackChanges:      s.TrackChanges.Load(),
		BreakerTrips:      s.BreakerTrips.Load(),
		TotalResponseTime: s.totalResponseTime.Load(),
		ResponseCount:     s.responseCount.Load(),
		Providers:         make(map[string]ProviderTotals),
	}

	s.providersMu.RLock()
	defer s.providersMu.RUnlock()
	for name, pc := range s.providers {
		t.Providers[name] = ProviderTotals{
			Hits:    pc.Hits.Load(),
			Misses:  pc.Misses.Load(),
			Faults:  pc.Faults.Load(),
			Skipped: pc.Skipped.Load(),
		}
	}
	return t
}

// Restore overwrites the counters with t
func (s *Stats) Restore(t Totals) {
	s.Requests.Store(t.Requests)
	s.LyricsRequests.Store(t.LyricsRequests)
	s.ChordsRequests.Store(t.ChordsRequests)
	s.RateLimited.Store(t.RateLimited)
	s.Status2xx.Store(t.Status2xx)
	s.Status4xx.Store(t.Status4xx)
	s.Status5xx.Store(t.Status5xx)
	s.CacheHits.Store(t.CacheHits)
	s.CacheMisses.Store(t.CacheMisses)
	s.Detections.Store(t.Detections)
	s.DetectionFailures.Store(t.DetectionFailures)
	s.TrackChanges.Store(t.TrackChanges)
	s.BreakerTrips.Store(t.BreakerTrips)
	s.totalResponseTime.Store(t.TotalResponseTime)
	s.responseCount.Store(t.ResponseCount)

	for name, pt := range t.Providers {
		pc := s.Provider(name)
		pc.Hits.Store(pt.Hits)
		pc.Misses.Store(pt.Misses)
		pc.Faults.Store(pt.Faults)
		pc.Skipped.Store(pt.Skipped)
	}
}

// ProviderNames returns every provider seen so far, sorted
func (s *Stats) ProviderNames() []string {
	s.providersMu.RLock()
	defer s.providersMu.RUnlock()
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a JSON-friendly view for the /stats endpoint
func (s *Stats) Snapshot() map[string]interface{} {
	t := s.Totals()
	uptime := s.Uptime()

	return map[string]interface{}{
		"process": map[string]interface{}{
			"start_time":     s.StartTime.Format(time.RFC3339),
			"uptime":         uptime.String(),
			"uptime_seconds": int64(uptime.Seconds()),
		},
		"requests": map[string]interface{}{
			"total":        t.Requests,
			"lyrics":       t.LyricsRequests,
			"chords":       t.ChordsRequests,
			"rate_limited": t.RateLimited,
			"2xx":          t.Status2xx,
			"4xx":          t.Status4xx,
			"5xx":          t.Status5xx,
			"avg_time":     s.AvgResponseTime().String(),
		},
		"cache": map[string]interface{}{
			"hits":     t.CacheHits,
			"misses":   t.CacheMisses,
			"hit_rate": s.CacheHitRate(),
		},
		"now_playing": map[string]interface{}{
			"detections":    t.Detections,
			"failures":      t.DetectionFailures,
			"track_changes": t.TrackChanges,
		},
		"breaker_trips": t.BreakerTrips,
		"providers":     t.Providers,
	}
}
