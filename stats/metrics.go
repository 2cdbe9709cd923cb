package stats

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "spotifylyrics"

// Collector exposes Stats as Prometheus metrics, reading the counters at
// scrape time.
type Collector struct {
	s *Stats

	requests     *prometheus.Desc
	responses    *prometheus.Desc
	cacheLookups *prometheus.Desc
	detections   *prometheus.Desc
	trackChanges *prometheus.Desc
	breakerTrips *prometheus.Desc
	providerCall *prometheus.Desc
}

// NewCollector builds a collector over s
func NewCollector(s *Stats) *Collector {
	return &Collector{
		s:            s,
		requests:     prometheus.NewDesc(namespace+"_api_requests_total", "Local API requests by route group.", []string{"route"}, nil),
		responses:    prometheus.NewDesc(namespace+"_api_responses_total", "Local API responses by status class.", []string{"class"}, nil),
		cacheLookups: prometheus.NewDesc(namespace+"_cache_lookups_total", "Lyrics cache lookups by result.", []string{"result"}, nil),
		detections:   prometheus.NewDesc(namespace+"_detections_total", "Now-playing lookups by result.", []string{"result"}, nil),
		trackChanges: prometheus.NewDesc(namespace+"_track_changes_total", "Newly detected tracks.", nil, nil),
		breakerTrips: prometheus.NewDesc(namespace+"_breaker_trips_total", "Provider circuit breaker openings.", nil, nil),
		providerCall: prometheus.NewDesc(namespace+"_provider_calls_total", "Provider calls by provider and outcome.", []string{"provider", "outcome"}, nil),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.requests
	ch <- c.responses
	ch <- c.cacheLookups
	ch <- c.detections
	ch <- c.trackChanges
	ch <- c.breakerTrips
	ch <- c.providerCall
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	t := c.s.Totals()
	counter := func(d *prometheus.Desc, v int64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}

	counter(c.requests, t.LyricsRequests, "lyrics")
	counter(c.requests, t.ChordsRequests, "chords")
	counter(c.requests, t.Requests-t.LyricsRequests-t.ChordsRequests, "other")
	counter(c.responses, t.Status2xx, "2xx")
	counter(c.responses, t.Status4xx, "4xx")
	counter(c.responses, t.Status5xx, "5xx")
	counter(c.cacheLookups, t.CacheHits, "hit")
	counter(c.cacheLookups, t.CacheMisses, "miss")
	counter(c.detections, t.Detections-t.DetectionFailures, "ok")
	counter(c.detections, t.DetectionFailures, "empty")
	counter(c.trackChanges, t.TrackChanges)
	counter(c.breakerTrips, t.BreakerTrips)

	for name, p := range t.Providers {
		counter(c.providerCall, p.Hits, name, "hit")
		counter(c.providerCall, p.Misses, name, "miss")
		counter(c.providerCall, p.Faults, name, "fault")
		counter(c.providerCall, p.Skipped, name, "skipped")
	}
}

// Handler serves s in the Prometheus text format along with Go runtime metrics
func Handler(s *Stats) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(s), collectors.NewGoCollector())
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
