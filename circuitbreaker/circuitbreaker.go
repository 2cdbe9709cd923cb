package circuitbreaker

import (
	"errors"
	"sort"
	"spotifylyrics-go/logcolors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// State is the position of a breaker in its closed/open/half-open cycle
type State int

const (
	StateClosed   State = iota // calls pass through
	StateOpen                  // calls are refused until the cooldown ends
	StateHalfOpen              // one trial call is in flight
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}

// ErrCircuitOpen is returned to callers that were refused by an open breaker
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Config tunes a breaker
type Config struct {
	Threshold       int           // consecutive failures that open the circuit
	Cooldown        time.Duration // time spent open before a trial call is let through
	HalfOpenTimeout time.Duration // a trial call slower than this re-opens the circuit

	// OnStateChange, when set, is called after every transition
	OnStateChange func(name string, from, to State)
}

func (c Config) withDefaults() Config {
	if c.Threshold <= 0 {
		c.Threshold = 5
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 5 * time.Minute
	}
	if c.HalfOpenTimeout <= 0 {
		c.HalfOpenTimeout = 30 * time.Second
	}
	return c
}

// Breaker guards one provider
type Breaker struct {
	name     string
	cfg      Config
	now      func() time.Time
	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	trialAt  time.Time
}

// New creates a closed breaker
func New(name string, cfg Config) *Breaker {
	return &Breaker{name: name, cfg: cfg.withDefaults(), now: time.Now}
}

// transition must be called with mu held
func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	now := b.now()
	switch to {
	case StateOpen:
		b.openedAt = now
		log.Warnf("%s %s -> %s after %d failures (cooldown: %s)", logcolors.CircuitBreakerPrefix(b.name), from, to, b.failures, b.cfg.Cooldown)
	case StateHalfOpen:
		b.trialAt = now
		log.Infof("%s %s -> %s, probing", logcolors.CircuitBreakerPrefix(b.name), from, to)
	case StateClosed:
		b.failures = 0
		log.Infof("%s %s -> %s", logcolors.CircuitBreakerPrefix(b.name), from, to)
	}
	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(b.name, from, to)
	}
}

// Allow reports whether a call may proceed. Once the cooldown has passed a
// single trial call is admitted; everything else waits for its outcome.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	switch b.state {
	case StateOpen:
		if now.Sub(b.openedAt) < b.cfg.Cooldown {
			return false
		}
		b.transition(StateHalfOpen)
		return true
	case StateHalfOpen:
		if now.Sub(b.trialAt) >= b.cfg.HalfOpenTimeout {
			b.transition(StateOpen)
		}
		return false
	default:
		return true
	}
}

// Record feeds the outcome of an admitted call back into the breaker.
// A nil err is a success.
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.failures = 0
		if b.state == StateHalfOpen {
			b.transition(StateClosed)
		}
		return
	}

	b.failures++
	switch b.state {
	case StateHalfOpen:
		b.transition(StateOpen)
	case StateClosed:
		if b.failures >= b.cfg.Threshold {
			b.transition(StateOpen)
		}
	}
}

// Reset closes the breaker and forgets its failures
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transition(StateClosed)
	b.failures = 0
}

// Snapshot is a point-in-time view of a breaker
type Snapshot struct {
	Name     string        `json:"name"`
	State    string        `json:"state"`
	Failures int           `json:"failures"`
	RetryIn  time.Duration `json:"retryInNanos"`
}

// Snapshot returns the breaker's current state
func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := Snapshot{Name: b.name, State: b.state.String(), Failures: b.failures}
	if b.state == StateOpen {
		if left := b.cfg.Cooldown - b.now().Sub(b.openedAt); left > 0 {
			snap.RetryIn = left
		}
	}
	return snap
}

// State returns the current state
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Set lazily creates one breaker per name, all sharing a Config
type Set struct {
	cfg      Config
	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewSet returns an empty set
func NewSet(cfg Config) *Set {
	return &Set{cfg: cfg, breakers: make(map[string]*Breaker)}
}

// For returns the breaker for name, creating it on first use
func (s *Set) For(name string) *Breaker {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.breakers[name]
	if !ok {
		b = New(name, s.cfg)
		s.breakers[name] = b
	}
	return b
}

// Snapshots returns the state of every breaker, ordered by name
func (s *Set) Snapshots() []Snapshot {
	s.mu.Lock()
	list := make([]*Breaker, 0, len(s.breakers))
	for _, b := range s.breakers {
		list = append(list, b)
	}
	s.mu.Unlock()

	snaps := make([]Snapshot, 0, len(list))
	for _, b := range list {
		snaps = append(snaps, b.Snapshot())
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Name < snaps[j].Name })
	return snaps
}
