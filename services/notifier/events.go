package notifier

import (
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventCircuitBreakerOpen      EventType = "circuit_breaker_open"
	EventCircuitBreakerRecovered EventType = "circuit_breaker_recovered"
	EventCacheBackupFailed       EventType = "cache_backup_failed"
	EventCacheCleared            EventType = "cache_cleared"
	EventTrackChanged            EventType = "track_changed"
)

// Severity represents the severity level of an event
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Event represents a system event
type Event struct {
	Type      EventType
	Severity  Severity
	Message   string
	Data      map[string]interface{}
	Timestamp time.Time
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, severity Severity, message string) *Event {
	return &Event{
		Type:      eventType,
		Severity:  severity,
		Message:   message,
		Data:      make(map[string]interface{}),
		Timestamp: time.Now(),
	}
}

// WithData adds data to the event (chainable)
func (e *Event) WithData(key string, value interface{}) *Event {
	e.Data[key] = value
	return e
}

func (e *Event) str(key string) string {
	s, _ := e.Data[key].(string)
	return s
}

// EventHandler is a function that handles events
type EventHandler func(event *Event)

// EventBus fans events out to subscribers. Handlers run on their own
// goroutines.
type EventBus struct {
	handlers    map[EventType][]EventHandler
	allHandlers []EventHandler
	mu          sync.RWMutex
}

// NewEventBus returns a bus without subscribers
func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[EventType][]EventHandler)}
}

var (
	globalBus *EventBus
	busOnce   sync.Once
)

// GetEventBus returns the process-wide bus
func GetEventBus() *EventBus {
	busOnce.Do(func() {
		globalBus = NewEventBus()
	})
	return globalBus
}

// Subscribe adds a handler for a specific event type
func (b *EventBus) Subscribe(eventType EventType, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeAll adds a handler that receives all events
func (b *EventBus) SubscribeAll(handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allHandlers = append(b.allHandlers, handler)
}

// Publish sends an event to all subscribed handlers
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, handler := range b.handlers[event.Type] {
		go handler(event)
	}
	for _, handler := range b.allHandlers {
		go handler(event)
	}
}

// PublishCircuitBreakerOpen publishes a circuit breaker open event
func PublishCircuitBreakerOpen(provider string, cooldown time.Duration) {
	GetEventBus().Publish(NewEvent(EventCircuitBreakerOpen, SeverityWarning,
		"Provider skipped after consecutive failures").
		WithData("provider", provider).
		WithData("cooldown", cooldown.String()))
}

// PublishCircuitBreakerRecovered publishes a circuit breaker recovery event
func PublishCircuitBreakerRecovered(provider string) {
	GetEventBus().Publish(NewEvent(EventCircuitBreakerRecovered, SeverityInfo,
		"Provider is answering again").
		WithData("provider", provider))
}

// PublishCacheBackupFailed publishes when cache backup fails
func PublishCacheBackupFailed(err error) {
	GetEventBus().Publish(NewEvent(EventCacheBackupFailed, SeverityWarning,
		"Cache backup operation failed").
		WithData("error", err.Error()))
}

// PublishCacheCleared publishes when cache is cleared
func PublishCacheCleared(backupPath string) {
	GetEventBus().Publish(NewEvent(EventCacheCleared, SeverityInfo,
		"Cache has been cleared").
		WithData("backup_path", backupPath))
}

// PublishTrackChanged publishes the track that started playing
func PublishTrackChanged(display, provider string) {
	GetEventBus().Publish(NewEvent(EventTrackChanged, SeverityInfo,
		"Now playing").
		WithData("track", display).
		WithData("provider", provider))
}
