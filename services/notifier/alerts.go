package notifier

import (
	"context"
	"fmt"
	"spotifylyrics-go/logcolors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	// Default cooldown between alerts about the same subject
	DefaultAlertCooldown = 15 * time.Minute
)

// AlertHandler turns bus events into notifications
type AlertHandler struct {
	notifiers        []Notifier
	trackChanges     bool
	cooldownDuration time.Duration
	now              func() time.Time

	mu        sync.Mutex
	cooldowns map[string]time.Time // last alert per event type and subject
}

// AlertConfig holds configuration for the alert handler
type AlertConfig struct {
	Notifiers        []Notifier
	CooldownDuration time.Duration
	TrackChanges     bool // also announce every new track
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(config AlertConfig) *AlertHandler {
	cooldown := config.CooldownDuration
	if cooldown == 0 {
		cooldown = DefaultAlertCooldown
	}
	return &AlertHandler{
		notifiers:        config.Notifiers,
		trackChanges:     config.TrackChanges,
		cooldownDuration: cooldown,
		now:              time.Now,
		cooldowns:        make(map[string]time.Time),
	}
}

// Start subscribes the handler to bus
func (h *AlertHandler) Start(bus *EventBus) {
	bus.SubscribeAll(h.HandleEvent)
	log.Infof("%s Alert handler started (cooldown: %v, notifiers: %d)",
		logcolors.LogNotifier, h.cooldownDuration, len(h.notifiers))
}

// HandleEvent formats the event and sends it unless an alert about the
// same subject went out within the cooldown
func (h *AlertHandler) HandleEvent(event *Event) {
	if event.Type == EventTrackChanged && !h.trackChanges {
		return
	}

	subject, message := formatAlert(event)
	if subject == "" {
		return
	}

	if !h.shouldAlert(string(event.Type) + ":" + event.str("provider") + event.str("track")) {
		log.Debugf("%s Skipping alert for %s (cooldown active)", logcolors.LogNotifier, event.Type)
		return
	}

	h.sendAlert(subject, message)
}

func (h *AlertHandler) shouldAlert(key string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	last, ok := h.cooldowns[key]
	if ok && h.now().Sub(last) < h.cooldownDuration {
		return false
	}
	h.cooldowns[key] = h.now()
	return true
}

// formatAlert returns an empty subject for events that are not announced
func formatAlert(event *Event) (subject, message string) {
	switch event.Type {
	case EventCircuitBreakerOpen:
		subject = "Lyrics provider paused"
		message = fmt.Sprintf("%s failed repeatedly and will be skipped for %s.",
			event.str("provider"), event.str("cooldown"))
	case EventCircuitBreakerRecovered:
		subject = "Lyrics provider recovered"
		message = fmt.Sprintf("%s is answering again.", event.str("provider"))
	case EventCacheBackupFailed:
		subject = "Cache backup failed"
		message = event.str("error")
	case EventCacheCleared:
		subject = "Lyrics cache cleared"
		message = fmt.Sprintf("A snapshot was kept at %s.", event.str("backup_path"))
	case EventTrackChanged:
		subject = "Now playing"
		message = event.str("track")
		if p := event.str("provider"); p != "" {
			message += fmt.Sprintf("\nLyrics: %s", p)
		}
	default:
		return "", ""
	}
	return subject, message
}

func (h *AlertHandler) sendAlert(subject, message string) {
	if len(h.notifiers) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	sent := 0
	for _, n := range h.notifiers {
		if err := n.Send(ctx, subject, message); err != nil {
			log.Errorf("%s %s: %v", logcolors.LogNotifier, n.Name(), err)
			continue
		}
		sent++
	}
	log.Infof("%s %q sent via %d/%d notifiers", logcolors.LogNotifier, subject, sent, len(h.notifiers))
}

// ResetAllCooldowns forgets every previous alert
func (h *AlertHandler) ResetAllCooldowns() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cooldowns = make(map[string]time.Time)
}
