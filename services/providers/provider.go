package providers

import (
	"context"
	"fmt"
	"spotifylyrics-go/song"
	"sync"
)

// LyricsProvider is implemented by every lyrics source.
//
// A provider that has nothing for the song returns Miss(name) and a nil
// error. An error means the lookup itself failed (network, parsing); callers
// treat it the same as a miss.
type LyricsProvider interface {
	// Name returns the provider's identifier (e.g., "lrclib", "genius")
	Name() string

	// FetchLyrics looks up lyrics for the song. Synced providers set
	// Result.Synced when the lyrics carry timestamps.
	FetchLyrics(ctx context.Context, s song.Song) (Result, error)
}

// ChordProvider is implemented by chord chart sources.
type ChordProvider interface {
	Name() string

	// ChordURLs returns every chart URL the source has for the song.
	// No charts is an empty slice and a nil error.
	ChordURLs(ctx context.Context, s song.Song) ([]string, error)
}

// Group identifies one of the three ordered provider lists.
type Group string

const (
	GroupSynced Group = "synced"
	GroupPlain  Group = "plain"
	GroupChords Group = "chords"
)

// Registry holds the three ordered provider groups
type Registry struct {
	mu     sync.RWMutex
	synced []LyricsProvider
	plain  []LyricsProvider
	chords []ChordProvider
	groups map[string]Group
}

var (
	globalRegistry *Registry
	registryOnce   sync.Once
)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{groups: make(map[string]Group)}
}

// GetRegistry returns the global provider registry
func GetRegistry() *Registry {
	registryOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// RegisterSynced appends a provider to the synced-capable group.
// Registering a name that already exists in the group replaces it in place.
func (r *Registry) RegisterSynced(p LyricsProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.synced = upsert(r.synced, p)
	r.groups[p.Name()] = GroupSynced
}

// RegisterPlain appends a provider to the plain-lyrics group.
func (r *Registry) RegisterPlain(p LyricsProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plain = upsert(r.plain, p)
	r.groups[p.Name()] = GroupPlain
}

// RegisterChords appends a provider to the chord group.
func (r *Registry) RegisterChords(p ChordProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.chords {
		if existing.Name() == p.Name() {
			r.chords[i] = p
			return
		}
	}
	r.chords = append(r.chords, p)
	r.groups[p.Name()] = GroupChords
}

func upsert(list []LyricsProvider, p LyricsProvider) []LyricsProvider {
	for i, existing := range list {
		if existing.Name() == p.Name() {
			list[i] = p
			return list
		}
	}
	return append(list, p)
}

// Synced returns the synced-capable group in priority order.
func (r *Registry) Synced() []LyricsProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]LyricsProvider(nil), r.synced...)
}

// Plain returns the plain-lyrics group in priority order.
func (r *Registry) Plain() []LyricsProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]LyricsProvider(nil), r.plain...)
}

// Chords returns the chord group in priority order.
func (r *Registry) Chords() []ChordProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ChordProvider(nil), r.chords...)
}

// GroupOf returns the group a provider was registered in.
func (r *Registry) GroupOf(name string) (Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.groups[name]
	if !ok {
		return "", fmt.Errorf("provider not found: %s", name)
	}
	return g, nil
}

// List returns the registered provider names per group, in order.
func (r *Registry) List() map[Group][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := map[Group][]string{
		GroupSynced: {},
		GroupPlain:  {},
		GroupChords: {},
	}
	for _, p := range r.synced {
		out[GroupSynced] = append(out[GroupSynced], p.Name())
	}
	for _, p := range r.plain {
		out[GroupPlain] = append(out[GroupPlain], p.Name())
	}
	for _, p := range r.chords {
		out[GroupChords] = append(out[GroupChords], p.Name())
	}
	return out
}

// RegisterSynced registers p in the global registry's synced group
func RegisterSynced(p LyricsProvider) {
	GetRegistry().RegisterSynced(p)
}

// RegisterPlain registers p in the global registry's plain group
func RegisterPlain(p LyricsProvider) {
	GetRegistry().RegisterPlain(p)
}

// RegisterChords registers p in the global registry's chord group
func RegisterChords(p ChordProvider) {
	GetRegistry().RegisterChords(p)
}

// List is a convenience function to list all providers in the global registry
func List() map[Group][]string {
	return GetRegistry().List()
}
