package lrclib

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"spotifylyrics-go/logcolors"
	"spotifylyrics-go/services/providers"
	"spotifylyrics-go/song"
	"spotifylyrics-go/utils"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	// ProviderName is the identifier for the LRCLIB provider
	ProviderName = "lrclib"

	defaultBaseURL = "https://lrclib.net"
)

// Track is one LRCLIB record
type Track struct {
	ID           int     `json:"id"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

// LrclibProvider queries lrclib.net: an exact /api/get first, then /api/search.
type LrclibProvider struct {
	client  *providers.Client
	baseURL string
}

// NewProvider creates a new LRCLIB provider instance
func NewProvider(client *providers.Client) *LrclibProvider {
	return &LrclibProvider{client: client, baseURL: defaultBaseURL}
}

// Name returns the provider identifier
func (p *LrclibProvider) Name() string {
	return ProviderName
}

// FetchLyrics prefers synced lyrics and falls back to plain ones
func (p *LrclibProvider) FetchLyrics(ctx context.Context, s song.Song) (providers.Result, error) {
	params := url.Values{}
	params.Set("artist_name", s.Artist)
	params.Set("track_name", s.Title)

	getURL := p.baseURL + "/api/get?" + params.Encode()
	var track Track
	err := p.client.GetJSON(ctx, getURL, &track)
	if err == nil {
		return p.result(track, getURL), nil
	}

	var se *providers.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		return providers.Result{}, providers.NewProviderError(ProviderName, "get request failed", err)
	}

	log.Debugf("%s %s No exact match, searching: %s", logcolors.LogSearch, logcolors.Provider(ProviderName), s.DisplayString())

	searchURL := p.baseURL + "/api/search?" + params.Encode()
	var tracks []Track
	if err := p.client.GetJSON(ctx, searchURL, &tracks); err != nil {
		return providers.Result{}, providers.NewProviderError(ProviderName, "search request failed", err)
	}

	best := findBestMatch(tracks, s)
	if best == nil {
		return providers.Miss(ProviderName), nil
	}
	return p.result(*best, fmt.Sprintf("%s/api/get/%d", p.baseURL, best.ID)), nil
}

func (p *LrclibProvider) result(t Track, source string) providers.Result {
	switch {
	case strings.TrimSpace(t.SyncedLyrics) != "":
		log.Infof("%s %s Synced lyrics for %s - %s", logcolors.LogSuccess, logcolors.Provider(ProviderName), t.ArtistName, t.TrackName)
		return providers.Result{Lyrics: t.SyncedLyrics, URL: source, Provider: ProviderName, Synced: true}
	case strings.TrimSpace(t.PlainLyrics) != "":
		log.Infof("%s %s Plain lyrics for %s - %s", logcolors.LogSuccess, logcolors.Provider(ProviderName), t.ArtistName, t.TrackName)
		return providers.Result{Lyrics: t.PlainLyrics, URL: source, Provider: ProviderName}
	default:
		return providers.Miss(ProviderName)
	}
}

// findBestMatch prefers records matching both title and artist, then title
// only. Records without lyrics are ignored.
func findBestMatch(tracks []Track, s song.Song) *Track {
	var titleMatch *Track
	for i := range tracks {
		t := &tracks[i]
		if t.SyncedLyrics == "" && t.PlainLyrics == "" {
			continue
		}
		if !matches(t.TrackName, s.Title) {
			continue
		}
		if matches(t.ArtistName, s.Artist) {
			return t
		}
		if titleMatch == nil {
			titleMatch = t
		}
	}
	return titleMatch
}

// matches reports whether either string contains the other once case and
// punctuation are ignored.
func matches(a, b string) bool {
	sa, sb := utils.Squash(a), utils.Squash(b)
	if sa == "" || sb == "" {
		return false
	}
	return strings.Contains(sa, sb) || strings.Contains(sb, sa)
}
