package lyricsovh

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"spotifylyrics-go/logcolors"
	"spotifylyrics-go/services/providers"
	"spotifylyrics-go/song"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	// ProviderName is the identifier for the lyrics.ovh provider
	ProviderName = "lyricsovh"

	defaultBaseURL = "https://api.lyrics.ovh"
)

type response struct {
	Lyrics string `json:"lyrics"`
	Error  string `json:"error"`
}

// LyricsOvhProvider queries the lyrics.ovh JSON API
type LyricsOvhProvider struct {
	client  *providers.Client
	baseURL string
}

// NewProvider creates a new lyrics.ovh provider instance
func NewProvider(client *providers.Client) *LyricsOvhProvider {
	return &LyricsOvhProvider{client: client, baseURL: defaultBaseURL}
}

// Name returns the provider identifier
func (p *LyricsOvhProvider) Name() string {
	return ProviderName
}

// FetchLyrics fetches plain lyrics from lyrics.ovh
func (p *LyricsOvhProvider) FetchLyrics(ctx context.Context, s song.Song) (providers.Result, error) {
	if s.Artist == "" || s.Title == "" {
		return providers.Miss(ProviderName), nil
	}

	requestURL := p.baseURL + "/v1/" + url.PathEscape(s.Artist) + "/" + url.PathEscape(s.Title)

	var resp response
	if err := p.client.GetJSON(ctx, requestURL, &resp); err != nil {
		var se *providers.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return providers.Miss(ProviderName), nil
		}
		return providers.Result{}, providers.NewProviderError(ProviderName, "request failed", err)
	}

	lyrics := strings.TrimSpace(strings.ReplaceAll(resp.Lyrics, "\r\n", "\n"))
	if lyrics == "" {
		return providers.Miss(ProviderName), nil
	}

	log.Infof("%s %s Lyrics for %s", logcolors.LogSuccess, logcolors.Provider(ProviderName), s.DisplayString())
	return providers.Result{Lyrics: lyrics, URL: requestURL, Provider: ProviderName}, nil
}
