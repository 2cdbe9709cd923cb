package songlyrics

import (
	"context"
	"errors"
	"net/http"
	"spotifylyrics-go/logcolors"
	"spotifylyrics-go/services/providers"
	"spotifylyrics-go/song"
	"spotifylyrics-go/utils"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	// ProviderName is the identifier for the songlyrics.com provider
	ProviderName = "songlyrics"

	defaultBaseURL = "https://www.songlyrics.com"

	// placeholder text songlyrics.com shows instead of a 404
	missingMarker = "We do not have the lyrics for"
)

// SongLyricsProvider scrapes songlyrics.com song pages
type SongLyricsProvider struct {
	client  *providers.Client
	baseURL string
}

// NewProvider creates a new songlyrics.com provider instance
func NewProvider(client *providers.Client) *SongLyricsProvider {
	return &SongLyricsProvider{client: client, baseURL: defaultBaseURL}
}

// Name returns the provider identifier
func (p *SongLyricsProvider) Name() string {
	return ProviderName
}

// PageURL builds the song page address.
func (p *SongLyricsProvider) PageURL(s song.Song) string {
	return p.baseURL + "/" + utils.Slugify(s.Artist, "-") + "/" + utils.Slugify(s.Title, "-") + "-lyrics/"
}

// FetchLyrics scrapes the lyrics block of the song page
func (p *SongLyricsProvider) FetchLyrics(ctx context.Context, s song.Song) (providers.Result, error) {
	if utils.Slugify(s.Artist, "-") == "" || utils.Slugify(s.Title, "-") == "" {
		return providers.Miss(ProviderName), nil
	}

	pageURL := p.PageURL(s)
	doc, err := p.client.GetDocument(ctx, pageURL)
	if err != nil {
		var se *providers.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return providers.Miss(ProviderName), nil
		}
		return providers.Result{}, providers.NewProviderError(ProviderName, "page request failed", err)
	}

	lyrics := providers.TextWithBreaks(doc.Find("#songLyricsDiv"))
	if lyrics == "" || strings.Contains(lyrics, missingMarker) {
		return providers.Miss(ProviderName), nil
	}

	log.Infof("%s %s Lyrics for %s", logcolors.LogSuccess, logcolors.Provider(ProviderName), s.DisplayString())
	return providers.Result{Lyrics: lyrics, URL: pageURL, Provider: ProviderName}, nil
}
