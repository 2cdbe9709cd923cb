package kugou

import (
	"context"
	"fmt"
	"spotifylyrics-go/logcolors"
	"spotifylyrics-go/services/lrc"
	"spotifylyrics-go/services/providers"
	"spotifylyrics-go/song"

	log "github.com/sirupsen/logrus"
)

const (
	// ProviderName is the identifier for the Kugou provider
	ProviderName = "kugou"

	songPageSize = 10
)

// KugouProvider looks a song up in the Kugou catalogue and downloads the
// best lyrics candidate as LRC.
type KugouProvider struct {
	c *client
}

// NewProvider creates a new Kugou provider instance
func NewProvider(httpClient *providers.Client) *KugouProvider {
	return &KugouProvider{c: &client{
		http:          httpClient,
		lyricsBaseURL: defaultLyricsBaseURL,
		songBaseURL:   defaultSongBaseURL,
	}}
}

// Name returns the provider identifier
func (p *KugouProvider) Name() string {
	return ProviderName
}

// FetchLyrics fetches lyrics from Kugou
func (p *KugouProvider) FetchLyrics(ctx context.Context, s song.Song) (providers.Result, error) {
	if s.Title == "" {
		return providers.Miss(ProviderName), nil
	}

	log.Infof("%s %s Searching: %s", logcolors.LogSearch, logcolors.Provider(ProviderName), s.DisplayString())

	songs, err := p.c.searchSongs(ctx, s.Title, s.Artist, songPageSize)
	if err != nil {
		return providers.Result{}, providers.NewProviderError(ProviderName, "song search failed", err)
	}

	best := selectBestSong(songs, s.Title, s.Artist)
	if best == nil {
		return providers.Miss(ProviderName), nil
	}

	candidates, err := p.c.searchLyrics(ctx, s.Title, s.Artist, best.Hash)
	if err != nil {
		return providers.Result{}, providers.NewProviderError(ProviderName, "lyrics search failed", err)
	}

	candidate := selectBestCandidate(candidates, s.Title, s.Artist)
	if candidate == nil {
		return providers.Miss(ProviderName), nil
	}

	log.Infof("%s %s Best lyrics match: %s - %s (type: %d)",
		logcolors.LogMatch, logcolors.Provider(ProviderName), candidate.Singer, candidate.Song, candidate.KRCType)

	content, err := p.c.downloadLyrics(ctx, candidate.ID, candidate.AccessKey)
	if err != nil {
		return providers.Result{}, providers.NewProviderError(ProviderName, "failed to download lyrics", err)
	}

	content = lrc.StripMetadata(lrc.Normalize(content))
	if content == "" {
		return providers.Miss(ProviderName), nil
	}

	return providers.Result{
		Lyrics:   content,
		URL:      fmt.Sprintf("%s/download?id=%s", p.c.lyricsBaseURL, candidate.ID),
		Provider: ProviderName,
		Synced:   lrc.IsSynced(content),
	}, nil
}
