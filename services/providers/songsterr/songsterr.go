package songsterr

import (
	"context"
	"fmt"
	"net/url"
	"spotifylyrics-go/logcolors"
	"spotifylyrics-go/services/providers"
	"spotifylyrics-go/song"
	"spotifylyrics-go/utils"

	log "github.com/sirupsen/logrus"
)

const (
	// ProviderName is the identifier for the Songsterr provider
	ProviderName = "songsterr"

	defaultBaseURL = "https://www.songsterr.com"
)

// SongResult is one entry of the songs search API
type SongResult struct {
	SongID int    `json:"songId"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// SongsterrProvider finds tab pages through the Songsterr search API
type SongsterrProvider struct {
	client  *providers.Client
	baseURL string
}

// NewProvider creates a new Songsterr provider instance
func NewProvider(client *providers.Client) *SongsterrProvider {
	return &SongsterrProvider{client: client, baseURL: defaultBaseURL}
}

// Name returns the provider identifier
func (p *SongsterrProvider) Name() string {
	return ProviderName
}

// ChordURLs returns a tab page for every search hit matching title and artist
func (p *SongsterrProvider) ChordURLs(ctx context.Context, s song.Song) ([]string, error) {
	title := utils.Squash(s.Title)
	if title == "" {
		return []string{}, nil
	}

	var results []SongResult
	searchURL := p.baseURL + "/api/songs?pattern=" + url.QueryEscape(s.Artist+" "+s.Title)
	if err := p.client.GetJSON(ctx, searchURL, &results); err != nil {
		return nil, providers.NewProviderError(ProviderName, "search request failed", err)
	}

	artist := utils.Squash(s.Artist)
	urls := []string{}
	for _, r := range results {
		if utils.Squash(r.Title) != title {
			continue
		}
		if artist != "" && utils.Squash(r.Artist) != artist {
			continue
		}
		urls = append(urls, fmt.Sprintf("%s/a/wa/song?id=%d", defaultBaseURL, r.SongID))
	}

	log.Infof("%s %s %d tabs for %s", logcolors.LogChords, logcolors.Provider(ProviderName), len(urls), s.DisplayString())
	return urls, nil
}
