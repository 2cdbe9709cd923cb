package genius

import (
	"context"
	"net/url"
	"spotifylyrics-go/logcolors"
	"spotifylyrics-go/services/providers"
	"spotifylyrics-go/song"
	"spotifylyrics-go/utils"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	// ProviderName is the identifier for the Genius provider
	ProviderName = "genius"

	defaultBaseURL = "https://genius.com"
)

// SearchResponse is the public song search response
type SearchResponse struct {
	Response struct {
		Sections []Section `json:"sections"`
	} `json:"response"`
}

// Section groups search hits by type
type Section struct {
	Type string `json:"type"`
	Hits []Hit  `json:"hits"`
}

// Hit is one search result
type Hit struct {
	Result struct {
		URL           string `json:"url"`
		Title         string `json:"title"`
		PrimaryArtist struct {
			Name string `json:"name"`
		} `json:"primary_artist"`
	} `json:"result"`
}

// GeniusProvider searches genius.com and scrapes the lyrics containers of
// the best hit
type GeniusProvider struct {
	client  *providers.Client
	baseURL string
}

// NewProvider creates a new Genius provider instance
func NewProvider(client *providers.Client) *GeniusProvider {
	return &GeniusProvider{client: client, baseURL: defaultBaseURL}
}

// Name returns the provider identifier
func (p *GeniusProvider) Name() string {
	return ProviderName
}

// FetchLyrics fetches plain lyrics from Genius
func (p *GeniusProvider) FetchLyrics(ctx context.Context, s song.Song) (providers.Result, error) {
	params := url.Values{}
	params.Set("q", s.Artist+" "+s.Title)

	var search SearchResponse
	if err := p.client.GetJSON(ctx, p.baseURL+"/api/search/song?"+params.Encode(), &search); err != nil {
		return providers.Result{}, providers.NewProviderError(ProviderName, "search failed", err)
	}

	songURL := bestHit(search, s)
	if songURL == "" {
		return providers.Miss(ProviderName), nil
	}
	log.Debugf("%s %s Song page: %s", logcolors.LogMatch, logcolors.Provider(ProviderName), songURL)

	doc, err := p.client.GetDocument(ctx, songURL)
	if err != nil {
		return providers.Result{}, providers.NewProviderError(ProviderName, "page request failed", err)
	}

	containers := doc.Find(`div[data-lyrics-container="true"]`)
	containers.Find(`[data-exclude-from-selection="true"]`).Remove()
	lyrics := providers.TextWithBreaks(containers)
	if lyrics == "" {
		return providers.Miss(ProviderName), nil
	}

	log.Infof("%s %s Lyrics for %s", logcolors.LogSuccess, logcolors.Provider(ProviderName), s.DisplayString())
	return providers.Result{Lyrics: lyrics, URL: songURL, Provider: ProviderName}, nil
}

// bestHit returns the URL of the first hit whose artist and title both match,
// or "".
func bestHit(search SearchResponse, s song.Song) string {
	title := utils.Squash(s.Title)
	artist := utils.Squash(s.Artist)
	if title == "" {
		return ""
	}

	for _, section := range search.Response.Sections {
		for _, hit := range section.Hits {
			hitTitle := utils.Squash(hit.Result.Title)
			hitArtist := utils.Squash(hit.Result.PrimaryArtist.Name)
			if !strings.Contains(hitTitle, title) {
				continue
			}
			if artist == "" || strings.Contains(hitArtist, artist) || strings.Contains(artist, hitArtist) {
				return hit.Result.URL
			}
		}
	}
	return ""
}
