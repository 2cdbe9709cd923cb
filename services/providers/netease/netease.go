package netease

import (
	"context"
	"fmt"
	"net/url"
	"spotifylyrics-go/logcolors"
	"spotifylyrics-go/services/lrc"
	"spotifylyrics-go/services/providers"
	"spotifylyrics-go/song"
	"spotifylyrics-go/utils"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	// ProviderName is the identifier for the NetEase Cloud Music provider
	ProviderName = "netease"

	defaultBaseURL = "https://music.163.com"
	searchLimit    = 30
)

// SearchResponse is the web search API response
type SearchResponse struct {
	Result struct {
		Songs []struct {
			ID      int    `json:"id"`
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
		} `json:"songs"`
	} `json:"result"`
	Code int `json:"code"`
}

// LyricResponse is the lyric API response
type LyricResponse struct {
	Lrc struct {
		Lyric string `json:"lyric"`
	} `json:"lrc"`
	Code int `json:"code"`
}

// NeteaseProvider searches music.163.com and downloads the LRC of the best hit.
type NeteaseProvider struct {
	client  *providers.Client
	baseURL string
}

// NewProvider creates a new NetEase provider instance
func NewProvider(client *providers.Client) *NeteaseProvider {
	return &NeteaseProvider{client: client, baseURL: defaultBaseURL}
}

// Name returns the provider identifier
func (p *NeteaseProvider) Name() string {
	return ProviderName
}

// FetchLyrics fetches lyrics from NetEase
func (p *NeteaseProvider) FetchLyrics(ctx context.Context, s song.Song) (providers.Result, error) {
	id, err := p.search(ctx, s)
	if err != nil {
		return providers.Result{}, providers.NewProviderError(ProviderName, "song search failed", err)
	}
	if id == 0 {
		return providers.Miss(ProviderName), nil
	}

	lyricURL := fmt.Sprintf("%s/api/song/lyric?os=pc&id=%d&lv=-1&kv=-1&tv=-1", p.baseURL, id)
	var resp LyricResponse
	if err := p.client.GetJSON(ctx, lyricURL, &resp); err != nil {
		return providers.Result{}, providers.NewProviderError(ProviderName, "lyric request failed", err)
	}

	content := strings.TrimSpace(resp.Lrc.Lyric)
	if content == "" {
		return providers.Miss(ProviderName), nil
	}

	pageURL := fmt.Sprintf("%s/#/song?id=%d", p.baseURL, id)
	if lrc.IsSynced(content) {
		content = lrc.Normalize(content)
		log.Infof("%s %s Synced lyrics for song %d", logcolors.LogSuccess, logcolors.Provider(ProviderName), id)
		return providers.Result{Lyrics: content, URL: pageURL, Provider: ProviderName, Synced: true}, nil
	}
	return providers.Result{Lyrics: content, URL: pageURL, Provider: ProviderName}, nil
}

// search returns the ID of the best matching song, or 0.
func (p *NeteaseProvider) search(ctx context.Context, s song.Song) (int, error) {
	params := url.Values{}
	params.Set("s", s.Artist+" "+s.Title)
	params.Set("type", "1")
	params.Set("limit", fmt.Sprint(searchLimit))

	log.Debugf("%s %s Searching: %s", logcolors.LogSearch, logcolors.Provider(ProviderName), s.DisplayString())

	var resp SearchResponse
	if err := p.client.GetJSON(ctx, p.baseURL+"/api/search/get/web?"+params.Encode(), &resp); err != nil {
		return 0, err
	}

	var titleOnly int
	for _, hit := range resp.Result.Songs {
		if !containsEither(hit.Name, s.Title) {
			continue
		}
		for _, a := range hit.Artists {
			if containsEither(a.Name, s.Artist) {
				log.Infof("%s %s Matched %s (ID: %d)", logcolors.LogMatch, logcolors.Provider(ProviderName), hit.Name, hit.ID)
				return hit.ID, nil
			}
		}
		if titleOnly == 0 {
			titleOnly = hit.ID
		}
	}
	return titleOnly, nil
}

func containsEither(a, b string) bool {
	return utils.ContainsFold(a, b) || utils.ContainsFold(b, a)
}
