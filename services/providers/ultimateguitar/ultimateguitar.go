package ultimateguitar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"spotifylyrics-go/logcolors"
	"spotifylyrics-go/services/providers"
	"spotifylyrics-go/song"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	// ProviderName is the identifier for the Ultimate Guitar provider
	ProviderName = "ultimateguitar"

	defaultBaseURL = "https://www.ultimate-guitar.com"
)

// store is the part of the page's embedded JSON state we read
type store struct {
	Store struct {
		Page struct {
			Data struct {
				Results []struct {
					TabURL string `json:"tab_url"`
					Type   string `json:"type"`
				} `json:"results"`
			} `json:"data"`
		} `json:"page"`
	} `json:"store"`
}

// UltimateGuitarProvider lists chord tabs from the Ultimate Guitar search page
type UltimateGuitarProvider struct {
	client  *providers.Client
	baseURL string
}

// NewProvider creates a new Ultimate Guitar provider instance
func NewProvider(client *providers.Client) *UltimateGuitarProvider {
	return &UltimateGuitarProvider{client: client, baseURL: defaultBaseURL}
}

// Name returns the provider identifier
func (p *UltimateGuitarProvider) Name() string {
	return ProviderName
}

// ChordURLs returns the URL of every chords tab for the song
func (p *UltimateGuitarProvider) ChordURLs(ctx context.Context, s song.Song) ([]string, error) {
	params := url.Values{}
	params.Set("search_type", "title")
	params.Set("value", s.Artist+" "+s.Title)

	doc, err := p.client.GetDocument(ctx, p.baseURL+"/search.php?"+params.Encode())
	if err != nil {
		return nil, providers.NewProviderError(ProviderName, "search request failed", err)
	}

	raw, ok := doc.Find(".js-store").Attr("data-content")
	if !ok {
		return []string{}, nil
	}

	var state store
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, providers.NewProviderError(ProviderName, "failed to parse page state", err)
	}

	urls := []string{}
	seen := make(map[string]bool)
	for _, r := range state.Store.Page.Data.Results {
		if !strings.EqualFold(r.Type, "Chords") || r.TabURL == "" || seen[r.TabURL] {
			continue
		}
		seen[r.TabURL] = true
		urls = append(urls, r.TabURL)
	}

	log.Infof("%s %s %s", logcolors.LogChords, logcolors.Provider(ProviderName), fmt.Sprintf("%d chord tabs for %s", len(urls), s.DisplayString()))
	return urls, nil
}
