package cifraclub

import (
	"context"
	"spotifylyrics-go/logcolors"
	"spotifylyrics-go/services/providers"
	"spotifylyrics-go/song"
	"spotifylyrics-go/utils"

	log "github.com/sirupsen/logrus"
)

const (
	// ProviderName is the identifier for the Cifra Club provider
	ProviderName = "cifraclub"

	defaultBaseURL = "https://www.cifraclub.com.br"
)

// CifraClubProvider guesses the chord page address from the song slug and
// checks that it exists.
type CifraClubProvider struct {
	client  *providers.Client
	baseURL string
}

// NewProvider creates a new Cifra Club provider instance
func NewProvider(client *providers.Client) *CifraClubProvider {
	return &CifraClubProvider{client: client, baseURL: defaultBaseURL}
}

// Name returns the provider identifier
func (p *CifraClubProvider) Name() string {
	return ProviderName
}

// PageURL builds the chord page address for s
func (p *CifraClubProvider) PageURL(s song.Song) string {
	return p.baseURL + "/" + utils.Slugify(s.Artist, "-") + "/" + utils.Slugify(s.Title, "-") + "/"
}

// ChordURLs returns the chord page when the site has one
func (p *CifraClubProvider) ChordURLs(ctx context.Context, s song.Song) ([]string, error) {
	if utils.Slugify(s.Artist, "-") == "" || utils.Slugify(s.Title, "-") == "" {
		return []string{}, nil
	}

	pageURL := p.PageURL(s)
	ok, err := p.client.Exists(ctx, pageURL)
	if err != nil {
		return nil, providers.NewProviderError(ProviderName, "page request failed", err)
	}
	if !ok {
		return []string{}, nil
	}

	log.Infof("%s %s Chords at %s", logcolors.LogChords, logcolors.Provider(ProviderName), pageURL)
	return []string{pageURL}, nil
}
