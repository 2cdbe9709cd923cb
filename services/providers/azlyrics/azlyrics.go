package azlyrics

import (
	"context"
	"errors"
	"net/http"
	"spotifylyrics-go/logcolors"
	"spotifylyrics-go/services/providers"
	"spotifylyrics-go/song"
	"spotifylyrics-go/utils"
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

const (
	// ProviderName is the identifier for the AZLyrics provider
	ProviderName = "azlyrics"

	defaultBaseURL = "https://www.azlyrics.com"
)

// AZLyricsProvider scrapes azlyrics.com song pages
type AZLyricsProvider struct {
	client  *providers.Client
	baseURL string
}

// NewProvider creates a new AZLyrics provider instance
func NewProvider(client *providers.Client) *AZLyricsProvider {
	return &AZLyricsProvider{client: client, baseURL: defaultBaseURL}
}

// Name returns the provider identifier
func (p *AZLyricsProvider) Name() string {
	return ProviderName
}

// PageURL builds the song page address. AZLyrics drops a leading "the"
// from artist names.
func (p *AZLyricsProvider) PageURL(s song.Song) string {
	artist := utils.Squash(s.Artist)
	if strings.HasPrefix(artist, "the") && len(artist) > 3 {
		artist = strings.TrimPrefix(artist, "the")
	}
	return p.baseURL + "/lyrics/" + artist + "/" + utils.Squash(s.Title) + ".html"
}

// FetchLyrics scrapes the unnamed lyrics div of the song page
func (p *AZLyricsProvider) FetchLyrics(ctx context.Context, s song.Song) (providers.Result, error) {
	if utils.Squash(s.Artist) == "" || utils.Squash(s.Title) == "" {
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

	lyrics := extract(doc)
	if lyrics == "" {
		return providers.Miss(ProviderName), nil
	}

	log.Infof("%s %s Lyrics for %s", logcolors.LogSuccess, logcolors.Provider(ProviderName), s.DisplayString())
	return providers.Result{Lyrics: lyrics, URL: pageURL, Provider: ProviderName}, nil
}

// extract returns the text of the first div without class or id inside the
// main column, which is where the lyrics live.
func extract(doc *goquery.Document) string {
	var lyrics string
	doc.Find(".main-page .text-center > div, #main > div").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if _, hasClass := s.Attr("class"); hasClass {
			return true
		}
		if _, hasID := s.Attr("id"); hasID {
			return true
		}
		text := providers.TextWithBreaks(s)
		if text == "" {
			return true
		}
		lyrics = text
		return false
	})
	return lyrics
}
