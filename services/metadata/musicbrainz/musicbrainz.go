package musicbrainz

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"spotifylyrics-go/logcolors"
	"spotifylyrics-go/services/providers"
	"spotifylyrics-go/song"
	"spotifylyrics-go/utils"
	"strconv"

	log "github.com/sirupsen/logrus"
)

const (
	// EnricherName is the identifier for the MusicBrainz enricher
	EnricherName = "musicbrainz"

	defaultBaseURL = "https://musicbrainz.org"

	// UserAgent is sent with every request; MusicBrainz rejects anonymous clients.
	UserAgent = "SpotifyLyrics/1.0 ( https://github.com/spotifylyrics )"

	minScore = 80
)

// Recording is one search hit of the recording endpoint
type Recording struct {
	ID               string `json:"id"`
	Score            int    `json:"score"`
	Title            string `json:"title"`
	FirstReleaseDate string `json:"first-release-date"`
	ArtistCredit     []struct {
		Name string `json:"name"`
	} `json:"artist-credit"`
	Releases []struct {
		Title string `json:"title"`
		Date  string `json:"date"`
	} `json:"releases"`
	Tags []Tag `json:"tags"`
}

// Tag is a folksonomy tag with its vote count
type Tag struct {
	Count int    `json:"count"`
	Name  string `json:"name"`
}

type searchResponse struct {
	Recordings []Recording `json:"recordings"`
}

// Enricher fills in album, year and genre from a MusicBrainz recording search
type Enricher struct {
	client  *providers.Client
	baseURL string
}

// NewEnricher creates a MusicBrainz enricher. The client's user agent is
// replaced because MusicBrainz requires an identifying one.
func NewEnricher(client *providers.Client) *Enricher {
	c := *client
	c.UserAgent = UserAgent
	return &Enricher{client: &c, baseURL: defaultBaseURL}
}

// Name returns the enricher identifier
func (e *Enricher) Name() string {
	return EnricherName
}

// Enrich returns an empty patch when no recording matches well enough.
func (e *Enricher) Enrich(ctx context.Context, s song.Song) (song.Patch, error) {
	if s.Artist == "" || s.Title == "" {
		return song.Patch{Source: EnricherName}, nil
	}

	params := url.Values{
		"query": {fmt.Sprintf(`recording:"%s" AND artist:"%s"`, s.Title, s.Artist)},
		"limit": {"5"},
		"fmt":   {"json"},
	}

	var resp searchResponse
	if err := e.client.GetJSON(ctx, e.baseURL+"/ws/2/recording?"+params.Encode(), &resp); err != nil {
		return song.Patch{}, fmt.Errorf("musicbrainz: recording search failed: %w", err)
	}

	rec := bestRecording(resp.Recordings, s)
	if rec == nil {
		log.Debugf("%s %s No recording for %s", logcolors.LogEnrich, logcolors.Provider(EnricherName), s.DisplayString())
		return song.Patch{Source: EnricherName}, nil
	}

	patch := toPatch(*rec)
	log.Infof("%s %s %s: album=%q year=%d genre=%q", logcolors.LogEnrich, logcolors.Provider(EnricherName),
		s.DisplayString(), patch.Album, patch.Year, patch.Genre)
	return patch, nil
}

// bestRecording returns the highest scored recording credited to the
// song's artist, or nil.
func bestRecording(recs []Recording, s song.Song) *Recording {
	artist := utils.Squash(s.Artist)
	var best *Recording
	for i := range recs {
		r := &recs[i]
		if r.Score < minScore || len(r.ArtistCredit) == 0 {
			continue
		}
		if utils.Squash(r.ArtistCredit[0].Name) != artist {
			continue
		}
		if best == nil || r.Score > best.Score {
			best = r
		}
	}
	return best
}

func toPatch(r Recording) song.Patch {
	patch := song.Patch{Source: EnricherName}

	if len(r.Releases) > 0 {
		patch.Album = r.Releases[0].Title
	}

	date := r.FirstReleaseDate
	if date == "" && len(r.Releases) > 0 {
		date = r.Releases[0].Date
	}
	patch.Year = parseYear(date)

	if len(r.Tags) > 0 {
		tags := append([]Tag{}, r.Tags...)
		sort.SliceStable(tags, func(i, j int) bool { return tags[i].Count > tags[j].Count })
		patch.Genre = tags[0].Name
	}
	return patch
}

// parseYear reads the year of a YYYY, YYYY-MM or YYYY-MM-DD date.
func parseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
