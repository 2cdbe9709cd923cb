package song

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Unknown marks string metadata that has not been looked up.
const Unknown = "UNKNOWN"

// separator sits between artist and title in a now-playing title.
const separator = " - "

// ErrMalformed is returned for display strings without an artist/title separator.
var ErrMalformed = errors.New("display string has no artist/title separator")

var (
	parenthesised = regexp.MustCompile(`(?s) \(.*?\)`)
	bracketed     = regexp.MustCompile(`(?s) \[.*?\]`)
)

// Song identifies a track. Values are not mutated once shared; metadata
// arrives later as a Patch.
type Song struct {
	Artist          string   `json:"artist"`
	Title           string   `json:"title"`
	Album           string   `json:"album"`
	Year            int      `json:"year"`
	Genre           string   `json:"genre"`
	CyclesPerMinute int      `json:"cyclesPerMinute"`
	BeatsPerMinute  int      `json:"beatsPerMinute"`
	Dances          []string `json:"dances"`
}

// New returns a song with every optional field set to its unknown value.
func New(artist, title string) Song {
	return Song{
		Artist:          artist,
		Title:           title,
		Album:           Unknown,
		Year:            -1,
		Genre:           Unknown,
		CyclesPerMinute: -1,
		BeatsPerMinute:  -1,
		Dances:          []string{},
	}
}

// FromDisplayString parses an "Artist - Title" string.
//
// With more than two segments every segment but the first and the last forms
// the title, so an artist containing " - " followed by a single-segment title
// parses wrongly. Anything after " / " and every " (...)" or " [...]" group is
// removed from the title. An empty artist or title is not an error.
func FromDisplayString(s string) (Song, error) {
	parts := strings.Split(s, separator)
	if len(parts) < 2 {
		return Song{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}

	artist := parts[0]
	var title string
	if len(parts) > 2 {
		title = strings.Join(parts[1:len(parts)-1], separator)
	} else {
		title = parts[1]
	}

	if i := strings.Index(title, " / "); i >= 0 {
		title = title[:i]
	}
	title = parenthesised.ReplaceAllString(title, "")
	title = bracketed.ReplaceAllString(title, "")

	return New(artist, title), nil
}

// CacheKey is the exact, case-sensitive key lyrics are cached under.
func (s Song) CacheKey() string {
	return s.Artist + "-" + s.Title
}

// DisplayString renders the song the way players show it.
func (s Song) DisplayString() string {
	return s.Artist + separator + s.Title
}

func (s Song) String() string {
	return fmt.Sprintf("%s: %s (%d) \nGenre: %s\nAlbum: %s\n"+
		"Cycles per minute: %d\nBeats per minute: %d\nDances: %v\n",
		s.Artist, s.Title, s.Year, s.Genre, s.Album,
		s.CyclesPerMinute, s.BeatsPerMinute, s.Dances)
}

// Same reports whether both values identify the same track.
func (s Song) Same(other Song) bool {
	return s.Artist == other.Artist && s.Title == other.Title
}
