package main

import (
	"fmt"
	"io"
	"os"
	"spotifylyrics-go/services/lrc"
	"strings"
)

// display prints every new set of lyrics to stdout
func display(updates <-chan NowPlaying) {
	var shown string
	for np := range updates {
		if np.Song == nil || np.Lyrics == nil {
			continue
		}
		key := np.Song.CacheKey() + "\x00" + np.Lyrics.Provider + "\x00" + np.Lyrics.Lyrics
		if key == shown {
			continue
		}
		shown = key
		printLyrics(os.Stdout, np)
	}
}

// printLyrics writes a header and the lyrics. Synced lyrics are printed
// without their timestamps.
func printLyrics(w io.Writer, np NowPlaying) {
	res := np.Lyrics
	text := res.Lyrics
	if res.Synced {
		text = lrc.PlainText(text)
	}

	header := fmt.Sprintf("%s (%s)", np.Song.DisplayString(), res.Provider)
	fmt.Fprintf(w, "\n%s\n%s\n%s\n", header, strings.Repeat("=", len(header)), text)
}
