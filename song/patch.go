package song

import "context"

// Patch carries metadata found after a song was identified.
// Zero-valued fields leave the song untouched.
type Patch struct {
	Source          string
	Album           string
	Year            int
	Genre           string
	CyclesPerMinute int
	BeatsPerMinute  int
	Dances          []string
}

// Empty reports whether applying p would change nothing.
func (p Patch) Empty() bool {
	return p.Album == "" && p.Year == 0 && p.Genre == "" &&
		p.CyclesPerMinute == 0 && p.BeatsPerMinute == 0 && len(p.Dances) == 0
}

// Apply returns a copy of s with the patch's fields filled in.
// Dances are appended, skipping ones already present.
func (s Song) Apply(p Patch) Song {
	out := s
	if p.Album != "" {
		out.Album = p.Album
	}
	if p.Year != 0 {
		out.Year = p.Year
	}
	if p.Genre != "" {
		out.Genre = p.Genre
	}
	if p.CyclesPerMinute != 0 {
		out.CyclesPerMinute = p.CyclesPerMinute
	}
	if p.BeatsPerMinute != 0 {
		out.BeatsPerMinute = p.BeatsPerMinute
	}

	out.Dances = append([]string{}, s.Dances...)
	for _, d := range p.Dances {
		if !contains(out.Dances, d) {
			out.Dances = append(out.Dances, d)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Enricher looks up auxiliary metadata for a song.
type Enricher interface {
	Name() string
	Enrich(ctx context.Context, s Song) (Patch, error)
}
