package song

import (
	"errors"
	"strings"
	"testing"
)

func TestFromDisplayString(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		expectedArtist string
		expectedTitle  string
	}{
		{"simple", "Queen - Bohemian Rhapsody", "Queen", "Bohemian Rhapsody"},
		{"parenthesised annotation", "A - B (Remix)", "A", "B"},
		{"bracketed annotation", "A - B [Live]", "A", "B"},
		{"slash suffix", "A - B / C", "A", "B"},
		{"several slash suffixes", "A - B / C / D", "A", "B"},
		{"multiline annotation", "A - B (first\nsecond)", "A", "B"},
		{"annotation in the middle", "A - B (feat. X) Part 2", "A", "B Part 2"},
		{"non-greedy groups", "A - B (x) C (y)", "A", "B C"},
		{"hyphenated title keeps all but last segment", "A - B - C - D", "A", "B - C"},
		{"three segments drop the last", "A - B - Remastered", "A", "B"},
		{"empty title", "A - ", "A", ""},
		{"empty artist", " - B", "", "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := FromDisplayString(tt.input)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if s.Artist != tt.expectedArtist {
				t.Errorf("Expected artist %q, got %q", tt.expectedArtist, s.Artist)
			}
			if s.Title != tt.expectedTitle {
				t.Errorf("Expected title %q, got %q", tt.expectedTitle, s.Title)
			}
		})
	}
}

func TestFromDisplayStringMalformed(t *testing.T) {
	for _, input := range []string{"", "Spotify", "Artist-Title", "Artist -Title"} {
		t.Run(input, func(t *testing.T) {
			_, err := FromDisplayString(input)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestFromDisplayStringDefaults(t *testing.T) {
	s, err := FromDisplayString("Artist - Title")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.Album != Unknown || s.Genre != Unknown {
		t.Errorf("Expected unknown album and genre, got %q and %q", s.Album, s.Genre)
	}
	if s.Year != -1 || s.CyclesPerMinute != -1 || s.BeatsPerMinute != -1 {
		t.Errorf("Expected -1 numeric defaults, got %d/%d/%d", s.Year, s.CyclesPerMinute, s.BeatsPerMinute)
	}
	if s.Dances == nil || len(s.Dances) != 0 {
		t.Errorf("Expected empty dances, got %v", s.Dances)
	}
}

func TestCacheKey(t *testing.T) {
	tests := []struct {
		artist, title, expected string
	}{
		{"Queen", "Bohemian Rhapsody", "Queen-Bohemian Rhapsody"},
		{"queen", "bohemian rhapsody", "queen-bohemian rhapsody"},
		{" A ", "B ", " A -B "},
	}

	for _, tt := range tests {
		if got := New(tt.artist, tt.title).CacheKey(); got != tt.expected {
			t.Errorf("Expected %q, got %q", tt.expected, got)
		}
	}
}

func TestString(t *testing.T) {
	s := New("Artist", "Title")
	out := s.String()
	for _, want := range []string{"Artist: Title (-1)", "Genre: UNKNOWN", "Album: UNKNOWN", "Beats per minute: -1"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in %q", want, out)
		}
	}
}

func TestApplyPatch(t *testing.T) {
	original := New("Artist", "Title")
	original.Dances = []string{"Waltz"}

	patched := original.Apply(Patch{
		Album:          "Album",
		Year:           1999,
		BeatsPerMinute: 120,
		Dances:         []string{"Waltz", "Tango"},
	})

	if patched.Album != "Album" || patched.Year != 1999 || patched.BeatsPerMinute != 120 {
		t.Errorf("Patch fields not applied: %+v", patched)
	}
	if patched.Genre != Unknown || patched.CyclesPerMinute != -1 {
		t.Errorf("Unset patch fields should keep defaults: %+v", patched)
	}
	if len(patched.Dances) != 2 || patched.Dances[1] != "Tango" {
		t.Errorf("Expected [Waltz Tango], got %v", patched.Dances)
	}

	if original.Album != Unknown || len(original.Dances) != 1 {
		t.Errorf("Apply must not modify the receiver: %+v", original)
	}
}

func TestPatchEmpty(t *testing.T) {
	if !(Patch{Source: "x"}).Empty() {
		t.Error("Expected patch with only a source to be empty")
	}
	if (Patch{Year: 2000}).Empty() {
		t.Error("Expected patch with a year to be non-empty")
	}
}

func TestSame(t *testing.T) {
	a := New("A", "B")
	b := a.Apply(Patch{Album: "X"})
	if !a.Same(b) {
		t.Error("Expected songs with equal artist and title to be the same")
	}
	if a.Same(New("A", "C")) {
		t.Error("Expected different titles to differ")
	}
}
