package nowplaying

import (
	"os"
	"regexp"
	"strings"
)

// Source describes a media application the detector can read from.
// Everything here is plain data; strategies pick the fields they need.
type Source struct {
	Name string `json:"name"`

	// ExecutableName is the Windows process image name
	ExecutableName string `json:"executableName"`

	// AppleScript runs inside a "tell application" block on macOS and must
	// return "Artist - Title"
	AppleScript string `json:"appleScript"`

	// AppleApplication is the macOS application name
	AppleApplication string `json:"appleApplication"`

	// BusName is the MPRIS suffix after org.mpris.MediaPlayer2.
	// Empty means the application does not publish on the session bus.
	BusName string `json:"busName"`

	// LinuxCommand is the command that starts the application on Linux,
	// which is also its X11 window class
	LinuxCommand string `json:"linuxCommand"`

	// LaunchPath is the Windows executable path with %VAR% references
	LaunchPath string `json:"launchPath"`

	// NotPlaying lists the titles the application shows when idle
	NotPlaying []string `json:"notPlaying"`
}

var (
	Spotify = Source{
		Name:           "Spotify",
		ExecutableName: "Spotify.exe",
		AppleScript: "set currentArtist to artist of current track as string\n" +
			"    set currentTrack to name of current track as string\n" +
			"    return currentArtist & \" - \" & currentTrack",
		AppleApplication: "Spotify",
		BusName:          "spotify",
		LinuxCommand:     "spotify",
		LaunchPath:       `%APPDATA%\Spotify\Spotify.exe`,
		NotPlaying:       []string{"Spotify", "Spotify Free", "Spotify Premium", ""},
	}

	Tidal = Source{
		Name:             "Tidal",
		ExecutableName:   "TIDAL.exe",
		AppleApplication: "Tidal",
		LaunchPath:       `%LOCALAPPDATA%\TIDAL\TIDAL.exe`,
		NotPlaying:       []string{"TIDAL", ""},
	}

	VLC = Source{
		Name:             "VLC",
		ExecutableName:   "vlc.exe",
		AppleScript:      "return get name of current item",
		AppleApplication: "VLC",
		BusName:          "vlc",
		LinuxCommand:     "vlc",
		LaunchPath:       `%PROGRAMFILES%\VideoLAN\VLC\vlc.exe`,
		NotPlaying:       []string{"VLC media player", ""},
	}
)

// Sources lists every supported application
var Sources = []Source{Spotify, Tidal, VLC}

// SourceByName finds a source by case-insensitive name
func SourceByName(name string) (Source, bool) {
	for _, s := range Sources {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Source{}, false
}

// IsPlaying reports whether title names a track. Titles equal to one of
// the idle sentinels, including the empty string, do not.
func (s Source) IsPlaying(title string) bool {
	if title == "" {
		return false
	}
	for _, idle := range s.NotPlaying {
		if title == idle {
			return false
		}
	}
	return true
}

var envRef = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_()]*)%`)

// ExpandedLaunchPath resolves %VAR% references in LaunchPath from the
// environment. Unset variables are left as written.
func (s Source) ExpandedLaunchPath() string {
	return envRef.ReplaceAllStringFunc(s.LaunchPath, func(ref string) string {
		if v, ok := os.LookupEnv(ref[1 : len(ref)-1]); ok {
			return v
		}
		return ref
	})
}
