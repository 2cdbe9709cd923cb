package local

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"spotifylyrics-go/logcolors"
	"spotifylyrics-go/services/lrc"
	"spotifylyrics-go/services/providers"
	"spotifylyrics-go/song"
	"spotifylyrics-go/utils"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	// ProviderName is the identifier for the local lyrics provider
	ProviderName = "local"
)

// extensions are tried in this order for each candidate name.
var extensions = []string{".lrc", ".txt"}

// LocalProvider serves lyrics files from a directory. Files are named
// "Artist - Title.lrc" (or .txt); matching ignores case and punctuation.
type LocalProvider struct {
	dir string
}

// NewProvider creates a provider reading from dir. An empty dir makes every
// lookup a miss.
func NewProvider(dir string) *LocalProvider {
	return &LocalProvider{dir: dir}
}

// Name returns the provider identifier
func (p *LocalProvider) Name() string {
	return ProviderName
}

// FetchLyrics looks for a file matching the song
func (p *LocalProvider) FetchLyrics(ctx context.Context, s song.Song) (providers.Result, error) {
	if p.dir == "" {
		return providers.Miss(ProviderName), nil
	}

	path, err := p.find(s)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return providers.Miss(ProviderName), nil
		}
		return providers.Result{}, providers.NewProviderError(ProviderName, "failed to scan lyrics directory", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return providers.Result{}, providers.NewProviderError(ProviderName, "failed to read lyrics file", err)
	}

	content := strings.TrimSpace(strings.TrimPrefix(string(data), "\ufeff"))
	if content == "" {
		return providers.Miss(ProviderName), nil
	}

	synced := lrc.IsSynced(content)
	log.Infof("%s %s Found %s (synced: %v)", logcolors.LogMatch, logcolors.Provider(ProviderName), filepath.Base(path), synced)

	return providers.Result{
		Lyrics:   content,
		URL:      "file://" + filepath.ToSlash(path),
		Provider: ProviderName,
		Synced:   synced,
	}, nil
}

// inDir reports whether path names a file directly inside dir
func (p *LocalProvider) inDir(path string) bool {
	rel, err := filepath.Rel(p.dir, path)
	return err == nil && rel == filepath.Base(path) && rel != ".."
}

// find returns the path of the file for s, or fs.ErrNotExist. Names
// containing path separators never leave the directory.
func (p *LocalProvider) find(s song.Song) (string, error) {
	base := s.Artist + " - " + s.Title
	if !strings.ContainsAny(base, `/\`) {
		for _, ext := range extensions {
			path := filepath.Join(p.dir, base+ext)
			if !p.inDir(path) {
				continue
			}
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}

	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return "", err
	}

	want := utils.Squash(base)
	for _, ext := range extensions {
		for _, e := range entries {
			if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ext) {
				continue
			}
			if utils.Squash(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))) == want {
				return filepath.Join(p.dir, e.Name()), nil
			}
		}
	}
	return "", fs.ErrNotExist
}
