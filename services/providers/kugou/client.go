package kugou

import (
	"context"
	"fmt"
	"net/url"
	"spotifylyrics-go/logcolors"
	"spotifylyrics-go/services/lrc"
	"spotifylyrics-go/services/providers"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	// API hosts
	defaultLyricsBaseURL = "https://krcs.kugou.com"
	defaultSongBaseURL   = "http://msearchcdn.kugou.com"
)

type client struct {
	http          *providers.Client
	lyricsBaseURL string
	songBaseURL   string
}

// searchLyrics searches for lyrics candidates. The hash parameter is
// required for the API to return candidates.
func (c *client) searchLyrics(ctx context.Context, song, artist, hash string) ([]LyricsCandidate, error) {
	params := url.Values{}
	params.Set("ver", "1")
	params.Set("man", "yes")
	params.Set("client", "mobi")
	params.Set("keyword", keyword(song, artist))
	params.Set("hash", hash)

	log.Debugf("%s %s Searching lyrics: %s", logcolors.LogSearch, logcolors.Provider(ProviderName), params.Get("keyword"))

	var resp SearchResponse
	if err := c.http.GetJSON(ctx, c.lyricsBaseURL+"/search?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Status != 200 {
		return nil, fmt.Errorf("API error: %s (code: %d)", resp.ErrMsg, resp.ErrCode)
	}
	return resp.Candidates, nil
}

// downloadLyrics downloads LRC content by ID and access key
func (c *client) downloadLyrics(ctx context.Context, id, accessKey string) (string, error) {
	params := url.Values{}
	params.Set("ver", "1")
	params.Set("client", "pc")
	params.Set("id", id)
	params.Set("accesskey", accessKey)
	params.Set("fmt", "lrc")
	params.Set("charset", "utf8")

	log.Debugf("%s %s Downloading lyrics ID: %s", logcolors.LogLyrics, logcolors.Provider(ProviderName), id)

	var resp DownloadResponse
	if err := c.http.GetJSON(ctx, c.lyricsBaseURL+"/download?"+params.Encode(), &resp); err != nil {
		return "", err
	}
	if resp.Status != 200 {
		return "", fmt.Errorf("API error: %s (code: %d)", resp.Info, resp.ErrorCode)
	}
	if resp.Content == "" {
		return "", fmt.Errorf("lyrics content is empty")
	}

	content, err := lrc.DecodeBase64(resp.Content)
	if err != nil {
		return "", fmt.Errorf("failed to decode lyrics content: %w", err)
	}
	return content, nil
}

// searchSongs searches the song catalogue, which yields the hash the lyrics
// search needs.
func (c *client) searchSongs(ctx context.Context, song, artist string, pageSize int) ([]SongInfo, error) {
	params := url.Values{}
	params.Set("keyword", keyword(song, artist))
	params.Set("pagesize", strconv.Itoa(pageSize))
	params.Set("page", "1")
	params.Set("plat", "0")
	params.Set("version", "9108")

	var resp SongSearchResponse
	if err := c.http.GetJSON(ctx, c.songBaseURL+"/api/v3/search/song?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Status != 1 {
		return nil, fmt.Errorf("API error: status %d, errcode %d", resp.Status, resp.ErrCode)
	}
	return resp.Data.Info, nil
}

func keyword(song, artist string) string {
	if artist == "" {
		return song
	}
	return song + " " + artist
}

// selectBestCandidate scores lyrics candidates, preferring synced ones and
// name matches. Returns nil for an empty list.
func selectBestCandidate(candidates []LyricsCandidate, song, artist string) *LyricsCandidate {
	var best *LyricsCandidate
	bestScore := -1

	songLower := strings.ToLower(song)
	artistLower := strings.ToLower(artist)

	for i := range candidates {
		c := &candidates[i]
		score := c.Score

		if c.KRCType == 1 {
			score += 20
		}

		candidateSong := strings.ToLower(c.Song)
		if candidateSong == songLower {
			score += 20
		} else if strings.Contains(candidateSong, songLower) || strings.Contains(songLower, candidateSong) {
			score += 10
		}

		if artistLower != "" {
			candidateSinger := strings.ToLower(c.Singer)
			if candidateSinger == artistLower {
				score += 20
			} else if strings.Contains(candidateSinger, artistLower) {
				score += 10
			}
		}

		// official lyrics
		if strings.Contains(c.ProductFrom, "官方") {
			score += 5
		}

		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best
}

// selectBestSong picks the catalogue entry whose names match best. A song
// whose title matches neither way is never selected.
func selectBestSong(songs []SongInfo, song, artist string) *SongInfo {
	var best *SongInfo
	bestScore := 0

	songLower := strings.ToLower(song)
	artistLower := strings.ToLower(artist)

	for i := range songs {
		s := &songs[i]
		score := 0

		name := strings.ToLower(s.SongName)
		switch {
		case name == songLower:
			score += 30
		case strings.Contains(name, songLower) || strings.Contains(songLower, name):
			score += 15
		default:
			continue
		}

		if artistLower != "" {
			singer := strings.ToLower(s.SingerName)
			if singer == artistLower {
				score += 25
			} else if strings.Contains(singer, artistLower) || strings.Contains(artistLower, singer) {
				score += 10
			}
		}

		// higher quality uploads tend to carry better lyrics
		if s.SQHash != "" {
			score += 2
		}
		if s.Hash320 != "" {
			score++
		}

		if score > bestScore {
			bestScore = score
			best = s
		}
	}
	return best
}
