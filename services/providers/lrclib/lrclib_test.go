package lrclib

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"spotifylyrics-go/services/providers"
	"spotifylyrics-go/song"
	"testing"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *LrclibProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p := NewProvider(providers.NewClient(0))
	p.baseURL = server.URL
	return p
}

func TestFetchLyrics_ExactSynced(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/get" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("artist_name") != "Queen" || r.URL.Query().Get("track_name") != "Bohemian Rhapsody" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(Track{
			TrackName:    "Bohemian Rhapsody",
			ArtistName:   "Queen",
			SyncedLyrics: "[00:01.00]Is this the real life",
			PlainLyrics:  "Is this the real life",
		})
	})

	res, err := p.FetchLyrics(context.Background(), song.New("Queen", "Bohemian Rhapsody"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !res.Synced || res.Lyrics != "[00:01.00]Is this the real life" {
		t.Errorf("Expected synced lyrics, got %+v", res)
	}
	if res.Provider != ProviderName {
		t.Errorf("Expected provider %s, got %s", ProviderName, res.Provider)
	}
}

func TestFetchLyrics_PlainOnly(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Track{PlainLyrics: "plain words"})
	})

	res, err := p.FetchLyrics(context.Background(), song.New("A", "B"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Synced || res.Lyrics != "plain words" {
		t.Errorf("Expected unsynced plain lyrics, got %+v", res)
	}
}

func TestFetchLyrics_SearchFallback(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/get":
			w.WriteHeader(http.StatusNotFound)
		case "/api/search":
			json.NewEncoder(w).Encode([]Track{
				{ID: 1, TrackName: "Other", ArtistName: "Queen", PlainLyrics: "wrong"},
				{ID: 2, TrackName: "Bohemian Rhapsody", ArtistName: "Someone Else", PlainLyrics: "title only"},
				{ID: 3, TrackName: "Bohemian Rhapsody (Remastered)", ArtistName: "Queen", SyncedLyrics: "[00:01.00]right"},
			})
		}
	})

	res, err := p.FetchLyrics(context.Background(), song.New("Queen", "Bohemian Rhapsody"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Lyrics != "[00:01.00]right" || !res.Synced {
		t.Errorf("Expected best artist+title match, got %+v", res)
	}
}

func TestFetchLyrics_NoMatch(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/get" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`[]`))
	})

	res, err := p.FetchLyrics(context.Background(), song.New("A", "B"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Found() {
		t.Errorf("Expected miss, got %+v", res)
	}
}

func TestFetchLyrics_ServerError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if _, err := p.FetchLyrics(context.Background(), song.New("A", "B")); err == nil {
		t.Error("Expected error on 500")
	}
}

func TestFindBestMatch(t *testing.T) {
	tracks := []Track{
		{ID: 1, TrackName: "Song", ArtistName: "Artist"},
		{ID: 2, TrackName: "Song", ArtistName: "Other", PlainLyrics: "x"},
	}

	best := findBestMatch(tracks, song.New("Artist", "Song"))
	if best == nil || best.ID != 2 {
		t.Errorf("Expected record with lyrics (ID 2), got %+v", best)
	}

	if findBestMatch(tracks, song.New("Artist", "Nothing")) != nil {
		t.Error("Expected no match for unrelated title")
	}
}
