package songlyrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"spotifylyrics-go/services/providers"
	"spotifylyrics-go/song"
	"testing"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *SongLyricsProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p := NewProvider(providers.NewClient(0))
	p.baseURL = server.URL
	return p
}

func TestPageURL(t *testing.T) {
	p := NewProvider(providers.NewClient(0))
	got := p.PageURL(song.New("Guns N' Roses", "Sweet Child O' Mine"))
	expected := "https://www.songlyrics.com/guns-n-roses/sweet-child-o-mine-lyrics/"
	if got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

func TestFetchLyrics_Found(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/queen/bohemian-rhapsody-lyrics/" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`<html><body><p id="songLyricsDiv">Is this the real life?<br>Is this just fantasy?<script>ads()</script></p></body></html>`))
	})

	res, err := p.FetchLyrics(context.Background(), song.New("Queen", "Bohemian Rhapsody"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := "Is this the real life?\nIs this just fantasy?"
	if res.Lyrics != expected {
		t.Errorf("Expected %q, got %q", expected, res.Lyrics)
	}
	if res.Provider != ProviderName || res.Synced {
		t.Errorf("Unexpected result metadata: %+v", res)
	}
}

func TestFetchLyrics_Placeholder(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<p id="songLyricsDiv">Sorry, We do not have the lyrics for this song yet.</p>`))
	})

	res, err := p.FetchLyrics(context.Background(), song.New("A", "B"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Found() {
		t.Errorf("Expected miss for placeholder page, got %+v", res)
	}
}

func TestFetchLyrics_NotFoundAndErrors(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/a/b-lyrics/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusForbidden)
	})

	res, err := p.FetchLyrics(context.Background(), song.New("A", "B"))
	if err != nil || res.Found() {
		t.Errorf("Expected silent miss on 404, got %+v / %v", res, err)
	}

	if _, err := p.FetchLyrics(context.Background(), song.New("C", "D")); err == nil {
		t.Error("Expected error on 403")
	}
}
