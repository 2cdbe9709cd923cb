package lyricsovh

import (
	"context"
	"net/http"
	"net/http/httptest"
	"spotifylyrics-go/services/providers"
	"spotifylyrics-go/song"
	"testing"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *LyricsOvhProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p := NewProvider(providers.NewClient(0))
	p.baseURL = server.URL
	return p
}

func TestFetchLyrics(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		expectFound bool
		expectErr   bool
		expected    string
	}{
		{"found", http.StatusOK, `{"lyrics":"Line one\r\nLine two\n"}`, true, false, "Line one\nLine two"},
		{"empty lyrics", http.StatusOK, `{"lyrics":""}`, false, false, ""},
		{"not found", http.StatusNotFound, `{"error":"No lyrics found"}`, false, false, ""},
		{"server error", http.StatusBadGateway, ``, false, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/AC/DC/Back In Black" && r.URL.EscapedPath() != "/v1/AC%2FDC/Back%20In%20Black" {
					t.Errorf("Unexpected path %s", r.URL.EscapedPath())
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			res, err := p.FetchLyrics(context.Background(), song.New("AC/DC", "Back In Black"))
			if tt.expectErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if res.Found() != tt.expectFound {
				t.Fatalf("Expected found=%v, got %+v", tt.expectFound, res)
			}
			if tt.expectFound && res.Lyrics != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, res.Lyrics)
			}
			if res.Synced {
				t.Error("Plain provider must not report synced lyrics")
			}
		})
	}
}

func TestFetchLyrics_EmptySong(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("No request expected")
	})

	res, err := p.FetchLyrics(context.Background(), song.New("", "Title"))
	if err != nil || res.Found() {
		t.Errorf("Expected silent miss, got %+v / %v", res, err)
	}
}
