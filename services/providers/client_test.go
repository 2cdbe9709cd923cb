package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != DefaultUserAgent {
			t.Errorf("Expected default user agent, got %q", r.Header.Get("User-Agent"))
		}
		if r.Header.Get("X-Extra") != "1" {
			t.Errorf("Expected extra header")
		}
		w.Write([]byte(`{"name":"value"}`))
	}))
	defer server.Close()

	c := NewClient(0)
	c.Headers = map[string]string{"X-Extra": "1"}

	var out struct {
		Name string `json:"name"`
	}
	if err := c.GetJSON(context.Background(), server.URL, &out); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.Name != "value" {
		t.Errorf("Expected value, got %q", out.Name)
	}
}

func TestClient_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewClient(0).Get(context.Background(), server.URL)

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("Expected StatusError, got %v", err)
	}
	if se.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", se.Code)
	}
}

func TestClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	var v map[string]interface{}
	if err := NewClient(0).GetJSON(context.Background(), server.URL, &v); err == nil {
		t.Error("Expected parse error")
	}
}

func TestClient_GetDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div id="lyrics">Hello</div></body></html>`))
	}))
	defer server.Close()

	doc, err := NewClient(0).GetDocument(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := doc.Find("#lyrics").Text(); got != "Hello" {
		t.Errorf("Expected Hello, got %q", got)
	}
}

func TestClient_Exists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer server.Close()

	c := NewClient(0)
	ctx := context.Background()

	if ok, err := c.Exists(ctx, server.URL+"/ok"); !ok || err != nil {
		t.Errorf("Expected true/nil, got %v/%v", ok, err)
	}
	if ok, err := c.Exists(ctx, server.URL+"/missing"); ok || err != nil {
		t.Errorf("Expected false/nil, got %v/%v", ok, err)
	}
	if _, err := c.Exists(ctx, server.URL+"/broken"); err == nil {
		t.Error("Expected error for 502")
	}
}

func TestClient_RespectsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := NewClient(0).Get(ctx, server.URL); err == nil {
		t.Error("Expected error after context deadline")
	}
}
