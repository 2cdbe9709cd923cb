package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"spotifylyrics-go/logcolors"
	"time"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// Request defaults
	defaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

	maxBodyBytes = 4 << 20
)

// StatusError is returned when a provider answers with an unexpected status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.URL, e.Code)
}

// Client is the HTTP client shared by the web-backed providers. Requests are
// paced by a token bucket so a retry storm cannot hammer one site.
type Client struct {
	HTTP      *http.Client
	Limiter   *rate.Limiter
	UserAgent string
	Headers   map[string]string
}

// NewClient returns a client allowing perSecond requests per second.
// A non-positive perSecond disables pacing.
func NewClient(perSecond int) *Client {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Client{
		HTTP:      &http.Client{Timeout: defaultTimeout},
		Limiter:   rate.NewLimiter(limit, 1+perSecond),
		UserAgent: DefaultUserAgent,
	}
}

// Do sends req after waiting for the limiter. Non-2xx responses are
// returned as *StatusError with the body already closed.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req = req.WithContext(ctx)
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}

	log.Debugf("%s %s %s", logcolors.LogHTTP, req.Method, req.URL.Redacted())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{URL: req.URL.Redacted(), Code: resp.StatusCode}
	}
	return resp, nil
}

// Get fetches rawURL and returns the body.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// GetJSON fetches rawURL and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v interface{}) error {
	body, err := c.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// GetDocument fetches rawURL and parses it as HTML.
func (c *Client) GetDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// Exists reports whether rawURL answers a GET with a 2xx status.
// A 404 is not an error.
func (c *Client) Exists(ctx context.Context, rawURL string) (bool, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		if se, ok := err.(*StatusError); ok && se.Code == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	resp.Body.Close()
	return true, nil
}
