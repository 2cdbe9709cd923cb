package main

import (
	"encoding/json"
	"net/http"
	"spotifylyrics-go/middleware"
)

// APIResponse sets the standard headers before encoding a JSON body.
// X-Cache-Status and X-Provider are only written when set, and
// X-RateLimit-Type follows the tier the request was admitted under.
type APIResponse struct {
	w           http.ResponseWriter
	r           *http.Request
	cacheStatus string
	provider    string
}

// Respond creates a response helper for the request
func Respond(w http.ResponseWriter, r *http.Request) *APIResponse {
	return &APIResponse{w: w, r: r}
}

// SetCacheStatus sets the X-Cache-Status header value
func (a *APIResponse) SetCacheStatus(status string) *APIResponse {
	a.cacheStatus = status
	return a
}

// SetProvider sets the X-Provider header value
func (a *APIResponse) SetProvider(provider string) *APIResponse {
	a.provider = provider
	return a
}

func (a *APIResponse) writeHeaders() {
	h := a.w.Header()
	h.Set("Content-Type", "application/json")
	if a.cacheStatus != "" {
		h.Set("X-Cache-Status", a.cacheStatus)
	}
	if a.provider != "" {
		h.Set("X-Provider", a.provider)
	}
	if h.Get("X-RateLimit-Type") == "" {
		h.Set("X-RateLimit-Type", string(middleware.RequestTier(a.r.Context())))
	}
}

// JSON writes headers and encodes data as JSON (200 OK)
func (a *APIResponse) JSON(data interface{}) error {
	a.writeHeaders()
	return json.NewEncoder(a.w).Encode(data)
}

// Error writes headers, sets status code, and encodes error response
func (a *APIResponse) Error(statusCode int, data interface{}) error {
	a.writeHeaders()
	a.w.WriteHeader(statusCode)
	return json.NewEncoder(a.w).Encode(data)
}
