package middleware

import (
	"crypto/subtle"
	"net/http"
	"spotifylyrics-go/logcolors"
	"strings"

	log "github.com/sirupsen/logrus"
)

// APIKeyMiddleware rejects requests without a matching X-API-Key header.
// Nothing is enforced unless required is set, and a required but empty key
// only logs a warning. Public paths ending in "*" match by prefix.
func APIKeyMiddleware(apiKey string, required bool, publicPaths []string) func(http.Handler) http.Handler {
	exact := make(map[string]bool)
	var prefixes []string
	for _, p := range publicPaths {
		if strings.HasSuffix(p, "*") {
			prefixes = append(prefixes, strings.TrimSuffix(p, "*"))
			continue
		}
		exact[p] = true
	}

	isPublic := func(path string) bool {
		if exact[path] {
			return true
		}
		for _, prefix := range prefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}

	if required && apiKey == "" {
		log.Warnf("%s API key required but not configured, requests are not authenticated", logcolors.LogAPIKey)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !required || apiKey == "" || isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get("X-API-Key")
			switch {
			case provided == "":
				log.Warnf("%s Missing API key from %s for %s", logcolors.LogAPIKey, r.RemoteAddr, r.URL.Path)
				unauthorized(w, `{"error":"API key required","message":"Provide a valid API key via X-API-Key header"}`)
			case subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1:
				log.Warnf("%s Invalid API key from %s for %s", logcolors.LogAPIKey, r.RemoteAddr, r.URL.Path)
				unauthorized(w, `{"error":"Invalid API key","message":"The provided API key is not valid"}`)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func unauthorized(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(body))
}
