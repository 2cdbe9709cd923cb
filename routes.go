package main

import (
	"context"
	"fmt"
	"net/http"
	"spotifylyrics-go/logcolors"
	"spotifylyrics-go/middleware"
	"spotifylyrics-go/stats"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const limiterIdleTimeout = 30 * time.Minute

// publicPaths never require an API key
var publicPaths = []string{"/", "/health", "/metrics"}

// setupRoutes configures all HTTP routes for the API
func (a *app) setupRoutes(router *mux.Router) {
	router.HandleFunc("/nowplaying", a.getNowPlaying).Methods(http.MethodGet)

	router.HandleFunc("/lyrics", a.getLyrics).Methods(http.MethodGet)
	router.HandleFunc("/lyrics/next", a.nextLyrics).Methods(http.MethodPost)
	router.HandleFunc("/chords", a.getChords).Methods(http.MethodGet)

	// Cache management endpoints
	router.HandleFunc("/cache", a.getCacheStats).Methods(http.MethodGet)
	router.HandleFunc("/cache", a.clearCache).Methods(http.MethodDelete)
	router.HandleFunc("/cache/backup", a.backupCache).Methods(http.MethodPost)

	// Health and stats endpoints
	router.HandleFunc("/health", a.getHealthStatus).Methods(http.MethodGet)
	router.HandleFunc("/stats", a.getStats).Methods(http.MethodGet)
	router.Handle("/metrics", stats.Handler(a.stats)).Methods(http.MethodGet)

	router.HandleFunc("/circuit-breaker/{provider}/reset", a.resetCircuitBreaker).Methods(http.MethodPost)

	router.HandleFunc("/", helpHandler).Methods(http.MethodGet)
}

// handler builds the middleware chain: logging, CORS, API key, rate limit
func (a *app) handler(limiter *middleware.IPRateLimiter) http.Handler {
	router := mux.NewRouter()
	a.setupRoutes(router)

	var h http.Handler = router
	h = middleware.RateLimitMiddleware(limiter, a.conf.API.APIKey)(h)
	h = middleware.APIKeyMiddleware(a.conf.API.APIKey, a.conf.API.APIKeyRequired, publicPaths)(h)
	h = cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "X-API-Key"},
		ExposedHeaders: []string{"X-Cache-Status", "X-Provider", "X-RateLimit-Type", "X-RateLimit-Remaining", middleware.RequestIDHeader},
	}).Handler(h)
	return middleware.LoggingMiddleware(h)
}

func (a *app) newLimiter() *middleware.IPRateLimiter {
	perSecond := a.conf.API.RateLimitPerSecond
	burst := a.conf.API.RateLimitBurstLimit
	// The cached tier allows three times the normal rate
	return middleware.NewIPRateLimiter(rate.Limit(perSecond), burst, rate.Limit(perSecond*3), burst*3)
}

// serve runs the local API until ctx is done
func (a *app) serve(ctx context.Context) {
	limiter := a.newLimiter()
	srv := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", a.conf.API.Port),
		Handler:           a.handler(limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		ticker := time.NewTicker(limiterIdleTimeout)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
				return
			case <-ticker.C:
				if n := limiter.Prune(limiterIdleTimeout); n > 0 {
					log.Debugf("%s Forgot %d idle clients", logcolors.LogRateLimit, n)
				}
			}
		}
	}()

	log.Infof("%s Listening on %s", logcolors.LogServer, srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Errorf("%s Server stopped: %v", logcolors.LogServer, err)
	}
}
