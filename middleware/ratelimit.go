package middleware

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"spotifylyrics-go/logcolors"
	"spotifylyrics-go/stats"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Tier is the rate limit bucket a request was admitted under
type Tier string

const (
	TierNormal   Tier = "normal"
	TierCached   Tier = "cached" // only cached lyrics may be served
	TierBypass   Tier = "bypass"
	TierExceeded Tier = "exceeded"
)

type tierKey struct{}

// LimiterPair holds both tiers of one client
type LimiterPair struct {
	Normal   *rate.Limiter
	Cached   *rate.Limiter
	lastSeen time.Time
}

// GetNormalTokens returns the number of tokens available in the normal tier
func (lp *LimiterPair) GetNormalTokens() int {
	return int(math.Floor(lp.Normal.Tokens()))
}

// GetCachedTokens returns the number of tokens available in the cached tier
func (lp *LimiterPair) GetCachedTokens() int {
	return int(math.Floor(lp.Cached.Tokens()))
}

// IPRateLimiter keeps a two-tier token bucket per client address. Once the
// normal tier runs dry a client may still read cached lyrics until the
// cached tier runs dry as well.
type IPRateLimiter struct {
	ips         map[string]*LimiterPair
	mu          sync.Mutex
	normalRate  rate.Limit
	normalBurst int
	cachedRate  rate.Limit
	cachedBurst int
}

// NewIPRateLimiter creates a new two-tier rate limiter
func NewIPRateLimiter(normalRate rate.Limit, normalBurst int, cachedRate rate.Limit, cachedBurst int) *IPRateLimiter {
	return &IPRateLimiter{
		ips:         make(map[string]*LimiterPair),
		normalRate:  normalRate,
		normalBurst: normalBurst,
		cachedRate:  cachedRate,
		cachedBurst: cachedBurst,
	}
}

// GetNormalLimit returns the normal tier burst limit
func (i *IPRateLimiter) GetNormalLimit() int {
	return i.normalBurst
}

// GetCachedLimit returns the cached tier burst limit
func (i *IPRateLimiter) GetCachedLimit() int {
	return i.cachedBurst
}

func (i *IPRateLimiter) AddIP(ip string) *LimiterPair {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.addLocked(ip)
}

func (i *IPRateLimiter) addLocked(ip string) *LimiterPair {
	pair := &LimiterPair{
		Normal:   rate.NewLimiter(i.normalRate, i.normalBurst),
		Cached:   rate.NewLimiter(i.cachedRate, i.cachedBurst),
		lastSeen: time.Now(),
	}
	i.ips[ip] = pair
	return pair
}

func (i *IPRateLimiter) GetLimiter(ip string) *LimiterPair {
	i.mu.Lock()
	defer i.mu.Unlock()

	pair, ok := i.ips[ip]
	if !ok {
		return i.addLocked(ip)
	}
	pair.lastSeen = time.Now()
	return pair
}

// Take spends a token for ip and reports the tier that admitted it together
// with the tokens left in that tier.
func (i *IPRateLimiter) Take(ip string) (Tier, int) {
	pair := i.GetLimiter(ip)
	if pair.Normal.Allow() {
		return TierNormal, pair.GetNormalTokens()
	}
	if pair.Cached.Allow() {
		return TierCached, pair.GetCachedTokens()
	}
	return TierExceeded, 0
}

// Prune forgets clients not seen for longer than idle
func (i *IPRateLimiter) Prune(idle time.Duration) int {
	i.mu.Lock()
	defer i.mu.Unlock()

	cutoff := time.Now().Add(-idle)
	removed := 0
	for ip, pair := range i.ips {
		if pair.lastSeen.Before(cutoff) {
			delete(i.ips, ip)
			removed++
		}
	}
	return removed
}

// RequestTier returns the tier the rate limiter admitted the request under.
// Requests that never passed the limiter count as normal.
func RequestTier(ctx context.Context) Tier {
	if t, ok := ctx.Value(tierKey{}).(Tier); ok {
		return t
	}
	return TierNormal
}

// CacheOnly reports whether the request may only be answered from cache
func CacheOnly(ctx context.Context) bool {
	return RequestTier(ctx) == TierCached
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware admits requests through the limiter. A request
// carrying bypassKey in X-API-Key is never limited.
func RateLimitMiddleware(limiter *IPRateLimiter, bypassKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypassKey != "" && r.Header.Get("X-API-Key") == bypassKey {
				w.Header().Set("X-RateLimit-Type", string(TierBypass))
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tierKey{}, TierBypass)))
				return
			}

			ip := clientIP(r)
			tier, remaining := limiter.Take(ip)

			limit := limiter.GetNormalLimit()
			if tier != TierNormal {
				limit = limiter.GetCachedLimit()
			}
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
			w.Header().Set("X-RateLimit-Type", string(tier))

			if tier == TierExceeded {
				stats.Get().RecordRateLimited()
				log.Warnf("%s IP %s exceeded both rate limit tiers", logcolors.LogRateLimit, ip)
				w.Header().Set("Retry-After", "1")
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			if tier == TierCached {
				log.Debugf("%s IP %s exceeded normal tier, serving cache only", logcolors.LogRateLimit, ip)
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tierKey{}, tier)))
		})
	}
}
