package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

// TestNewIPRateLimiter tests the creation of a new IPRateLimiter.
func TestNewIPRateLimiter(t *testing.T) {
	rl := NewIPRateLimiter(1, 5, 10, 20)
	if rl == nil {
		t.Errorf("Expected IPRateLimiter to be created, got nil")
	}
	if rl.normalRate != 1 {
		t.Errorf("Expected normal rate limit to be 1, got %v", rl.normalRate)
	}
	if rl.normalBurst != 5 {
		t.Errorf("Expected normal burst limit to be 5, got %v", rl.normalBurst)
	}
	if rl.cachedRate != 10 {
		t.Errorf("Expected cached rate limit to be 10, got %v", rl.cachedRate)
	}
	if rl.cachedBurst != 20 {
		t.Errorf("Expected cached burst limit to be 20, got %v", rl.cachedBurst)
	}
}

// TestAddIP tests adding a new IP to the rate limiter.
func TestAddIP(t *testing.T) {
	rl := NewIPRateLimiter(1, 5, 10, 20)
	ip := "192.168.1.1"
	limiterPair := rl.AddIP(ip)
	if limiterPair == nil {
		t.Errorf("Expected limiter pair to be created for IP, got nil")
	}
	if limiterPair.Normal == nil {
		t.Errorf("Expected normal rate limiter to be created, got nil")
	}
	if limiterPair.Cached == nil {
		t.Errorf("Expected cached rate limiter to be created, got nil")
	}
	if _, exists := rl.ips[ip]; !exists {
		t.Errorf("Expected IP to be added to ips map, but it was not found")
	}
}

// TestGetLimiter tests retrieving the rate limiter for an IP.
func TestGetLimiter(t *testing.T) {
	rl := NewIPRateLimiter(1, 5, 10, 20)
	ip := "192.168.1.1"
	limiterPair := rl.GetLimiter(ip)
	if limiterPair == nil {
		t.Errorf("Expected limiter pair to be returned, got nil")
	}
	if limiterPair.Normal == nil {
		t.Errorf("Expected normal rate limiter to be returned, got nil")
	}
	if limiterPair.Cached == nil {
		t.Errorf("Expected cached rate limiter to be returned, got nil")
	}
	if _, exists := rl.ips[ip]; !exists {
		t.Errorf("Expected IP to be in ips map, but it was not found")
	}
}

// TestTwoTierRateLimiting tests the two-tier rate limiting behavior.
func TestTwoTierRateLimiting(t *testing.T) {
	rl := NewIPRateLimiter(rate.Limit(1), 1, rate.Limit(2), 2)
	ip := "192.168.1.2"
	limiterPair := rl.GetLimiter(ip)

	// Normal tier: burst of 1
	if !limiterPair.Normal.Allow() {
		t.Errorf("Expected first normal request to be allowed")
	}

	// Normal tier exhausted, but cached tier should work
	if limiterPair.Normal.Allow() {
		t.Errorf("Expected second normal request to be denied")
	}

	// Cached tier should allow (burst of 2)
	if !limiterPair.Cached.Allow() {
		t.Errorf("Expected first cached request to be allowed")
	}
	if !limiterPair.Cached.Allow() {
		t.Errorf("Expected second cached request to be allowed")
	}

	// Both tiers exhausted
	if limiterPair.Normal.Allow() {
		t.Errorf("Expected normal tier to be exhausted")
	}
	if limiterPair.Cached.Allow() {
		t.Errorf("Expected cached tier to be exhausted")
	}
}

// TestLimiterPairTokens tests the token counting methods.
func TestLimiterPairTokens(t *testing.T) {
	rl := NewIPRateLimiter(rate.Limit(10), 10, rate.Limit(20), 20)
	ip := "192.168.1.3"
	limiterPair := rl.GetLimiter(ip)

	// Check initial tokens (should be at burst capacity)
	normalTokens := limiterPair.GetNormalTokens()
	cachedTokens := limiterPair.GetCachedTokens()

	if normalTokens != 10 {
		t.Errorf("Expected 10 normal tokens initially, got %d", normalTokens)
	}
	if cachedTokens != 20 {
		t.Errorf("Expected 20 cached tokens initially, got %d", cachedTokens)
	}

	// Consume a token
	limiterPair.Normal.Allow()
	normalTokens = limiterPair.GetNormalTokens()
	if normalTokens != 9 {
		t.Errorf("Expected 9 normal tokens after one request, got %d", normalTokens)
	}
}

// TestGetLimits tests the limit getter methods.
func TestGetLimits(t *testing.T) {
	rl := NewIPRateLimiter(rate.Limit(2), 5, rate.Limit(10), 20)

	normalLimit := rl.GetNormalLimit()
	cachedLimit := rl.GetCachedLimit()

	if normalLimit != 5 {
		t.Errorf("Expected normal limit to be 5, got %d", normalLimit)
	}
	if cachedLimit != 20 {
		t.Errorf("Expected cached limit to be 20, got %d", cachedLimit)
	}
}

func TestTake(t *testing.T) {
	rl := NewIPRateLimiter(rate.Limit(0.001), 1, rate.Limit(0.001), 1)

	expected := []Tier{TierNormal, TierCached, TierExceeded, TierExceeded}
	for i, want := range expected {
		tier, _ := rl.Take("10.0.0.1")
		if tier != want {
			t.Errorf("Request %d: expected tier %s, got %s", i+1, want, tier)
		}
	}

	if tier, _ := rl.Take("10.0.0.2"); tier != TierNormal {
		t.Errorf("Expected a new client to start on the normal tier, got %s", tier)
	}
}

func TestPrune(t *testing.T) {
	rl := NewIPRateLimiter(1, 1, 1, 1)
	rl.GetLimiter("old")
	rl.GetLimiter("new")
	rl.ips["old"].lastSeen = time.Now().Add(-2 * time.Hour)

	if removed := rl.Prune(time.Hour); removed != 1 {
		t.Errorf("Expected 1 client pruned, got %d", removed)
	}
	if _, ok := rl.ips["old"]; ok {
		t.Error("Expected idle client to be forgotten")
	}
	if _, ok := rl.ips["new"]; !ok {
		t.Error("Expected recent client to be kept")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	var tiers []Tier
	handler := RateLimitMiddleware(NewIPRateLimiter(rate.Limit(0.001), 1, rate.Limit(0.001), 1), "secret")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tiers = append(tiers, RequestTier(r.Context()))
			if CacheOnly(r.Context()) != (RequestTier(r.Context()) == TierCached) {
				t.Error("CacheOnly disagrees with the request tier")
			}
		}))

	tests := []struct {
		name       string
		apiKey     string
		wantStatus int
		wantType   string
	}{
		{"normal tier", "", http.StatusOK, "normal"},
		{"cached tier", "", http.StatusOK, "cached"},
		{"exceeded", "", http.StatusTooManyRequests, "exceeded"},
		{"bypass key", "secret", http.StatusOK, "bypass"},
		{"wrong key is limited", "nope", http.StatusTooManyRequests, "exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/lyrics", nil)
			req.RemoteAddr = "192.168.1.9:5555"
			if tt.apiKey != "" {
				req.Header.Set("X-API-Key", tt.apiKey)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if got := rec.Header().Get("X-RateLimit-Type"); got != tt.wantType {
				t.Errorf("Expected X-RateLimit-Type %s, got %s", tt.wantType, got)
			}
		})
	}

	expected := []Tier{TierNormal, TierCached, TierBypass}
	if len(tiers) != len(expected) {
		t.Fatalf("Expected %v to reach the handler, got %v", expected, tiers)
	}
	for i := range expected {
		if tiers[i] != expected[i] {
			t.Errorf("Position %d: expected %s, got %s", i, expected[i], tiers[i])
		}
	}
}

func TestRequestTier_Default(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if tier := RequestTier(req.Context()); tier != TierNormal {
		t.Errorf("Expected normal tier without limiter, got %s", tier)
	}
}
