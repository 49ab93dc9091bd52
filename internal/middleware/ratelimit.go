package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/food-court-orders/internal/config"
)

// bucket is the refill state for one rate-limit key.
type bucket struct {
	tokens     int
	lastRefill time.Time
	lastSeen   time.Time
}

// NewTokenBucket returns a token-bucket rate limiter keyed per the
// configured strategy. State is process-local: buckets live in a
// mutex-guarded map and idle entries are pruned by TTL on access. The
// limiter guards the login endpoints against credential stuffing; with it
// disabled the middleware is a pass-through.
func NewTokenBucket(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	var mu sync.Mutex
	buckets := make(map[string]*bucket)

	take := func(key string, now time.Time) (allowed bool, remaining int, retryAfter time.Duration) {
		mu.Lock()
		defer mu.Unlock()

		// Opportunistic prune so the map cannot grow without bound.
		for k, b := range buckets {
			if now.Sub(b.lastSeen) > cfg.TTL {
				delete(buckets, k)
			}
		}

		b, ok := buckets[key]
		if !ok {
			b = &bucket{tokens: cfg.Capacity, lastRefill: now}
			buckets[key] = b
		}
		b.lastSeen = now

		if intervals := int(now.Sub(b.lastRefill) / cfg.RefillInterval); intervals > 0 {
			b.tokens = min(cfg.Capacity, b.tokens+intervals*cfg.RefillTokens)
			b.lastRefill = b.lastRefill.Add(time.Duration(intervals) * cfg.RefillInterval)
		}

		if b.tokens > 0 {
			b.tokens--
			return true, b.tokens, 0
		}
		wait := cfg.RefillInterval - now.Sub(b.lastRefill)
		if wait < 0 {
			wait = 0
		}
		return false, 0, wait
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			allowed, remaining, retryAfter := take(key, time.Now())

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				secs := int(math.Ceil(retryAfter.Seconds()))
				if secs < 0 {
					secs = 0
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too_many_requests",
					"retry_after": secs,
				})
			}
			return next(c)
		}
	}
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	parts := []string{cfg.Prefix}
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	route := c.Request().Method + " " + c.Path()

	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "route":
		parts = append(parts, "route", route)
	default: // ip_route
		parts = append(parts, "ip", ip, "route", route)
	}
	return strings.Join(parts, ":")
}
