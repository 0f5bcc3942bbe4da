package security

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimitConfig 描述单条路由的限流窗口
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

// DefaultRateLimit applies to routes without their own config.
var DefaultRateLimit = RateLimitConfig{MaxRequests: 100, Window: 15 * time.Minute}

type windowCounter struct {
	count       int
	windowStart time.Time
	window      time.Duration
	lastSeen    time.Time
}

// RateLimiterState holds per-key fixed-window counters. It is injected
// at startup rather than living as package state, so deployments can
// hold one per process or swap in a shared backing later.
type RateLimiterState struct {
	mu        sync.Mutex
	counters  map[string]*windowCounter
	lastSweep time.Time
}

// NewRateLimiterState creates an empty counter table.
func NewRateLimiterState() *RateLimiterState {
	return &RateLimiterState{
		counters:  make(map[string]*windowCounter, 256),
		lastSweep: time.Now(),
	}
}

// Allow records a request for key and reports whether it stays within
// the window. When rejected, retryAfter is the remaining window time.
func (s *RateLimiterState) Allow(key string, cfg RateLimitConfig, now time.Time) (bool, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepMaybe(cfg.Window, now)

	counter := s.counters[key]
	if counter == nil || now.Sub(counter.windowStart) >= cfg.Window {
		counter = &windowCounter{windowStart: now, window: cfg.Window}
		s.counters[key] = counter
	}
	counter.count++
	counter.lastSeen = now

	if counter.count > cfg.MaxRequests {
		return false, counter.windowStart.Add(cfg.Window).Sub(now)
	}
	return true, 0
}

// sweepMaybe 定期清掉窗口早已过期的计数，防止 map 无限增长。
// 每个计数按自己的窗口判断是否闲置，长窗口的计数不会被短窗口的流量清掉
func (s *RateLimiterState) sweepMaybe(window time.Duration, now time.Time) {
	if now.Sub(s.lastSweep) < window {
		return
	}
	for key, counter := range s.counters {
		if now.Sub(counter.lastSeen) > counter.window {
			delete(s.counters, key)
		}
	}
	s.lastSweep = now
}

// RateLimit builds the gin middleware for one route's window config.
func RateLimit(state *RateLimiterState, cfg RateLimitConfig, trustProxy bool) gin.HandlerFunc {
	if cfg.MaxRequests <= 0 {
		cfg = DefaultRateLimit
	}
	limitStr := strconv.Itoa(cfg.MaxRequests)

	return func(c *gin.Context) {
		// 计数按「路由 + 客户端」隔离，不同窗口配置的路由互不影响配额
		key := c.FullPath() + "|" + clientKey(c, trustProxy)

		ok, retryAfter := state.Allow(key, cfg, time.Now())
		if !ok {
			seconds := int(retryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.Header("X-RateLimit-Limit", limitStr)
			c.Header("X-RateLimit-Remaining", "0")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}

// clientKey resolves the client-identifying string for rate limiting.
func clientKey(c *gin.Context, trustProxy bool) string {
	if trustProxy {
		if ip := c.ClientIP(); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil && host != "" {
		return host
	}
	return "global"
}
