package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lingualog/internal/logger"
)

func TestRateLimitBoundary(t *testing.T) {
	state := NewRateLimiterState()
	cfg := RateLimitConfig{MaxRequests: 2, Window: time.Second}
	now := time.Now()

	if ok, _ := state.Allow("1.2.3.4", cfg, now); !ok {
		t.Fatalf("first request should pass")
	}
	if ok, _ := state.Allow("1.2.3.4", cfg, now.Add(10*time.Millisecond)); !ok {
		t.Fatalf("second request should pass")
	}

	ok, retryAfter := state.Allow("1.2.3.4", cfg, now.Add(20*time.Millisecond))
	if ok {
		t.Fatalf("third request should be rejected")
	}
	if retryAfter <= 0 || retryAfter > time.Second {
		t.Fatalf("unexpected retry-after hint: %v", retryAfter)
	}

	// 窗口过后重新放行
	if ok, _ := state.Allow("1.2.3.4", cfg, now.Add(time.Second+time.Millisecond)); !ok {
		t.Fatalf("request after the window should pass")
	}
}

func TestRateLimitKeysAreIsolated(t *testing.T) {
	state := NewRateLimiterState()
	cfg := RateLimitConfig{MaxRequests: 1, Window: time.Minute}
	now := time.Now()

	if ok, _ := state.Allow("1.1.1.1", cfg, now); !ok {
		t.Fatalf("first key should pass")
	}
	if ok, _ := state.Allow("1.1.1.1", cfg, now); ok {
		t.Fatalf("first key should now be limited")
	}
	if ok, _ := state.Allow("2.2.2.2", cfg, now); !ok {
		t.Fatalf("second key must not be affected by the first key's count")
	}
}

func TestRateLimitRoutesDoNotShareQuota(t *testing.T) {
	gin.SetMode(gin.TestMode)

	state := NewRateLimiterState()
	mw := NewMiddleware(state, CSRFConfig{Secret: "s", Salt: "x"}, DefaultRateLimit, false, logger.NewNop())

	r := gin.New()
	browse := r.Group("")
	browse.Use(mw.Apply(SecurityConfig{
		RateLimit: &RateLimitConfig{MaxRequests: 100, Window: 15 * time.Minute},
	})...)
	browse.GET("/content", func(c *gin.Context) { c.Status(http.StatusOK) })

	contact := r.Group("")
	contact.Use(mw.Apply(SecurityConfig{
		RateLimit: &RateLimitConfig{MaxRequests: 5, Window: time.Hour},
	})...)
	contact.POST("/contact", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(method, path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, path, nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		return w
	}

	// 大量浏览流量不能吃掉联系表单的额度
	for i := 0; i < 20; i++ {
		if w := do(http.MethodGet, "/content"); w.Code != http.StatusOK {
			t.Fatalf("browse request %d: got %d", i, w.Code)
		}
	}
	for i := 0; i < 5; i++ {
		if w := do(http.MethodPost, "/contact"); w.Code != http.StatusOK {
			t.Fatalf("contact request %d: got %d", i, w.Code)
		}
	}
	if w := do(http.MethodPost, "/contact"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("sixth contact request: got %d, want 429", w.Code)
	}
	if w := do(http.MethodGet, "/content"); w.Code != http.StatusOK {
		t.Fatalf("browse request after contact rejection: got %d", w.Code)
	}
}

func TestRateLimitDefaultComesFromMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mw := NewMiddleware(NewRateLimiterState(), CSRFConfig{Secret: "s", Salt: "x"},
		RateLimitConfig{MaxRequests: 2, Window: time.Minute}, false, logger.NewNop())

	r := gin.New()
	r.Use(mw.Apply(SecurityConfig{})...)
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		return w
	}

	do()
	do()
	if w := do(); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected configured default limit to apply, got %d", w.Code)
	}
}

func TestRateLimitSweepDropsIdleCounters(t *testing.T) {
	state := NewRateLimiterState()
	cfg := RateLimitConfig{MaxRequests: 5, Window: time.Second}
	now := time.Now()

	state.Allow("stale", cfg, now)
	state.Allow("fresh", cfg, now.Add(2*time.Second))

	state.mu.Lock()
	_, staleExists := state.counters["stale"]
	state.mu.Unlock()
	if staleExists {
		t.Fatalf("idle counter should have been swept")
	}
}

func TestRateLimitSweepKeepsLongWindowCounters(t *testing.T) {
	state := NewRateLimiterState()
	now := time.Now()

	state.Allow("hourly", RateLimitConfig{MaxRequests: 5, Window: time.Hour}, now)
	// 短窗口流量触发清扫，不应带走还在自己窗口内的长窗口计数
	state.Allow("fast", RateLimitConfig{MaxRequests: 5, Window: time.Second}, now.Add(2*time.Second))

	state.mu.Lock()
	_, exists := state.counters["hourly"]
	state.mu.Unlock()
	if !exists {
		t.Fatalf("hour-window counter must survive a short-window sweep")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	state := NewRateLimiterState()
	mw := NewMiddleware(state, CSRFConfig{Secret: "s", Salt: "x"}, DefaultRateLimit, false, logger.NewNop())

	r := gin.New()
	r.Use(mw.Apply(SecurityConfig{
		RateLimit: &RateLimitConfig{MaxRequests: 2, Window: time.Minute},
	})...)
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		return w
	}

	if w := do(); w.Code != http.StatusOK {
		t.Fatalf("first request: got %d", w.Code)
	}
	if w := do(); w.Code != http.StatusOK {
		t.Fatalf("second request: got %d", w.Code)
	}

	w := do()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: got %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header on rejection")
	}
	if w.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("expected zero remaining header")
	}
}
