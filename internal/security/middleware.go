package security

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lingualog/internal/logger"
)

// SecurityConfig 按路由开关各安全阶段
type SecurityConfig struct {
	CSRFProtection     bool
	InputSanitization  bool
	FileUploadSecurity bool
	RateLimit          *RateLimitConfig
}

// Middleware bundles the shared state the per-route pipelines draw on.
type Middleware struct {
	limiter      *RateLimiterState
	csrf         CSRFConfig
	defaultLimit RateLimitConfig
	trustProxy   bool
	log          logger.Logger
}

// NewMiddleware wires the security pipeline's shared dependencies.
// defaultLimit applies to routes without their own rate limit config;
// a zero value falls back to DefaultRateLimit.
func NewMiddleware(limiter *RateLimiterState, csrf CSRFConfig, defaultLimit RateLimitConfig, trustProxy bool, log logger.Logger) *Middleware {
	if defaultLimit.MaxRequests <= 0 || defaultLimit.Window <= 0 {
		defaultLimit = DefaultRateLimit
	}
	return &Middleware{limiter: limiter, csrf: csrf, defaultLimit: defaultLimit, trustProxy: trustProxy, log: log}
}

// CSRF exposes the token config for the issuing handler.
func (m *Middleware) CSRF() CSRFConfig {
	return m.csrf
}

// Apply composes the enabled stages in order: recover, rate limit,
// CSRF, sanitization, upload validation. A rejected request never
// reaches the route handler.
func (m *Middleware) Apply(cfg SecurityConfig) []gin.HandlerFunc {
	handlers := []gin.HandlerFunc{m.recoverStage()}

	if cfg.RateLimit != nil {
		handlers = append(handlers, RateLimit(m.limiter, *cfg.RateLimit, m.trustProxy))
	} else {
		handlers = append(handlers, RateLimit(m.limiter, m.defaultLimit, m.trustProxy))
	}
	if cfg.CSRFProtection {
		handlers = append(handlers, CSRFProtect(m.csrf))
	}
	if cfg.InputSanitization {
		handlers = append(handlers, SanitizeInput())
	}
	if cfg.FileUploadSecurity {
		handlers = append(handlers, ValidateUploads())
	}
	return handlers
}

// recoverStage converts any panic further down the pipeline into a
// logged, detail-free 500.
func (m *Middleware) recoverStage() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				m.log.Error("security middleware panic",
					logger.String("path", c.FullPath()),
					logger.String("panic", toString(r)))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
		}()
		c.Next()
	}
}

func toString(v any) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return "unknown panic"
}
