package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"campusnet/backend/internal/metrics"
	apperrors "campusnet/backend/pkg/errors"
)

const callerKey = "callerID"

// maxTrackedClients bounds the limiter map; it is reset when exceeded
const maxTrackedClients = 10000

// requestLogger logs one line per request
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		}
		if caller := callerID(c); caller != "" {
			fields = append(fields, zap.String("caller", caller))
		}
		log.Info("HTTP Request", fields...)
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// instrument records request counts and latency per matched route
func instrument(m *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		m.HTTPInFlight.Inc()
		start := time.Now()

		c.Next()

		m.HTTPInFlight.Dec()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// rateLimiter keeps one token bucket per client address
type rateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	log      *zap.Logger
}

func newRateLimiter(rps float64, burst int, log *zap.Logger) *rateLimiter {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if burst < 1 {
		burst = 1
	}
	return &rateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     limit,
		burst:    burst,
		log:      log,
	}
}

func (rl *rateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if len(rl.limiters) >= maxTrackedClients {
		rl.limiters = make(map[string]*rate.Limiter)
	}
	l, ok := rl.limiters[key]
	if !ok {
		l = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = l
	}
	return l
}

func (rl *rateLimiter) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !rl.limiter(key).Allow() {
			rl.log.Warn("Rate limit exceeded",
				zap.String("client", key),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorBody{
				Message: "too many requests",
				Error:   "rate_limited",
				Reason:  "RateLimited",
			})
			return
		}
		c.Next()
	}
}

// authenticate resolves the bearer token to a caller ID. With required=false a
// missing token passes through anonymously, but a malformed one is still rejected.
func authenticate(v TokenVerifier, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if required {
				abortWithError(c, apperrors.NewMissingCredential())
				return
			}
			c.Next()
			return
		}

		id, err := v.Verify(header)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(callerKey, id)
		c.Next()
	}
}

// callerID returns the authenticated caller, or "" for anonymous requests
func callerID(c *gin.Context) string {
	return c.GetString(callerKey)
}
