package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"flight-forecast-backend/internal/apperror"
)

// limiterIdle idle time before a client's bucket is dropped; a bucket is full
// again after a minute
const limiterIdle = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore per-client-IP token buckets; idle entries are swept on access
type limiterStore struct {
	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	perMin    int
	lastSweep time.Time
	now       func() time.Time
}

func newLimiterStore(perMin int) *limiterStore {
	return &limiterStore{limiters: make(map[string]*clientLimiter), perMin: perMin, now: time.Now}
}

func (s *limiterStore) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if now.Sub(s.lastSweep) >= limiterIdle {
		for k, cl := range s.limiters {
			if now.Sub(cl.lastSeen) >= limiterIdle {
				delete(s.limiters, k)
			}
		}
		s.lastSweep = now
	}
	cl, ok := s.limiters[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMin)), s.perMin)}
		s.limiters[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// RateLimit perMin requests per minute per client IP; perMin <= 0 disables it.
func RateLimit(perMin int, logger *zap.Logger) gin.HandlerFunc {
	if perMin <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	store := newLimiterStore(perMin)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !store.get(ip).Allow() {
			logger.Warn("rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(apperror.ErrRateLimited.StatusCode, apperror.ErrRateLimited)
			return
		}
		c.Next()
	}
}

// Recovery turns panics into a 500 JSON response.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusInternalServerError, apperror.ErrInternal)
			}
		}()
		c.Next()
	}
}

// RequestLogger one line per request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}
