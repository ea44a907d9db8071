package echoapi

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/trezcool/coachdesk/core"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = echo.HeaderXRequestID
)

// requestID tags every request with a ULID, unless the client sent one.
func requestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id := ctx.Request().Header.Get(requestIDHeader)
			if id == "" || len(id) > 64 {
				id = core.NewRequestID()
			}
			ctx.Set(requestIDKey, id)
			ctx.Response().Header().Set(requestIDHeader, id)
			return next(ctx)
		}
	}
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// ipRateLimiter keeps one token bucket per client IP; idle buckets are dropped.
type ipRateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	ttl     time.Duration
}

func newIPRateLimiter(burst int, every time.Duration) *ipRateLimiter {
	if burst <= 0 {
		burst = 5
	}
	if every <= 0 {
		every = 12 * time.Second
	}
	return &ipRateLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Every(every),
		burst:   burst,
		ttl:     time.Duration(burst)*every + time.Minute,
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for k, b := range l.buckets {
		if now.Sub(b.seen) > l.ttl {
			delete(l.buckets, k)
		}
	}
	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = b
	}
	b.seen = now
	return b.lim.Allow()
}

func (l *ipRateLimiter) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ip := ctx.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			if !l.allow(ip) {
				return errTooManyRequests
			}
			return next(ctx)
		}
	}
}
