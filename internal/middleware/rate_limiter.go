package middleware

import (
	"net/http"
	"sync"
	"time"

	"grifopos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// rateEntry tracks request counts per IP within a fixed window.
type rateEntry struct {
	count     int
	windowEnd time.Time
	mu        sync.Mutex
}

// rateLimiter keeps one counter per client IP. Expired entries are purged
// inline, at most once per purgeInterval, and the limiter starts no goroutine.
type rateLimiter struct {
	limit  int
	window time.Duration

	mu          sync.Mutex
	entries     map[string]*rateEntry
	ultimaPurga time.Time
}

func newRateLimiter(limit int, window time.Duration, now time.Time) *rateLimiter {
	return &rateLimiter{limit: limit, window: window, entries: map[string]*rateEntry{}, ultimaPurga: now}
}

func (l *rateLimiter) permitir(ip string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	if now.Sub(l.ultimaPurga) >= purgeInterval {
		if n := l.purgarLocked(now); n > 0 {
			log.Debug().Int("entries_purged", n).Msg("rate limiter purged")
		}
		l.ultimaPurga = now
	}
	entry, ok := l.entries[ip]
	if !ok {
		entry = &rateEntry{}
		l.entries[ip] = entry
	}
	l.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if now.After(entry.windowEnd) {
		entry.count = 0
		entry.windowEnd = now.Add(l.window)
	}
	entry.count++
	return entry.count <= l.limit, entry.windowEnd
}

// purgarLocked drops entries whose window already ended. l.mu must be held.
func (l *rateLimiter) purgarLocked(now time.Time) int {
	purged := 0
	for ip, entry := range l.entries {
		entry.mu.Lock()
		if now.After(entry.windowEnd) {
			delete(l.entries, ip)
			purged++
		}
		entry.mu.Unlock()
	}
	return purged
}

func (l *rateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

const purgeInterval = 5 * time.Minute

// RateLimiter allows limit requests per window per client IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	l := newRateLimiter(limit, window, time.Now())

	return func(c *gin.Context) {
		ok, windowEnd := l.permitir(c.ClientIP(), time.Now())
		if !ok {
			c.Header("Retry-After", windowEnd.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento.").Con("demasiadas_solicitudes"))
			return
		}
		c.Next()
	}
}
