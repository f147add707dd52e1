package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"adegapos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// rateEntry tracks request counts per IP within a fixed window.
type rateEntry struct {
	count     int
	windowEnd time.Time
}

type limitador struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*rateEntry
}

func novoLimitador(limit int, window time.Duration, now func() time.Time) *limitador {
	if now == nil {
		now = time.Now
	}
	return &limitador{limit: limit, window: window, now: now, entries: make(map[string]*rateEntry)}
}

// permitir counts one request for ip. When over the limit it returns false
// and the time the window resets.
func (l *limitador) permitir(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[ip]
	if !ok || now.After(entry.windowEnd) {
		entry = &rateEntry{windowEnd: now.Add(l.window)}
		l.entries[ip] = entry
	}
	entry.count++
	return entry.count <= l.limit, entry.windowEnd
}

// purgar drops expired windows so IPs that never return do not accumulate.
func (l *limitador) purgar() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	purged := 0
	for ip, entry := range l.entries {
		if now.After(entry.windowEnd) {
			delete(l.entries, ip)
			purged++
		}
	}
	return purged
}

const purgeInterval = 5 * time.Minute

// RateLimiter limits each client IP to limit requests per window. The purge
// loop stops when ctx is cancelled.
func RateLimiter(ctx context.Context, limit int, window time.Duration) gin.HandlerFunc {
	l := novoLimitador(limit, window, nil)

	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := l.purgar(); n > 0 {
					log.Debug().Int("entries_purged", n).Msg("rate limiter map purged")
				}
			}
		}
	}()

	return l.middleware()
}

func (l *limitador) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, reset := l.permitir(c.ClientIP())
		if !ok {
			secs := int(reset.Sub(l.now()).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("muitas requisições, tente novamente em instantes"))
			return
		}
		c.Next()
	}
}
