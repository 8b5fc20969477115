// Package ratelimit provides per-client request limiting with minute,
// hour, and day windows.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Clients idle longer than this are forgotten, along with any remaining
// window budget.
const idleEviction = 24 * time.Hour

// Config sets the allowed requests per window. Zero or negative values
// disable that window; a fully zero Config disables limiting.
type Config struct {
	PerMinute int
	PerHour   int
	PerDay    int
}

// Enabled reports whether any window is configured.
func (c Config) Enabled() bool {
	return c.PerMinute > 0 || c.PerHour > 0 || c.PerDay > 0
}

type client struct {
	windows  []*rate.Limiter
	lastSeen time.Time
}

func newClient(cfg Config) *client {
	c := &client{}
	for _, w := range []struct {
		span  time.Duration
		limit int
	}{
		{time.Minute, cfg.PerMinute},
		{time.Hour, cfg.PerHour},
		{24 * time.Hour, cfg.PerDay},
	} {
		if w.limit <= 0 {
			continue
		}
		c.windows = append(c.windows, rate.NewLimiter(rate.Every(w.span/time.Duration(w.limit)), w.limit))
	}
	return c
}

// Limiter tracks request budgets per client key.
type Limiter struct {
	mu      sync.Mutex
	cfg     Config
	clients map[string]*client
}

// New creates a limiter for the given window thresholds.
func New(cfg Config) *Limiter {
	return &Limiter{cfg: cfg, clients: make(map[string]*client)}
}

// Allow reports whether the client identified by key may proceed, and
// consumes budget when it may.
func (l *Limiter) Allow(key string) bool {
	if l == nil || !l.cfg.Enabled() {
		return true
	}

	now := time.Now()
	l.mu.Lock()
	c, ok := l.clients[key]
	if !ok {
		l.evictIdle(now)
		c = newClient(l.cfg)
		l.clients[key] = c
	}
	c.lastSeen = now
	l.mu.Unlock()

	for _, w := range c.windows {
		if !w.Allow() {
			return false
		}
	}
	return true
}

// evictIdle drops clients not seen within the eviction horizon. Caller
// holds l.mu.
func (l *Limiter) evictIdle(now time.Time) {
	for key, c := range l.clients {
		if now.Sub(c.lastSeen) > idleEviction {
			delete(l.clients, key)
		}
	}
}

// Middleware rejects over-budget requests with 429, keyed by client IP.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(ClientKey(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientKey identifies the caller: the first X-Forwarded-For hop when
// present, otherwise the remote address host.
func ClientKey(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
