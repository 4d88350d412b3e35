// Package ratelimit provides a per-client token bucket limiter for HTTP
// handlers. Clients are keyed by IP, stale buckets are evicted by a
// janitor goroutine.
package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultRPS        = 50
	defaultBurst      = 100
	defaultRetryAfter = 1 * time.Second
	defaultMaxIdle    = 3 * time.Minute

	janitorInterval = 1 * time.Minute
)

// Options tune the limiter. Zero values fall back to the defaults.
type Options struct {
	RPS                float64
	Burst              int
	RetryAfter         time.Duration
	MaxIdle            time.Duration
	TrustXForwardedFor bool
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter hands out one token bucket per client key.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*client
	opts    Options
	stop    chan struct{}
	once    sync.Once
}

// New creates a Limiter and starts its janitor.
func New(opts Options) *Limiter {
	if opts.RPS <= 0 {
		opts.RPS = defaultRPS
	}
	if opts.Burst <= 0 {
		opts.Burst = defaultBurst
	}
	if opts.RetryAfter <= 0 {
		opts.RetryAfter = defaultRetryAfter
	}
	if opts.MaxIdle <= 0 {
		opts.MaxIdle = defaultMaxIdle
	}

	l := &Limiter{
		clients: make(map[string]*client),
		opts:    opts,
		stop:    make(chan struct{}),
	}

	go l.janitor()

	return l
}

// Stop terminates the janitor goroutine.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

// Middleware rejects requests exceeding the client's budget with 429 and
// a Retry-After header.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(l.clientKey(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(l.opts.RetryAfter.Seconds())))
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (l *Limiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rate.Limit(l.opts.RPS), l.opts.Burst)}
		l.clients[key] = c
	}

	c.lastSeen = time.Now()

	return c.limiter.Allow()
}

// clientKey derives the bucket key from the request. X-Forwarded-For is
// only honored when the limiter sits behind a trusted proxy.
func (l *Limiter) clientKey(r *http.Request) string {
	if l.opts.TrustXForwardedFor {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			return strings.TrimSpace(first)
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

func (l *Limiter) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.evictStale()
		}
	}
}

func (l *Limiter) evictStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, c := range l.clients {
		if time.Since(c.lastSeen) > l.opts.MaxIdle {
			delete(l.clients, key)
		}
	}
}
