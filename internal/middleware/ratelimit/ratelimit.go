// Package ratelimit throttles clients to a fixed number of requests per
// one-minute window.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

const window = time.Minute

// Config tunes a Limiter. Zero fields take the DefaultConfig value.
type Config struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
	// IdleAfter is how long a client may stay silent before its window is
	// forgotten.
	IdleAfter time.Duration
}

func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 120,
		CleanupInterval:   5 * time.Minute,
		IdleAfter:         10 * time.Minute,
	}
}

// Decision is the outcome of one request.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Duration
}

// RetryAfterSeconds rounds Reset up to whole seconds.
func (d Decision) RetryAfterSeconds() int {
	return int((d.Reset + time.Second - 1) / time.Second)
}

type counter struct {
	start time.Time
	seen  time.Time
	count int
}

// Limiter tracks one window per client key.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu       sync.Mutex
	counters map[string]counter

	denied atomic.Int64
	stop   chan struct{}
	once   sync.Once
}

// NewLimiter creates a limiter and starts its idle-client sweeper.
func NewLimiter(cfg Config) *Limiter {
	def := DefaultConfig()
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = def.RequestsPerMinute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	if cfg.IdleAfter <= 0 {
		cfg.IdleAfter = def.IdleAfter
	}
	l := &Limiter{
		cfg:      cfg,
		now:      time.Now,
		counters: make(map[string]counter),
		stop:     make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

// Take counts one request for client and reports whether it may proceed.
func (l *Limiter) Take(client string) Decision {
	now := l.now()

	l.mu.Lock()
	c, ok := l.counters[client]
	if !ok || now.Sub(c.start) >= window {
		c = counter{start: now}
	}
	c.count++
	c.seen = now
	l.counters[client] = c
	l.mu.Unlock()

	d := Decision{
		Allowed:   c.count <= l.cfg.RequestsPerMinute,
		Limit:     l.cfg.RequestsPerMinute,
		Remaining: max(l.cfg.RequestsPerMinute-c.count, 0),
		Reset:     window - now.Sub(c.start),
	}
	if !d.Allowed {
		l.denied.Add(1)
	}
	return d
}

// Allow is Take reduced to its verdict.
func (l *Limiter) Allow(client string) bool { return l.Take(client).Allowed }

func (l *Limiter) sweepLoop() {
	t := time.NewTicker(l.cfg.CleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep forgets clients idle longer than IdleAfter and returns how many.
func (l *Limiter) sweep() int {
	cutoff := l.now().Add(-l.cfg.IdleAfter)

	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, c := range l.counters {
		if c.seen.Before(cutoff) {
			delete(l.counters, k)
			n++
		}
	}
	return n
}

func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counters)
}

// Stop ends the sweeper. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

type Metrics struct {
	TotalHits   int64 `json:"total_hits"`
	ClientCount int64 `json:"client_count"`
}

func (l *Limiter) GetMetrics() Metrics {
	return Metrics{TotalHits: l.denied.Load(), ClientCount: int64(l.ActiveClients())}
}

// Middleware limits requests keyed by clientKey. Every response carries the
// X-RateLimit headers; a denied one also gets Retry-After and is answered by
// onLimit, or a plain 429 when onLimit is nil.
func (l *Limiter) Middleware(clientKey func(*http.Request) string, onLimit http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := l.Take(clientKey(r))
			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if d.Allowed {
				next.ServeHTTP(w, r)
				return
			}
			h.Set("Retry-After", strconv.Itoa(d.RetryAfterSeconds()))
			if onLimit == nil {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			onLimit(w, r)
		})
	}
}
