package middleware

import (
	"sync"
	"time"

	"klar/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

const (
	rateCleanupEvery = 5 * time.Minute
	rateIdleAfter    = 10 * time.Minute
)

type rateClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter gives each client IP a token bucket of `requests` per
// `window`, with the same number as burst. Idle buckets are dropped by a
// cleanup loop that runs until Close.
type RateLimiter struct {
	requests int
	window   time.Duration
	clients  map[string]*rateClient
	mu       sync.Mutex
	now      func() time.Time
	stop     chan struct{}
	once     sync.Once
}

// NewRateLimiter creates the limiter and starts its cleanup loop
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	l := &RateLimiter{
		requests: requests,
		window:   window,
		clients:  make(map[string]*rateClient),
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go l.cleanupLoop(rateCleanupEvery)
	return l
}

// Handler returns the Fiber middleware. Rejected requests get a 429.
func (l *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if !l.allow(ip) {
			utils.Log.Warn("Rate limit exceeded for %s", ip)
			return utils.NewAppError(fiber.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
		}
		return c.Next()
	}
}

// Clients returns the number of tracked IPs
func (l *RateLimiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Close stops the cleanup loop
func (l *RateLimiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

func (l *RateLimiter) allow(ip string) bool {
	l.mu.Lock()
	cl, ok := l.clients[ip]
	if !ok {
		cl = &rateClient{limiter: rate.NewLimiter(rate.Every(l.window/time.Duration(l.requests)), l.requests)}
		l.clients[ip] = cl
	}
	cl.lastSeen = l.now()
	l.mu.Unlock()

	return cl.limiter.Allow()
}

func (l *RateLimiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stop:
			return
		}
	}
}

// cleanup forgets the IPs idle for longer than rateIdleAfter
func (l *RateLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for ip, cl := range l.clients {
		if now.Sub(cl.lastSeen) > rateIdleAfter {
			delete(l.clients, ip)
		}
	}
}
