package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP. Buckets idle for longer
// than the configured TTL are evicted by the cleanup loop.
type IPRateLimiter struct {
	ips    map[string]*visitor
	mu     sync.RWMutex
	r      rate.Limit
	b      int
	idle   time.Duration
	logger *slog.Logger
}

func NewIPRateLimiter(r rate.Limit, b int, idle time.Duration, logger *slog.Logger) *IPRateLimiter {
	return &IPRateLimiter{
		ips:    make(map[string]*visitor),
		r:      r,
		b:      b,
		idle:   idle,
		logger: logger,
	}
}

func (i *IPRateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			if n := i.evictIdle(now); n > 0 {
				i.logger.Debug("Evicted idle rate limiters", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (i *IPRateLimiter) evictIdle(now time.Time) int {
	i.mu.Lock()
	defer i.mu.Unlock()

	evicted := 0
	for ip, v := range i.ips {
		if now.Sub(v.lastSeen) > i.idle {
			delete(i.ips, ip)
			evicted++
		}
	}
	return evicted
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	v, exists := i.ips[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(i.r, i.b)}
		i.ips[ip] = v
	}
	v.lastSeen = time.Now()

	return v.limiter
}

func (i *IPRateLimiter) Allow(ip string) bool {
	return i.GetLimiter(ip).Allow()
}
