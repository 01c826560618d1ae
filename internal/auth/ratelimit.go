/*
File: internal/auth/ratelimit.go
Description:
    Per-IP sliding rate limits on login/register (spec.md §4.4), built on
    golang.org/x/time/rate the way the wider pack reaches for a token
    bucket instead of hand-rolled counters.
*/
package auth

import (
	"sync"

	"golang.org/x/time/rate"
)

// IPLimiter hands out one token-bucket limiter per client IP, lazily
// created on first use and never evicted (the address space of
// concurrent distinct IPs hitting one server is bounded in practice;
// spec.md does not call for LRU eviction here).
type IPLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	perMin   int
	burst    int
}

// NewIPLimiter builds a limiter allowing perMin events per minute per
// IP, with a burst of the same size.
func NewIPLimiter(perMin int) *IPLimiter {
	if perMin <= 0 {
		perMin = 1
	}
	return &IPLimiter{
		limiters: make(map[string]*rate.Limiter),
		perMin:   perMin,
		burst:    perMin,
	}
}

func (l *IPLimiter) limiterFor(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(float64(l.perMin)/60.0), l.burst)
		l.limiters[ip] = lim
	}
	return lim
}

// Allow reports whether ip may perform one more attempt right now.
func (l *IPLimiter) Allow(ip string) bool {
	return l.limiterFor(ip).Allow()
}
