// Package ratelimit provides per-client request throttling for the API.
package ratelimit

import (
	"sync"
	"time"
)

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

// realClock implements Clock using the system time.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Config holds rate limit configuration.
type Config struct {
	RequestsPerSecond float64 // Steady-state refill rate (default: 10)
	Burst             int     // Bucket capacity (default: 20)

	// Clock for testing (nil uses real time)
	Clock Clock
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() *Config {
	return &Config{
		RequestsPerSecond: 10,
		Burst:             20,
	}
}

// bucket tracks the token balance for one client key.
type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// Limiter implements token-bucket rate limiting keyed by client identifier.
type Limiter struct {
	config *Config
	clock  Clock

	mu      sync.Mutex
	buckets map[string]*bucket
}

// New creates a new rate limiter with the given config.
func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	return &Limiter{
		config:  cfg,
		clock:   clock,
		buckets: make(map[string]*bucket),
	}
}

// Allow consumes one token for key. When the bucket is empty it returns the
// duration until the next token and false.
func (l *Limiter) Allow(key string) (time.Duration, bool) {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.buckets[key]
	if b == nil {
		b = &bucket{tokens: float64(l.config.Burst), lastSeen: now}
		l.buckets[key] = b
	} else {
		elapsed := now.Sub(b.lastSeen).Seconds()
		b.tokens += elapsed * l.config.RequestsPerSecond
		if b.tokens > float64(l.config.Burst) {
			b.tokens = float64(l.config.Burst)
		}
		b.lastSeen = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return 0, true
	}

	deficit := 1 - b.tokens
	wait := time.Duration(deficit / l.config.RequestsPerSecond * float64(time.Second))
	return wait, false
}

// Prune drops buckets idle longer than maxIdle. Intended to run from a
// background job.
func (l *Limiter) Prune(maxIdle time.Duration) {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > maxIdle {
			delete(l.buckets, key)
		}
	}
}
