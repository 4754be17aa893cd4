// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds rate limiting configuration
type Config struct {
	RPS           float64       // Sustained calls per second per key
	Burst         int           // Calls allowed at once before throttling
	IdleTTL       time.Duration // Limiters unused this long are dropped
	CleanupPeriod time.Duration // How often to look for idle limiters
}

// DefaultTranslationConfig keeps well under typical hosted-model quotas.
func DefaultTranslationConfig() *Config {
	return &Config{
		RPS:           5,
		Burst:         10,
		IdleTTL:       15 * time.Minute,
		CleanupPeriod: 5 * time.Minute,
	}
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Pool hands out one token bucket per key.
type Pool struct {
	config  *Config
	mu      sync.Mutex
	entries map[string]*entry
	stopCh  chan struct{}
	once    sync.Once
}

func NewPool(config *Config) *Pool {
	if config == nil {
		config = DefaultTranslationConfig()
	}
	p := &Pool{
		config:  config,
		entries: make(map[string]*entry),
		stopCh:  make(chan struct{}),
	}
	if config.CleanupPeriod > 0 && config.IdleTTL > 0 {
		go p.cleanupLoop()
	}
	return p
}

func (p *Pool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.entries[key]; ok {
		e.lastSeen = time.Now()
		return e.limiter
	}
	rps := p.config.RPS
	if rps <= 0 {
		rps = 5
	}
	burst := p.config.Burst
	if burst <= 0 {
		burst = 10
	}
	l := rate.NewLimiter(rate.Limit(rps), burst)
	p.entries[key] = &entry{limiter: l, lastSeen: time.Now()}
	return l
}

// Wait blocks until a call for key may proceed or ctx ends.
func (p *Pool) Wait(ctx context.Context, key string) error {
	return p.get(key).Wait(ctx)
}

func (p *Pool) cleanupLoop() {
	ticker := time.NewTicker(p.config.CleanupPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.cleanup(time.Now())
		case <-p.stopCh:
			return
		}
	}
}

func (p *Pool) cleanup(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, e := range p.entries {
		if now.Sub(e.lastSeen) > p.config.IdleTTL {
			delete(p.entries, key)
		}
	}
}

func (p *Pool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Close stops the cleanup goroutine.
func (p *Pool) Close() {
	p.once.Do(func() { close(p.stopCh) })
}
