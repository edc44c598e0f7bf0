package util

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a minimum delay between successive requests to the
// same company board. Each adapter instance owns its own Pacer, so two
// providers never share a budget and two companies never block each
// other.
type Pacer struct {
	mu    sync.Mutex
	m     map[string]*rate.Limiter
	delay time.Duration
}

func NewPacer(delay time.Duration) *Pacer {
	return &Pacer{m: make(map[string]*rate.Limiter), delay: delay}
}

func (p *Pacer) limiterFor(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if lim, ok := p.m[key]; ok {
		return lim
	}
	lim := rate.NewLimiter(rate.Every(p.delay), 1)
	p.m[key] = lim
	return lim
}

// Wait blocks until the next request to key is allowed. The first
// request per key passes immediately.
func (p *Pacer) Wait(ctx context.Context, key string) error {
	if p == nil || p.delay <= 0 {
		return nil
	}
	return p.limiterFor(key).Wait(ctx)
}
