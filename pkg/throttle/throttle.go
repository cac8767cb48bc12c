// Package throttle paces outbound requests to external data sources.
package throttle

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/nse-screener/pkg/redis"
)

// Limiter blocks until the next request may be issued
type Limiter interface {
	Wait(ctx context.Context) error
}

// Pause enforces a minimum gap between consecutive requests.
// The first request goes through immediately.
type Pause struct {
	limiter *rate.Limiter
}

// NewPause returns a limiter allowing one request per interval.
// A non-positive interval disables pacing.
func NewPause(interval time.Duration) *Pause {
	if interval <= 0 {
		return &Pause{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pause{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait implements Limiter
func (p *Pause) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// NoLimit never blocks
type NoLimit struct{}

// Wait implements Limiter
func (NoLimit) Wait(ctx context.Context) error {
	return ctx.Err()
}

// Shared paces requests across processes through a Redis sliding window
type Shared struct {
	limiter *redis.RateLimiter
	cfg     redis.RateLimitConfig
}

// NewShared wraps a Redis rate limiter for one data source
func NewShared(limiter *redis.RateLimiter, cfg redis.RateLimitConfig) *Shared {
	return &Shared{limiter: limiter, cfg: cfg}
}

// Wait implements Limiter
func (s *Shared) Wait(ctx context.Context) error {
	return s.limiter.Wait(ctx, s.cfg)
}

// Chain waits on every limiter in order
type Chain []Limiter

// Wait implements Limiter
func (c Chain) Wait(ctx context.Context) error {
	for _, l := range c {
		if l == nil {
			continue
		}
		if err := l.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}
