// ratelimit.go implements token-bucket rate limiting for the Manifold API.
//
// Manifold allows 500 requests per minute per IP. Two buckets split that
// budget so a burst of market reads can never starve a bet:
//   - Read:  GET endpoints (markets, groups, profile)
//   - Write: POST /bet and POST /comment
//
// Buckets refill continuously. A caller blocks in Wait until a token is
// available; nothing is ever retried.
package manifold

import (
	"context"
	"sync"
	"time"
)

// TokenBucket implements a token-bucket rate limiter with continuous refill.
// Callers block in Wait() until a token is available or the context is cancelled.
type TokenBucket struct {
	mu       sync.Mutex
	tokens   float64   // current available tokens (fractional allowed)
	capacity float64   // maximum burst size
	rate     float64   // tokens refilled per second
	lastTime time.Time // last time tokens were calculated
}

// NewTokenBucket creates a rate limiter with the given capacity and refill rate.
func NewTokenBucket(capacity, ratePerSecond float64) *TokenBucket {
	return &TokenBucket{
		tokens:   capacity,
		capacity: capacity,
		rate:     ratePerSecond,
		lastTime: time.Now(),
	}
}

// Wait blocks until a token is available or ctx is cancelled.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		tb.mu.Lock()
		now := time.Now()
		tb.tokens += now.Sub(tb.lastTime).Seconds() * tb.rate
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastTime = now

		if tb.tokens >= 1 {
			tb.tokens--
			tb.mu.Unlock()
			return nil
		}

		wait := time.Duration((1 - tb.tokens) / tb.rate * float64(time.Second))
		tb.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// RateLimiter groups token buckets by endpoint category.
type RateLimiter struct {
	Read  *TokenBucket
	Write *TokenBucket
}

// NewRateLimiter splits the 500/min allowance: 400/min for reads, 100/min for writes.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		Read:  NewTokenBucket(40, 400.0/60),
		Write: NewTokenBucket(10, 100.0/60),
	}
}
