package providers

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket sized in requests per minute.
// It only delays calls; it never retries them.
type RateLimiter struct {
	mu sync.Mutex

	perMinute int
	tokens    float64
	last      time.Time
	pauseTill time.Time // set from a 429 Retry-After

	waited   time.Duration
	consumed int64
}

// RateLimiterStatus reports current limiter state.
type RateLimiterStatus struct {
	TokensAvailable int           `json:"tokens_available"`
	TokensLimit     int           `json:"tokens_limit"`
	TotalConsumed   int64         `json:"total_consumed"`
	TotalWaited     time.Duration `json:"total_waited"`
	PausedUntil     time.Time     `json:"paused_until,omitempty"`
}

// NewRateLimiter creates a limiter allowing requestsPerMinute calls per minute.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	return &RateLimiter{
		perMinute: requestsPerMinute,
		tokens:    float64(requestsPerMinute),
		last:      time.Now(),
	}
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := time.Now()
		r.refill(now)

		var wait time.Duration
		switch {
		case now.Before(r.pauseTill):
			wait = r.pauseTill.Sub(now)
		case r.tokens >= 1.0:
			r.tokens--
			r.consumed++
			r.mu.Unlock()
			return nil
		default:
			wait = r.untilNextToken()
		}
		r.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			r.mu.Lock()
			r.waited += wait
			r.mu.Unlock()
		}
	}
}

// Record429 drains the bucket and pauses until retryAfter has elapsed.
func (r *RateLimiter) Record429(retryAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = 0
	if retryAfter > 0 {
		r.pauseTill = time.Now().Add(retryAfter)
	}
}

// Status returns current limiter state.
func (r *RateLimiter) Status() RateLimiterStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill(time.Now())
	return RateLimiterStatus{
		TokensAvailable: int(r.tokens),
		TokensLimit:     r.perMinute,
		TotalConsumed:   r.consumed,
		TotalWaited:     r.waited,
		PausedUntil:     r.pauseTill,
	}
}

// refill must be called with the lock held.
func (r *RateLimiter) refill(now time.Time) {
	elapsed := now.Sub(r.last).Seconds()
	r.last = now
	r.tokens += elapsed * r.ratePerSecond()
	if r.tokens > float64(r.perMinute) {
		r.tokens = float64(r.perMinute)
	}
}

func (r *RateLimiter) ratePerSecond() float64 {
	return float64(r.perMinute) / 60.0
}

func (r *RateLimiter) untilNextToken() time.Duration {
	need := 1.0 - r.tokens
	d := time.Duration(need / r.ratePerSecond() * float64(time.Second))
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return d
}
