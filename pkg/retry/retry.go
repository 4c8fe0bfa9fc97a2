// Package retry paces collaborator API calls: an opt-in backoff loop
// and a token-bucket limiter shared by every client built from one config.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	clog "github.com/allencass/aistudio/pkg/log"
)

// Config holds retry configuration
type Config struct {
	MaxRetries  int           // Retries after the first attempt
	BaseDelay   time.Duration // Delay before the first retry
	MaxDelay    time.Duration // Cap on any single delay, Retry-After included
	Multiplier  float64       // Exponential backoff factor
	JitterRatio float64       // +/- fraction of randomness
}

// DefaultConfig is the backoff shape used once retries are enabled
func DefaultConfig() Config {
	return Config{
		MaxRetries:  3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
		Multiplier:  2.0,
		JitterRatio: 0.1,
	}
}

// NoRetry runs the function exactly once. This is what every client
// gets unless retry.max_retries is raised.
func NoRetry() Config {
	return DefaultConfig().WithMaxRetries(0)
}

// WithMaxRetries returns a copy of c with the retry count replaced.
// Negative values are treated as zero.
func (c Config) WithMaxRetries(n int) Config {
	c.MaxRetries = max(n, 0)
	return c
}

// RetryableError marks a transient failure. After, when set, is the
// server's own Retry-After hint.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err so Do retries it
func Retryable(err error) error {
	return RetryableAfter(err, 0)
}

// RetryableAfter wraps err with the delay the server asked for
func RetryableAfter(err error, after time.Duration) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, After: after}
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// ParseRetryAfter reads a Retry-After header in either delta-seconds or
// HTTP-date form. Unparseable or past values yield zero.
func ParseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(max(secs, 0)) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now)
	}
	return 0
}

// Do runs fn, retrying errors wrapped with Retryable up to
// cfg.MaxRetries times. The error returned is never the wrapper.
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var zero T

	for attempt := 0; ; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		var re *RetryableError
		if !errors.As(err, &re) {
			return zero, err
		}
		if attempt >= cfg.MaxRetries {
			return zero, re.Err
		}

		delay := cfg.delay(attempt, re.After)
		clog.Debug("retrying after error",
			"attempt", attempt+1,
			"max_retries", cfg.MaxRetries,
			"delay", delay,
			"error", re.Err,
		)

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return zero, ctx.Err()
		case <-t.C:
		}
	}
}

// delay is the backoff for attempt, raised to the server's hint when
// that is longer, then capped at MaxDelay.
func (c Config) delay(attempt int, hint time.Duration) time.Duration {
	d := float64(c.BaseDelay) * math.Pow(c.Multiplier, float64(attempt))
	if c.JitterRatio > 0 {
		d += d * c.JitterRatio * (rand.Float64()*2 - 1)
	}
	d = math.Max(d, float64(hint))
	if c.MaxDelay > 0 {
		d = math.Min(d, float64(c.MaxDelay))
	}
	return time.Duration(d)
}

// RateLimiter spaces out calls to a collaborator API
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows perSecond calls per second with a burst of the
// same size (at least one). The bucket starts full.
func NewRateLimiter(perSecond float64) *RateLimiter {
	burst := max(int(math.Ceil(perSecond)), 1)
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until a call is permitted or ctx is done
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// Burst returns the bucket size
func (r *RateLimiter) Burst() int {
	return r.limiter.Burst()
}

// Limit returns the refill rate in calls per second
func (r *RateLimiter) Limit() float64 {
	return float64(r.limiter.Limit())
}
