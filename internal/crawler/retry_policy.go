package crawler

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/restaurant-knowledge/internal/metrics"
)

// RetryConfig controls the exponential back-off schedule.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Factor     float64
}

// DefaultRetryConfig returns the schedule used when nothing is configured.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   10 * time.Second,
		Factor:     2,
	}
}

// ExponentialRetryPolicy retries failed operations with jittered exponential
// back-off. An operation runs at most MaxRetries+1 times.
type ExponentialRetryPolicy struct {
	cfg    RetryConfig
	logger *zap.Logger
	pauser Pauser
	jitter func(limit time.Duration) time.Duration

	// OnRetry, when set, is called before every retry with the attempt about
	// to start, the delay waited and the error that caused it.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// NewExponentialRetryPolicy builds a policy from cfg, filling unset fields
// from DefaultRetryConfig.
func NewExponentialRetryPolicy(cfg RetryConfig, logger *zap.Logger) *ExponentialRetryPolicy {
	def := DefaultRetryConfig()
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = def.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if cfg.Factor < 1 {
		cfg.Factor = def.Factor
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExponentialRetryPolicy{
		cfg:    cfg,
		logger: logger,
		pauser: timerPauser{},
		jitter: randomJitter,
	}
}

// MaxAttempts is the total number of times an operation may run.
func (p *ExponentialRetryPolicy) MaxAttempts() int {
	return p.cfg.MaxRetries + 1
}

// BaseDelay returns the un-jittered wait before attempt (attempt >= 2):
// min(maxDelay, baseDelay * factor^(attempt-1)).
func (p *ExponentialRetryPolicy) BaseDelay(attempt int) time.Duration {
	if attempt < 2 {
		return 0
	}
	delay := float64(p.cfg.BaseDelay) * math.Pow(p.cfg.Factor, float64(attempt-1))
	if delay > float64(p.cfg.MaxDelay) {
		delay = float64(p.cfg.MaxDelay)
	}
	return time.Duration(delay)
}

// Delay returns BaseDelay(attempt) jittered by ±25%.
func (p *ExponentialRetryPolicy) Delay(attempt int) time.Duration {
	base := p.BaseDelay(attempt)
	if base <= 0 {
		return 0
	}
	quarter := base / 4
	return base - quarter + p.jitter(2*quarter)
}

// IsRetryable decides whether err may succeed on a later attempt. Anything
// not known to be permanent is retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMalformedInput) || errors.Is(err, context.Canceled) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Retryable()
	}
	return true
}

// Execute runs op until it succeeds, fails permanently or the retry budget is
// spent. Permanent failures are returned unchanged; exhaustion returns a
// *RetryError carrying the attempt count and the last error.
func (p *ExponentialRetryPolicy) Execute(ctx context.Context, label string, op func(context.Context) error) error {
	attempts := p.MaxAttempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := p.waitFor(attempt, lastErr)
			p.logger.Warn("retrying operation",
				zap.String("label", label),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", attempts),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			metrics.ObserveRetry(label)
			if p.OnRetry != nil {
				p.OnRetry(attempt, delay, lastErr)
			}
			if err := p.pauser.Pause(ctx, delay); err != nil {
				return fmt.Errorf("%s: %w", label, err)
			}
		}
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", label, ctxErr)
		}
		if !IsRetryable(err) {
			return err
		}
	}
	return &RetryError{Label: label, Attempts: attempts, Err: lastErr}
}

// waitFor honors a server supplied Retry-After when it is longer than the
// scheduled delay, still capped at MaxDelay.
func (p *ExponentialRetryPolicy) waitFor(attempt int, lastErr error) time.Duration {
	delay := p.Delay(attempt)
	var httpErr *HTTPError
	if errors.As(lastErr, &httpErr) && httpErr.RetryAfter > delay {
		delay = min(httpErr.RetryAfter, p.cfg.MaxDelay)
	}
	return delay
}

// Do is Execute for operations that produce a value.
func Do[T any](ctx context.Context, p *ExponentialRetryPolicy, label string, op func(context.Context) (T, error)) (T, error) {
	var out T
	err := p.Execute(ctx, label, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}
