package services

import (
	"context"
	"fmt"
	"time"

	"alfredoptarigan/career-roadmap/internal/config"
	"alfredoptarigan/career-roadmap/internal/logger"
	"alfredoptarigan/career-roadmap/internal/metrics"
)

// Sleeper suspends for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Caller wraps an Oracle with the quota policy: a fixed delay before every
// attempt and exponential backoff on throttled attempts. Other failures are
// returned without retrying.
type Caller struct {
	oracle  Oracle
	limits  config.RateLimitConfig
	sleep   Sleeper
	log     *logger.Logger
	metrics *metrics.Metrics
}

type CallerOption func(*Caller)

func WithSleeper(s Sleeper) CallerOption {
	return func(c *Caller) { c.sleep = s }
}

func WithCallerMetrics(m *metrics.Metrics) CallerOption {
	return func(c *Caller) { c.metrics = m }
}

func NewCaller(oracle Oracle, limits config.RateLimitConfig, log *logger.Logger, opts ...CallerOption) *Caller {
	c := &Caller{
		oracle: oracle,
		limits: limits,
		sleep:  SleepContext,
		log:    log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call returns the oracle's raw text. After MaxRetries throttled retries the
// last error is returned.
func (c *Caller) Call(ctx context.Context, req PromptRequest) (string, error) {
	delay := c.limits.RetryInitialDelay
	maxRetries := c.limits.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			c.log.Info("retrying oracle call", "attempt", attempt, "maxRetries", maxRetries, "model", req.Model)
		}
		if err := c.Pause(ctx); err != nil {
			return "", err
		}

		text, err := c.oracle.Generate(ctx, req)
		if err == nil {
			c.metrics.ObserveCall(req.Model, "success")
			return text, nil
		}

		if !IsThrottled(err) {
			c.metrics.ObserveCall(req.Model, "failed")
			c.log.Error("oracle call failed", "model", req.Model, "attempt", attempt, "error", err)
			return "", err
		}

		c.metrics.ObserveCall(req.Model, "throttled")
		if attempt >= maxRetries {
			c.log.Error("max retries reached", "model", req.Model, "retries", maxRetries, "error", err)
			return "", fmt.Errorf("failed after %d retries: %w", maxRetries, err)
		}

		c.log.Warn("rate limit hit", "model", req.Model, "backoff", delay, "error", err)
		c.metrics.ObserveRetry(req.Model)
		if err := c.sleep(ctx, delay); err != nil {
			return "", err
		}
		delay *= 2
	}
}

// Pause waits the minimum interval between oracle requests.
func (c *Caller) Pause(ctx context.Context) error {
	return c.sleep(ctx, c.limits.MinRequestDelay)
}
