package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

var errPending = errors.New("sign request pending")

// PollPolicy bounds how long a sign request is polled.
type PollPolicy struct {
	Interval    time.Duration
	MaxAttempts int
}

// DefaultPollPolicy polls every 2s for at most 60 attempts.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{Interval: 2 * time.Second, MaxAttempts: 60}
}

// Validate rejects policies that would never poll.
func (p PollPolicy) Validate() error {
	if p.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", p.Interval)
	}
	if p.MaxAttempts <= 0 {
		return fmt.Errorf("poll attempts must be positive, got %d", p.MaxAttempts)
	}
	return nil
}

// Timeout is the overall polling budget.
func (p PollPolicy) Timeout() time.Duration {
	return p.Interval * time.Duration(p.MaxAttempts)
}

// Poller polls a signing backend until a request reaches a terminal status.
type Poller struct {
	policy  PollPolicy
	metrics *Metrics
	logger  zerolog.Logger
}

// NewPoller creates a poller; policy must be valid.
func NewPoller(policy PollPolicy, metrics *Metrics, logger zerolog.Logger) *Poller {
	return &Poller{policy: policy, metrics: metrics, logger: logger}
}

// Policy returns the poll policy.
func (p *Poller) Policy() PollPolicy { return p.policy }

// Poll queries the backend immediately and then once per interval.
// Transient failures are retried unless they happen on the final attempt,
// which fails with core.ErrPollFailed. Running out of attempts fails with
// core.ErrExpired.
func (p *Poller) Poll(ctx context.Context, backend ports.SigningBackend, requestID string, kind core.RequestKind) (core.PollResult, error) {
	attempt := 0
	backoff := retry.WithMaxRetries(uint64(p.policy.MaxAttempts-1), retry.NewConstant(p.policy.Interval))

	result, err := retry.DoValue(ctx, backoff, func(ctx context.Context) (core.PollResult, error) {
		attempt++
		p.metrics.pollAttempt(kind)

		res, err := backend.RequestStatus(ctx, requestID)
		if err != nil {
			if ctx.Err() != nil {
				return core.PollResult{}, ctx.Err()
			}
			if attempt >= p.policy.MaxAttempts {
				return core.PollResult{}, fmt.Errorf("%w: %w", core.ErrPollFailed, err)
			}

			p.logger.Debug().
				Err(err).
				Str("request_id", requestID).
				Int("attempt", attempt).
				Msg("poll failed, retrying")
			return core.PollResult{}, retry.RetryableError(err)
		}

		if res.Terminal() {
			return res, nil
		}
		return core.PollResult{}, retry.RetryableError(errPending)
	})

	switch {
	case err == nil:
		return result, nil
	case errors.Is(err, errPending):
		return core.PollResult{}, fmt.Errorf("%w after %s", core.ErrExpired, p.policy.Timeout())
	case errors.Is(err, core.ErrPollFailed):
		return core.PollResult{}, err
	}

	// context cancellation
	return core.PollResult{}, fmt.Errorf("%w: %w", core.ErrPollFailed, err)
}
