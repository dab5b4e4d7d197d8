// Package retry implements the rate-limit recovery policy for outbound
// Bot API calls. It is purely additive: errors are never translated,
// only retried or passed through.
package retry

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tinyland-inc/picorelay/pkg/logger"
	"github.com/tinyland-inc/picorelay/pkg/telegram"
)

const (
	// MaxWaitSeconds caps the server-requested wait.
	MaxWaitSeconds = 600

	// DefaultMaxRetries bounds generic sends; text, photo and forward
	// sends get the higher TextMaxRetries bound.
	DefaultMaxRetries = 10
	TextMaxRetries    = 20
)

var retryAfterRE = regexp.MustCompile(`(?i)retry after (\d+)`)

// Policy drives retries around a single send operation. The zero value
// is not usable; use NewPolicy.
type Policy struct {
	baseDelay time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

// PolicyOption configures a Policy.
type PolicyOption func(*Policy)

// WithBaseDelay sets the first exponential-backoff step used when the
// server gives no explicit wait.
func WithBaseDelay(d time.Duration) PolicyOption {
	return func(p *Policy) { p.baseDelay = d }
}

// WithSleep replaces the sleep function. Intended for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) PolicyOption {
	return func(p *Policy) { p.sleep = fn }
}

func NewPolicy(opts ...PolicyOption) *Policy {
	p := &Policy{
		baseDelay: time.Second,
		sleep:     sleepCtx,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do runs fn until it succeeds, fails with a non-rate-limit error, or
// exhausts maxRetries additional attempts. Rate-limit waits follow the
// server's "retry after N" hint plus one extra second, clamped to
// MaxWaitSeconds; absent a hint, exponential backoff applies.
func (p *Policy) Do(
	ctx context.Context,
	maxRetries int,
	fn func(ctx context.Context) (*telegram.Result, error),
) (*telegram.Result, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		res, err := fn(ctx)
		if err == nil {
			return res, nil
		}
		if !IsRateLimited(err) {
			return nil, err
		}
		lastErr = err
		if attempt >= maxRetries {
			return nil, lastErr
		}

		wait := p.waitFor(err, attempt)
		logger.WarnCF("retry", "Rate limited, backing off", map[string]any{
			"attempt": attempt + 1,
			"wait":    wait.String(),
		})
		if err := p.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// waitFor picks the delay before the next attempt. The extra second on
// top of the server hint matches observed server rounding.
func (p *Policy) waitFor(err error, attempt int) time.Duration {
	if secs, ok := retryAfter(err); ok {
		if secs > MaxWaitSeconds {
			secs = MaxWaitSeconds
		}
		return time.Duration(secs+1) * time.Second
	}
	return p.baseDelay * (1 << attempt)
}

// IsRateLimited reports whether err is a Bot API rate-limit response:
// error code 429, or a description mentioning "too many requests" or
// "retry later".
func IsRateLimited(err error) bool {
	var apiErr *telegram.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code == 429 {
		return true
	}
	desc := strings.ToLower(apiErr.Description)
	return strings.Contains(desc, "too many requests") ||
		strings.Contains(desc, "retry later")
}

// IsReplyNotFound reports whether err means the reply target message
// no longer exists. The caller retries exactly once without the reply
// reference.
func IsReplyNotFound(err error) bool {
	var apiErr *telegram.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == 400 &&
		strings.Contains(strings.ToLower(apiErr.Description), "reply message not found")
}

// retryAfter extracts the wait-seconds hint from the error description
// ("Too Many Requests: retry after 5") or the retry_after parameter.
func retryAfter(err error) (int, bool) {
	var apiErr *telegram.APIError
	if !errors.As(err, &apiErr) {
		return 0, false
	}
	if m := retryAfterRE.FindStringSubmatch(apiErr.Description); m != nil {
		secs, convErr := strconv.Atoi(m[1])
		if convErr == nil {
			return secs, true
		}
	}
	if apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter, true
	}
	return 0, false
}
