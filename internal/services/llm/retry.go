package llm

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/interfaces"
)

// ErrRetriesExhausted is returned when every attempt hit a rate limit
var ErrRetriesExhausted = errors.New("retries exhausted")

const (
	DefaultAttempts    = 3
	DefaultCooldown    = 10 * time.Second
	DefaultMaxCooldown = time.Minute
)

// IsRateLimitError checks if an error is a provider rate limit error.
// Matches 429 status codes, RESOURCE_EXHAUSTED and quota errors.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "quota")
}

// retryDelayRegex matches "Please retry in Xs" or "retryDelay:Xs" patterns
var retryDelayRegex = regexp.MustCompile(`(?i)(?:Please retry in |retryDelay[:\s]+)(\d+(?:\.\d+)?)\s*s`)

// ExtractRetryDelay parses the API-suggested retry delay from an error.
// Returns 0 if no delay is found in the error message.
func ExtractRetryDelay(err error) time.Duration {
	if err == nil {
		return 0
	}

	matches := retryDelayRegex.FindStringSubmatch(err.Error())
	if len(matches) < 2 {
		return 0
	}

	seconds, parseErr := strconv.ParseFloat(matches[1], 64)
	if parseErr != nil {
		return 0
	}

	return time.Duration(seconds * float64(time.Second))
}

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryPolicy retries a completion after rate-limit errors. Other errors are
// returned immediately.
type RetryPolicy struct {
	Attempts    int
	Cooldown    time.Duration
	MaxCooldown time.Duration
	Sleep       SleepFunc
	Logger      arbor.ILogger
}

// NewRetryPolicy creates a policy; zero values take the defaults
func NewRetryPolicy(attempts int, cooldown time.Duration, logger arbor.ILogger) *RetryPolicy {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	maxCooldown := DefaultMaxCooldown
	if cooldown > maxCooldown {
		maxCooldown = cooldown
	}
	return &RetryPolicy{
		Attempts:    attempts,
		Cooldown:    cooldown,
		MaxCooldown: maxCooldown,
		Sleep:       common.Sleep,
		Logger:      logger,
	}
}

// CooldownFor returns the wait after a rate-limit error: the configured
// cool-down, raised to the provider's suggested delay up to MaxCooldown
func (p *RetryPolicy) CooldownFor(err error) time.Duration {
	wait := p.Cooldown
	if suggested := ExtractRetryDelay(err); suggested > wait {
		wait = suggested
	}
	if p.MaxCooldown > 0 && wait > p.MaxCooldown {
		wait = p.MaxCooldown
	}
	return wait
}

// Complete calls llm up to Attempts times. It returns ErrRetriesExhausted
// (wrapping the last rate-limit error) when every attempt was rate limited.
// The cool-down is not applied after the final attempt.
func (p *RetryPolicy) Complete(ctx context.Context, llm interfaces.LLMService, prompt string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= p.Attempts; attempt++ {
		text, err := llm.Complete(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if !IsRateLimitError(err) {
			return "", err
		}

		lastErr = err
		if attempt == p.Attempts {
			break
		}

		wait := p.CooldownFor(err)
		p.Logger.Warn().
			Int("attempt", attempt).
			Dur("cooldown", wait).
			Err(err).
			Msg("Rate limited, waiting before retry")

		if err := p.Sleep(ctx, wait); err != nil {
			return "", err
		}
	}

	return "", errors.Join(ErrRetriesExhausted, lastErr)
}
