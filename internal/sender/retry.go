package sender

import (
	"math/rand"
	"time"

	"github.com/speedwagon-io/satalert/internal/config"
)

const (
	backoffMultiplier = 2.0
	backoffJitter     = 0.1
)

// RetryPolicy bounds webhook delivery: how many attempts, and how long to
// wait between them. Delays double from InitialDelay up to MaxDelay with
// +/-10% jitter.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Jitter       float64

	// random returns a value in [0, 1). Nil means math/rand.
	random func() float64
}

func NewRetryPolicy(cfg config.RetryConfig) *RetryPolicy {
	p := &RetryPolicy{
		MaxAttempts:  cfg.MaxAttempts,
		InitialDelay: cfg.InitialDelay,
		MaxDelay:     cfg.MaxDelay,
		Jitter:       backoffJitter,
		random:       rand.Float64,
	}
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.MaxDelay < p.InitialDelay {
		p.MaxDelay = p.InitialDelay
	}
	return p
}

// ShouldRetry reports whether another attempt follows the given 1-based one.
func (p *RetryPolicy) ShouldRetry(attempt int) bool {
	return attempt < p.MaxAttempts
}

// Delay returns the wait after the given 1-based failed attempt.
func (p *RetryPolicy) Delay(attempt int) time.Duration {
	delay := float64(p.InitialDelay)
	for i := 1; i < attempt && delay < float64(p.MaxDelay); i++ {
		delay *= backoffMultiplier
	}
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}

	if p.Jitter > 0 {
		random := p.random
		if random == nil {
			random = rand.Float64
		}
		delay += delay * p.Jitter * (2*random() - 1)
		if delay > float64(p.MaxDelay) {
			delay = float64(p.MaxDelay)
		}
	}

	return time.Duration(delay)
}
