package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker"
)

// State mirrors gobreaker.State with package-local names so callers don't
// need to import gobreaker directly.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
	StateUnknown  State = "unknown"
)

func fromGobreakerState(state gobreaker.State) State {
	switch state {
	case gobreaker.StateClosed:
		return StateClosed
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateUnknown
	}
}

// Counts mirrors gobreaker.Counts.
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

func fromGobreakerCounts(counts gobreaker.Counts) Counts {
	return Counts{
		Requests:             counts.Requests,
		TotalSuccesses:       counts.TotalSuccesses,
		TotalFailures:        counts.TotalFailures,
		ConsecutiveSuccesses: counts.ConsecutiveSuccesses,
		ConsecutiveFailures:  counts.ConsecutiveFailures,
	}
}

// Config holds breaker tuning knobs.
type Config struct {
	Name                string
	MaxRequests         uint32        // max requests allowed while half-open
	Interval            time.Duration // how often counts reset while closed
	Timeout             time.Duration // how long the breaker stays open before probing
	ConsecutiveFailures uint32        // consecutive failures that trip the breaker
}

// Breaker wraps a gobreaker.CircuitBreaker guarding a single collaborator.
type Breaker struct {
	inner *gobreaker.CircuitBreaker
}

// New creates a Breaker from cfg.
func New(cfg Config) *Breaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return cfg.ConsecutiveFailures > 0 && counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
	}

	return &Breaker{inner: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn through the breaker, short-circuiting with gobreaker.ErrOpenState
// or gobreaker.ErrTooManyRequests when the breaker is open or probing.
func (b *Breaker) Execute(fn func() (any, error)) (any, error) {
	return b.inner.Execute(fn)
}

// State returns the breaker's current state.
func (b *Breaker) State() State {
	return fromGobreakerState(b.inner.State())
}

// Counts returns the breaker's current rolling counts.
func (b *Breaker) Counts() Counts {
	return fromGobreakerCounts(b.inner.Counts())
}
