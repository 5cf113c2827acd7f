// Package resilience guards the reply upstream with a circuit breaker.
// There is deliberately no retry machinery: every external call is a single
// attempt, and the chat surface degrades to canned replies instead.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// State represents the state of the Breaker
type State int

const (
	// StateClosed is the normal state of the breaker
	StateClosed State = iota
	// StateOpen is when the breaker short-circuits due to failures
	StateOpen
	// StateHalfOpen is when the breaker probes whether the upstream recovered
	StateHalfOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned when the breaker is open and the call is skipped.
var ErrOpen = errors.New("breaker: circuit is open")

// Breaker trips after maxFailures consecutive failures and short-circuits
// calls for a cooldown, then allows a single half-open probe.
type Breaker struct {
	mu sync.Mutex

	maxFailures int
	cooldown    time.Duration

	state           State
	failures        int
	lastFailureTime time.Time
	probing         bool

	onStateChange func(from, to State)
}

// NewBreaker creates a breaker. maxFailures <= 0 disables tripping entirely.
func NewBreaker(maxFailures int, cooldown time.Duration) *Breaker {
	return &Breaker{
		maxFailures: maxFailures,
		cooldown:    cooldown,
		state:       StateClosed,
	}
}

// SetOnStateChange sets the callback for state changes
func (b *Breaker) SetOnStateChange(fn func(from, to State)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onStateChange = fn
}

// Execute runs fn unless the breaker is open, and records the outcome.
func (b *Breaker) Execute(fn func() error) error {
	if err := b.beforeCall(); err != nil {
		return err
	}

	err := fn()
	b.afterCall(err)
	return err
}

func (b *Breaker) beforeCall() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil

	case StateOpen:
		if time.Since(b.lastFailureTime) > b.cooldown {
			b.changeState(StateHalfOpen)
			b.probing = false
			return nil
		}
		return ErrOpen

	case StateHalfOpen:
		// One probe at a time; everyone else keeps falling back.
		if b.probing {
			return ErrOpen
		}
		b.probing = true
		return nil

	default:
		return ErrOpen
	}
}

func (b *Breaker) afterCall(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		if err != nil {
			b.failures++
			b.lastFailureTime = time.Now()
			if b.maxFailures > 0 && b.failures >= b.maxFailures {
				b.changeState(StateOpen)
			}
		} else {
			b.failures = 0
		}

	case StateHalfOpen:
		b.probing = false
		if err != nil {
			b.changeState(StateOpen)
			b.failures = 1
			b.lastFailureTime = time.Now()
		} else {
			b.changeState(StateClosed)
			b.failures = 0
		}
	}
}

func (b *Breaker) changeState(to State) {
	if b.state == to {
		return
	}

	from := b.state
	b.state = to

	if b.onStateChange != nil {
		// Call callback in goroutine to avoid blocking
		go b.onStateChange(from, to)
	}
}

// GetState returns the current state of the breaker
func (b *Breaker) GetState() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// GetFailures returns the current consecutive-failure count
func (b *Breaker) GetFailures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Reset manually closes the breaker
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.changeState(StateClosed)
	b.failures = 0
	b.probing = false
}
