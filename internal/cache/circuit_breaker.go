package cache

import (
	"errors"
	"sync"
	"time"
)

type CircuitBreakerState int

const (
	CircuitBreakerClosed CircuitBreakerState = iota
	CircuitBreakerOpen
	CircuitBreakerHalfOpen
)

func (s CircuitBreakerState) String() string {
	switch s {
	case CircuitBreakerOpen:
		return "open"
	case CircuitBreakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

var ErrCircuitBreakerOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	MaxFailures      int           `json:"max_failures"`
	Timeout          time.Duration `json:"timeout"`
	HalfOpenMaxCalls int           `json:"half_open_max_calls"`
}

func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		MaxFailures:      5,
		Timeout:          30 * time.Second,
		HalfOpenMaxCalls: 3,
	}
}

// CircuitBreaker stops calling a failing dependency after MaxFailures
// consecutive errors. Once Timeout has passed it lets trial calls through;
// HalfOpenMaxCalls successes close it again, any failure reopens it.
type CircuitBreaker struct {
	mu              sync.Mutex
	state           CircuitBreakerState
	failureCount    int
	successCount    int
	inFlight        int
	lastFailureTime time.Time
	onStateChange   func(from, to CircuitBreakerState)

	maxFailures      int
	timeout          time.Duration
	halfOpenMaxCalls int
}

func NewCircuitBreaker(config *CircuitBreakerConfig) *CircuitBreaker {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}
	if config.MaxFailures <= 0 {
		config.MaxFailures = 1
	}
	if config.HalfOpenMaxCalls <= 0 {
		config.HalfOpenMaxCalls = 1
	}

	return &CircuitBreaker{
		state:            CircuitBreakerClosed,
		maxFailures:      config.MaxFailures,
		timeout:          config.Timeout,
		halfOpenMaxCalls: config.HalfOpenMaxCalls,
	}
}

// OnStateChange registers a callback invoked (under the breaker lock) on
// every transition.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to CircuitBreakerState)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.allow() {
		return ErrCircuitBreakerOpen
	}

	err := fn()
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitBreakerClosed:
		return true
	case CircuitBreakerOpen:
		if time.Since(cb.lastFailureTime) < cb.timeout {
			return false
		}
		cb.setState(CircuitBreakerHalfOpen)
		cb.successCount = 0
		cb.inFlight = 1
		return true
	default:
		if cb.inFlight+cb.successCount >= cb.halfOpenMaxCalls {
			return false
		}
		cb.inFlight++
		return true
	}
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitBreakerHalfOpen && cb.inFlight > 0 {
		cb.inFlight--
	}

	if err != nil {
		cb.failureCount++
		cb.lastFailureTime = time.Now()
		switch cb.state {
		case CircuitBreakerClosed:
			if cb.failureCount >= cb.maxFailures {
				cb.setState(CircuitBreakerOpen)
			}
		case CircuitBreakerHalfOpen:
			cb.setState(CircuitBreakerOpen)
			cb.successCount = 0
			cb.inFlight = 0
		}
		return
	}

	switch cb.state {
	case CircuitBreakerClosed:
		cb.failureCount = 0
	case CircuitBreakerHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.halfOpenMaxCalls {
			cb.setState(CircuitBreakerClosed)
			cb.failureCount = 0
			cb.successCount = 0
			cb.inFlight = 0
		}
	}
}

func (cb *CircuitBreaker) setState(to CircuitBreakerState) {
	from := cb.state
	cb.state = to
	if cb.onStateChange != nil && from != to {
		cb.onStateChange(from, to)
	}
}

func (cb *CircuitBreaker) GetState() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) GetStats() map[string]interface{} {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return map[string]interface{}{
		"state":           cb.state.String(),
		"failure_count":   cb.failureCount,
		"success_count":   cb.successCount,
		"last_failure":    cb.lastFailureTime.Unix(),
		"max_failures":    cb.maxFailures,
		"timeout_seconds": cb.timeout.Seconds(),
	}
}
