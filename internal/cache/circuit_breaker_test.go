package cache

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

var errRedisDown = errors.New("dial tcp: connection refused")

func newTestBreaker(maxFailures int, timeout time.Duration) *CircuitBreaker {
	return NewCircuitBreaker(&CircuitBreakerConfig{
		MaxFailures:      maxFailures,
		Timeout:          timeout,
		HalfOpenMaxCalls: 2,
	})
}

func failing() error { return errRedisDown }
func passing() error { return nil }

func TestCircuitBreakerStateAfterCalls(t *testing.T) {
	tests := []struct {
		name  string
		calls []func() error
		want  CircuitBreakerState
	}{
		{name: "starts closed", want: CircuitBreakerClosed},
		{name: "success keeps closed", calls: []func() error{passing}, want: CircuitBreakerClosed},
		{name: "below threshold", calls: []func() error{failing}, want: CircuitBreakerClosed},
		{name: "threshold opens", calls: []func() error{failing, failing}, want: CircuitBreakerOpen},
		{name: "success resets count", calls: []func() error{failing, passing, failing}, want: CircuitBreakerClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := newTestBreaker(2, time.Minute)
			for _, call := range tt.calls {
				cb.Execute(call)
			}
			if got := cb.GetState(); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCircuitBreakerPassesThroughError(t *testing.T) {
	cb := newTestBreaker(3, time.Minute)

	if err := cb.Execute(failing); !errors.Is(err, errRedisDown) {
		t.Errorf("Expected the call's own error, got %v", err)
	}
}

func TestCircuitBreakerOpenSkipsCalls(t *testing.T) {
	cb := newTestBreaker(1, time.Minute)
	cb.Execute(failing)

	err := cb.Execute(func() error {
		t.Error("call ran while the breaker was open")
		return nil
	})
	if !errors.Is(err, ErrCircuitBreakerOpen) {
		t.Errorf("Expected ErrCircuitBreakerOpen, got %v", err)
	}
}

func TestCircuitBreakerProbesAfterTimeout(t *testing.T) {
	cb := newTestBreaker(1, 20*time.Millisecond)
	cb.Execute(failing)
	time.Sleep(30 * time.Millisecond)

	ran := false
	if err := cb.Execute(func() error { ran = true; return nil }); err != nil {
		t.Fatalf("Expected probe to pass, got %v", err)
	}
	if !ran {
		t.Error("Expected the probe call to run")
	}
	if cb.GetState() != CircuitBreakerHalfOpen {
		t.Errorf("Expected HalfOpen after one successful probe, got %v", cb.GetState())
	}
}

func TestCircuitBreakerConcurrentCalls(t *testing.T) {
	cb := newTestBreaker(5, 100*time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				cb.Execute(func() error {
					if (id+j)%3 == 0 {
						return fmt.Errorf("redis timeout %d-%d", id, j)
					}
					return nil
				})
			}
		}(i)
	}
	wg.Wait()

	if err := cb.Execute(passing); err != nil && !errors.Is(err, ErrCircuitBreakerOpen) {
		t.Errorf("Unexpected error after concurrent calls: %v", err)
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(&CircuitBreakerConfig{
		MaxFailures:      1,
		Timeout:          20 * time.Millisecond,
		HalfOpenMaxCalls: 2,
	})

	var transitions []string
	cb.OnStateChange(func(from, to CircuitBreakerState) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	cb.Execute(func() error { return fmt.Errorf("failure") })
	time.Sleep(30 * time.Millisecond)
	cb.Execute(func() error { return fmt.Errorf("still failing") })

	if cb.GetState() != CircuitBreakerOpen {
		t.Errorf("Expected state to be Open, got %v", cb.GetState())
	}

	expected := []string{"closed->open", "open->half-open", "half-open->open"}
	if fmt.Sprint(transitions) != fmt.Sprint(expected) {
		t.Errorf("Expected transitions %v, got %v", expected, transitions)
	}
}

func TestCircuitBreakerClosesAfterHalfOpenSuccesses(t *testing.T) {
	cb := NewCircuitBreaker(&CircuitBreakerConfig{
		MaxFailures:      1,
		Timeout:          20 * time.Millisecond,
		HalfOpenMaxCalls: 2,
	})

	cb.Execute(func() error { return fmt.Errorf("failure") })
	time.Sleep(30 * time.Millisecond)

	for i := 0; i < 2; i++ {
		if err := cb.Execute(func() error { return nil }); err != nil {
			t.Fatalf("Expected trial call %d to pass, got %v", i, err)
		}
	}

	if cb.GetState() != CircuitBreakerClosed {
		t.Errorf("Expected state to be Closed, got %v", cb.GetState())
	}
}

func TestCircuitBreakerStats(t *testing.T) {
	cb := NewCircuitBreaker(nil)

	stats := cb.GetStats()
	if stats["state"] != "closed" {
		t.Errorf("Expected state 'closed', got %v", stats["state"])
	}
	if stats["max_failures"] != 5 {
		t.Errorf("Expected max_failures 5, got %v", stats["max_failures"])
	}
}
