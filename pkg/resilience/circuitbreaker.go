package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"ice-breakun/backend/pkg/logger"
)

// ErrCircuitOpen is returned while the breaker is short-circuiting calls
var ErrCircuitOpen = errors.New("circuit open")

// State of a circuit breaker
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

// Config tunes a CircuitBreaker
type Config struct {
	Name string
	// FailureThreshold consecutive failures open the circuit
	FailureThreshold uint
	// SuccessThreshold probes must pass in half-open before closing again
	SuccessThreshold uint
	// OpenTimeout is how long the circuit stays open before probing
	OpenTimeout time.Duration
	// CallTimeout bounds a single call; zero means no bound
	CallTimeout time.Duration
}

// DefaultConfig returns the settings used for the event bridge
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
		CallTimeout:      2 * time.Second,
	}
}

// Stats is a snapshot of breaker counters
type Stats struct {
	Name          string    `json:"name"`
	State         State     `json:"state"`
	Requests      uint64    `json:"total_requests"`
	Failures      uint64    `json:"total_failures"`
	Successes     uint64    `json:"total_successes"`
	Rejected      uint64    `json:"total_rejected"`
	Opened        uint64    `json:"open_circuit_count"`
	LastFailureAt time.Time `json:"last_failure_time"`
}

// CircuitBreaker stops calling a failing dependency until it has had time to recover
type CircuitBreaker struct {
	cfg Config
	log *logger.Logger
	now func() time.Time

	mu           sync.Mutex
	state        State
	failureCount uint
	successCount uint
	openedUntil  time.Time
	stats        Stats
}

// NewCircuitBreaker creates a closed circuit breaker
func NewCircuitBreaker(cfg Config, log *logger.Logger) *CircuitBreaker {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 1
	}
	if cfg.SuccessThreshold == 0 {
		cfg.SuccessThreshold = 1
	}
	if log == nil {
		log = logger.GetGlobal()
	}
	return &CircuitBreaker{
		cfg:   cfg,
		log:   log,
		now:   time.Now,
		state: StateClosed,
		stats: Stats{Name: cfg.Name},
	}
}

// Execute runs fn through the breaker. fn receives a context bounded by CallTimeout.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if !cb.allow() {
		return ErrCircuitOpen
	}

	if cb.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cb.cfg.CallTimeout)
		defer cancel()
	}

	start := cb.now()
	err := fn(ctx)
	if err != nil {
		cb.recordFailure()
		cb.log.Warn("Circuit breaker recorded failure",
			"name", cb.cfg.Name,
			"error", err.Error(),
			"duration", time.Since(start).String(),
		)
		return err
	}

	cb.recordSuccess()
	return nil
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.stats.Requests++

	switch cb.state {
	case StateOpen:
		if cb.now().Before(cb.openedUntil) {
			cb.stats.Rejected++
			return false
		}
		cb.state = StateHalfOpen
		cb.successCount = 0
		cb.log.Info("Circuit breaker half-open", "name", cb.cfg.Name)
		return true
	case StateHalfOpen:
		if cb.successCount >= cb.cfg.SuccessThreshold {
			cb.stats.Rejected++
			return false
		}
		return true
	default:
		return true
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.stats.Successes++

	switch cb.state {
	case StateClosed:
		cb.failureCount = 0
	case StateHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.cfg.SuccessThreshold {
			cb.state = StateClosed
			cb.failureCount = 0
			cb.successCount = 0
			cb.log.Info("Circuit breaker closed", "name", cb.cfg.Name)
		}
	}
}

func (cb *CircuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.stats.Failures++
	cb.stats.LastFailureAt = cb.now()

	switch cb.state {
	case StateClosed:
		cb.failureCount++
		if cb.failureCount >= cb.cfg.FailureThreshold {
			cb.open()
		}
	case StateHalfOpen:
		cb.open()
	}
}

// open must be called with mu held
func (cb *CircuitBreaker) open() {
	cb.state = StateOpen
	cb.stats.Opened++
	cb.openedUntil = cb.now().Add(cb.cfg.OpenTimeout)

	cb.log.Info("Circuit breaker opened",
		"name", cb.cfg.Name,
		"failures", cb.failureCount,
		"nextAttempt", cb.openedUntil.Format(time.RFC3339),
	)
}

// State returns the current state
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Stats returns a snapshot of the counters
func (cb *CircuitBreaker) Stats() Stats {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	s := cb.stats
	s.State = cb.state
	return s
}
