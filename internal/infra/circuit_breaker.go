package infra

import (
	"errors"
	"sync"
	"time"
)

// Circuit breaker guarding the SMTP connection. The store's mail server is
// a shared small-business host that goes away for minutes at a time; without
// the breaker every pending-approval email would block a worker on a full
// SMTP timeout.
//
// closed → open after FailureThreshold consecutive failures,
// open → half-open after OpenTimeout,
// half-open → closed after SuccessThreshold consecutive successes.

type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// ErrCircuitOpen is returned by Execute while the breaker is fast-failing.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
}

func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      60 * time.Second,
	}
}

type CircuitBreaker struct {
	mu       sync.Mutex
	cfg      CircuitBreakerConfig
	state    CBState
	falhas   int
	sucessos int
	abertoEm time.Time
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCBConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	return &CircuitBreaker{cfg: cfg, state: CBClosed}
}

// State reports the current state, moving open → half-open once the open
// window has elapsed.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.stateLocked()
}

func (cb *CircuitBreaker) stateLocked() CBState {
	if cb.state == CBOpen && time.Since(cb.abertoEm) >= cb.cfg.OpenTimeout {
		cb.state = CBHalfOpen
		cb.sucessos = 0
	}
	return cb.state
}

// Execute runs fn unless the breaker is open, folding the result into the
// breaker state.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	if cb.stateLocked() == CBOpen {
		cb.mu.Unlock()
		return ErrCircuitOpen
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.registrarFalha()
		return err
	}
	cb.registrarSucesso()
	return nil
}

func (cb *CircuitBreaker) registrarFalha() {
	cb.falhas++
	cb.abertoEm = time.Now()
	switch cb.state {
	case CBClosed:
		if cb.falhas >= cb.cfg.FailureThreshold {
			cb.state = CBOpen
			cb.sucessos = 0
		}
	case CBHalfOpen:
		cb.state = CBOpen
		cb.falhas = 0
	}
}

func (cb *CircuitBreaker) registrarSucesso() {
	switch cb.state {
	case CBClosed:
		cb.falhas = 0
	case CBHalfOpen:
		cb.sucessos++
		if cb.sucessos >= cb.cfg.SuccessThreshold {
			cb.state = CBClosed
			cb.falhas = 0
			cb.sucessos = 0
		}
	}
}
