// Package circuitbreaker refuses gateway calls for a while after repeated
// transport faults. It never retries anything itself.
package circuitbreaker

import (
	"sync"
	"time"
)

// State represents the state of the circuit breaker.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

const (
	defaultFailureThreshold  = 5                // Consecutive transport faults that open the circuit
	defaultOpenTimeout       = 30 * time.Second // Time before Open becomes HalfOpen
	defaultHalfOpenSuccesses = 2                // Successes in HalfOpen that close the circuit
)

// Config tunes a CircuitBreaker. Zero fields take the defaults.
type Config struct {
	FailureThreshold  int
	OpenTimeout       time.Duration
	HalfOpenSuccesses int
}

// endpointState holds the current state of one endpoint.
type endpointState struct {
	state                State
	consecutiveFailures  int
	consecutiveSuccesses int // Used in HalfOpen state
	openUntil            time.Time
}

// CircuitBreaker tracks the health of gateway endpoints in memory.
type CircuitBreaker struct {
	mu        sync.Mutex
	endpoints map[string]*endpointState
	cfg       Config
	now       func() time.Time
}

// NewCircuitBreaker creates a CircuitBreaker.
func NewCircuitBreaker(cfg Config) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = defaultFailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaultOpenTimeout
	}
	if cfg.HalfOpenSuccesses <= 0 {
		cfg.HalfOpenSuccesses = defaultHalfOpenSuccesses
	}
	return &CircuitBreaker{
		endpoints: make(map[string]*endpointState),
		cfg:       cfg,
		now:       time.Now,
	}
}

// caller holds cb.mu
func (cb *CircuitBreaker) endpoint(name string) *endpointState {
	es, exists := cb.endpoints[name]
	if !exists {
		es = &endpointState{state: Closed}
		cb.endpoints[name] = es
	}
	return es
}

// AllowRequest reports whether a call to the endpoint may go out. An expired
// Open state moves to HalfOpen here.
func (cb *CircuitBreaker) AllowRequest(name string) bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	es := cb.endpoint(name)
	switch es.state {
	case Open:
		if cb.now().After(es.openUntil) {
			es.state = HalfOpen
			es.consecutiveSuccesses = 0
			return true
		}
		return false
	default:
		return true
	}
}

// RecordFailure records a transport fault.
func (cb *CircuitBreaker) RecordFailure(name string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	es := cb.endpoint(name)
	switch es.state {
	case Closed:
		es.consecutiveFailures++
		if es.consecutiveFailures >= cb.cfg.FailureThreshold {
			cb.open(es)
		}
	case HalfOpen:
		cb.open(es)
	}
}

func (cb *CircuitBreaker) open(es *endpointState) {
	es.state = Open
	es.openUntil = cb.now().Add(cb.cfg.OpenTimeout)
	es.consecutiveFailures = 0
	es.consecutiveSuccesses = 0
}

// RecordSuccess records a call that produced a decodable response, whatever
// the gateway said in it.
func (cb *CircuitBreaker) RecordSuccess(name string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	es := cb.endpoint(name)
	switch es.state {
	case Closed:
		es.consecutiveFailures = 0
	case HalfOpen:
		es.consecutiveSuccesses++
		if es.consecutiveSuccesses >= cb.cfg.HalfOpenSuccesses {
			es.state = Closed
			es.consecutiveFailures = 0
			es.consecutiveSuccesses = 0
		}
	}
}

// GetState returns the state of an endpoint without transitioning it.
func (cb *CircuitBreaker) GetState(name string) State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	es, exists := cb.endpoints[name]
	if !exists {
		return Closed
	}
	return es.state
}
