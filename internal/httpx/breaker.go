package httpx

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when requests to a host are failing fast.
var ErrCircuitOpen = errors.New("circuit open")

// BreakerState is the per-host circuit state.
type BreakerState int

const (
	// BreakerClosed allows requests through.
	BreakerClosed BreakerState = iota
	// BreakerOpen fails requests fast.
	BreakerOpen
	// BreakerHalfOpen allows a single probe request.
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

const (
	defaultFailureThreshold = 5
	defaultRecoveryTimeout  = 30 * time.Second
)

type breakerCircuit struct {
	state             BreakerState
	consecutiveErrors int
	lastStateChange   time.Time
	probing           bool
}

// Breaker tracks consecutive transient failures per host and fails fast
// once a host looks down, so one dead feed host cannot stall every
// fan-out request behind timeouts.
type Breaker struct {
	mu        sync.Mutex
	circuits  map[string]*breakerCircuit
	threshold int
	recovery  time.Duration
	now       func() time.Time
}

// NewBreaker creates a breaker. Zero values select the defaults.
func NewBreaker(threshold int, recovery time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = defaultFailureThreshold
	}
	if recovery <= 0 {
		recovery = defaultRecoveryTimeout
	}
	return &Breaker{
		circuits:  make(map[string]*breakerCircuit),
		threshold: threshold,
		recovery:  recovery,
		now:       time.Now,
	}
}

// Allow reports whether a request to host may proceed. In the open state
// it returns ErrCircuitOpen until the recovery timeout elapses, then lets
// one probe request through.
func (b *Breaker) Allow(host string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.circuit(host)
	switch c.state {
	case BreakerClosed:
		return nil
	case BreakerOpen:
		if b.now().Sub(c.lastStateChange) >= b.recovery {
			c.state = BreakerHalfOpen
			c.lastStateChange = b.now()
			c.probing = true
			return nil
		}
		return ErrCircuitOpen
	case BreakerHalfOpen:
		if !c.probing {
			c.probing = true
			return nil
		}
		return ErrCircuitOpen
	default:
		return nil
	}
}

// RecordSuccess closes the circuit for host.
func (b *Breaker) RecordSuccess(host string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.circuit(host)
	c.state = BreakerClosed
	c.consecutiveErrors = 0
	c.probing = false
}

// RecordFailure counts a transient failure for host, opening the circuit
// at the threshold. Permanent errors (a 404 feed, say) must not be
// recorded: the host is fine, the resource is not.
func (b *Breaker) RecordFailure(host string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.circuit(host)
	switch c.state {
	case BreakerClosed:
		c.consecutiveErrors++
		if c.consecutiveErrors >= b.threshold {
			c.state = BreakerOpen
			c.lastStateChange = b.now()
		}
	case BreakerHalfOpen:
		c.state = BreakerOpen
		c.lastStateChange = b.now()
		c.consecutiveErrors++
		c.probing = false
	}
}

// State returns the current state for host.
func (b *Breaker) State(host string) BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.circuits[host]
	if !ok {
		return BreakerClosed
	}
	if c.state == BreakerOpen && b.now().Sub(c.lastStateChange) >= b.recovery {
		return BreakerHalfOpen
	}
	return c.state
}

func (b *Breaker) circuit(host string) *breakerCircuit {
	c, ok := b.circuits[host]
	if !ok {
		c = &breakerCircuit{state: BreakerClosed, lastStateChange: b.now()}
		b.circuits[host] = c
	}
	return c
}
