package notifications

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker open")

const (
	circuitClosed   = "closed"
	circuitOpen     = "open"
	circuitHalfOpen = "half_open"
)

type ProtectedNotifierConfig struct {
	Timeout          time.Duration // per send
	FailureThreshold int           // consecutive failures before opening
	Cooldown         time.Duration // time spent open before a trial call
	HalfOpenMaxCalls int
}

// ProtectedNotifier wraps a Notifier with a per-call timeout and a circuit
// breaker, so a dead provider costs registrations nothing once it trips.
type ProtectedNotifier struct {
	inner Notifier
	cfg   ProtectedNotifierConfig

	mu                  sync.Mutex
	state               string
	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int

	now func() time.Time
}

func NewProtectedNotifier(inner Notifier, cfg ProtectedNotifierConfig) *ProtectedNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}

	return &ProtectedNotifier{
		inner: inner,
		cfg:   cfg,
		state: circuitClosed,
		now:   time.Now,
	}
}

func (n *ProtectedNotifier) SendWelcome(ctx context.Context, input WelcomeInput) error {
	if !n.allow() {
		return ErrCircuitOpen
	}

	sendCtx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	err := n.inner.SendWelcome(sendCtx, input)
	n.record(err)

	return err
}

// State reports closed, open or half_open.
func (n *ProtectedNotifier) State() string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.state
}

func (n *ProtectedNotifier) allow() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.state {
	case circuitOpen:
		if n.now().Sub(n.openedAt) < n.cfg.Cooldown {
			return false
		}
		n.state = circuitHalfOpen
		n.halfOpenInFlight = 1
		return true
	case circuitHalfOpen:
		if n.halfOpenInFlight >= n.cfg.HalfOpenMaxCalls {
			return false
		}
		n.halfOpenInFlight++
		return true
	default:
		return true
	}
}

func (n *ProtectedNotifier) record(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == circuitHalfOpen && n.halfOpenInFlight > 0 {
		n.halfOpenInFlight--
	}

	if err == nil {
		n.consecutiveFailures = 0
		n.state = circuitClosed
		return
	}

	n.consecutiveFailures++

	// a failed trial reopens at once
	if n.state == circuitHalfOpen || n.consecutiveFailures >= n.cfg.FailureThreshold {
		n.state = circuitOpen
		n.openedAt = n.now()
	}
}
