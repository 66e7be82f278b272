// Package connection tracks per-platform link state and enforces the
// connect/disconnect lifecycle.
package connection

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/suziewongzie/UniChat/internal/bus"
	"github.com/suziewongzie/UniChat/internal/model"
	"go.uber.org/zap"
)

// State represents a platform link state.
type State string

const (
	Disconnected State = "DISCONNECTED"
	Connecting   State = "CONNECTING"
	Connected    State = "CONNECTED"
)

// validTransitions defines allowed state transitions. Both directions pass
// through Connecting; the async confirm lands the terminal state.
var validTransitions = map[State][]State{
	Disconnected: {Connecting},
	Connecting:   {Connected, Disconnected},
	Connected:    {Connecting},
}

var (
	// ErrSetupRequired means the platform has no stored credentials yet.
	ErrSetupRequired = errors.New("platform setup required")

	// ErrTogglePending means a connect or disconnect is already in flight.
	ErrTogglePending = errors.New("toggle already pending")

	// ErrNotConnected gates operations that need a live platform link.
	ErrNotConnected = errors.New("platform not connected")
)

// ConfigChecker reports whether a platform's credentials are in place.
type ConfigChecker interface {
	IsConfigured(p model.Platform) bool
}

// Manager tracks and enforces link state for every platform.
type Manager struct {
	mu      sync.Mutex
	states  map[model.Platform]State
	timers  map[model.Platform]*time.Timer
	checker ConfigChecker
	bus     *bus.Bus
	delay   time.Duration
	logger  *zap.Logger
	closed  bool
}

// NewManager creates a manager with every platform Disconnected. delay is
// the simulated handshake latency before a toggle confirms.
func NewManager(checker ConfigChecker, b *bus.Bus, delay time.Duration, logger *zap.Logger) *Manager {
	states := make(map[model.Platform]State, len(model.Platforms))
	for _, p := range model.Platforms {
		states[p] = Disconnected
	}
	return &Manager{
		states:  states,
		timers:  make(map[model.Platform]*time.Timer),
		checker: checker,
		bus:     b,
		delay:   delay,
		logger:  logger,
	}
}

// State returns the platform's current link state.
func (m *Manager) State(p model.Platform) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[p]
}

// IsConnected reports whether the platform link is up.
func (m *Manager) IsConnected(p model.Platform) bool {
	return m.State(p) == Connected
}

// Require returns ErrNotConnected unless the platform link is up.
func (m *Manager) Require(p model.Platform) error {
	if !m.IsConnected(p) {
		return fmt.Errorf("%w: %s", ErrNotConnected, p)
	}
	return nil
}

// Toggle flips the platform link. From Disconnected it starts a connect,
// from Connected a disconnect; either way the state moves to Connecting
// synchronously and the terminal state confirms after the handshake delay.
// A toggle while one is already in flight is rejected.
func (m *Manager) Toggle(p model.Platform) (State, error) {
	if !p.Valid() {
		return "", fmt.Errorf("unknown platform %q", p)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.states[p]
	switch cur {
	case Connecting:
		return cur, fmt.Errorf("%w: %s", ErrTogglePending, p)
	case Disconnected:
		if !m.checker.IsConfigured(p) {
			return cur, fmt.Errorf("%w: %s", ErrSetupRequired, p)
		}
		if err := m.transitionLocked(p, Connecting); err != nil {
			return cur, err
		}
		m.confirmAfterLocked(p, Connected)
	case Connected:
		if err := m.transitionLocked(p, Connecting); err != nil {
			return cur, err
		}
		m.confirmAfterLocked(p, Disconnected)
	}
	return Connecting, nil
}

// Close cancels pending confirmations. Further toggles are rejected as
// pending once their platform was mid-flight; terminal states stay frozen.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for p, t := range m.timers {
		t.Stop()
		delete(m.timers, p)
	}
}

func (m *Manager) transitionLocked(p model.Platform, to State) error {
	from := m.states[p]
	if !slices.Contains(validTransitions[from], to) {
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}
	m.states[p] = to
	m.logger.Info("link state changed",
		zap.String("platform", string(p)),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	return nil
}

func (m *Manager) confirmAfterLocked(p model.Platform, target State) {
	m.timers[p] = time.AfterFunc(m.delay, func() {
		m.confirm(p, target)
	})
}

func (m *Manager) confirm(p model.Platform, target State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.states[p] != Connecting {
		return
	}
	delete(m.timers, p)
	if err := m.transitionLocked(p, target); err != nil {
		m.logger.Error("link confirm failed", zap.Error(err))
		return
	}
	if m.bus != nil {
		m.bus.Publish(bus.Event{
			Kind:      bus.KindConnectionChanged,
			Timestamp: time.Now(),
			Payload: bus.ConnectionChanged{
				Platform:  p,
				Connected: target == Connected,
			},
		})
	}
}
