// Package dummy implements an in-memory hwdriver.Driver for tests and
// for development away from real GPIO hardware.
package dummy

import (
	"sync"
	"time"

	"github.com/larsks/gpiobuttond/internal/hwdriver"
)

// pin tracks the simulated state of one configured button.
type pin struct {
	level     bool
	pull      hwdriver.Pull
	bounce    time.Duration
	lastEdge  time.Time
	hasLevel  bool
}

// Driver is a software-only hwdriver.Driver. SetLevel is the test
// entrypoint: it synthesizes a debounced edge exactly as real hardware
// would, so recognizer/controller tests can drive gestures without a
// GPIO chip.
type Driver struct {
	mu       sync.Mutex
	pins     map[int]*pin
	callback hwdriver.EdgeFunc
}

// New creates an empty Driver. Pins start at level false (low) until
// configured and given an explicit level via SetLevel.
func New() *Driver {
	return &Driver{pins: make(map[int]*pin)}
}

func (d *Driver) Input(pinID int) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pins[pinID]
	if !ok {
		return false, hwdriver.ErrNotConfigured
	}
	return p.level, nil
}

func (d *Driver) ConfigureButton(pinID int, pull hwdriver.Pull, bounceMs int) error {
	if bounceMs < 0 {
		return hwdriver.ErrNegativeBounce
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.pins[pinID]; exists {
		return hwdriver.ErrAlreadyConfigured
	}

	d.pins[pinID] = &pin{
		pull:   pull,
		bounce: time.Duration(bounceMs) * time.Millisecond,
	}
	return nil
}

func (d *Driver) UnconfigureButton(pinID int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.pins[pinID]; !exists {
		return hwdriver.ErrNotConfigured
	}
	delete(d.pins, pinID)
	return nil
}

func (d *Driver) SetEdgeCallback(fn hwdriver.EdgeFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callback = fn
}

func (d *Driver) Close() error { return nil }

// SetLevel simulates the pin physically transitioning to level at time
// now, applying the pin's configured debounce the same way real
// hardware would: a transition that reverses within the debounce window
// of the previous one is suppressed rather than reported.
func (d *Driver) SetLevel(pinID int, level bool, now time.Time) {
	d.mu.Lock()
	p, ok := d.pins[pinID]
	if !ok {
		d.mu.Unlock()
		return
	}

	if p.hasLevel && p.level == level {
		d.mu.Unlock()
		return
	}
	if p.hasLevel && p.bounce > 0 && now.Sub(p.lastEdge) < p.bounce {
		// Bounced: the transition is swallowed, exactly like hardware
		// debounce logic would, and the pin stays at its last reported
		// level.
		d.mu.Unlock()
		return
	}

	p.level = level
	p.hasLevel = true
	p.lastEdge = now
	cb := d.callback
	d.mu.Unlock()

	if cb != nil {
		edge := hwdriver.Falling
		if level {
			edge = hwdriver.Rising
		}
		cb(pinID, edge)
	}
}
