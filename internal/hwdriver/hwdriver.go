// Package hwdriver defines the hardware abstraction consumed by the
// controller (component C1 in the design): a minimal capability set for
// reading a pin's level, configuring/unconfiguring it as a debounced
// input, and receiving a single process-wide edge callback.
//
// Concrete implementations live in hwdriver/gpiocdev (real GPIO, via
// github.com/warthog618/go-gpiocdev) and hwdriver/dummy (in-memory, for
// tests and development off real hardware).
package hwdriver

import "errors"

// Pull selects the pin's internal pull resistor configuration.
type Pull int

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

func (p Pull) String() string {
	switch p {
	case PullUp:
		return "pull-up"
	case PullDown:
		return "pull-down"
	default:
		return "pull-none"
	}
}

// Edge identifies which transition a callback is reporting.
type Edge int

const (
	Rising Edge = iota
	Falling
)

func (e Edge) String() string {
	if e == Rising {
		return "rising"
	}
	return "falling"
}

// EdgeFunc is the shape of the single process-wide edge callback a
// driver invokes after debouncing, for both edges.
type EdgeFunc func(pinID int, edge Edge)

// Driver is the capability set required from a hardware (or simulated)
// backend. A Driver instance is constructed with exclusive ownership by
// exactly one controller.
type Driver interface {
	// Input returns the pin's current level: true means high.
	Input(pinID int) (bool, error)

	// ConfigureButton sets pinID as an input with the given pull
	// resistor and debounce period, enabling edge detection for it.
	// bounceMs of 0 disables debouncing. Returns an error if pinID is
	// already configured.
	ConfigureButton(pinID int, pull Pull, bounceMs int) error

	// UnconfigureButton releases pinID. Returns an error if pinID was
	// not configured.
	UnconfigureButton(pinID int) error

	// SetEdgeCallback registers the single callback invoked for every
	// debounced edge on every configured pin. Replaces any previously
	// registered callback.
	SetEdgeCallback(fn EdgeFunc)

	// Close releases any driver-wide resources (e.g. an open chip
	// handle). Implementations must tolerate being called after some or
	// all buttons have already been unconfigured.
	Close() error
}

// Misuse errors surfaced synchronously, per the error taxonomy: these
// indicate programmer error, not hardware faults.
var (
	ErrAlreadyConfigured = errors.New("hwdriver: pin already configured")
	ErrNotConfigured     = errors.New("hwdriver: pin not configured")
	ErrNegativeBounce    = errors.New("hwdriver: bounce_ms must not be negative")
)
