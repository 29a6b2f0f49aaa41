// Package gpiocdev implements hwdriver.Driver on top of
// github.com/warthog618/go-gpiocdev, the Linux GPIO character-device
// ABI. Edge detection and debouncing are delegated to the kernel/driver
// via gpiocdev's native options rather than polled in userspace.
package gpiocdev

import (
	"fmt"
	"sync"
	"time"

	"github.com/larsks/gpiobuttond/internal/hwdriver"
	"github.com/warthog618/go-gpiocdev"
)

// Driver manages a set of gpiocdev lines on a single chip, each
// configured as a debounced button input.
type Driver struct {
	chip *gpiocdev.Chip

	mu       sync.Mutex
	lines    map[int]*gpiocdev.Line
	callback hwdriver.EdgeFunc
}

// New opens chipName (e.g. "gpiochip0") and returns a Driver bound to
// it. The chip is held open for the Driver's lifetime; call Close to
// release it.
func New(chipName string) (*Driver, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("gpiocdev: open chip %s: %w", chipName, err)
	}

	return &Driver{
		chip:  chip,
		lines: make(map[int]*gpiocdev.Line),
	}, nil
}

func (d *Driver) Input(pinID int) (bool, error) {
	d.mu.Lock()
	line, ok := d.lines[pinID]
	d.mu.Unlock()

	if !ok {
		return false, hwdriver.ErrNotConfigured
	}

	v, err := line.Value()
	if err != nil {
		return false, fmt.Errorf("gpiocdev: read pin %d: %w", pinID, err)
	}
	return v != 0, nil
}

func (d *Driver) ConfigureButton(pinID int, pull hwdriver.Pull, bounceMs int) error {
	if bounceMs < 0 {
		return hwdriver.ErrNegativeBounce
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.lines[pinID]; exists {
		return hwdriver.ErrAlreadyConfigured
	}

	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(d.handleEvent),
	}
	switch pull {
	case hwdriver.PullUp:
		opts = append(opts, gpiocdev.WithPullUp)
	case hwdriver.PullDown:
		opts = append(opts, gpiocdev.WithPullDown)
	}
	if bounceMs > 0 {
		opts = append(opts, gpiocdev.WithDebounce(time.Duration(bounceMs)*time.Millisecond))
	}

	line, err := d.chip.RequestLine(pinID, opts...)
	if err != nil {
		return fmt.Errorf("gpiocdev: configure pin %d: %w", pinID, err)
	}

	d.lines[pinID] = line
	return nil
}

func (d *Driver) UnconfigureButton(pinID int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	line, exists := d.lines[pinID]
	if !exists {
		return hwdriver.ErrNotConfigured
	}
	delete(d.lines, pinID)

	if err := line.Close(); err != nil {
		return fmt.Errorf("gpiocdev: release pin %d: %w", pinID, err)
	}
	return nil
}

func (d *Driver) SetEdgeCallback(fn hwdriver.EdgeFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callback = fn
}

// Close releases every remaining line and the chip handle.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for pinID, line := range d.lines {
		if err := line.Close(); err != nil {
			return fmt.Errorf("gpiocdev: release pin %d: %w", pinID, err)
		}
		delete(d.lines, pinID)
	}
	return d.chip.Close()
}

// handleEvent adapts a gpiocdev.LineEvent (already debounced by the
// kernel driver when WithDebounce was requested) into the single
// process-wide hwdriver.EdgeFunc callback.
func (d *Driver) handleEvent(evt gpiocdev.LineEvent) {
	d.mu.Lock()
	cb := d.callback
	d.mu.Unlock()

	if cb == nil {
		return
	}

	edge := hwdriver.Falling
	if evt.Type == gpiocdev.LineEventRisingEdge {
		edge = hwdriver.Rising
	}
	cb(int(evt.Offset), edge)
}
