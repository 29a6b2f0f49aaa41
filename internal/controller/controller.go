// Package controller implements the lifecycle controller (component
// C5): button registration, GPIO edge ingress, and routing of
// recognized gestures into the callback executor. It is the one piece
// that wires the gesture recognizer (C2), the scheduled-update service
// (C3), and the callback executor (C4) together around a single
// hardware driver (C1).
package controller

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/larsks/gpiobuttond/internal/executor"
	"github.com/larsks/gpiobuttond/internal/gesture"
	"github.com/larsks/gpiobuttond/internal/hwdriver"
	"github.com/larsks/gpiobuttond/internal/scheduler"
)

// Status is the controller's lifecycle state.
type Status int

const (
	Ready Status = iota
	Running
	Stopping
	Stopped
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Controller owns a single hwdriver.Driver and every button configured
// against it, along with the scheduled-update and callback-execution
// workers those buttons' gestures depend on.
type Controller struct {
	driver    hwdriver.Driver
	scheduler *scheduler.Service
	executor  *executor.Executor

	// mu is the controller mutex from the concurrency model: it
	// serializes every button state update, handler-list mutation, and
	// read of scheduled_update_time. It is held only for the duration
	// of a single button update plus event submission to the executor;
	// handlers never run while it is held.
	mu      sync.Mutex
	status  Status
	buttons map[int]*Button

	stoppedCh chan struct{}
}

// New creates a Controller bound to driver, in the Ready state. The
// controller takes exclusive ownership of driver: it installs the
// single process-wide edge callback immediately.
func New(driver hwdriver.Driver) *Controller {
	c := &Controller{
		driver:    driver,
		executor:  executor.New(),
		buttons:   make(map[int]*Button),
		stoppedCh: make(chan struct{}),
	}
	c.scheduler = scheduler.New(c.fireDeadline)
	driver.SetEdgeCallback(c.onEdge)
	return c
}

// MakeButton registers pinID as a button: configures it on the driver,
// samples its initial level with event emission suppressed, and
// returns a handle usable immediately after this call returns.
func (c *Controller) MakeButton(pinID int, polarity gesture.Polarity, pull hwdriver.Pull, name string, bounceMs int) (*Button, error) {
	if bounceMs < 0 {
		return nil, hwdriver.ErrNegativeBounce
	}

	c.mu.Lock()
	if _, exists := c.buttons[pinID]; exists {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: pin %d", ErrPinAlreadyRegistered, pinID)
	}
	c.mu.Unlock()

	if err := c.driver.ConfigureButton(pinID, pull, bounceMs); err != nil {
		return nil, fmt.Errorf("controller: configure pin %d: %w", pinID, err)
	}

	level, err := c.driver.Input(pinID)
	if err != nil {
		_ = c.driver.UnconfigureButton(pinID)
		return nil, fmt.Errorf("controller: sample initial level for pin %d: %w", pinID, err)
	}

	if name == "" {
		name = fmt.Sprintf("pin%d", pinID)
	}

	recognizer := gesture.NewRecognizer(polarity)
	recognizer.Update(level, time.Now(), false)

	button := &Button{
		ctrl:     c,
		pinID:    pinID,
		Name:     name,
		Polarity: polarity,
	}
	button.recognizer = recognizer

	c.mu.Lock()
	c.buttons[pinID] = button
	c.mu.Unlock()

	return button, nil
}

// DeleteButton unconfigures the hardware backing button and removes it
// from the controller; no further events will be produced for it.
func (c *Controller) DeleteButton(button *Button) error {
	c.mu.Lock()
	existing, ok := c.buttons[button.pinID]
	if !ok || existing != button {
		c.mu.Unlock()
		return ErrButtonNotOwned
	}
	delete(c.buttons, button.pinID)
	c.mu.Unlock()

	c.scheduler.Schedule(button.pinID, time.Time{})
	return c.driver.UnconfigureButton(button.pinID)
}

// Run transitions the controller to Running and blocks until it
// becomes Stopped.
func (c *Controller) Run() error {
	if err := c.start(); err != nil {
		return err
	}
	<-c.stoppedCh
	return nil
}

// StartInThread transitions the controller to Running and returns
// immediately; the recognition and scheduling workers continue on
// their own goroutines.
func (c *Controller) StartInThread() error {
	return c.start()
}

func (c *Controller) start() error {
	c.mu.Lock()
	if c.status != Ready {
		status := c.status
		c.mu.Unlock()
		return fmt.Errorf("%w: current status is %s", ErrNotReady, status)
	}
	c.status = Running
	c.mu.Unlock()

	go c.scheduler.Run()
	return nil
}

// Status returns the controller's current lifecycle state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Buttons returns every currently registered button. The returned slice
// is a snapshot; it is safe to use without further locking.
func (c *Controller) Buttons() []*Button {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*Button, 0, len(c.buttons))
	for _, b := range c.buttons {
		out = append(out, b)
	}
	return out
}

// ButtonByName returns the first registered button with the given name,
// or false if none matches. Names are not required to be unique; use
// pin identity (MakeButton's return value) when that matters.
func (c *Controller) ButtonByName(name string) (*Button, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, b := range c.buttons {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// Stop transitions the controller to Stopping. If wait is true, it
// blocks until every in-flight handler has completed and the
// controller has reached Stopped. Calling Stop on an already-Stopped
// controller is a no-op; calling it on a controller that was never
// started returns ErrNotRunning.
func (c *Controller) Stop(wait bool) error {
	c.mu.Lock()
	switch c.status {
	case Ready:
		c.mu.Unlock()
		return fmt.Errorf("%w: current status is %s", ErrNotRunning, Ready)
	case Stopped:
		c.mu.Unlock()
		return nil
	case Stopping:
		done := c.stoppedCh
		c.mu.Unlock()
		if wait {
			<-done
		}
		return nil
	}
	c.status = Stopping
	c.mu.Unlock()

	c.scheduler.Stop()

	// Close the driver now, before waiting for in-flight handlers: on
	// real hardware this releases the chip handle and stops edge
	// delivery at the source, so no further onEdge calls can even be
	// attempted once Stopping has begun.
	if err := c.driver.Close(); err != nil {
		log.Printf("controller: closing driver: %v", err)
	}

	go func() {
		c.scheduler.Wait()
		c.executor.Stop(true)

		c.mu.Lock()
		c.status = Stopped
		c.mu.Unlock()
		close(c.stoppedCh)
	}()

	if wait {
		<-c.stoppedCh
	}
	return nil
}

// StopOnSignals installs handlers for the given OS signals that invoke
// Stop(wait=false).
func (c *Controller) StopOnSignals(signals ...os.Signal) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, signals...)
	go func() {
		<-ch
		_ = c.Stop(false)
	}()
}

// onEdge is the single callback subscribed to the driver. It locates
// the owning button, enters the state machine, routes emitted events to
// the executor, and notifies the scheduler of any new deadline.
//
// Mirrors _update_button's status guard in the original: an edge
// delivered while the controller is not Running (in particular during
// Stopping) must not touch the recognizer or produce further events.
func (c *Controller) onEdge(pinID int, edge hwdriver.Edge) {
	now := time.Now()
	level := edge == hwdriver.Rising

	c.mu.Lock()
	if c.status != Running {
		c.mu.Unlock()
		return
	}
	button, ok := c.buttons[pinID]
	if !ok {
		c.mu.Unlock()
		log.Printf("controller: edge for unknown pin %d ignored", pinID)
		return
	}
	events := button.recognizer.Update(level, now, true)
	next := button.recognizer.ScheduledUpdateTime()
	c.mu.Unlock()

	c.dispatch(button, events)
	c.scheduler.Schedule(pinID, next)
}

// fireDeadline is the scheduler's Fire callback: it re-enters the
// recognizer for pinID with the driver's currently cached level, as
// required by the scheduled-update contract. Guarded by the same
// Running check as onEdge: a deadline that fires after Stop has begun
// must not produce further events.
func (c *Controller) fireDeadline(pinID int, now time.Time) time.Time {
	c.mu.Lock()
	if c.status != Running {
		c.mu.Unlock()
		return time.Time{}
	}
	button, ok := c.buttons[pinID]
	if !ok {
		c.mu.Unlock()
		return time.Time{}
	}
	c.mu.Unlock()

	level, err := c.driver.Input(pinID)
	if err != nil {
		log.Printf("controller: reading pin %d during scheduled update: %v", pinID, err)
		return time.Time{}
	}

	c.mu.Lock()
	// Re-check ownership and status: the button may have been deleted,
	// or Stop may have begun, while we were outside the mutex reading
	// the driver.
	if c.status != Running {
		c.mu.Unlock()
		return time.Time{}
	}
	button, ok = c.buttons[pinID]
	if !ok {
		c.mu.Unlock()
		return time.Time{}
	}
	events := button.recognizer.Update(level, now, true)
	next := button.recognizer.ScheduledUpdateTime()
	c.mu.Unlock()

	c.dispatch(button, events)
	return next
}

// dispatch submits every handler registered for each emitted event, in
// registration order, to the callback executor.
func (c *Controller) dispatch(button *Button, events []gesture.Event) {
	for _, ev := range events {
		entries := button.handlersFor(ev.Type)
		label := button.Name + ":" + ev.Type.String()
		for _, entry := range entries {
			switch {
			case entry.immediate != nil:
				h := entry.immediate
				c.executor.Submit(label, func() { h(button) })
			case entry.deferred != nil:
				h := entry.deferred
				c.executor.SubmitDeferred(label, func() <-chan struct{} { return h(button) })
			}
		}
	}
}
