package controller

import (
	"time"

	"github.com/larsks/gpiobuttond/internal/gesture"
)

// Handler is an immediate gesture callback: it returns when its work is
// done.
type Handler func(*Button)

// DeferredHandler is an awaitable gesture callback: it returns a
// channel that closes once its asynchronous continuation has finished.
// A nil channel is treated as already complete.
type DeferredHandler func(*Button) <-chan struct{}

// HandlerID identifies a previously registered handler so it can later
// be removed.
type HandlerID int

type handlerEntry struct {
	id        HandlerID
	immediate Handler
	deferred  DeferredHandler
}

// Button is a single registered button: its identity, its current
// recognized state, and its per-gesture handler lists. All fields that
// change after construction are guarded by the owning Controller's
// mutex — Button holds no lock of its own, per the controller's
// "handler lists guarded by the controller mutex" contract.
type Button struct {
	ctrl *Controller

	pinID    int
	Name     string
	Polarity gesture.Polarity

	recognizer *gesture.Recognizer

	handlers  map[gesture.Type][]handlerEntry
	nextID    HandlerID
}

// PinID returns the hardware pin identifier this button was created
// with.
func (b *Button) PinID() int { return b.pinID }

// Pressed reports whether the button currently reads as pressed.
func (b *Button) Pressed() bool {
	b.ctrl.mu.Lock()
	defer b.ctrl.mu.Unlock()
	return b.recognizer.Pressed()
}

// LongPressed reports whether the current press interval has already
// crossed the long-press threshold.
func (b *Button) LongPressed() bool {
	b.ctrl.mu.Lock()
	defer b.ctrl.mu.Unlock()
	return b.recognizer.LongPressed()
}

// SetTimeouts overrides this button's double-click window and
// long-press threshold. A zero value leaves the corresponding timeout
// unchanged. Safe to call at any time; the new values apply starting
// with the next edge or scheduled update.
func (b *Button) SetTimeouts(doubleClick, longPress time.Duration) {
	b.ctrl.mu.Lock()
	defer b.ctrl.mu.Unlock()
	if doubleClick > 0 {
		b.recognizer.DoubleClickTimeout = doubleClick
	}
	if longPress > 0 {
		b.recognizer.LongPressTimeout = longPress
	}
}

// DoubleClickTimeout returns the configured double-click window.
func (b *Button) DoubleClickTimeout() time.Duration {
	b.ctrl.mu.Lock()
	defer b.ctrl.mu.Unlock()
	return b.recognizer.DoubleClickTimeout
}

// LongPressTimeout returns the configured long-press threshold.
func (b *Button) LongPressTimeout() time.Duration {
	b.ctrl.mu.Lock()
	defer b.ctrl.mu.Unlock()
	return b.recognizer.LongPressTimeout
}

func (b *Button) addHandler(g gesture.Type, immediate Handler, deferred DeferredHandler) HandlerID {
	b.ctrl.mu.Lock()
	defer b.ctrl.mu.Unlock()

	if b.handlers == nil {
		b.handlers = make(map[gesture.Type][]handlerEntry)
	}
	b.nextID++
	id := b.nextID
	b.handlers[g] = append(b.handlers[g], handlerEntry{id: id, immediate: immediate, deferred: deferred})
	return id
}

func (b *Button) removeHandler(g gesture.Type, id HandlerID) {
	b.ctrl.mu.Lock()
	defer b.ctrl.mu.Unlock()

	entries := b.handlers[g]
	for i, e := range entries {
		if e.id == id {
			b.handlers[g] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// handlersFor returns a snapshot of the handler list for g, taken under
// the controller mutex so dispatch can safely run outside of it.
func (b *Button) handlersFor(g gesture.Type) []handlerEntry {
	b.ctrl.mu.Lock()
	defer b.ctrl.mu.Unlock()
	return append([]handlerEntry(nil), b.handlers[g]...)
}

// AddOnPress registers an immediate handler for the press gesture.
func (b *Button) AddOnPress(h Handler) HandlerID { return b.addHandler(gesture.Press, h, nil) }

// AddOnPressDeferred registers a deferred handler for the press gesture.
func (b *Button) AddOnPressDeferred(h DeferredHandler) HandlerID {
	return b.addHandler(gesture.Press, nil, h)
}

// RemoveOnPress removes a previously registered press handler.
func (b *Button) RemoveOnPress(id HandlerID) { b.removeHandler(gesture.Press, id) }

// AddOnRelease registers an immediate handler for the release gesture.
func (b *Button) AddOnRelease(h Handler) HandlerID { return b.addHandler(gesture.Release, h, nil) }

// AddOnReleaseDeferred registers a deferred handler for the release gesture.
func (b *Button) AddOnReleaseDeferred(h DeferredHandler) HandlerID {
	return b.addHandler(gesture.Release, nil, h)
}

// RemoveOnRelease removes a previously registered release handler.
func (b *Button) RemoveOnRelease(id HandlerID) { b.removeHandler(gesture.Release, id) }

// AddOnLongPress registers an immediate handler for the long-press gesture.
func (b *Button) AddOnLongPress(h Handler) HandlerID {
	return b.addHandler(gesture.LongPress, h, nil)
}

// AddOnLongPressDeferred registers a deferred handler for the long-press gesture.
func (b *Button) AddOnLongPressDeferred(h DeferredHandler) HandlerID {
	return b.addHandler(gesture.LongPress, nil, h)
}

// RemoveOnLongPress removes a previously registered long-press handler.
func (b *Button) RemoveOnLongPress(id HandlerID) { b.removeHandler(gesture.LongPress, id) }

// AddOnClick registers an immediate handler for the click gesture.
func (b *Button) AddOnClick(h Handler) HandlerID { return b.addHandler(gesture.Click, h, nil) }

// AddOnClickDeferred registers a deferred handler for the click gesture.
func (b *Button) AddOnClickDeferred(h DeferredHandler) HandlerID {
	return b.addHandler(gesture.Click, nil, h)
}

// RemoveOnClick removes a previously registered click handler.
func (b *Button) RemoveOnClick(id HandlerID) { b.removeHandler(gesture.Click, id) }

// AddOnDoubleClick registers an immediate handler for the double-click gesture.
func (b *Button) AddOnDoubleClick(h Handler) HandlerID {
	return b.addHandler(gesture.DoubleClick, h, nil)
}

// AddOnDoubleClickDeferred registers a deferred handler for the double-click gesture.
func (b *Button) AddOnDoubleClickDeferred(h DeferredHandler) HandlerID {
	return b.addHandler(gesture.DoubleClick, nil, h)
}

// RemoveOnDoubleClick removes a previously registered double-click handler.
func (b *Button) RemoveOnDoubleClick(id HandlerID) { b.removeHandler(gesture.DoubleClick, id) }
