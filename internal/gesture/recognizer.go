package gesture

import "time"

// DefaultDoubleClickTimeout and DefaultLongPressTimeout are the default
// gesture timing thresholds used when a button is not configured with
// its own values.
const (
	DefaultDoubleClickTimeout = 400 * time.Millisecond
	DefaultLongPressTimeout   = 500 * time.Millisecond
)

// Recognizer is the per-button gesture state machine (component C2). It
// holds no lock and calls no handlers: Update is pure logic over
// (previous state, current level, current time), exactly as required.
//
// Only the latest two press timestamps and the latest release timestamp
// are ever consulted by the algorithm, so history is kept as a two-slot
// ring plus a scalar instead of unbounded slices.
type Recognizer struct {
	Polarity Polarity

	DoubleClickTimeout time.Duration
	LongPressTimeout   time.Duration

	pressed     bool
	longPressed bool

	// pressTimes holds at most the two most recent press timestamps;
	// pressTimes[len-1] is the latest.
	pressTimes []time.Time
	// lastRelease is the timestamp of the most recent release, or the
	// zero Time if none has occurred yet.
	lastRelease time.Time

	// scheduledUpdateTime is the deadline at which Update must be
	// re-invoked even without a new edge. The zero Time means "none
	// pending".
	scheduledUpdateTime time.Time
}

// NewRecognizer builds a Recognizer with the given polarity and default
// timeouts.
func NewRecognizer(polarity Polarity) *Recognizer {
	return &Recognizer{
		Polarity:           polarity,
		DoubleClickTimeout: DefaultDoubleClickTimeout,
		LongPressTimeout:   DefaultLongPressTimeout,
	}
}

// Pressed reports the last-computed pressed state.
func (r *Recognizer) Pressed() bool { return r.pressed }

// LongPressed reports whether the current press interval has already
// crossed the long-press threshold.
func (r *Recognizer) LongPressed() bool { return r.longPressed }

// ScheduledUpdateTime returns the deadline at which the recognizer must
// be re-entered absent a new edge, or the zero Time if none is pending.
func (r *Recognizer) ScheduledUpdateTime() time.Time { return r.scheduledUpdateTime }

// activeLevel reports the pin level that means "pressed" for this
// recognizer's polarity.
func (r *Recognizer) activeLevel() bool {
	return r.Polarity == PressedWhenHigh
}

// Update feeds one (level, now) sample into the state machine. emit is
// false exactly once per button: the baseline call made at creation time
// to record the pin's starting level. That call only primes r.pressed —
// it runs none of the edge-detection or history logic below, so a
// button that starts out physically pressed does not synthesize a
// press, a long-press deadline, or a click out of thin air.
//
// The returned events are in causal emission order for this button.
func (r *Recognizer) Update(level bool, now time.Time, emit bool) []Event {
	if !emit {
		r.pressed = level == r.activeLevel()
		if !r.pressed {
			r.longPressed = false
		}
		return nil
	}

	wasPressed := r.pressed
	newPressed := level == r.activeLevel()
	r.pressed = newPressed
	if !r.pressed {
		r.longPressed = false
	}

	// Any pending deadline we were carrying has now been serviced by
	// this very call (whether it triggered it or an edge preempted it).
	r.scheduledUpdateTime = time.Time{}

	var events []Event
	emitted := false

	// 1. Edge detection.
	switch {
	case r.pressed && !wasPressed: // rising edge
		r.recordPress(now)
		if emit {
			events = append(events, Event{Type: Press, Time: now})
		}
	case !r.pressed && wasPressed: // falling edge
		r.lastRelease = now
		if emit {
			events = append(events, Event{Type: Release, Time: now})
		}
	}

	// 2. Long-press arming.
	if r.pressed && !r.longPressed {
		lastPress := r.lastPressTime()
		if now.Sub(lastPress) > r.LongPressTimeout {
			r.longPressed = true
			if emit {
				events = append(events, Event{Type: LongPress, Time: now})
			}
		} else {
			r.scheduleUpdate(lastPress.Add(r.LongPressTimeout))
		}
	}

	// 3. Double-click detection, evaluated only on the falling edge just
	// produced.
	if !r.pressed && wasPressed && len(r.pressTimes) >= 2 {
		firstPress := r.pressTimes[0]
		if now.Sub(firstPress) < r.DoubleClickTimeout {
			if emit {
				events = append(events, Event{Type: DoubleClick, Time: now})
			}
			r.clearHistory()
			emitted = true
		}
	}

	// 4. Click emission, skipped if double-click already consumed the
	// history.
	if !emitted && len(r.pressTimes) > 0 && !r.lastRelease.IsZero() {
		lastPress := r.lastPressTime()
		if r.lastRelease.After(lastPress) {
			if now.Sub(lastPress) >= r.DoubleClickTimeout {
				if emit {
					events = append(events, Event{Type: Click, Time: now})
				}
				r.clearHistory()
			} else {
				r.scheduleUpdate(lastPress.Add(r.DoubleClickTimeout))
			}
		}
	}

	return events
}

func (r *Recognizer) recordPress(t time.Time) {
	r.pressTimes = append(r.pressTimes, t)
	if len(r.pressTimes) > 2 {
		r.pressTimes = r.pressTimes[len(r.pressTimes)-2:]
	}
}

func (r *Recognizer) lastPressTime() time.Time {
	return r.pressTimes[len(r.pressTimes)-1]
}

func (r *Recognizer) clearHistory() {
	r.pressTimes = nil
	r.lastRelease = time.Time{}
}

// scheduleUpdate requests re-entry no later than updateTime, keeping the
// earliest of any existing request.
func (r *Recognizer) scheduleUpdate(updateTime time.Time) {
	if r.scheduledUpdateTime.IsZero() || updateTime.Before(r.scheduledUpdateTime) {
		r.scheduledUpdateTime = updateTime
	}
}
