package gesture

import (
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(seconds float64) time.Time {
	return epoch.Add(time.Duration(seconds * float64(time.Second)))
}

func newTestRecognizer(initialLevel bool) *Recognizer {
	r := NewRecognizer(PressedWhenHigh)
	r.Update(initialLevel, epoch, false)
	return r
}

func typesOf(events []Event) []Type {
	out := make([]Type, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func assertTypes(t *testing.T, got []Event, want ...Type) {
	t.Helper()
	gotTypes := typesOf(got)
	if len(gotTypes) != len(want) {
		t.Fatalf("got %v, want %v", gotTypes, want)
	}
	for i := range want {
		if gotTypes[i] != want[i] {
			t.Fatalf("got %v, want %v", gotTypes, want)
		}
	}
}

// Simple click: press at 0.00, release at 0.05, click deferred to
// press+double_click_timeout since the release happened well inside the
// double-click window.
func TestRecognizer_SimpleClick(t *testing.T) {
	r := newTestRecognizer(false)

	ev := r.Update(true, at(0.00), true)
	assertTypes(t, ev, Press)

	ev = r.Update(false, at(0.05), true)
	assertTypes(t, ev, Release)

	deadline := r.ScheduledUpdateTime()
	if !deadline.Equal(at(0.40)) {
		t.Fatalf("scheduled deadline = %v, want %v", deadline, at(0.40))
	}

	ev = r.Update(false, deadline, true)
	assertTypes(t, ev, Click)
	if !r.ScheduledUpdateTime().IsZero() {
		t.Fatalf("expected no pending deadline after click, got %v", r.ScheduledUpdateTime())
	}
}

// Long press then release: the long-press deadline fires at
// press+long_press_timeout; release happens after the double-click
// window has already elapsed relative to the press, so click emission
// happens immediately on release rather than waiting for a further
// deadline — the "time since last press exceeds double_click_timeout"
// test is already true at release time here.
func TestRecognizer_LongPressThenRelease(t *testing.T) {
	r := newTestRecognizer(false)

	ev := r.Update(true, at(0.00), true)
	assertTypes(t, ev, Press)

	longPressDeadline := r.ScheduledUpdateTime()
	if !longPressDeadline.Equal(at(0.50)) {
		t.Fatalf("long-press deadline = %v, want %v", longPressDeadline, at(0.50))
	}

	// Scheduled-update worker re-enters with the cached (still pressed)
	// level once the deadline is due.
	ev = r.Update(true, at(0.50).Add(time.Microsecond), true)
	assertTypes(t, ev, LongPress)
	if !r.LongPressed() {
		t.Fatal("expected LongPressed() true after long_press event")
	}

	ev = r.Update(false, at(0.70), true)
	assertTypes(t, ev, Release, Click)
	if r.LongPressed() {
		t.Fatal("expected LongPressed() false after release")
	}
}

// Double click: second press arrives inside the first press's
// double-click window, so the second release produces double_click
// instead of a click.
func TestRecognizer_DoubleClick(t *testing.T) {
	r := newTestRecognizer(false)

	ev := r.Update(true, at(0.00), true)
	assertTypes(t, ev, Press)

	ev = r.Update(false, at(0.05), true)
	assertTypes(t, ev, Release)

	ev = r.Update(true, at(0.10), true)
	assertTypes(t, ev, Press)

	ev = r.Update(false, at(0.15), true)
	assertTypes(t, ev, Release, DoubleClick)

	if !r.ScheduledUpdateTime().IsZero() {
		t.Fatalf("expected no pending deadline after double_click, got %v", r.ScheduledUpdateTime())
	}
}

// Press too short for long press: release comes well before the
// long-press timeout; click is still deferred to press+timeout.
func TestRecognizer_PressTooShortForLongPress(t *testing.T) {
	r := newTestRecognizer(false)

	ev := r.Update(true, at(0.00), true)
	assertTypes(t, ev, Press)

	ev = r.Update(false, at(0.30), true)
	assertTypes(t, ev, Release)

	deadline := r.ScheduledUpdateTime()
	if !deadline.Equal(at(0.40)) {
		t.Fatalf("scheduled deadline = %v, want %v", deadline, at(0.40))
	}

	ev = r.Update(false, deadline, true)
	assertTypes(t, ev, Click)
	if r.LongPressed() {
		t.Fatal("expected no long_press to have fired")
	}
}

// Startup with the pin already active: the baseline update must not
// synthesize a press, so the first real falling edge produces only a
// release.
func TestRecognizer_StartupAlreadyActive(t *testing.T) {
	r := newTestRecognizer(true)

	if !r.Pressed() {
		t.Fatal("expected Pressed() true immediately after baseline priming")
	}
	if !r.ScheduledUpdateTime().IsZero() {
		t.Fatal("baseline priming must not schedule a deadline")
	}

	ev := r.Update(false, at(5.00), true)
	assertTypes(t, ev, Release)
	if !r.ScheduledUpdateTime().IsZero() {
		t.Fatalf("expected no deadline after a lone release, got %v", r.ScheduledUpdateTime())
	}
}

// long_pressed must never be true while pressed is false.
func TestRecognizer_LongPressedImpliesPressed(t *testing.T) {
	r := newTestRecognizer(false)
	r.Update(true, at(0.00), true)
	r.Update(true, at(0.60), true)
	if r.LongPressed() && !r.Pressed() {
		t.Fatal("long_pressed true while pressed false")
	}
	r.Update(false, at(0.70), true)
	if r.LongPressed() {
		t.Fatal("long_pressed must clear on release")
	}
}

// At most one long_press event fires per contiguous pressed interval,
// even if the scheduled-update worker re-enters the recognizer again
// before the next edge.
func TestRecognizer_LongPressFiresOnlyOnce(t *testing.T) {
	r := newTestRecognizer(false)
	r.Update(true, at(0.00), true)

	ev := r.Update(true, at(0.60), true)
	assertTypes(t, ev, LongPress)

	// A spurious extra re-entry at the same cached level must not
	// produce a second long_press.
	ev = r.Update(true, at(0.80), true)
	if len(ev) != 0 {
		t.Fatalf("expected no events on redundant re-entry, got %v", typesOf(ev))
	}
}

// A click and a double_click can never both fire for the same release.
func TestRecognizer_ClickAndDoubleClickMutuallyExclusive(t *testing.T) {
	r := newTestRecognizer(false)
	r.Update(true, at(0.00), true)
	r.Update(false, at(0.05), true)
	r.Update(true, at(0.10), true)
	ev := r.Update(false, at(0.15), true)

	hasClick, hasDouble := false, false
	for _, e := range ev {
		if e.Type == Click {
			hasClick = true
		}
		if e.Type == DoubleClick {
			hasDouble = true
		}
	}
	if hasClick && hasDouble {
		t.Fatal("click and double_click both fired for the same release")
	}
	if !hasDouble {
		t.Fatal("expected double_click")
	}
}

// scheduleUpdate always keeps the earliest pending deadline, mirroring
// the scheduled-update service's "recompute the next wait deadline"
// contract.
func TestRecognizer_ScheduleUpdateKeepsEarliest(t *testing.T) {
	r := NewRecognizer(PressedWhenHigh)
	r.scheduleUpdate(at(10))
	r.scheduleUpdate(at(5))
	if !r.ScheduledUpdateTime().Equal(at(5)) {
		t.Fatalf("scheduled = %v, want %v", r.ScheduledUpdateTime(), at(5))
	}
	r.scheduleUpdate(at(20))
	if !r.ScheduledUpdateTime().Equal(at(5)) {
		t.Fatalf("scheduled after later request = %v, want unchanged %v", r.ScheduledUpdateTime(), at(5))
	}
}

func TestRecognizer_PressedWhenLowPolarity(t *testing.T) {
	r := NewRecognizer(PressedWhenLow)
	r.Update(true, epoch, false)
	if r.Pressed() {
		t.Fatal("high level must read as released for PressedWhenLow")
	}

	ev := r.Update(false, at(0.00), true)
	assertTypes(t, ev, Press)
	if !r.Pressed() {
		t.Fatal("low level must read as pressed for PressedWhenLow")
	}
}
