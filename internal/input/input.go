// Package input turns raw electrical samples from the key matrix, rotary
// encoders and encoder push buttons into debounced, edge-triggered state.
//
// Every type in this package is meant to be driven from a single polling
// loop. None of them are safe for concurrent use.
package input

import "time"

// Hardware defaults for the 3x4 keypad.
const (
	MatrixRows = 3
	MatrixCols = 4
	MatrixKeys = MatrixRows * MatrixCols

	DebounceWindow  = 5 * time.Millisecond
	RowSettle       = 5 * time.Microsecond
	AccelThreshold  = 50 * time.Millisecond
	StepsPerDetent  = 4
	MaxAcceleration = 5.0
	MinAcceleration = 1.0
)

// InputPin is a digital input line. Read reports the electrical level:
// true for HIGH, false for LOW.
type InputPin interface {
	Read() bool
}

// OutputPin is a digital output line.
type OutputPin interface {
	Set(high bool)
}

// Clock supplies monotonic timestamps to the debounce and acceleration logic.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock used outside of tests.
var SystemClock Clock = systemClock{}

// debouncer is a time-hysteresis filter for one contact. A raw level change
// restarts the timer; the stable level only follows once the raw level has
// held for the full window.
type debouncer struct {
	current    bool
	previous   bool
	raw        bool
	lastChange time.Time
	pressStart time.Time
}

// sample feeds one raw reading. It must be called exactly once per scan so
// that previous always holds the stable level of the prior scan.
func (d *debouncer) sample(raw bool, now time.Time, window time.Duration) {
	d.previous = d.current

	if raw != d.raw {
		d.raw = raw
		d.lastChange = now
	}
	if now.Sub(d.lastChange) < window {
		return
	}
	if d.raw != d.current {
		d.current = d.raw
		if d.current {
			d.pressStart = now
		}
	}
}

func (d *debouncer) justPressed() bool  { return d.current && !d.previous }
func (d *debouncer) justReleased() bool { return !d.current && d.previous }

func (d *debouncer) heldFor(now time.Time) time.Duration {
	if !d.current {
		return 0
	}
	return now.Sub(d.pressStart)
}
