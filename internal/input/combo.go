package input

import (
	"errors"
	"log/slog"
	"time"
)

// MaxCombos is the capacity of a ComboDetector.
const MaxCombos = 8

// ErrComboTableFull is returned by Add once MaxCombos combos are registered.
var ErrComboTableFull = errors.New("input: combo table full")

type combo struct {
	key1, key2 int
	hold       time.Duration

	start    time.Time // zero until both keys are seen down together
	fired    bool      // latched for the rest of the co-press
	detected bool      // pending until consumed by Triggered
}

// ComboDetector recognizes two keys held down together for a minimum time.
// Combos sharing a key are evaluated independently.
type ComboDetector struct {
	combos    []combo
	triggered int
	clock     Clock
}

// NewComboDetector returns an empty detector. A nil clock uses SystemClock.
func NewComboDetector(clock Clock) *ComboDetector {
	if clock == nil {
		clock = SystemClock
	}
	return &ComboDetector{
		combos:    make([]combo, 0, MaxCombos),
		triggered: -1,
		clock:     clock,
	}
}

// Add registers the unordered pair (key1, key2). When the table is full the
// combo is dropped with a warning.
func (d *ComboDetector) Add(key1, key2 int, hold time.Duration) error {
	if len(d.combos) >= MaxCombos {
		slog.Warn("[COMBO] max combos reached", "key1", key1, "key2", key2)
		return ErrComboTableFull
	}
	d.combos = append(d.combos, combo{key1: key1, key2: key2, hold: hold})
	slog.Debug("[COMBO] added", "key1", key1, "key2", key2, "hold", hold)
	return nil
}

// Clear removes every registered combo.
func (d *ComboDetector) Clear() {
	d.combos = d.combos[:0]
	d.triggered = -1
}

// Len returns the number of registered combos.
func (d *ComboDetector) Len() int { return len(d.combos) }

// Update evaluates every combo against the full pressed-state vector. It
// must be called once per loop iteration.
func (d *ComboDetector) Update(states []bool) {
	d.triggered = -1
	now := d.clock.Now()

	for i := range d.combos {
		c := &d.combos[i]
		if !pressed(states, c.key1) || !pressed(states, c.key2) {
			c.start = time.Time{}
			c.fired = false
			c.detected = false
			continue
		}
		if c.start.IsZero() {
			c.start = now
			continue
		}
		if !c.fired && now.Sub(c.start) >= c.hold {
			c.fired = true
			c.detected = true
			d.triggered = i
			slog.Debug("[COMBO] triggered", "key1", c.key1, "key2", c.key2)
		}
	}
}

// Triggered reports whether the combo (key1, key2), in either order, fired
// since the last call and clears the flag.
func (d *ComboDetector) Triggered(key1, key2 int) bool {
	for i := range d.combos {
		c := &d.combos[i]
		if (c.key1 == key1 && c.key2 == key2) || (c.key1 == key2 && c.key2 == key1) {
			hit := c.detected
			c.detected = false
			return hit
		}
	}
	return false
}

// TriggeredIndex returns the index of the combo that fired during the last
// Update, or -1.
func (d *ComboDetector) TriggeredIndex() int { return d.triggered }

func pressed(states []bool, key int) bool {
	return key >= 0 && key < len(states) && states[key]
}
