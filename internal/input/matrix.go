package input

import (
	"log/slog"
	"time"
)

// MatrixOptions tunes the scanner timing. Zero values fall back to the
// hardware defaults.
type MatrixOptions struct {
	Debounce time.Duration
	Settle   time.Duration
	Clock    Clock
	// Sleep waits for a row line to settle. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

// Matrix scans a row/column key matrix wired active-low with pull-ups on
// the column lines. Key index is row*cols + col.
type Matrix struct {
	rows []OutputPin
	cols []InputPin
	keys []debouncer

	debounce time.Duration
	settle   time.Duration
	clock    Clock
	sleep    func(time.Duration)
}

// NewMatrix creates a scanner over the given row drivers and column inputs
// and parks every row HIGH (inactive).
func NewMatrix(rows []OutputPin, cols []InputPin, opts MatrixOptions) *Matrix {
	if opts.Debounce <= 0 {
		opts.Debounce = DebounceWindow
	}
	if opts.Settle < 0 {
		opts.Settle = 0
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}

	m := &Matrix{
		rows:     rows,
		cols:     cols,
		keys:     make([]debouncer, len(rows)*len(cols)),
		debounce: opts.Debounce,
		settle:   opts.Settle,
		clock:    opts.Clock,
		sleep:    opts.Sleep,
	}
	for _, r := range rows {
		r.Set(true)
	}
	slog.Debug("[MATRIX] initialized", "rows", len(rows), "cols", len(cols))
	return m
}

// NumKeys returns rows*cols.
func (m *Matrix) NumKeys() int { return len(m.keys) }

// Scan drives each row LOW in turn, samples every column and feeds the
// inverted reading through the key's debounce filter.
func (m *Matrix) Scan() {
	for r, row := range m.rows {
		row.Set(false)
		if m.settle > 0 {
			m.sleep(m.settle)
		}
		now := m.clock.Now()
		for c, col := range m.cols {
			m.keys[r*len(m.cols)+c].sample(!col.Read(), now, m.debounce)
		}
		row.Set(true)
	}
}

// IsPressed reports the stable state of key.
func (m *Matrix) IsPressed(key int) bool {
	if key < 0 || key >= len(m.keys) {
		return false
	}
	return m.keys[key].current
}

// JustPressed reports whether key became pressed on the last scan. The
// edge holds for exactly one scan: the next Scan clears it even if the key
// is still held, so callers must check it after every Scan.
func (m *Matrix) JustPressed(key int) bool {
	if key < 0 || key >= len(m.keys) {
		return false
	}
	return m.keys[key].justPressed()
}

// JustReleased reports whether key became released on the last scan. Like
// JustPressed, the edge is cleared by the next Scan.
func (m *Matrix) JustReleased(key int) bool {
	if key < 0 || key >= len(m.keys) {
		return false
	}
	return m.keys[key].justReleased()
}

// PressedDuration returns how long key has been stably pressed, or 0.
func (m *Matrix) PressedDuration(key int) time.Duration {
	if key < 0 || key >= len(m.keys) {
		return 0
	}
	return m.keys[key].heldFor(m.clock.Now())
}

// States copies the stable pressed state of every key into dst, growing it
// if needed, and returns it.
func (m *Matrix) States(dst []bool) []bool {
	if cap(dst) < len(m.keys) {
		dst = make([]bool, len(m.keys))
	}
	dst = dst[:len(m.keys)]
	for i := range m.keys {
		dst[i] = m.keys[i].current
	}
	return dst
}
