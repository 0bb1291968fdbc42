package input

import "time"

// fakeClock is a manually advanced Clock.
type fakeClock struct{ now time.Time }

func newFakeClock() *fakeClock { return &fakeClock{now: time.Unix(1_700_000_000, 0)} }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// fakePin is a settable input line. Reads are HIGH unless low is set.
type fakePin struct{ high bool }

func (p *fakePin) Read() bool { return p.high }

// wiring simulates a pull-up key matrix: a column reads LOW only while a
// row driving LOW has a closed switch on that column.
type wiring struct {
	rowLow []bool
	closed [][]bool
	sets   int
}

func newWiring(rows, cols int) *wiring {
	w := &wiring{rowLow: make([]bool, rows), closed: make([][]bool, rows)}
	for r := range w.closed {
		w.closed[r] = make([]bool, cols)
	}
	return w
}

type rowPin struct {
	w   *wiring
	row int
}

func (p rowPin) Set(high bool) {
	p.w.rowLow[p.row] = !high
	p.w.sets++
}

type colPin struct {
	w   *wiring
	col int
}

func (p colPin) Read() bool {
	for r, low := range p.w.rowLow {
		if low && p.w.closed[r][p.col] {
			return false
		}
	}
	return true
}

func (w *wiring) pins() ([]OutputPin, []InputPin) {
	rows := make([]OutputPin, len(w.rowLow))
	for r := range rows {
		rows[r] = rowPin{w: w, row: r}
	}
	cols := make([]InputPin, len(w.closed[0]))
	for c := range cols {
		cols[c] = colPin{w: w, col: c}
	}
	return rows, cols
}
