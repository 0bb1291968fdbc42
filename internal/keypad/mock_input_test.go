package keypad

import (
	"sync"
	"time"

	"github.com/chaz8081/micropad/internal/action"
	"github.com/chaz8081/micropad/internal/input"
	"github.com/chaz8081/micropad/internal/profile"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// wiring emulates an active-low key matrix: a column reads LOW while a
// driven (LOW) row has a pressed key on it.
type wiring struct {
	rows    []*rowPin
	cols    int
	pressed map[int]bool
}

type rowPin struct{ high bool }

func (r *rowPin) Set(high bool) { r.high = high }

type colPin struct {
	w   *wiring
	col int
}

func (c colPin) Read() bool {
	for r, row := range c.w.rows {
		if !row.high && c.w.pressed[r*c.w.cols+c.col] {
			return false
		}
	}
	return true
}

func newWiring(rows, cols int) *wiring {
	w := &wiring{cols: cols, pressed: map[int]bool{}}
	for i := 0; i < rows; i++ {
		w.rows = append(w.rows, &rowPin{high: true})
	}
	return w
}

func (w *wiring) matrix(clock input.Clock) *input.Matrix {
	rows := make([]input.OutputPin, len(w.rows))
	for i, r := range w.rows {
		rows[i] = r
	}
	cols := make([]input.InputPin, w.cols)
	for i := range cols {
		cols[i] = colPin{w: w, col: i}
	}
	return input.NewMatrix(rows, cols, input.MatrixOptions{Clock: clock, Sleep: func(time.Duration) {}})
}

type levelPin struct{ high bool }

func (p *levelPin) Read() bool { return p.high }

// knob drives the three lines of one encoder.
type knob struct {
	a, b, sw *levelPin
	phase    int
}

var grayCW = [4][2]bool{{false, false}, {true, false}, {true, true}, {false, true}}

func newKnob() *knob {
	return &knob{a: &levelPin{}, b: &levelPin{}, sw: &levelPin{high: true}}
}

func (k *knob) encoder(clock input.Clock) *input.Encoder {
	return input.NewEncoder(k.a, k.b, k.sw, input.EncoderOptions{Clock: clock})
}

// step moves one quadrature state clockwise (dir > 0) or counter-clockwise.
func (k *knob) step(dir int) {
	k.phase = (k.phase + dir + 4) % 4
	k.a.high, k.b.high = grayCW[k.phase][0], grayCW[k.phase][1]
}

type fakeProfiles struct {
	mu      sync.Mutex
	active  int
	slots   map[int]*profile.Profile
	reloads int
	stale   bool // ReloadActive reports no change
}

func newFakeProfiles(ps ...*profile.Profile) *fakeProfiles {
	f := &fakeProfiles{slots: map[int]*profile.Profile{}}
	for _, p := range ps {
		f.slots[p.ID] = p
	}
	return f
}

func (f *fakeProfiles) Current() *profile.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slots[f.active].Clone()
}

func (f *fakeProfiles) ActiveProfileID() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *fakeProfiles) Exists(id int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.slots[id]
	return ok
}

func (f *fakeProfiles) SetActiveProfile(id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.slots[id]; !ok {
		return profile.ErrNotFound
	}
	f.active = id
	return nil
}

func (f *fakeProfiles) ReloadActive() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return !f.stale, nil
}

type recordingExecutor struct {
	mu   sync.Mutex
	runs []action.Action
}

func (e *recordingExecutor) Execute(a action.Action) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runs = append(e.runs, a)
	return nil
}

func (e *recordingExecutor) actions() []action.Action {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]action.Action(nil), e.runs...)
}

type recordingEvents struct{ changed []int }

func (e *recordingEvents) ProfileChanged(id int) { e.changed = append(e.changed, id) }

type countingStats struct {
	keys   map[int]int
	turns  map[int]int
	nonPos int // EncoderTurned calls with n <= 0
}

func newCountingStats() *countingStats {
	return &countingStats{keys: map[int]int{}, turns: map[int]int{}}
}

func (s *countingStats) KeyPressed(key int) { s.keys[key]++ }
func (s *countingStats) EncoderTurned(enc, n int) {
	if n <= 0 {
		s.nonPos++
	}
	s.turns[enc] += n
}

type messageSink struct{ got chan []byte }

func (m messageSink) HandleMessage(msg []byte) { m.got <- msg }
