// Package sim provides a virtual keypad driven by the desktop keyboard.
// Its pins behave like the real wiring, so the matrix scanner and encoder
// decoder run unchanged against it.
package sim

import (
	"sync"

	"github.com/chaz8081/micropad/internal/input"
)

// gray is one clockwise detent of quadrature states, as (A<<1 | B).
var gray = [4]uint8{0b00, 0b10, 0b11, 0b01}

// Board holds the simulated contact state. It is safe for concurrent use:
// the hook goroutine mutates it while the polling loop reads the pins.
type Board struct {
	mu       sync.Mutex
	rows     int
	cols     int
	pressed  []bool
	driven   []bool // row held LOW
	encoders []*encoderState
}

type encoderState struct {
	phase   int
	pending int // signed quadrature steps not yet emitted
	button  bool
}

// NewBoard creates a rows x cols matrix with n encoders, all released.
func NewBoard(rows, cols, encoders int) *Board {
	b := &Board{
		rows:    rows,
		cols:    cols,
		pressed: make([]bool, rows*cols),
		driven:  make([]bool, rows),
	}
	for i := 0; i < encoders; i++ {
		b.encoders = append(b.encoders, &encoderState{})
	}
	return b
}

// Press sets the contact state of a matrix key.
func (b *Board) Press(key int, down bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if key >= 0 && key < len(b.pressed) {
		b.pressed[key] = down
	}
}

// Turn queues detents of rotation; positive is clockwise. Each detent is
// emitted as input.StepsPerDetent quadrature steps, one per encoder sample.
func (b *Board) Turn(enc, detents int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if enc >= 0 && enc < len(b.encoders) {
		b.encoders[enc].pending += detents * input.StepsPerDetent
	}
}

// PushButton sets an encoder's push button contact.
func (b *Board) PushButton(enc int, down bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if enc >= 0 && enc < len(b.encoders) {
		b.encoders[enc].button = down
	}
}

// RowPins returns the row drivers for input.NewMatrix.
func (b *Board) RowPins() []input.OutputPin {
	pins := make([]input.OutputPin, b.rows)
	for r := range pins {
		pins[r] = rowPin{b: b, row: r}
	}
	return pins
}

// ColPins returns the column inputs for input.NewMatrix.
func (b *Board) ColPins() []input.InputPin {
	pins := make([]input.InputPin, b.cols)
	for c := range pins {
		pins[c] = colPin{b: b, col: c}
	}
	return pins
}

// EncoderPins returns the A, B and switch inputs of encoder enc.
func (b *Board) EncoderPins(enc int) (a, bp, sw input.InputPin) {
	return encPinA{b: b, enc: enc}, encPinB{b: b, enc: enc}, encPinSW{b: b, enc: enc}
}

type rowPin struct {
	b   *Board
	row int
}

func (p rowPin) Set(high bool) {
	p.b.mu.Lock()
	p.b.driven[p.row] = !high
	p.b.mu.Unlock()
}

type colPin struct {
	b   *Board
	col int
}

// Read is LOW when a pressed key connects this column to a driven row.
func (p colPin) Read() bool {
	p.b.mu.Lock()
	defer p.b.mu.Unlock()
	for r := 0; r < p.b.rows; r++ {
		if p.b.driven[r] && p.b.pressed[r*p.b.cols+p.col] {
			return false
		}
	}
	return true
}

type encPinA struct {
	b   *Board
	enc int
}

// Read advances one pending quadrature step. The decoder samples A before
// B, so each Update sees exactly one transition.
func (p encPinA) Read() bool {
	p.b.mu.Lock()
	defer p.b.mu.Unlock()
	e := p.b.encoders[p.enc]
	switch {
	case e.pending > 0:
		e.phase = (e.phase + 1) % 4
		e.pending--
	case e.pending < 0:
		e.phase = (e.phase + 3) % 4
		e.pending++
	}
	return gray[e.phase]&0b10 != 0
}

type encPinB struct {
	b   *Board
	enc int
}

func (p encPinB) Read() bool {
	p.b.mu.Lock()
	defer p.b.mu.Unlock()
	return gray[p.b.encoders[p.enc].phase]&0b01 != 0
}

type encPinSW struct {
	b   *Board
	enc int
}

// Read is active-low like the hardware button.
func (p encPinSW) Read() bool {
	p.b.mu.Lock()
	defer p.b.mu.Unlock()
	return !p.b.encoders[p.enc].button
}
