package input

import (
	"log/slog"
	"time"
)

// Valid quadrature transitions, indexed by old<<2 | new.
var (
	clockwise        = [16]bool{0b0010: true, 0b1011: true, 0b1101: true, 0b0100: true}
	counterClockwise = [16]bool{0b0001: true, 0b0111: true, 0b1110: true, 0b1000: true}
)

// EncoderOptions tunes the decoder. Zero values fall back to the hardware
// defaults.
type EncoderOptions struct {
	Debounce       time.Duration
	AccelThreshold time.Duration
	Clock          Clock
}

// Encoder decodes a quadrature rotary encoder with an active-low push button.
type Encoder struct {
	pinA, pinB, pinSW InputPin

	lastEncoded  uint8
	position     int
	lastPosition int

	acceleration float64
	lastTurn     time.Time

	sw debouncer

	debounce       time.Duration
	accelThreshold time.Duration
	clock          Clock
}

// NewEncoder creates a decoder and latches the current A/B levels as the
// starting gray code. sw may be nil for encoders without a button.
func NewEncoder(a, b, sw InputPin, opts EncoderOptions) *Encoder {
	if opts.Debounce <= 0 {
		opts.Debounce = DebounceWindow
	}
	if opts.AccelThreshold <= 0 {
		opts.AccelThreshold = AccelThreshold
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	e := &Encoder{
		pinA:           a,
		pinB:           b,
		pinSW:          sw,
		acceleration:   MinAcceleration,
		debounce:       opts.Debounce,
		accelThreshold: opts.AccelThreshold,
		clock:          opts.Clock,
	}
	e.lastEncoded = e.readGray()
	return e
}

func (e *Encoder) readGray() uint8 {
	var v uint8
	if e.pinA.Read() {
		v |= 0b10
	}
	if e.pinB.Read() {
		v |= 0b01
	}
	return v
}

// Update samples both quadrature lines and the button once.
func (e *Encoder) Update() {
	now := e.clock.Now()

	encoded := e.readGray()
	if encoded != e.lastEncoded {
		sum := e.lastEncoded<<2 | encoded
		switch {
		case clockwise[sum]:
			e.position++
			e.accelerate(now)
		case counterClockwise[sum]:
			e.position--
			e.accelerate(now)
		default:
			slog.Debug("[ENCODER] ignored transition", "sum", sum)
		}
		e.lastEncoded = encoded
	}

	if e.pinSW != nil {
		e.sw.sample(!e.pinSW.Read(), now, e.debounce)
	}
}

func (e *Encoder) accelerate(now time.Time) {
	if !e.lastTurn.IsZero() && now.Sub(e.lastTurn) < e.accelThreshold {
		e.acceleration += 0.5
		if e.acceleration > MaxAcceleration {
			e.acceleration = MaxAcceleration
		}
	} else {
		e.acceleration -= 0.2
		if e.acceleration < MinAcceleration {
			e.acceleration = MinAcceleration
		}
	}
	e.lastTurn = now
}

// Delta returns the signed step count since the previous call and resets
// the checkpoint.
func (e *Encoder) Delta() int {
	d := e.position - e.lastPosition
	e.lastPosition = e.position
	return d
}

// Position returns the absolute step counter.
func (e *Encoder) Position() int { return e.position }

// Acceleration returns the current velocity multiplier in [1.0, 5.0].
func (e *Encoder) Acceleration() float64 { return e.acceleration }

// SWPressed reports the stable button state.
func (e *Encoder) SWPressed() bool { return e.sw.current }

// SWJustPressed reports whether the button became pressed on the last update.
// The edge is cleared by the next Update.
func (e *Encoder) SWJustPressed() bool { return e.sw.justPressed() }

// SWJustReleased reports whether the button became released on the last
// update. The edge is cleared by the next Update.
func (e *Encoder) SWJustReleased() bool { return e.sw.justReleased() }
