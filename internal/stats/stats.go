// Package stats counts key presses and encoder turns since startup.
package stats

import (
	"sync/atomic"
	"time"
)

// Counters is safe for concurrent use: the input loop increments while the
// config channel reads.
type Counters struct {
	start        time.Time
	keyPresses   []atomic.Uint64
	encoderTurns []atomic.Uint64
}

// Snapshot is a point-in-time copy of Counters.
type Snapshot struct {
	KeyPresses   []uint64 `json:"keyPresses"`
	EncoderTurns []uint64 `json:"encoderTurns"`
	Uptime       uint64   `json:"uptime"`
}

// New creates counters for the given number of keys and encoders.
func New(keys, encoders int) *Counters {
	return &Counters{
		start:        time.Now(),
		keyPresses:   make([]atomic.Uint64, keys),
		encoderTurns: make([]atomic.Uint64, encoders),
	}
}

// KeyPressed counts one press of key. Out-of-range keys are ignored.
func (c *Counters) KeyPressed(key int) {
	if key >= 0 && key < len(c.keyPresses) {
		c.keyPresses[key].Add(1)
	}
}

// EncoderTurned counts n detents on encoder, in either direction.
func (c *Counters) EncoderTurned(encoder, n int) {
	if n < 0 {
		n = -n
	}
	if encoder >= 0 && encoder < len(c.encoderTurns) && n > 0 {
		c.encoderTurns[encoder].Add(uint64(n))
	}
}

// Uptime returns time since the counters were created.
func (c *Counters) Uptime() time.Duration { return time.Since(c.start) }

// Snapshot copies the current values.
func (c *Counters) Snapshot() Snapshot {
	s := Snapshot{
		KeyPresses:   make([]uint64, len(c.keyPresses)),
		EncoderTurns: make([]uint64, len(c.encoderTurns)),
		Uptime:       uint64(c.Uptime() / time.Second),
	}
	for i := range c.keyPresses {
		s.KeyPresses[i] = c.keyPresses[i].Load()
	}
	for i := range c.encoderTurns {
		s.EncoderTurns[i] = c.encoderTurns[i].Load()
	}
	return s
}
