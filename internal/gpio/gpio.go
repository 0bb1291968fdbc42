// Package gpio binds the keypad's matrix rows, columns and encoder lines to
// real GPIO pins through periph.io.
package gpio

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/chaz8081/micropad/internal/input"
)

// ErrUnknownPin is returned when a configured pin name is not registered.
var ErrUnknownPin = errors.New("gpio: unknown pin")

// EncoderNames names the pins of one encoder. SW may be empty.
type EncoderNames struct {
	A, B, SW string
}

// Layout names every pin the keypad uses, e.g. "GPIO17".
type Layout struct {
	Rows     []string
	Cols     []string
	Encoders []EncoderNames
}

// EncoderPins are the configured lines of one encoder. SW is nil when the
// encoder has no button.
type EncoderPins struct {
	A, B, SW input.InputPin
}

// Pins are the configured lines, ready for input.NewMatrix and
// input.NewEncoder.
type Pins struct {
	Rows     []input.OutputPin
	Cols     []input.InputPin
	Encoders []EncoderPins
}

// Open initializes the host drivers and configures every pin in l: rows as
// outputs parked HIGH, everything else as inputs with pull-ups.
func Open(l Layout) (*Pins, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("gpio: init host: %w", err)
	}
	return open(l, gpioreg.ByName)
}

func open(l Layout, lookup func(string) gpio.PinIO) (*Pins, error) {
	p := &Pins{}
	for _, name := range l.Rows {
		pin, err := output(lookup, name)
		if err != nil {
			return nil, err
		}
		p.Rows = append(p.Rows, pin)
	}
	for _, name := range l.Cols {
		pin, err := pullUp(lookup, name)
		if err != nil {
			return nil, err
		}
		p.Cols = append(p.Cols, pin)
	}
	for i, e := range l.Encoders {
		var ep EncoderPins
		var err error
		if ep.A, err = pullUp(lookup, e.A); err != nil {
			return nil, fmt.Errorf("gpio: encoder %d A: %w", i, err)
		}
		if ep.B, err = pullUp(lookup, e.B); err != nil {
			return nil, fmt.Errorf("gpio: encoder %d B: %w", i, err)
		}
		if e.SW != "" {
			if ep.SW, err = pullUp(lookup, e.SW); err != nil {
				return nil, fmt.Errorf("gpio: encoder %d SW: %w", i, err)
			}
		}
		p.Encoders = append(p.Encoders, ep)
	}
	slog.Info("[GPIO] pins configured", "rows", len(p.Rows), "cols", len(p.Cols), "encoders", len(p.Encoders))
	return p, nil
}

func find(lookup func(string) gpio.PinIO, name string) (gpio.PinIO, error) {
	pin := lookup(name)
	if pin == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPin, name)
	}
	return pin, nil
}

func pullUp(lookup func(string) gpio.PinIO, name string) (input.InputPin, error) {
	pin, err := find(lookup, name)
	if err != nil {
		return nil, err
	}
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("gpio: configure %s as input: %w", name, err)
	}
	return inPin{pin: pin}, nil
}

func output(lookup func(string) gpio.PinIO, name string) (input.OutputPin, error) {
	pin, err := find(lookup, name)
	if err != nil {
		return nil, err
	}
	if err := pin.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("gpio: configure %s as output: %w", name, err)
	}
	return &outPin{pin: pin}, nil
}

type inPin struct {
	pin gpio.PinIn
}

func (p inPin) Read() bool { return bool(p.pin.Read()) }

type outPin struct {
	pin  gpio.PinOut
	once sync.Once
}

// Set drives the line. The scan loop has no error path, so a failing pin
// is reported once and otherwise ignored.
func (p *outPin) Set(high bool) {
	if err := p.pin.Out(gpio.Level(high)); err != nil {
		p.once.Do(func() {
			slog.Error("[GPIO] failed to drive pin", "pin", p.pin.String(), "error", err)
		})
	}
}
