// Package inject is the desktop HID backend. It replays keypad reports as
// synthetic input on the local machine using robotgo, so the keypad can be
// exercised without a BLE host.
package inject

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-vgo/robotgo"

	"github.com/chaz8081/micropad/internal/hid"
)

// ErrUnmapped is returned for usages with no desktop key name.
var ErrUnmapped = errors.New("inject: no desktop key for usage")

// robot is the subset of robotgo the backend drives.
type robot interface {
	KeyToggle(key string, down bool) error
	KeyTap(key string) error
	MouseToggle(button string, down bool) error
	Move(dx, dy int)
	Scroll(dy int)
}

type robotgoRobot struct{}

func (robotgoRobot) KeyToggle(key string, down bool) error {
	if down {
		return robotgo.KeyToggle(key, "down")
	}
	return robotgo.KeyToggle(key, "up")
}

func (robotgoRobot) KeyTap(key string) error { return robotgo.KeyTap(key) }

func (robotgoRobot) MouseToggle(button string, down bool) error {
	if down {
		return robotgo.Toggle(button)
	}
	return robotgo.Toggle(button, "up")
}

func (robotgoRobot) Move(dx, dy int) { robotgo.MoveRelative(dx, dy) }

func (robotgoRobot) Scroll(dy int) { robotgo.Scroll(0, dy) }

// Desktop implements hid.Transport by diffing successive reports into
// key and button transitions.
type Desktop struct {
	robot robot

	mu      sync.Mutex
	held    []string // key names currently down, modifiers first
	buttons uint8
}

var _ hid.Transport = (*Desktop)(nil)

// NewDesktop returns the robotgo-backed transport.
func NewDesktop() *Desktop {
	return &Desktop{robot: robotgoRobot{}}
}

// IsConnected is always true; the local desktop is the host.
func (d *Desktop) IsConnected() bool { return true }

// IsReady is always true.
func (d *Desktop) IsReady() bool { return true }

// SendKeyboardReport presses keys newly present in the report and releases
// keys no longer present.
func (d *Desktop) SendKeyboardReport(modifiers, keycode uint8) error {
	want := modifierNames(modifiers)
	if keycode != 0 {
		name, ok := keyNames[keycode]
		if !ok {
			return fmt.Errorf("%w: keyboard 0x%02x", ErrUnmapped, keycode)
		}
		want = append(want, name)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// Release in reverse so the base key goes up before its modifiers.
	for i := len(d.held) - 1; i >= 0; i-- {
		if !contains(want, d.held[i]) {
			if err := d.robot.KeyToggle(d.held[i], false); err != nil {
				return fmt.Errorf("inject: release %s: %w", d.held[i], err)
			}
		}
	}
	for _, k := range want {
		if !contains(d.held, k) {
			if err := d.robot.KeyToggle(k, true); err != nil {
				return fmt.Errorf("inject: press %s: %w", k, err)
			}
		}
	}
	d.held = want
	slog.Debug("[INJECT] keyboard report", "held", want)
	return nil
}

// SendConsumerReport taps the media key for usage. The zero usage is a
// release and needs no action.
func (d *Desktop) SendConsumerReport(usage uint16) error {
	if usage == 0 {
		return nil
	}
	name, ok := consumerNames[usage]
	if !ok {
		return fmt.Errorf("%w: consumer 0x%04x", ErrUnmapped, usage)
	}
	if err := d.robot.KeyTap(name); err != nil {
		return fmt.Errorf("inject: tap %s: %w", name, err)
	}
	return nil
}

// SendMouseReport applies button transitions, relative motion and wheel.
func (d *Desktop) SendMouseReport(buttons uint8, dx, dy, wheel int8) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, b := range mouseButtons {
		was, now := d.buttons&b.bit != 0, buttons&b.bit != 0
		if was == now {
			continue
		}
		if err := d.robot.MouseToggle(b.name, now); err != nil {
			return fmt.Errorf("inject: mouse %s: %w", b.name, err)
		}
	}
	d.buttons = buttons

	if dx != 0 || dy != 0 {
		d.robot.Move(int(dx), int(dy))
	}
	if wheel != 0 {
		d.robot.Scroll(int(wheel))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
