package action

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/chaz8081/micropad/internal/hid"
)

// ReportDelay separates a press report from its release, and consecutive
// characters of a Text action. Hosts merge or drop reports sent closer
// together.
const ReportDelay = 10 * time.Millisecond

// ProfileSwitcher activates a stored profile.
type ProfileSwitcher interface {
	SetActiveProfile(id int) error
}

// ExecutorOptions configures an Executor.
type ExecutorOptions struct {
	Delay time.Duration
	// Sleep is used for the inter-report delay. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

// Executor runs actions against a HID transport. It is not safe for
// concurrent use; actions run to completion one at a time.
type Executor struct {
	hid      hid.Transport
	profiles ProfileSwitcher
	delay    time.Duration
	sleep    func(time.Duration)
}

// NewExecutor creates an Executor. profiles may be nil, in which case
// ProfileSwitch actions are ignored.
func NewExecutor(t hid.Transport, profiles ProfileSwitcher, opts ExecutorOptions) *Executor {
	if t == nil {
		panic("action: NewExecutor requires a non-nil transport")
	}
	if opts.Delay <= 0 {
		opts.Delay = ReportDelay
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	return &Executor{hid: t, profiles: profiles, delay: opts.Delay, sleep: opts.Sleep}
}

// Execute runs a. HID actions attempted while the transport is not
// connected and ready are dropped without error; the caller cannot tell a
// dropped action from an executed one.
func (e *Executor) Execute(a Action) error {
	switch v := a.(type) {
	case nil, None, Reserved:
		return nil
	case ProfileSwitch:
		if e.profiles == nil {
			return nil
		}
		if err := e.profiles.SetActiveProfile(v.ProfileID); err != nil {
			return fmt.Errorf("action: switch to profile %d: %w", v.ProfileID, err)
		}
		return nil
	case Hotkey:
		if !e.ready() {
			return nil
		}
		return e.keyPress(v.Modifiers, v.Key)
	case Text:
		if !e.ready() {
			return nil
		}
		return e.typeText(v.Text)
	case Media:
		if !e.ready() {
			return nil
		}
		return e.media(v.Function)
	case Mouse:
		if !e.ready() {
			return nil
		}
		return e.mouse(v)
	default:
		panic(fmt.Sprintf("action: unhandled variant %T", a))
	}
}

func (e *Executor) ready() bool {
	if e.hid.IsConnected() && e.hid.IsReady() {
		return true
	}
	slog.Debug("[ACTION] transport not ready, dropping action")
	return false
}

func (e *Executor) keyPress(modifiers, key uint8) error {
	if err := e.hid.SendKeyboardReport(modifiers, key); err != nil {
		return fmt.Errorf("action: key press: %w", err)
	}
	e.sleep(e.delay)
	if err := e.hid.SendKeyboardReport(0, 0); err != nil {
		return fmt.Errorf("action: key release: %w", err)
	}
	return nil
}

func (e *Executor) typeText(text string) error {
	for _, c := range text {
		key, mod, ok := hid.CharToKey(c)
		if !ok {
			continue
		}
		if err := e.keyPress(mod, key); err != nil {
			return err
		}
		e.sleep(e.delay)
	}
	return nil
}

// Usage maps a media function to its consumer page usage. ok is false for
// unknown functions.
func Usage(f MediaFunction) (usage uint16, ok bool) {
	switch f {
	case MediaVolumeUp:
		return hid.UsageVolumeUp, true
	case MediaVolumeDown:
		return hid.UsageVolumeDown, true
	case MediaMute:
		return hid.UsageMute, true
	case MediaPlayPause:
		return hid.UsagePlayPause, true
	case MediaNext:
		return hid.UsageScanNext, true
	case MediaPrev:
		return hid.UsageScanPrevious, true
	case MediaStop:
		return hid.UsageStop, true
	}
	return 0, false
}

func (e *Executor) media(f MediaFunction) error {
	usage, ok := Usage(f)
	if !ok {
		return nil
	}
	if err := e.hid.SendConsumerReport(usage); err != nil {
		return fmt.Errorf("action: media press: %w", err)
	}
	e.sleep(e.delay)
	if err := e.hid.SendConsumerReport(0); err != nil {
		return fmt.Errorf("action: media release: %w", err)
	}
	return nil
}

func (e *Executor) mouse(m Mouse) error {
	var button uint8
	switch m.Action {
	case MouseClick:
		button = hid.ButtonLeft
	case MouseRightClick:
		button = hid.ButtonRight
	case MouseMiddleClick:
		button = hid.ButtonMiddle
	case MouseScrollUp:
		return e.scroll(m.Value)
	case MouseScrollDown:
		// -(-128) does not fit in int8.
		return e.scroll(int8(min(-int(m.Value), math.MaxInt8)))
	default:
		return nil
	}
	if err := e.hid.SendMouseReport(button, 0, 0, 0); err != nil {
		return fmt.Errorf("action: mouse press: %w", err)
	}
	e.sleep(e.delay)
	if err := e.hid.SendMouseReport(0, 0, 0, 0); err != nil {
		return fmt.Errorf("action: mouse release: %w", err)
	}
	return nil
}

func (e *Executor) scroll(wheel int8) error {
	if err := e.hid.SendMouseReport(0, 0, 0, wheel); err != nil {
		return fmt.Errorf("action: scroll: %w", err)
	}
	return nil
}
