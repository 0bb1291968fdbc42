package inject

import (
	"errors"
	"slices"
	"testing"

	"github.com/chaz8081/micropad/internal/hid"
)

func newTestDesktop() (*Desktop, *mockRobot) {
	r := &mockRobot{}
	return &Desktop{robot: r}, r
}

func TestDesktopAlwaysReady(t *testing.T) {
	d := NewDesktop()
	if !d.IsConnected() || !d.IsReady() {
		t.Error("desktop backend should always be connected and ready")
	}
}

func TestKeyboardPressRelease(t *testing.T) {
	d, r := newTestDesktop()

	if err := d.SendKeyboardReport(hid.ModLeftCtrl|hid.ModLeftShift, hid.KeyP); err != nil {
		t.Fatalf("press error = %v", err)
	}
	if err := d.SendKeyboardReport(0, 0); err != nil {
		t.Fatalf("release error = %v", err)
	}

	want := []string{
		"key lctrl down",
		"key lshift down",
		"key p down",
		"key p up",
		"key lshift up",
		"key lctrl up",
	}
	if !slices.Equal(r.events, want) {
		t.Errorf("events = %v\nwant %v", r.events, want)
	}
}

func TestKeyboardRepeatedReportNoop(t *testing.T) {
	d, r := newTestDesktop()
	d.SendKeyboardReport(0, hid.KeyA)
	d.SendKeyboardReport(0, hid.KeyA)
	if len(r.events) != 1 {
		t.Errorf("events = %v, want a single press", r.events)
	}
}

func TestKeyNames(t *testing.T) {
	tests := []struct {
		code uint8
		want string
	}{
		{hid.KeyA, "a"},
		{hid.KeyZ, "z"},
		{hid.Key1, "1"},
		{hid.Key0, "0"},
		{hid.KeyF1, "f1"},
		{hid.KeyF1 + 11, "f12"},
		{hid.KeypadPlus, "num_plus"},
		{0x59, "num1"},
		{hid.KeyRightBracket, "]"},
	}
	for _, tt := range tests {
		if got := keyNames[tt.code]; got != tt.want {
			t.Errorf("keyNames[0x%02x] = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestKeyboardUnmapped(t *testing.T) {
	d, r := newTestDesktop()
	err := d.SendKeyboardReport(0, 0xE8)
	if !errors.Is(err, ErrUnmapped) {
		t.Errorf("error = %v, want ErrUnmapped", err)
	}
	if len(r.events) != 0 {
		t.Errorf("events = %v, want none", r.events)
	}
}

func TestConsumerReport(t *testing.T) {
	d, r := newTestDesktop()
	if err := d.SendConsumerReport(hid.UsageVolumeUp); err != nil {
		t.Fatalf("error = %v", err)
	}
	if err := d.SendConsumerReport(0); err != nil {
		t.Fatalf("release error = %v", err)
	}
	if !slices.Equal(r.events, []string{"tap audio_vol_up"}) {
		t.Errorf("events = %v", r.events)
	}
	if err := d.SendConsumerReport(0x0123); !errors.Is(err, ErrUnmapped) {
		t.Errorf("unknown usage error = %v, want ErrUnmapped", err)
	}
}

func TestMouseReport(t *testing.T) {
	d, r := newTestDesktop()
	d.SendMouseReport(hid.ButtonRight, 0, 0, 0)
	d.SendMouseReport(0, 0, 0, 0)
	d.SendMouseReport(0, 0, 0, -2)
	d.SendMouseReport(0, 5, -1, 0)

	want := []string{
		"mouse right down",
		"mouse right up",
		"scroll -2",
		"move 5 -1",
	}
	if !slices.Equal(r.events, want) {
		t.Errorf("events = %v\nwant %v", r.events, want)
	}
}

func TestKeyToggleError(t *testing.T) {
	d, r := newTestDesktop()
	r.err = errors.New("no display")
	if err := d.SendKeyboardReport(0, hid.KeyA); err == nil {
		t.Error("expected error from robot")
	}
}
