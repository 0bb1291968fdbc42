package inject

import (
	"strconv"

	"github.com/chaz8081/micropad/internal/hid"
)

var modifierBits = []struct {
	bit  uint8
	name string
}{
	{hid.ModLeftCtrl, "lctrl"},
	{hid.ModLeftShift, "lshift"},
	{hid.ModLeftAlt, "lalt"},
	{hid.ModLeftGUI, "lcmd"},
	{hid.ModRightCtrl, "rctrl"},
	{hid.ModRightShift, "rshift"},
	{hid.ModRightAlt, "ralt"},
	{hid.ModRightGUI, "rcmd"},
}

func modifierNames(mods uint8) []string {
	var out []string
	for _, m := range modifierBits {
		if mods&m.bit != 0 {
			out = append(out, m.name)
		}
	}
	return out
}

var mouseButtons = []struct {
	bit  uint8
	name string
}{
	{hid.ButtonLeft, "left"},
	{hid.ButtonRight, "right"},
	{hid.ButtonMiddle, "center"},
}

var consumerNames = map[uint16]string{
	hid.UsageVolumeUp:     "audio_vol_up",
	hid.UsageVolumeDown:   "audio_vol_down",
	hid.UsageMute:         "audio_mute",
	hid.UsagePlayPause:    "audio_play",
	hid.UsageScanNext:     "audio_next",
	hid.UsageScanPrevious: "audio_prev",
	hid.UsageStop:         "audio_stop",
}

// keyNames maps keyboard page usages to robotgo key names.
var keyNames = func() map[uint8]string {
	m := map[uint8]string{
		hid.KeyEnter:        "enter",
		hid.KeyEscape:       "esc",
		hid.KeyBackspace:    "backspace",
		hid.KeyTab:          "tab",
		hid.KeySpace:        "space",
		hid.KeyMinus:        "-",
		hid.KeyEqual:        "=",
		hid.KeyLeftBracket:  "[",
		hid.KeyRightBracket: "]",
		hid.KeyBackslash:    "\\",
		hid.KeySemicolon:    ";",
		hid.KeyApostrophe:   "'",
		hid.KeyGrave:        "`",
		hid.KeyComma:        ",",
		hid.KeyDot:          ".",
		hid.KeySlash:        "/",
		0x39:                "capslock",
		0x46:                "printscreen",
		0x49:                "insert",
		0x4A:                "home",
		0x4B:                "pageup",
		0x4C:                "delete",
		0x4D:                "end",
		0x4E:                "pagedown",
		hid.KeyRight:        "right",
		hid.KeyLeft:         "left",
		hid.KeyDown:         "down",
		hid.KeyUp:           "up",
		0x53:                "num_lock",
		0x54:                "num_div",
		0x55:                "num_mul",
		hid.KeypadMinus:     "num_minus",
		hid.KeypadPlus:      "num_plus",
		0x58:                "num_enter",
	}
	for i := uint8(0); i < 26; i++ {
		m[hid.KeyA+i] = string(rune('a' + i))
	}
	for i := uint8(0); i < 9; i++ {
		m[hid.Key1+i] = string(rune('1' + i))
	}
	m[hid.Key0] = "0"
	for i := uint8(0); i < 12; i++ {
		m[hid.KeyF1+i] = "f" + strconv.Itoa(int(i)+1)
	}
	for i := uint8(0); i < 9; i++ {
		m[0x59+i] = "num" + strconv.Itoa(int(i)+1)
	}
	m[0x62] = "num0"
	m[0x63] = "num_decimal"
	return m
}()
