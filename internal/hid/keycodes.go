package hid

// Modifier bits of the keyboard report.
const (
	ModLeftCtrl   uint8 = 0x01
	ModLeftShift  uint8 = 0x02
	ModLeftAlt    uint8 = 0x04
	ModLeftGUI    uint8 = 0x08
	ModRightCtrl  uint8 = 0x10
	ModRightShift uint8 = 0x20
	ModRightAlt   uint8 = 0x40
	ModRightGUI   uint8 = 0x80
)

// Keyboard/keypad page usages.
const (
	KeyA uint8 = 0x04
	KeyB uint8 = 0x05
	KeyC uint8 = 0x06
	KeyD uint8 = 0x07
	KeyE uint8 = 0x08
	KeyF uint8 = 0x09
	KeyI uint8 = 0x0C
	KeyN uint8 = 0x11
	KeyP uint8 = 0x13
	KeyS uint8 = 0x16
	KeyT uint8 = 0x17
	KeyV uint8 = 0x19
	KeyY uint8 = 0x1C
	KeyZ uint8 = 0x1D

	Key1 uint8 = 0x1E
	Key0 uint8 = 0x27

	KeyEnter        uint8 = 0x28
	KeyEscape       uint8 = 0x29
	KeyBackspace    uint8 = 0x2A
	KeyTab          uint8 = 0x2B
	KeySpace        uint8 = 0x2C
	KeyMinus        uint8 = 0x2D
	KeyEqual        uint8 = 0x2E
	KeyLeftBracket  uint8 = 0x2F
	KeyRightBracket uint8 = 0x30
	KeyBackslash    uint8 = 0x31
	KeySemicolon    uint8 = 0x33
	KeyApostrophe   uint8 = 0x34
	KeyGrave        uint8 = 0x35
	KeyComma        uint8 = 0x36
	KeyDot          uint8 = 0x37
	KeySlash        uint8 = 0x38

	KeyF1 uint8 = 0x3A
	KeyF2 uint8 = 0x3B
	KeyF3 uint8 = 0x3C
	KeyF4 uint8 = 0x3D
	KeyF5 uint8 = 0x3E

	KeyRight uint8 = 0x4F
	KeyLeft  uint8 = 0x50
	KeyDown  uint8 = 0x51
	KeyUp    uint8 = 0x52

	KeypadMinus uint8 = 0x56
	KeypadPlus  uint8 = 0x57
)

// Consumer page usages.
const (
	UsageScanNext     uint16 = 0x00B5
	UsageScanPrevious uint16 = 0x00B6
	UsageStop         uint16 = 0x00B7
	UsagePlayPause    uint16 = 0x00CD
	UsageMute         uint16 = 0x00E2
	UsageVolumeUp     uint16 = 0x00E9
	UsageVolumeDown   uint16 = 0x00EA
)

// Mouse button bits.
const (
	ButtonLeft   uint8 = 0x01
	ButtonRight  uint8 = 0x02
	ButtonMiddle uint8 = 0x04
)

// CharToKey maps a character of the supported ASCII subset to its usage
// and the modifier needed to type it. ok is false for unmapped characters.
func CharToKey(c rune) (keycode, modifiers uint8, ok bool) {
	switch {
	case c >= 'a' && c <= 'z':
		return KeyA + uint8(c-'a'), 0, true
	case c >= 'A' && c <= 'Z':
		return KeyA + uint8(c-'A'), ModLeftShift, true
	case c >= '1' && c <= '9':
		return Key1 + uint8(c-'1'), 0, true
	case c == '0':
		return Key0, 0, true
	}
	switch c {
	case ' ':
		return KeySpace, 0, true
	case '\n':
		return KeyEnter, 0, true
	case '.':
		return KeyDot, 0, true
	case '/':
		return KeySlash, 0, true
	case ':':
		return KeySemicolon, ModLeftShift, true
	case '-':
		return KeyMinus, 0, true
	}
	return 0, 0, false
}
