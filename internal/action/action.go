// Package action defines what a key or encoder does when it fires, and
// executes those actions against a HID transport.
package action

import "fmt"

// Type is the wire value of an action's tag. The numbering is stable and
// shared with stored profiles and the companion app.
type Type uint8

const (
	TypeNone    Type = 0
	TypeHotkey  Type = 1
	TypeMacro   Type = 2
	TypeText    Type = 3
	TypeMedia   Type = 4
	TypeMouse   Type = 5
	TypeLayer   Type = 6
	TypeProfile Type = 7
	TypeApp     Type = 8
	TypeURL     Type = 9
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeHotkey:
		return "hotkey"
	case TypeMacro:
		return "macro"
	case TypeText:
		return "text"
	case TypeMedia:
		return "media"
	case TypeMouse:
		return "mouse"
	case TypeLayer:
		return "layer"
	case TypeProfile:
		return "profile"
	case TypeApp:
		return "app"
	case TypeURL:
		return "url"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// MediaFunction selects a consumer control.
type MediaFunction uint8

const (
	MediaVolumeUp   MediaFunction = 0
	MediaVolumeDown MediaFunction = 1
	MediaMute       MediaFunction = 2
	MediaPlayPause  MediaFunction = 3
	MediaNext       MediaFunction = 4
	MediaPrev       MediaFunction = 5
	MediaStop       MediaFunction = 6
)

// MouseAction selects a mouse operation.
type MouseAction uint8

const (
	MouseClick       MouseAction = 0
	MouseRightClick  MouseAction = 1
	MouseMiddleClick MouseAction = 2
	MouseScrollUp    MouseAction = 3
	MouseScrollDown  MouseAction = 4
)

// MaxTextLen is the longest Text payload in bytes.
const MaxTextLen = 127

// Action is one of None, Hotkey, Text, Media, Mouse, ProfileSwitch or
// Reserved. The set is closed: only this package can add variants.
type Action interface {
	Type() Type
	isAction()
}

// None does nothing.
type None struct{}

// Hotkey presses a key together with a modifier bitmap, then releases.
type Hotkey struct {
	Modifiers uint8
	Key       uint8
}

// Text types a string from the supported ASCII subset.
type Text struct {
	Text string
}

// Media presses a consumer control.
type Media struct {
	Function MediaFunction
}

// Mouse clicks a button or scrolls the wheel by Value.
type Mouse struct {
	Action MouseAction
	Value  int8
}

// ProfileSwitch makes another profile active.
type ProfileSwitch struct {
	ProfileID int
}

// Reserved carries a tag that is stored and round-tripped but has no
// behavior yet (macro, layer, app, url).
type Reserved struct {
	Kind Type
}

func (None) Type() Type          { return TypeNone }
func (Hotkey) Type() Type        { return TypeHotkey }
func (Text) Type() Type          { return TypeText }
func (Media) Type() Type         { return TypeMedia }
func (Mouse) Type() Type         { return TypeMouse }
func (ProfileSwitch) Type() Type { return TypeProfile }
func (r Reserved) Type() Type    { return r.Kind }

func (None) isAction()          {}
func (Hotkey) isAction()        {}
func (Text) isAction()          {}
func (Media) isAction()         {}
func (Mouse) isAction()         {}
func (ProfileSwitch) isAction() {}
func (Reserved) isAction()      {}

// Describe returns a short human-readable form of a for logs and CLI output.
func Describe(a Action) string {
	switch v := a.(type) {
	case nil, None:
		return "none"
	case Hotkey:
		return fmt.Sprintf("hotkey mod=0x%02x key=0x%02x", v.Modifiers, v.Key)
	case Text:
		return fmt.Sprintf("text %q", v.Text)
	case Media:
		return fmt.Sprintf("media %d", v.Function)
	case Mouse:
		return fmt.Sprintf("mouse %d value=%d", v.Action, v.Value)
	case ProfileSwitch:
		return fmt.Sprintf("profile %d", v.ProfileID)
	case Reserved:
		return v.Kind.String()
	default:
		panic(fmt.Sprintf("action: unhandled variant %T", a))
	}
}
