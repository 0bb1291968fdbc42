package profile

import (
	"github.com/chaz8081/micropad/internal/action"
	"github.com/chaz8081/micropad/internal/hid"
)

const (
	ctrl  = hid.ModLeftCtrl
	shift = hid.ModLeftShift
	alt   = hid.ModLeftAlt
	gui   = hid.ModLeftGUI
)

func hotkey(mods, key uint8) action.Action       { return action.Hotkey{Modifiers: mods, Key: key} }
func media(f action.MediaFunction) action.Action { return action.Media{Function: f} }
func backToDefault() action.Action               { return action.ProfileSwitch{ProfileID: DefaultProfile} }

// Defaults returns the factory profile set: General, Media, VS Code and
// Creative in slots 0-3.
func Defaults() []*Profile {
	general := General()
	return []*Profile{general, Media(general), VSCode(), Creative()}
}

// General holds everyday clipboard and window shortcuts, media transport
// keys, and volume/scroll encoders.
func General() *Profile {
	p := New(0, "General")
	keys := []action.Action{
		hotkey(ctrl, hid.KeyC),
		hotkey(ctrl, hid.KeyV),
		hotkey(ctrl, hid.KeyZ),
		hotkey(ctrl, hid.KeyY),
		hotkey(alt, hid.KeyTab),
		hotkey(gui, hid.KeyD),
		hotkey(gui|shift, hid.KeyS),
		hotkey(gui, hid.KeyE),
		media(action.MediaPrev),
		media(action.MediaPlayPause),
		media(action.MediaNext),
		action.Text{Text: "https://www.youtube.com\n"},
	}
	for i, a := range keys {
		p.Keys[i].Action = a
	}
	p.Encoders[0] = EncoderConfig{
		CW:             media(action.MediaVolumeUp),
		CCW:            media(action.MediaVolumeDown),
		Press:          media(action.MediaMute),
		Acceleration:   true,
		StepsPerDetent: DefaultStepsPerDetent,
	}
	p.Encoders[1] = EncoderConfig{
		CW:             action.Mouse{Action: action.MouseScrollDown, Value: 3},
		CCW:            action.Mouse{Action: action.MouseScrollUp, Value: 3},
		Press:          media(action.MediaPlayPause),
		Acceleration:   true,
		StepsPerDetent: DefaultStepsPerDetent,
	}
	return p
}

// Media lays out the transport controls and reuses base's encoders.
func Media(base *Profile) *Profile {
	p := New(1, "Media")
	keys := []action.Action{
		media(action.MediaPrev),
		media(action.MediaPlayPause),
		media(action.MediaNext),
		media(action.MediaStop),
		media(action.MediaVolumeDown),
		media(action.MediaMute),
		media(action.MediaVolumeUp),
	}
	for i, a := range keys {
		p.Keys[i].Action = a
	}
	p.Keys[11].Action = backToDefault()
	p.Encoders = base.Encoders
	return p
}

// VSCode binds editor shortcuts, zoom on encoder 0 and back/forward
// navigation on encoder 1.
func VSCode() *Profile {
	p := New(2, "VS Code")
	keys := []action.Action{
		hotkey(ctrl, hid.KeyS),
		hotkey(ctrl|shift, hid.KeyF),
		hotkey(ctrl, hid.KeyP),
		hotkey(ctrl|shift, hid.KeyP),
		hotkey(0, hid.KeyF5),
		hotkey(ctrl, hid.KeyGrave),
		hotkey(ctrl, hid.KeySlash),
		hotkey(alt|shift, hid.KeyF),
		action.Text{Text: "console.log();"},
		hotkey(ctrl, hid.KeyB),
		hotkey(ctrl, hid.KeyBackslash),
		backToDefault(),
	}
	for i, a := range keys {
		p.Keys[i].Action = a
	}
	p.Encoders[0] = EncoderConfig{
		CW:             hotkey(ctrl, hid.KeyEqual),
		CCW:            hotkey(ctrl, hid.KeyMinus),
		Press:          hotkey(ctrl, hid.Key0),
		Acceleration:   true,
		StepsPerDetent: DefaultStepsPerDetent,
	}
	p.Encoders[1] = EncoderConfig{
		CW:             hotkey(alt, hid.KeyRight),
		CCW:            hotkey(alt, hid.KeyLeft),
		Press:          hotkey(ctrl, hid.KeyP),
		Acceleration:   false,
		StepsPerDetent: DefaultStepsPerDetent,
	}
	return p
}

// Creative binds image-editor shortcuts, brush size on encoder 0 and zoom
// on encoder 1.
func Creative() *Profile {
	p := New(3, "Creative")
	keys := []action.Action{
		hotkey(ctrl, hid.KeyZ),
		hotkey(ctrl|shift, hid.KeyZ),
		hotkey(ctrl, hid.KeyS),
		hotkey(ctrl|shift, hid.KeyS),
		hotkey(0, hid.KeyB),
		hotkey(0, hid.KeyE),
		hotkey(ctrl|shift, hid.KeyN),
		hotkey(ctrl, hid.KeyE),
		hotkey(ctrl, hid.KeyT),
		hotkey(ctrl, hid.KeyD),
		hotkey(ctrl|shift, hid.KeyI),
		backToDefault(),
	}
	for i, a := range keys {
		p.Keys[i].Action = a
	}
	p.Encoders[0] = EncoderConfig{
		CW:             hotkey(0, hid.KeyRightBracket),
		CCW:            hotkey(0, hid.KeyLeftBracket),
		Press:          hotkey(ctrl, hid.KeyZ),
		Acceleration:   true,
		StepsPerDetent: DefaultStepsPerDetent,
	}
	p.Encoders[1] = EncoderConfig{
		CW:             hotkey(ctrl, hid.KeypadPlus),
		CCW:            hotkey(ctrl, hid.KeypadMinus),
		Press:          hotkey(ctrl, hid.Key0),
		Acceleration:   true,
		StepsPerDetent: DefaultStepsPerDetent,
	}
	return p
}
