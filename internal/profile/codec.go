package profile

import (
	"encoding/json"
	"fmt"

	"github.com/chaz8081/micropad/internal/action"
)

// actionDoc is the stored form of an action. Payload fields are present
// only for the variant that uses them.
type actionDoc struct {
	Type      uint8   `json:"type"`
	Modifiers *uint8  `json:"modifiers,omitempty"`
	Key       *uint8  `json:"key,omitempty"`
	Text      *string `json:"text,omitempty"`
	Function  *uint8  `json:"function,omitempty"`
	Action    *uint8  `json:"action,omitempty"`
	Value     *int8   `json:"value,omitempty"`
	ProfileID *int    `json:"profileId,omitempty"`
}

type keyDoc struct {
	Index *int `json:"index,omitempty"`
	actionDoc
}

type encoderDoc struct {
	Index          *int       `json:"index,omitempty"`
	CW             *actionDoc `json:"cwAction,omitempty"`
	CCW            *actionDoc `json:"ccwAction,omitempty"`
	Press          *actionDoc `json:"pressAction,omitempty"`
	Acceleration   *bool      `json:"acceleration,omitempty"`
	StepsPerDetent *int       `json:"stepsPerDetent,omitempty"`
}

type profileDoc struct {
	ID       int          `json:"id"`
	Name     *string      `json:"name,omitempty"`
	Version  *int         `json:"version,omitempty"`
	Keys     []keyDoc     `json:"keys"`
	Encoders []encoderDoc `json:"encoders"`
}

func ptr[T any](v T) *T { return &v }

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func encodeAction(a action.Action) actionDoc {
	switch v := a.(type) {
	case nil, action.None:
		return actionDoc{Type: uint8(action.TypeNone)}
	case action.Hotkey:
		return actionDoc{Type: uint8(action.TypeHotkey), Modifiers: ptr(v.Modifiers), Key: ptr(v.Key)}
	case action.Text:
		return actionDoc{Type: uint8(action.TypeText), Text: ptr(v.Text)}
	case action.Media:
		return actionDoc{Type: uint8(action.TypeMedia), Function: ptr(uint8(v.Function))}
	case action.Mouse:
		return actionDoc{Type: uint8(action.TypeMouse), Action: ptr(uint8(v.Action)), Value: ptr(v.Value)}
	case action.ProfileSwitch:
		return actionDoc{Type: uint8(action.TypeProfile), ProfileID: ptr(v.ProfileID)}
	case action.Reserved:
		return actionDoc{Type: uint8(v.Kind)}
	default:
		panic(fmt.Sprintf("profile: unhandled action variant %T", a))
	}
}

func decodeAction(d *actionDoc) action.Action {
	if d == nil {
		return action.None{}
	}
	switch t := action.Type(d.Type); t {
	case action.TypeNone:
		return action.None{}
	case action.TypeHotkey:
		return action.Hotkey{Modifiers: deref(d.Modifiers, 0), Key: deref(d.Key, 0)}
	case action.TypeText:
		return action.Text{Text: truncate(deref(d.Text, ""), action.MaxTextLen)}
	case action.TypeMedia:
		return action.Media{Function: action.MediaFunction(deref(d.Function, 0))}
	case action.TypeMouse:
		return action.Mouse{Action: action.MouseAction(deref(d.Action, 0)), Value: deref(d.Value, 0)}
	case action.TypeProfile:
		return action.ProfileSwitch{ProfileID: deref(d.ProfileID, 0)}
	default:
		return action.Reserved{Kind: t}
	}
}

// Marshal encodes p as a profile document.
func Marshal(p *Profile) ([]byte, error) {
	doc := profileDoc{
		ID:       p.ID,
		Name:     ptr(p.Name),
		Version:  ptr(p.Version),
		Keys:     make([]keyDoc, NumKeys),
		Encoders: make([]encoderDoc, NumEncoders),
	}
	for i, k := range p.Keys {
		doc.Keys[i] = keyDoc{Index: ptr(i), actionDoc: encodeAction(k.Action)}
	}
	for i, e := range p.Encoders {
		cw, ccw, press := encodeAction(e.CW), encodeAction(e.CCW), encodeAction(e.Press)
		doc.Encoders[i] = encoderDoc{
			Index:          ptr(i),
			CW:             &cw,
			CCW:            &ccw,
			Press:          &press,
			Acceleration:   ptr(e.Acceleration),
			StepsPerDetent: ptr(e.StepsPerDetent),
		}
	}
	return json.Marshal(doc)
}

// Unmarshal decodes a profile document. Missing fields take their
// defaults: name "Unnamed", version 1, acceleration on, 4 steps per detent
// and None for every action. Decoding errors wrap ErrMalformed.
func Unmarshal(data []byte) (*Profile, error) {
	var doc profileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	p := New(doc.ID, deref(doc.Name, "Unnamed"))
	p.Version = deref(doc.Version, 1)

	for i, k := range doc.Keys {
		slot := deref(k.Index, i)
		if slot < 0 || slot >= NumKeys {
			continue
		}
		p.Keys[slot].Action = decodeAction(&k.actionDoc)
	}
	for i, e := range doc.Encoders {
		slot := deref(e.Index, i)
		if slot < 0 || slot >= NumEncoders {
			continue
		}
		p.Encoders[slot] = EncoderConfig{
			CW:             decodeAction(e.CW),
			CCW:            decodeAction(e.CCW),
			Press:          decodeAction(e.Press),
			Acceleration:   deref(e.Acceleration, true),
			StepsPerDetent: deref(e.StepsPerDetent, DefaultStepsPerDetent),
		}
	}
	return p, nil
}

// ReadName extracts only the name of a profile document, defaulting to
// "Unknown" when it is absent or unreadable.
func ReadName(data []byte) string {
	var doc struct {
		Name *string `json:"name"`
	}
	if err := json.Unmarshal(data, &doc); err != nil || doc.Name == nil {
		return "Unknown"
	}
	return *doc.Name
}
