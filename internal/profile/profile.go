// Package profile models named key/encoder mappings, their document
// encoding, and the manager that owns the active profile.
package profile

import (
	"errors"
	"unicode/utf8"

	"github.com/chaz8081/micropad/internal/action"
)

const (
	MaxProfiles    = 8
	DefaultProfile = 0
	NumKeys        = 12
	NumEncoders    = 2
	MaxNameLen     = 31

	DefaultStepsPerDetent = 4
)

var (
	// ErrNotFound means no profile is stored in the slot.
	ErrNotFound = errors.New("profile: not found")
	// ErrMalformed means the stored document could not be decoded.
	ErrMalformed = errors.New("profile: malformed document")
	// ErrInvalidID means the id is outside 0..MaxProfiles-1.
	ErrInvalidID = errors.New("profile: invalid id")
	// ErrLastProfile is returned when deleting the only remaining profile.
	ErrLastProfile = errors.New("profile: cannot delete the last profile")
	// ErrActiveProfile is returned when deleting the active profile.
	ErrActiveProfile = errors.New("profile: cannot delete the active profile")
)

// KeyConfig binds one matrix key to an action.
type KeyConfig struct {
	Action action.Action
}

// EncoderConfig binds one rotary encoder's rotation and push button.
type EncoderConfig struct {
	CW             action.Action
	CCW            action.Action
	Press          action.Action
	Acceleration   bool
	StepsPerDetent int
}

// Profile is a complete keypad mapping. ID is also the storage slot.
type Profile struct {
	ID       int
	Name     string
	Version  int
	Keys     [NumKeys]KeyConfig
	Encoders [NumEncoders]EncoderConfig
}

// New returns an empty profile with every binding set to None.
func New(id int, name string) *Profile {
	p := &Profile{ID: id, Name: truncate(name, MaxNameLen), Version: 1}
	for i := range p.Keys {
		p.Keys[i].Action = action.None{}
	}
	for i := range p.Encoders {
		p.Encoders[i] = EncoderConfig{
			CW:             action.None{},
			CCW:            action.None{},
			Press:          action.None{},
			Acceleration:   true,
			StepsPerDetent: DefaultStepsPerDetent,
		}
	}
	return p
}

// Clone returns a deep copy. Action variants are values, so copying the
// arrays is enough.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// ValidID reports whether id names a profile slot.
func ValidID(id int) bool {
	return id >= 0 && id < MaxProfiles
}

// truncate shortens s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
