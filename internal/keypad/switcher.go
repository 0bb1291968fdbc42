package keypad

import "log/slog"

// ProfileSetter activates a stored profile.
type ProfileSetter interface {
	SetActiveProfile(id int) error
}

// Switcher activates profiles on behalf of ProfileSwitch actions and
// announces each successful switch.
type Switcher struct {
	profiles ProfileSetter
	events   Events
}

// NewSwitcher wraps profiles so every switch emits a profileChanged event.
func NewSwitcher(profiles ProfileSetter, events Events) *Switcher {
	if events == nil {
		events = nopEvents{}
	}
	return &Switcher{profiles: profiles, events: events}
}

// SetActiveProfile implements action.ProfileSwitcher.
func (s *Switcher) SetActiveProfile(id int) error {
	if err := s.profiles.SetActiveProfile(id); err != nil {
		return err
	}
	slog.Debug("[KEYPAD] profile switched by action", "id", id)
	s.events.ProfileChanged(id)
	return nil
}
