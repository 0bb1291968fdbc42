package profile

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Info summarizes a stored profile without decoding its bindings.
type Info struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Store persists profiles, one per slot. Load returns an error wrapping
// ErrNotFound for an empty slot and ErrMalformed for an unreadable one.
type Store interface {
	Load(id int) (*Profile, error)
	Save(p *Profile) error
	Delete(id int) error
	Exists(id int) bool
	Info(id int) (Info, error)
	// Format removes every stored profile.
	Format() error
}

// Prefs holds durable scalar preferences. ActiveProfile returns an error
// wrapping ErrNotFound when no value has been recorded.
type Prefs interface {
	ActiveProfile() (int, error)
	SetActiveProfile(id int) error
	Clear() error
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	// Templates builds the profiles provisioned on empty storage and after
	// a factory reset. Defaults to Defaults.
	Templates func() []*Profile
}

// Manager owns the active profile. The active profile is replaced
// wholesale on every switch; readers get immutable snapshots. Safe for
// concurrent use.
type Manager struct {
	store     Store
	prefs     Prefs
	templates func() []*Profile

	mu          sync.RWMutex
	initialized bool
	activeID    int
	current     *Profile
}

// NewManager creates an uninitialized Manager.
func NewManager(store Store, prefs Prefs, opts ManagerOptions) *Manager {
	if store == nil || prefs == nil {
		panic("profile: NewManager requires a store and prefs")
	}
	if opts.Templates == nil {
		opts.Templates = Defaults
	}
	return &Manager{
		store:     store,
		prefs:     prefs,
		templates: opts.Templates,
		activeID:  DefaultProfile,
		current:   New(DefaultProfile, "Unnamed"),
	}
}

// Init restores the recorded active profile, provisioning the default set
// first if storage is empty. If the recorded profile cannot be loaded it
// falls back to profile 0. Calling Init again is a no-op.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	m.activeID = DefaultProfile
	id, err := m.prefs.ActiveProfile()
	switch {
	case err == nil && ValidID(id):
		m.activeID = id
	case err != nil && !errors.Is(err, ErrNotFound):
		slog.Warn("[PROFILE] reading active profile preference", "error", err)
	}

	if m.countLocked() == 0 {
		slog.Info("[PROFILE] no profiles found, creating defaults")
		if err := m.provisionLocked(); err != nil {
			return err
		}
	}

	if err := m.loadLocked(m.activeID); err != nil {
		slog.Warn("[PROFILE] failed to load active profile, loading default", "id", m.activeID, "error", err)
		if err := m.loadLocked(DefaultProfile); err != nil {
			return fmt.Errorf("profile: load default profile: %w", err)
		}
	}

	m.initialized = true
	slog.Info("[PROFILE] manager initialized", "active", m.activeID, "name", m.current.Name)
	return nil
}

// LoadProfile replaces the in-memory profile with the one stored in slot
// id. On failure the current profile is unchanged.
func (m *Manager) LoadProfile(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked(id)
}

func (m *Manager) loadLocked(id int) error {
	if !ValidID(id) {
		return fmt.Errorf("profile: load %d: %w", id, ErrInvalidID)
	}
	p, err := m.store.Load(id)
	if err != nil {
		return fmt.Errorf("profile: load %d: %w", id, err)
	}
	p.ID = id
	m.current = p
	m.activeID = id
	slog.Debug("[PROFILE] loaded", "id", id, "name", p.Name)
	return nil
}

// SaveProfile persists p into slot id, overriding p.ID so the document
// always matches its slot. p itself is not modified. Overwriting the
// active slot also replaces the in-memory profile.
func (m *Manager) SaveProfile(id int, p *Profile) error {
	if !ValidID(id) {
		return fmt.Errorf("profile: save %d: %w", id, ErrInvalidID)
	}
	cp := p.Clone()
	cp.ID = id

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Save(cp); err != nil {
		return fmt.Errorf("profile: save %d: %w", id, err)
	}
	if m.initialized && id == m.activeID {
		m.current = cp.Clone()
		slog.Info("[PROFILE] active profile replaced", "id", id, "name", cp.Name)
	}
	return nil
}

// DeleteProfile removes slot id. The last remaining profile and the active
// profile cannot be deleted.
func (m *Manager) DeleteProfile(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !ValidID(id) {
		return fmt.Errorf("profile: delete %d: %w", id, ErrInvalidID)
	}
	if m.countLocked() <= 1 {
		return ErrLastProfile
	}
	if id == m.activeID {
		return ErrActiveProfile
	}
	if err := m.store.Delete(id); err != nil {
		return fmt.Errorf("profile: delete %d: %w", id, err)
	}
	slog.Info("[PROFILE] deleted", "id", id)
	return nil
}

// SetActiveProfile loads slot id and records it as the active profile.
func (m *Manager) SetActiveProfile(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !ValidID(id) {
		return fmt.Errorf("profile: activate %d: %w", id, ErrInvalidID)
	}
	if !m.store.Exists(id) {
		return fmt.Errorf("profile: activate %d: %w", id, ErrNotFound)
	}
	if err := m.loadLocked(id); err != nil {
		return err
	}
	if err := m.prefs.SetActiveProfile(id); err != nil {
		slog.Warn("[PROFILE] persisting active profile", "id", id, "error", err)
	}
	slog.Info("[PROFILE] switched", "id", id, "name", m.current.Name)
	return nil
}

// FactoryReset erases all profiles and preferences, re-provisions the
// default set and activates profile 0.
func (m *Manager) FactoryReset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	slog.Info("[PROFILE] factory reset")
	if err := m.store.Format(); err != nil {
		return fmt.Errorf("profile: format storage: %w", err)
	}
	if err := m.prefs.Clear(); err != nil {
		return fmt.Errorf("profile: clear preferences: %w", err)
	}
	if err := m.provisionLocked(); err != nil {
		return err
	}
	if err := m.loadLocked(DefaultProfile); err != nil {
		return err
	}
	if err := m.prefs.SetActiveProfile(DefaultProfile); err != nil {
		return fmt.Errorf("profile: persist active profile: %w", err)
	}
	m.initialized = true
	return nil
}

// ReloadActive re-reads the active profile from storage, for example after
// its file was replaced by another process. changed is false when the
// stored document matches the in-memory profile, as after our own save.
func (m *Manager) ReloadActive() (changed bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.store.Load(m.activeID)
	if err != nil {
		return false, fmt.Errorf("profile: load %d: %w", m.activeID, err)
	}
	p.ID = m.activeID
	if m.current != nil && *p == *m.current {
		return false, nil
	}
	m.current = p
	slog.Debug("[PROFILE] reloaded", "id", p.ID, "name", p.Name)
	return true, nil
}

// Current returns a snapshot of the active profile. Later switches do not
// affect the returned value.
func (m *Manager) Current() *Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Clone()
}

// ActiveProfileID returns the slot of the active profile.
func (m *Manager) ActiveProfileID() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeID
}

// Exists reports whether slot id holds a profile.
func (m *Manager) Exists(id int) bool {
	return ValidID(id) && m.store.Exists(id)
}

// ProfileCount returns the number of occupied slots.
func (m *Manager) ProfileCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.countLocked()
}

func (m *Manager) countLocked() int {
	n := 0
	for id := 0; id < MaxProfiles; id++ {
		if m.store.Exists(id) {
			n++
		}
	}
	return n
}

// Get reads slot id from storage without activating it.
func (m *Manager) Get(id int) (*Profile, error) {
	if !ValidID(id) {
		return nil, fmt.Errorf("profile: get %d: %w", id, ErrInvalidID)
	}
	p, err := m.store.Load(id)
	if err != nil {
		return nil, fmt.Errorf("profile: get %d: %w", id, err)
	}
	p.ID = id
	return p, nil
}

// List summarizes every occupied slot in id order.
func (m *Manager) List() []Info {
	var out []Info
	for id := 0; id < MaxProfiles; id++ {
		info, err := m.store.Info(id)
		if err != nil {
			continue
		}
		out = append(out, info)
	}
	return out
}

func (m *Manager) provisionLocked() error {
	for _, p := range m.templates() {
		if err := m.store.Save(p); err != nil {
			return fmt.Errorf("profile: provision %d (%s): %w", p.ID, p.Name, err)
		}
		slog.Debug("[PROFILE] provisioned", "id", p.ID, "name", p.Name)
	}
	slog.Info("[PROFILE] default profiles created", "count", m.countLocked())
	return nil
}
