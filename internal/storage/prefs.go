package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/chaz8081/micropad/internal/profile"
)

const prefsFileName = "prefs.toml"

type prefsDoc struct {
	ActiveProfile *int `toml:"active_profile"`
}

// Prefs implements profile.Prefs on <root>/prefs.toml.
type Prefs struct {
	path string
	mu   sync.Mutex
}

// NewPrefs returns preferences stored under root. The file is created on
// first write.
func NewPrefs(root string) *Prefs {
	return &Prefs{path: filepath.Join(root, prefsFileName)}
}

// Path returns the preference file location.
func (p *Prefs) Path() string { return p.path }

func (p *Prefs) read() (prefsDoc, error) {
	var doc prefsDoc
	if _, err := toml.DecodeFile(p.path, &doc); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return doc, nil
		}
		return doc, fmt.Errorf("storage: read %s: %w", p.path, err)
	}
	return doc, nil
}

// ActiveProfile returns the recorded active slot.
func (p *Prefs) ActiveProfile() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := p.read()
	if err != nil {
		return 0, err
	}
	if doc.ActiveProfile == nil {
		return 0, profile.ErrNotFound
	}
	return *doc.ActiveProfile, nil
}

// SetActiveProfile records id as the active slot.
func (p *Prefs) SetActiveProfile(id int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := p.read()
	if err != nil {
		doc = prefsDoc{}
	}
	doc.ActiveProfile = &id

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("storage: encode preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("storage: create %s: %w", filepath.Dir(p.path), err)
	}
	if err := writeFileAtomic(p.path, buf.Bytes()); err != nil {
		return fmt.Errorf("storage: write %s: %w", p.path, err)
	}
	return nil
}

// Clear removes every preference.
func (p *Prefs) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.Remove(p.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: clear preferences: %w", err)
	}
	return nil
}

var _ profile.Prefs = (*Prefs)(nil)
