// Package storage persists profiles as one JSON document per slot and
// keeps durable preferences in a small TOML file.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chaz8081/micropad/internal/profile"
)

const (
	profilesDir   = "profiles"
	profilePrefix = "profile_"
	profileExt    = ".json"
	tempExt       = ".tmp"
)

// FileStore implements profile.Store on a directory tree:
//
//	<root>/profiles/profile_<id>.json
type FileStore struct {
	dir string
}

// NewFileStore creates <root>/profiles if needed. A failure here is the
// one unrecoverable storage error at startup.
func NewFileStore(root string) (*FileStore, error) {
	dir := filepath.Join(root, profilesDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory holding the profile documents.
func (s *FileStore) Dir() string { return s.dir }

// Path returns the document path for slot id.
func (s *FileStore) Path(id int) string {
	return filepath.Join(s.dir, profilePrefix+strconv.Itoa(id)+profileExt)
}

// SlotFromPath returns the slot id encoded in a document file name. ok is
// false for anything that is not a profile document, including temp files.
func SlotFromPath(path string) (id int, ok bool) {
	name := filepath.Base(path)
	if !strings.HasPrefix(name, profilePrefix) || !strings.HasSuffix(name, profileExt) {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, profilePrefix), profileExt))
	if err != nil || !profile.ValidID(id) {
		return 0, false
	}
	return id, true
}

// Load reads and decodes slot id.
func (s *FileStore) Load(id int) (*profile.Profile, error) {
	data, err := os.ReadFile(s.Path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("storage: profile %d: %w", id, profile.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read profile %d: %w", id, err)
	}
	p, err := profile.Unmarshal(data)
	if err != nil {
		slog.Warn("[STORAGE] profile document unreadable", "id", id, "error", err)
		return nil, fmt.Errorf("storage: decode profile %d: %w", id, err)
	}
	return p, nil
}

// Save encodes p and writes it to its slot through a temp file, so readers
// see either the previous document or the new one.
func (s *FileStore) Save(p *profile.Profile) error {
	data, err := profile.Marshal(p)
	if err != nil {
		return fmt.Errorf("storage: encode profile %d: %w", p.ID, err)
	}
	if err := writeFileAtomic(s.Path(p.ID), data); err != nil {
		return fmt.Errorf("storage: write profile %d: %w", p.ID, err)
	}
	slog.Debug("[STORAGE] profile saved", "id", p.ID, "name", p.Name, "bytes", len(data))
	return nil
}

// Delete removes slot id.
func (s *FileStore) Delete(id int) error {
	err := os.Remove(s.Path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: profile %d: %w", id, profile.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("storage: delete profile %d: %w", id, err)
	}
	return nil
}

// Exists reports whether slot id has a document.
func (s *FileStore) Exists(id int) bool {
	_, err := os.Stat(s.Path(id))
	return err == nil
}

// Info returns the name and on-disk size of slot id.
func (s *FileStore) Info(id int) (profile.Info, error) {
	data, err := os.ReadFile(s.Path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return profile.Info{}, fmt.Errorf("storage: profile %d: %w", id, profile.ErrNotFound)
	}
	if err != nil {
		return profile.Info{}, fmt.Errorf("storage: read profile %d: %w", id, err)
	}
	return profile.Info{ID: id, Name: profile.ReadName(data), Size: int64(len(data))}, nil
}

// Format removes every profile document and leftover temp file.
func (s *FileStore) Format() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("storage: list %s: %w", s.dir, err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, profilePrefix) {
			continue
		}
		if !strings.HasSuffix(name, profileExt) && !strings.HasSuffix(name, profileExt+tempExt) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("storage: remove %s: %w", name, err)
		}
	}
	slog.Info("[STORAGE] formatted", "dir", s.dir)
	return nil
}

// writeFileAtomic writes data to path+".tmp", syncs it and renames it over
// path. On failure the temp file is removed and path is untouched.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + tempExt
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

var _ profile.Store = (*FileStore)(nil)
