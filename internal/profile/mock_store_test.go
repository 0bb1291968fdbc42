package profile

import (
	"fmt"
	"sync"
)

// memStore keeps encoded documents in memory so tests exercise the codec.
type memStore struct {
	mu      sync.Mutex
	docs    map[int][]byte
	saveErr error
}

func newMemStore() *memStore { return &memStore{docs: make(map[int][]byte)} }

func (s *memStore) Load(id int) (*Profile, error) {
	s.mu.Lock()
	data, ok := s.docs[id]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("mem: slot %d: %w", id, ErrNotFound)
	}
	return Unmarshal(data)
}

func (s *memStore) Save(p *Profile) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	data, err := Marshal(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.docs[p.ID] = data
	s.mu.Unlock()
	return nil
}

func (s *memStore) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *memStore) Exists(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[id]
	return ok
}

func (s *memStore) Info(id int) (Info, error) {
	s.mu.Lock()
	data, ok := s.docs[id]
	s.mu.Unlock()
	if !ok {
		return Info{}, ErrNotFound
	}
	return Info{ID: id, Name: ReadName(data), Size: int64(len(data))}, nil
}

func (s *memStore) Format() error {
	s.mu.Lock()
	s.docs = make(map[int][]byte)
	s.mu.Unlock()
	return nil
}

type memPrefs struct {
	active *int
}

func (p *memPrefs) ActiveProfile() (int, error) {
	if p.active == nil {
		return 0, ErrNotFound
	}
	return *p.active, nil
}

func (p *memPrefs) SetActiveProfile(id int) error {
	p.active = &id
	return nil
}

func (p *memPrefs) Clear() error {
	p.active = nil
	return nil
}
