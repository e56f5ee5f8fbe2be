package dataset

import (
	"sort"
	"sync"
)

// Store is the in-memory buffer holding all loaded frames by name.
// Frames are replaced wholesale and never mutated in place, so a frame
// obtained from the store stays consistent for as long as the caller
// holds it.
type Store struct {
	mu     sync.RWMutex
	frames map[string]*Frame
}

func NewStore() *Store {
	return &Store{
		frames: make(map[string]*Frame),
	}
}

// Replace inserts or replaces the frame under its name.
func (s *Store) Replace(f *Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frames[f.Name()] = f
}

// Drop removes the named frame. It reports whether the frame existed.
func (s *Store) Drop(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.frames[name]; !ok {
		return false
	}
	delete(s.frames, name)
	return true
}

// Frame returns the named frame, if loaded.
func (s *Store) Frame(name string) (*Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.frames[name]
	return f, ok
}

// Names returns the loaded frame names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.frames))
	for name := range s.frames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of loaded frames.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.frames)
}

// TotalRows returns the row count summed over all frames.
func (s *Store) TotalRows() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, f := range s.frames {
		total += f.Len()
	}
	return total
}

// TotalBytes returns the source byte count summed over all frames.
func (s *Store) TotalBytes() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, f := range s.frames {
		total += f.Bytes()
	}
	return total
}
