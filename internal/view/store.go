package view

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	griderrors "gridwatch/internal/errors"
)

// DefaultStoreFilename is the default filename for view storage.
const DefaultStoreFilename = "views.json"

// idFormat is the shape of synthesized view IDs.
const idFormat = "VIEW-%03d"

// StoreMetadata contains information about the view store itself.
type StoreMetadata struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// viewFile is the on-disk JSON layout.
type viewFile struct {
	Metadata StoreMetadata `json:"metadata"`
	Views    []*View       `json:"views"`
}

// Store handles reading and writing views to JSON storage.
type Store struct {
	path string
	mu   sync.RWMutex
	file *viewFile
}

func emptyFile() *viewFile {
	now := time.Now()
	return &viewFile{
		Metadata: StoreMetadata{
			Version:   "1.0",
			CreatedAt: now,
			UpdatedAt: now,
		},
		Views: []*View{},
	}
}

// NewStore creates a Store for the given path. It does not load or
// create the file; call Load() or Save() for that.
func NewStore(path string) *Store {
	return &Store{path: path, file: emptyFile()}
}

// NewStoreInDir creates a Store for the default views.json in the
// given directory.
func NewStoreInDir(dir string) *Store {
	return NewStore(filepath.Join(dir, DefaultStoreFilename))
}

// Path returns the file path of the store.
func (s *Store) Path() string {
	return s.path
}

// Load reads views from the JSON file. A missing file initializes an
// empty store.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.file = emptyFile()
			return nil
		}
		return fmt.Errorf("failed to read view store: %w", err)
	}

	var file viewFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse view store: %w", err)
	}
	if file.Views == nil {
		file.Views = []*View{}
	}

	s.file = &file
	return nil
}

// Save writes views to the JSON file, creating parent directories as
// needed.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.file.Metadata.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(s.file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal view store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write view store: %w", err)
	}

	return nil
}

// All returns a copy of every view, sorted by ID.
func (s *Store) All() []*View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := make([]*View, len(s.file.Views))
	for i, v := range s.file.Views {
		views[i] = v.Clone()
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views
}

// ForFrame returns every view saved against the given frame, sorted
// by ID.
func (s *Store) ForFrame(frame string) []*View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var views []*View
	for _, v := range s.file.Views {
		if v.Frame == frame {
			views = append(views, v.Clone())
		}
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views
}

// Count returns the total number of views.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.file.Views)
}

// Get retrieves a view by ID.
func (s *Store) Get(id string) (*View, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.file.Views {
		if v.ID == id {
			return v.Clone(), true
		}
	}
	return nil, false
}

// Exists checks if a view with the given ID exists.
func (s *Store) Exists(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// Add validates and adds a new view. An empty ID gets the next free
// VIEW-NNN; a set ID must not collide. Returns the stored ID.
func (s *Store) Add(v *View) (string, error) {
	if err := v.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if v.ID == "" {
		v.ID = fmt.Sprintf(idFormat, s.maxIDLocked()+1)
	}
	for _, existing := range s.file.Views {
		if existing.ID == v.ID {
			return "", fmt.Errorf("view with ID %q already exists", v.ID)
		}
	}

	s.file.Views = append(s.file.Views, v.Clone())
	return v.ID, nil
}

// Update replaces an existing view.
func (s *Store) Update(v *View) error {
	if err := v.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.file.Views {
		if existing.ID == v.ID {
			s.file.Views[i] = v.Clone()
			return nil
		}
	}
	return griderrors.ViewNotFound(v.ID)
}

// Delete removes a view by ID.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, v := range s.file.Views {
		if v.ID == id {
			s.file.Views = append(s.file.Views[:i], s.file.Views[i+1:]...)
			return nil
		}
	}
	return griderrors.ViewNotFound(id)
}

// Clear removes all views.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file.Views = []*View{}
}

// Metadata returns the store metadata.
func (s *Store) Metadata() StoreMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.file.Metadata
}

// maxIDLocked returns the highest VIEW-NNN ordinal in the store.
// Hand-assigned IDs that don't match the format are ignored.
func (s *Store) maxIDLocked() int {
	max := 0
	for _, v := range s.file.Views {
		rest, ok := strings.CutPrefix(v.ID, "VIEW-")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max
}
