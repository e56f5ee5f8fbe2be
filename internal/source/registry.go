package source

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Registry maps file extensions to registered decoders.
type Registry struct {
	mu       sync.RWMutex
	decoders map[string]Decoder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		decoders: make(map[string]Decoder),
	}
}

// DefaultRegistry returns a registry with the built-in decoders.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(CSVDecoder{})
	r.Register(JSONLDecoder{})
	return r
}

// Register adds a decoder under each extension it claims.
// A decoder claiming an already-registered extension replaces it.
func (r *Registry) Register(d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range d.Extensions() {
		r.decoders[strings.ToLower(ext)] = d
	}
}

// ForPath returns the decoder claiming the path's extension.
func (r *Registry) ForPath(path string) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.decoders[strings.ToLower(filepath.Ext(path))]
	return d, ok
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.decoders))
	for ext := range r.decoders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Names returns the registered decoder names, sorted and deduplicated.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	names := make([]string, 0, len(r.decoders))
	for _, d := range r.decoders {
		if _, ok := seen[d.Name()]; ok {
			continue
		}
		seen[d.Name()] = struct{}{}
		names = append(names, d.Name())
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered extensions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.decoders)
}
