package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	// MaxRecent is the maximum number of recent workspaces to store.
	MaxRecent = 10
	// RecentFile is the file name for the recent workspace list.
	RecentFile = "recent.json"
)

// Recent is one recently opened workspace.
type Recent struct {
	// Path is the absolute path to the workspace.
	Path string `json:"path"`
	// Name is the workspace name.
	Name string `json:"name"`
	// LastUsed is when the workspace was last opened.
	LastUsed time.Time `json:"last_used"`
	// DataFiles is the data file count seen at last open.
	DataFiles int `json:"data_files,omitempty"`
}

// RecentList manages the recently opened workspaces, newest first.
type RecentList struct {
	Workspaces []Recent `json:"workspaces"`
}

// UserDir returns the gridwatch user configuration directory
// (~/.config/gridwatch on Linux).
func UserDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "gridwatch"), nil
}

// RecentPath returns the path to the recent workspaces file.
func RecentPath() (string, error) {
	dir, err := UserDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, RecentFile), nil
}

// LoadRecent loads the recent list from its default location.
func LoadRecent() (*RecentList, error) {
	path, err := RecentPath()
	if err != nil {
		return &RecentList{}, nil
	}
	return LoadRecentFile(path)
}

// LoadRecentFile loads the recent list from path. A missing or
// corrupted file yields an empty list. Entries whose directory no
// longer exists are dropped.
func LoadRecentFile(path string) (*RecentList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &RecentList{}, nil
		}
		return nil, err
	}

	var recent RecentList
	if err := json.Unmarshal(data, &recent); err != nil {
		// Corrupted file, start fresh.
		return &RecentList{}, nil
	}

	valid := make([]Recent, 0, len(recent.Workspaces))
	for _, w := range recent.Workspaces {
		if _, err := os.Stat(w.Path); err == nil {
			valid = append(valid, w)
		}
	}
	recent.Workspaces = valid

	return &recent, nil
}

// Save writes the list to its default location, creating the user
// directory if needed.
func (r *RecentList) Save() error {
	path, err := RecentPath()
	if err != nil {
		return err
	}
	return r.SaveFile(path)
}

// SaveFile writes the list to path.
func (r *RecentList) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Add adds or refreshes a workspace in the recent list.
func (r *RecentList) Add(info *Info) {
	now := time.Now()

	for i := range r.Workspaces {
		if r.Workspaces[i].Path == info.Path {
			r.Workspaces[i].LastUsed = now
			r.Workspaces[i].Name = info.Name
			r.Workspaces[i].DataFiles = info.DataFiles
			r.sortAndTrim()
			return
		}
	}

	r.Workspaces = append(r.Workspaces, Recent{
		Path:      info.Path,
		Name:      info.Name,
		LastUsed:  now,
		DataFiles: info.DataFiles,
	})
	r.sortAndTrim()
}

// sortAndTrim sorts by last used (newest first) and trims to the cap.
func (r *RecentList) sortAndTrim() {
	sort.Slice(r.Workspaces, func(i, j int) bool {
		return r.Workspaces[i].LastUsed.After(r.Workspaces[j].LastUsed)
	})
	if len(r.Workspaces) > MaxRecent {
		r.Workspaces = r.Workspaces[:MaxRecent]
	}
}

// Paths returns the recent workspace paths, newest first.
func (r *RecentList) Paths() []string {
	paths := make([]string, len(r.Workspaces))
	for i, w := range r.Workspaces {
		paths[i] = w.Path
	}
	return paths
}
