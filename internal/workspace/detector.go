// Package workspace provides workspace directory detection and the
// recently opened workspace list.
package workspace

import (
	"os"
	"path/filepath"
	"strings"

	"gridwatch/internal/source"
)

// ConfigDirName is the marker directory of an initialized workspace.
const ConfigDirName = ".gridwatch"

// Info describes a detected workspace.
type Info struct {
	// Path is the absolute path to the workspace directory.
	Path string `json:"path"`
	// Name is the workspace name (usually the directory name).
	Name string `json:"name"`
	// HasConfigDir indicates whether a .gridwatch directory exists.
	HasConfigDir bool `json:"has_config_dir"`
	// DataFiles counts loadable data files directly in the directory.
	DataFiles int `json:"data_files"`
}

// Detector detects workspace directories.
type Detector struct {
	// Extensions are the data file extensions that count toward
	// detection, dot included.
	Extensions []string
}

// NewDetector creates a Detector recognizing the registered source
// formats.
func NewDetector() *Detector {
	return &Detector{Extensions: source.DefaultRegistry().Extensions()}
}

// Detect checks whether dir is a gridwatch workspace. A directory
// qualifies when it has a .gridwatch directory or at least one
// loadable data file. Returns nil when it is neither.
func (d *Detector) Detect(dir string) (*Info, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	if !stat.IsDir() {
		return nil, os.ErrNotExist
	}

	info := &Info{
		Path: absPath,
		Name: filepath.Base(absPath),
	}

	if st, err := os.Stat(filepath.Join(absPath, ConfigDirName)); err == nil && st.IsDir() {
		info.HasConfigDir = true
	}
	info.DataFiles = d.countDataFiles(absPath)

	if !info.HasConfigDir && info.DataFiles == 0 {
		return nil, nil
	}
	return info, nil
}

// countDataFiles counts regular files with a recognized extension.
func (d *Detector) countDataFiles(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	n := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, want := range d.Extensions {
			if ext == want {
				n++
				break
			}
		}
	}
	return n
}

// IsWorkspace returns true if the directory appears to be a workspace.
func (d *Detector) IsWorkspace(dir string) bool {
	info, err := d.Detect(dir)
	return err == nil && info != nil
}

// ShouldHint returns true when gridwatch starts somewhere that does
// not look like a workspace, so the CLI can suggest recent ones.
func (d *Detector) ShouldHint(dir string) bool {
	if IsHomeDirectory(dir) || IsRootDirectory(dir) {
		return true
	}
	return !d.IsWorkspace(dir)
}

// IsHomeDirectory returns true if the directory is the user's home directory.
func IsHomeDirectory(dir string) bool {
	home, err := os.UserHomeDir()
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absHome, err := filepath.Abs(home)
	if err != nil {
		return false
	}
	return absDir == absHome
}

// IsRootDirectory returns true if the directory is the root directory.
func IsRootDirectory(dir string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	return absDir == "/" || absDir == filepath.VolumeName(absDir)+"\\"
}
