// Package version provides build information and release checking for
// gridwatch.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// GitHubRepo is the GitHub repository releases are published to.
const GitHubRepo = "gridwatch-io/gridwatch"

// DefaultAPIBase is the GitHub API endpoint.
const DefaultAPIBase = "https://api.github.com"

// Info contains build information about gridwatch.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	GoVer   string `json:"go_version"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
}

// NewInfo creates an Info from the build variables.
func NewInfo(version, commit, date string) *Info {
	return &Info{
		Version: version,
		Commit:  commit,
		Date:    date,
		GoVer:   runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
}

// String returns a one-line version string.
func (i *Info) String() string {
	return fmt.Sprintf("gridwatch %s (commit: %s, built: %s)", i.Version, i.Commit, i.Date)
}

// FullString returns a detailed version string.
func (i *Info) FullString() string {
	return fmt.Sprintf(`gridwatch %s
  Commit:   %s
  Built:    %s
  Go:       %s
  OS/Arch:  %s/%s`, i.Version, i.Commit, i.Date, i.GoVer, i.OS, i.Arch)
}

// Release represents a GitHub release.
type Release struct {
	TagName     string `json:"tag_name"`
	Name        string `json:"name"`
	Body        string `json:"body"`
	PublishedAt string `json:"published_at"`
	HTMLURL     string `json:"html_url"`
}

// Checker checks for new releases.
type Checker struct {
	HTTPClient *http.Client
	Repo       string
	// APIBase is the API endpoint, overridable in tests.
	APIBase string
}

// NewChecker creates a release checker against the public GitHub API.
func NewChecker() *Checker {
	return &Checker{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Repo:       GitHubRepo,
		APIBase:    DefaultAPIBase,
	}
}

// GetLatestRelease fetches the latest release from GitHub.
func (c *Checker) GetLatestRelease(ctx context.Context) (*Release, error) {
	base := c.APIBase
	if base == "" {
		base = DefaultAPIBase
	}
	url := fmt.Sprintf("%s/repos/%s/releases/latest", base, c.Repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "gridwatch-version-checker")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("GitHub API returned %d: %s", resp.StatusCode, string(body))
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to decode release: %w", err)
	}

	return &release, nil
}

// CheckForUpdate compares the current version with the latest release.
// Returns the release if an update is available, nil if current.
func (c *Checker) CheckForUpdate(ctx context.Context, currentVersion string) (*Release, error) {
	release, err := c.GetLatestRelease(ctx)
	if err != nil {
		return nil, err
	}

	latestVersion := strings.TrimPrefix(release.TagName, "v")
	currentVersion = strings.TrimPrefix(currentVersion, "v")

	if CompareVersions(latestVersion, currentVersion) > 0 {
		return release, nil
	}

	return nil, nil
}

// CompareVersions compares two semantic version strings.
// Returns: 1 if a > b, -1 if a < b, 0 if equal.
func CompareVersions(a, b string) int {
	aParts := parseVersion(a)
	bParts := parseVersion(b)

	for i := 0; i < 3; i++ {
		if aParts[i] > bParts[i] {
			return 1
		}
		if aParts[i] < bParts[i] {
			return -1
		}
	}
	return 0
}

// parseVersion parses a version string into major, minor, patch integers.
func parseVersion(v string) [3]int {
	v = strings.TrimPrefix(v, "v")
	parts := strings.Split(v, ".")
	var result [3]int
	for i := 0; i < 3 && i < len(parts); i++ {
		// Strip any pre-release suffix (e.g. "-rc1").
		part := strings.Split(parts[i], "-")[0]
		fmt.Sscanf(part, "%d", &result[i])
	}
	return result
}

// WorkspaceVersion records which gridwatch version touched a workspace.
type WorkspaceVersion struct {
	GridwatchVersion string    `json:"gridwatch_version"`
	InitializedAt    time.Time `json:"initialized_at"`
	LastRunAt        time.Time `json:"last_run_at,omitempty"`
}

// VersionFilePath is the path to the version file within .gridwatch.
const VersionFilePath = ".gridwatch/version.json"

// LoadWorkspaceVersion loads the version stamp of a workspace.
func LoadWorkspaceVersion(workspaceDir string) (*WorkspaceVersion, error) {
	path := filepath.Join(workspaceDir, VersionFilePath)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var wv WorkspaceVersion
	if err := json.Unmarshal(data, &wv); err != nil {
		return nil, fmt.Errorf("failed to parse version.json: %w", err)
	}

	return &wv, nil
}

// SaveWorkspaceVersion writes the version stamp of a workspace.
func SaveWorkspaceVersion(workspaceDir string, wv *WorkspaceVersion) error {
	path := filepath.Join(workspaceDir, VersionFilePath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(wv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal version.json: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// UpdateLastRun stamps the workspace with the running version and time.
func UpdateLastRun(workspaceDir, version string) error {
	wv, err := LoadWorkspaceVersion(workspaceDir)
	if err != nil {
		wv = &WorkspaceVersion{
			GridwatchVersion: version,
			InitializedAt:    time.Now(),
		}
	}
	wv.LastRunAt = time.Now()
	wv.GridwatchVersion = version
	return SaveWorkspaceVersion(workspaceDir, wv)
}
