package source

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"gridwatch/internal/dataset"
	griderrors "gridwatch/internal/errors"
	"gridwatch/internal/logging"
)

// DefaultParallelism bounds how many files decode at once.
const DefaultParallelism = 4

// Report describes the outcome of loading one file.
type Report struct {
	// Path is the source file path.
	Path string
	// Frame is the frame name the file maps to.
	Frame string
	// Rows and Bytes describe the loaded frame. Zero when Err is set.
	Rows  int
	Bytes int64
	// Duration is how long the decode took.
	Duration time.Duration
	// Err is the per-file failure, nil on success.
	Err error
}

// Loader scans a data directory and loads eligible files into a store.
type Loader struct {
	dir         string
	store       *dataset.Store
	registry    *Registry
	opts        Options
	parallelism int
}

// NewLoader creates a loader over the given data directory.
func NewLoader(dir string, store *dataset.Store, registry *Registry, opts Options) *Loader {
	return &Loader{
		dir:         dir,
		store:       store,
		registry:    registry,
		opts:        opts,
		parallelism: DefaultParallelism,
	}
}

// SetParallelism overrides the decode concurrency bound.
func (l *Loader) SetParallelism(n int) {
	if n > 0 {
		l.parallelism = n
	}
}

// Dir returns the data directory being loaded.
func (l *Loader) Dir() string { return l.dir }

// Registry returns the decoder registry the loader consults.
func (l *Loader) Registry() *Registry { return l.registry }

// LoadAll decodes every eligible file in the data directory and
// replaces the corresponding frames in the store. Per-file failures
// land in the reports and leave the previous frame untouched; LoadAll
// itself fails only when the directory cannot be read or ctx ends.
func (l *Loader) LoadAll(ctx context.Context) ([]Report, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			// An empty workspace is valid; there is just nothing to load.
			return nil, nil
		}
		return nil, griderrors.SourceReadError(l.dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(l.dir, entry.Name())
		if _, ok := l.registry.ForPath(path); !ok {
			logging.Debug("skipping file with no decoder", "path", path)
			continue
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return nil, nil
	}

	reports := make([]Report, len(paths))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(l.parallelism)
	for i, path := range paths {
		i, path := i, path
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = l.LoadFile(ctx, path)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Path < reports[j].Path })
	return reports, nil
}

// LoadFile decodes a single file and replaces its frame in the store.
// A decode failure leaves the store untouched so the previous frame
// version keeps serving.
func (l *Loader) LoadFile(ctx context.Context, path string) Report {
	report := Report{Path: path, Frame: FrameName(path)}

	decoder, ok := l.registry.ForPath(path)
	if !ok {
		report.Err = griderrors.UnknownFormat(path, filepath.Ext(path), l.registry.Extensions())
		return report
	}

	start := time.Now()
	frame, err := decoder.Decode(path, l.opts)
	report.Duration = time.Since(start)

	if err != nil {
		report.Err = err
		logging.Warn("failed to load source",
			"path", path, "frame", report.Frame, "error", err)
		return report
	}

	l.store.Replace(frame)
	report.Rows = frame.Len()
	report.Bytes = frame.Bytes()
	logging.Debug("frame loaded",
		"frame", report.Frame, "rows", report.Rows, "bytes", report.Bytes,
		"duration", report.Duration)
	return report
}

// Drop removes the frame a path maps to from the store. It reports the
// frame name and whether a frame was actually dropped.
func (l *Loader) Drop(path string) (string, bool) {
	name := FrameName(path)
	return name, l.store.Drop(name)
}
