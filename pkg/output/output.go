// Package output writes captured files to local disk, confined to a base
// directory (the process working directory unless configured otherwise).
package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/capturekit/capture-mcp-server/pkg/metrics"
)

// ErrOutsideWorkingDir is returned for paths that resolve outside the base directory
var ErrOutsideWorkingDir = errors.New("output path resolves outside the working directory")

// Writer confines file writes to BaseDir
type Writer struct {
	BaseDir string
}

// NewWriter returns a Writer rooted at baseDir, or at the working directory when empty
func NewWriter(baseDir string) (*Writer, error) {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		baseDir = wd
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}
	return &Writer{BaseDir: filepath.Clean(abs)}, nil
}

// Resolve returns the absolute form of path, or ErrOutsideWorkingDir when it
// escapes BaseDir. Relative paths are taken relative to BaseDir.
func (w *Writer) Resolve(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("output path is required")
	}

	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(w.BaseDir, target)
	}
	target = filepath.Clean(target)

	rel, ok := within(w.BaseDir, target)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrOutsideWorkingDir, path)
	}
	if rel == "." {
		return "", fmt.Errorf("output path must name a file: %s", path)
	}

	// Symlinks inside BaseDir may point elsewhere; compare the real locations.
	realBase, err := filepath.EvalSymlinks(w.BaseDir)
	if err != nil {
		realBase = w.BaseDir
	}
	realTarget, err := realPath(target)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrOutsideWorkingDir, path)
	}
	if _, ok := within(realBase, realTarget); !ok {
		return "", fmt.Errorf("%w: %s", ErrOutsideWorkingDir, path)
	}
	return target, nil
}

// within reports whether target lies in base, returning the relative path
func within(base, target string) (string, bool) {
	rel, err := filepath.Rel(base, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", false
	}
	return rel, true
}

// realPath resolves symlinks in the deepest existing ancestor of target and
// re-appends the components that do not exist yet. A dangling symlink is an
// error, since writing through it would create its target.
func realPath(target string) (string, error) {
	existing := target
	var missing []string
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		} else if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			break
		}
		missing = append([]string{filepath.Base(existing)}, missing...)
		existing = parent
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{resolved}, missing...)...), nil
}

// Write stores data at path after Resolve accepts it; nothing touches the
// disk when the path is rejected.
func (w *Writer) Write(path string, data []byte) (string, error) {
	target, err := w.Resolve(path)
	if err != nil {
		metrics.RecordOutputFile(false)
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		metrics.RecordOutputFile(false)
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		metrics.RecordOutputFile(false)
		return "", fmt.Errorf("failed to write output file: %w", err)
	}

	metrics.RecordOutputFile(true)
	return target, nil
}
