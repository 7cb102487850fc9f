// Package outputs prepares output paths before a tool runs and removes partial output when it fails.
package outputs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/xcompress/xcompress/internal/engine"
)

// Locate stats every input path. Missing inputs are reported as path errors.
func Locate(fs afero.Fs, paths []string) ([]engine.Input, error) {
	inputs := make([]engine.Input, 0, len(paths))
	for _, path := range paths {
		info, err := fs.Stat(path)
		if err != nil {
			return nil, &engine.PathError{Path: path, Reason: "cannot read input", Err: err}
		}
		inputs = append(inputs, engine.Input{Path: path, IsDir: info.IsDir()})
	}
	return inputs, nil
}

// PrepareFile makes path ready to be written as a new file: an existing directory is
// rejected, an existing file is removed and a missing parent directory is created.
func PrepareFile(fs afero.Fs, path string) error {
	info, err := fs.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return &engine.PathError{Path: path, Reason: "is a directory"}
	case err == nil:
		if err := fs.Remove(path); err != nil {
			return &engine.PathError{Path: path, Reason: "cannot remove existing file", Err: err}
		}
	case !errors.Is(err, os.ErrNotExist):
		return &engine.PathError{Path: path, Reason: "cannot stat output", Err: err}
	}

	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return &engine.PathError{Path: dir, Reason: "cannot create directory", Err: err}
	}

	return nil
}

// CheckFileTarget rejects a file target that is an existing directory without touching anything.
func CheckFileTarget(fs afero.Fs, path string) error {
	info, err := fs.Stat(path)
	if err == nil && info.IsDir() {
		return &engine.PathError{Path: path, Reason: "is a directory"}
	}
	return nil
}

// CheckDirectory rejects a directory target that exists as something else.
func CheckDirectory(fs afero.Fs, path string) error {
	info, err := fs.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		return &engine.PathError{Path: path, Reason: "is not a directory"}
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return &engine.PathError{Path: path, Reason: "cannot stat output", Err: err}
	}
	return nil
}

// EnsureDirectory creates path if missing. An existing non-directory is rejected.
func EnsureDirectory(fs afero.Fs, path string) error {
	if err := CheckDirectory(fs, path); err != nil {
		return err
	}
	if err := fs.MkdirAll(path, 0755); err != nil {
		return &engine.PathError{Path: path, Reason: "cannot create directory", Err: fmt.Errorf("mkdir: %w", err)}
	}
	return nil
}
