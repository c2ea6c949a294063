// Package filesystem provides a virtualized abstraction layer for all filesystem operations.
//
// It utilizes the afero library to allow seamless switching between OS-level and in-memory filesystem backends.
package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active afero.Afero instance for filesystem interaction.
func API() afero.Afero {
	return backend
}

// SetOsFs restores the filesystem backend to the native operating system implementation.
func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

// SetMemMapFs initializes a volatile in-memory filesystem backend for unit testing and CI environments.
func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}

// Move renames from to to, creating the destination directory.
// When a plain rename fails (for example across devices) the file is copied and the source removed.
func Move(from, to string) error {
	fs := API()

	if err := fs.MkdirAll(filepath.Dir(to), os.ModePerm); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(to), err)
	}

	if err := fs.Rename(from, to); err == nil {
		return nil
	}

	data, err := fs.ReadFile(from)
	if err != nil {
		return fmt.Errorf("read %s: %w", from, err)
	}

	if err := fs.WriteFile(to, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", to, err)
	}

	return fs.Remove(from)
}
