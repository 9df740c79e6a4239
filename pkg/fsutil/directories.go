// Package fsutil provides file system helpers and the application's directory layout.
package fsutil

import (
	"os"
	"path/filepath"
)

// EnsureDir creates a directory and all necessary parents with DirModeDefault
// permissions if they don't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, DirModeDefault)
}

// EnsureFileDir creates the parent directory of filePath with the given mode.
func EnsureFileDir(filePath string, mode os.FileMode) error {
	return os.MkdirAll(filepath.Dir(filePath), mode)
}
