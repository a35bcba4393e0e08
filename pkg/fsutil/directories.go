// Package fsutil provides file system helpers shared by the config, preference and snapshot writers.
package fsutil

import (
	"os"
	"path/filepath"
)

// EnsureDir creates a directory and all necessary parents with the given mode.
func EnsureDir(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// EnsureFileDir creates the parent directory of a file path if it doesn't exist.
func EnsureFileDir(filePath string, perm os.FileMode) error {
	return EnsureDir(filepath.Dir(filePath), perm)
}
