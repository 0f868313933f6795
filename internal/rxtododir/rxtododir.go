// Package rxtododir provides constants and utilities for the .rxtodo directory structure.
package rxtododir

import "path/filepath"

const (
	// Dir is the name of the rxtodo state directory.
	Dir = ".rxtodo"

	// StoreFile is the JSON key-value store file name (inside .rxtodo).
	StoreFile = "store.json"

	// DatabaseFile is the SQLite database file name (inside .rxtodo).
	DatabaseFile = "rxtodo.db"

	// ConfigFile is the config file name (inside .rxtodo).
	ConfigFile = "rxtodo.toml"
)

// StorePath returns the full path to the JSON store file within a work directory.
func StorePath(workDir string) string {
	return joinPath(workDir, StoreFile)
}

// DatabasePath returns the full path to the SQLite database within a work directory.
func DatabasePath(workDir string) string {
	return joinPath(workDir, DatabaseFile)
}

// ConfigPath returns the full path to the config file within a work directory.
func ConfigPath(workDir string) string {
	return joinPath(workDir, ConfigFile)
}

// DirPath returns the full path to the .rxtodo directory within a work directory.
func DirPath(workDir string) string {
	if workDir == "." || workDir == "" {
		return Dir
	}
	return filepath.Join(workDir, Dir)
}

func joinPath(workDir, file string) string {
	return filepath.Join(DirPath(workDir), file)
}
