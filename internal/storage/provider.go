// Package storage reads trigger files from, and writes run reports to, a directory tree.
package storage

import "time"

// FileInfo describes one trigger file found by List.
type FileInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the interface for trigger directory operations.
type Provider interface {
	// List returns metadata for every trigger file under dir (relative to root), sorted by path.
	List(dir string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
}
