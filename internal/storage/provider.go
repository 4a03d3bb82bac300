// Package storage confines file access for backups and the import inbox to
// a single root directory.
package storage

import "time"

// FileInfo describes a file found by List.
type FileInfo struct {
	Path      string    `json:"path"` // relative to the provider root
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the interface for rooted file operations.
type Provider interface {
	// List returns every file under dir whose name ends in ext. An empty ext
	// matches all files. Hidden temp files are skipped.
	List(dir, ext string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath, creating parent directories.
	Move(oldPath, newPath string) error
	// Abs resolves path against the root.
	Abs(path string) (string, error)
}
