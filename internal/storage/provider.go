// Package storage defines the journal vault file-system abstraction.
package storage

import "time"

// NoteMeta is lightweight metadata about one journal file.
type NoteMeta struct {
	Path      string
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the interface for vault file operations. The parsing core
// never touches the file system; raw note text reaches it through this
// boundary.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to vault root).
	List(dir string) ([]NoteMeta, error)
	// Read returns the raw bytes of the file at path (relative to vault root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to vault root).
	Write(path string, content []byte) error
}
