// Package storage defines the notes-root file-system abstraction.
package storage

// Provider is the interface for file operations under the notes root.
// All paths are relative to the root and use forward slashes.
type Provider interface {
	// Root returns the absolute notes root.
	Root() string
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path with content.
	Write(path string, content []byte) error
	// Exists reports whether path exists.
	Exists(path string) (bool, error)
	// MkdirAll creates dir and any missing parents.
	MkdirAll(dir string) error
	// ListDirs returns the sorted names of the directories directly under dir.
	ListDirs(dir string) ([]string, error)
}
