package filestorage

import (
	"io"
)

// BlobStore defines the physical file operations the file services rely on.
// All paths are absolute or relative to the process working directory.
type BlobStore interface {
	// EnsureDir creates dir and its parents when missing
	EnsureDir(dir string) error

	// Exists reports whether any filesystem entry is present at path
	Exists(path string) (bool, error)

	// Stage copies r into a temporary file inside dir and syncs it to disk.
	// Nothing is visible at a final path until the staged file is committed.
	Stage(dir string, r io.Reader) (StagedFile, error)

	// Read returns the full content of the file at path
	Read(path string) ([]byte, error)
}

// StagedFile is a synced temporary file waiting to be published
type StagedFile interface {
	// Path returns the temporary location
	Path() string

	// Size returns the number of bytes written
	Size() int64

	// Commit moves the staged file to target. It fails with ErrTargetExists
	// instead of replacing an existing entry.
	Commit(target string) error

	// Discard removes the staged file. Calling it after Commit is a no-op.
	Discard() error
}
