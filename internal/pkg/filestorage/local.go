package filestorage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/yigit/lorebase/internal/pkg/logger"
)

const stagingSuffix = ".partial"

// ErrTargetExists is returned when a commit would overwrite an existing entry
var ErrTargetExists = errors.New("target file already exists")

// LocalStorage stores blobs on the local filesystem.
type LocalStorage struct {
	dirPerm  os.FileMode
	filePerm os.FileMode
}

// NewLocalStorage creates a new LocalStorage instance.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		dirPerm:  0o755,
		filePerm: 0o644,
	}
}

// EnsureDir creates dir when it does not exist yet
func (ls *LocalStorage) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, ls.dirPerm); err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to create storage directory")
		return fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}
	return nil
}

// Exists reports whether a file or directory is present at path
func (ls *LocalStorage) Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
}

// Stage writes r to a uniquely named temporary file in dir.
// The temp file is removed when any step fails.
func (ls *LocalStorage) Stage(dir string, r io.Reader) (StagedFile, error) {
	tmpPath := filepath.Join(dir, "."+uuid.New().String()+stagingSuffix)

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, ls.filePerm)
	if err != nil {
		logger.Error().Err(err).Str("path", tmpPath).Msg("Failed to create staging file")
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}

	size, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		_ = os.Remove(tmpPath)
		logger.Error().Err(err).Str("path", tmpPath).Msg("Failed to copy file content")
		return nil, fmt.Errorf("failed to write file content: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to sync staging file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to close staging file: %w", err)
	}

	return &stagedFile{path: tmpPath, size: size}, nil
}

// Read returns the whole content of the file at path
func (ls *LocalStorage) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return data, nil
}

type stagedFile struct {
	path      string
	size      int64
	committed bool
}

func (s *stagedFile) Path() string { return s.path }

func (s *stagedFile) Size() int64 { return s.size }

// Commit hard-links the staged file to target and drops the temp name.
// link(2) fails with EEXIST, so an entry created concurrently at target is
// never replaced.
func (s *stagedFile) Commit(target string) error {
	if s.committed {
		return nil
	}

	if err := os.Link(s.path, target); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s: %w", target, ErrTargetExists)
		}
		return fmt.Errorf("failed to publish file %s: %w", target, err)
	}
	s.committed = true

	if err := os.Remove(s.path); err != nil {
		// The blob is already published; a stray temp name is harmless.
		logger.Warn().Err(err).Str("path", s.path).Msg("Failed to remove staging file after commit")
	}

	if dir, err := os.Open(filepath.Dir(target)); err == nil {
		_ = dir.Sync()
		dir.Close()
	}

	logger.Debug().Str("path", target).Int64("size", s.size).Msg("File published")
	return nil
}

func (s *stagedFile) Discard() error {
	if s.committed {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to discard staging file %s: %w", s.path, err)
	}
	return nil
}
