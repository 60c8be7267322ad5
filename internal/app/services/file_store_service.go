package services

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/lorebase/internal/app/models"
	"github.com/yigit/lorebase/internal/app/repositories"
	"github.com/yigit/lorebase/internal/pkg/apperrors"
	"github.com/yigit/lorebase/internal/pkg/filestorage"
)

// AddFileRequest carries one upload
type AddFileRequest struct {
	OwnerID       int64
	FileTypeAlias string
	Name          string
	Content       io.Reader
	// CreatedBy is the authenticated uploader, when known
	CreatedBy *int64
}

// FileStore defines the upload path
type FileStore interface {
	// Add stores Content as root(FileType)/OwnerID/Name, records its
	// metadata and owner link, and returns the new file id
	Add(ctx context.Context, req AddFileRequest) (int64, error)
}

// fileStoreImpl implements FileStore
type fileStoreImpl struct {
	tx         Transactor
	catalog    FileTypeCatalog
	extensions *filestorage.ExtensionPolicy
	blobs      filestorage.BlobStore
	files      repositories.IFileRepository
	links      repositories.IFileLinkRepository
	users      repositories.IUserRepository
	logger     zerolog.Logger
}

// NewFileStore creates a new FileStore
func NewFileStore(
	tx Transactor,
	catalog FileTypeCatalog,
	extensions *filestorage.ExtensionPolicy,
	blobs filestorage.BlobStore,
	files repositories.IFileRepository,
	links repositories.IFileLinkRepository,
	users repositories.IUserRepository,
	logger zerolog.Logger,
) FileStore {
	return &fileStoreImpl{
		tx:         tx,
		catalog:    catalog,
		extensions: extensions,
		blobs:      blobs,
		files:      files,
		links:      links,
		users:      users,
		logger:     logger,
	}
}

// Add stages the content next to its final path, commits the metadata, and
// only then publishes the blob. A failed transaction discards the staged
// file; a failed publish removes the committed metadata again.
func (s *fileStoreImpl) Add(ctx context.Context, req AddFileRequest) (id int64, err error) {
	defer func() { observeFileOperation("add", err) }()

	fileType, err := s.validate(ctx, req)
	if err != nil {
		return 0, err
	}

	dir := filepath.Join(fileType.RootPath, strconv.FormatInt(req.OwnerID, 10))
	if err := s.blobs.EnsureDir(dir); err != nil {
		return 0, serverError(s.logger, "create owner directory", err)
	}

	target := filepath.Join(dir, req.Name)
	exists, err := s.blobs.Exists(target)
	if err != nil {
		return 0, serverError(s.logger, "check target path", err)
	}
	if exists {
		return 0, apperrors.ErrDuplicateFile
	}

	staged, err := s.blobs.Stage(dir, req.Content)
	if err != nil {
		return 0, serverError(s.logger, "stage file content", err)
	}
	s.rewind(req.Content)

	file := models.NewFile(req.Name, fileType, req.OwnerID, req.CreatedBy)
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.files.Create(ctx, file); err != nil {
			return err
		}
		_, err := s.links.Create(ctx, &models.FileLink{
			FileID:    file.ID,
			OwnerKind: models.OwnerKind(fileType.Alias),
			OwnerID:   req.OwnerID,
		})
		return err
	})
	if err != nil {
		s.discard(staged)
		if apperrors.IsClientError(err) {
			return 0, err
		}
		return 0, serverError(s.logger, "persist file metadata", err)
	}

	if err := staged.Commit(target); err != nil {
		s.discard(staged)
		s.compensate(ctx, file.ID)
		if errors.Is(err, filestorage.ErrTargetExists) {
			return 0, apperrors.ErrDuplicateFile
		}
		return 0, serverError(s.logger, "publish file", err)
	}

	fileBytesStoredTotal.Add(float64(staged.Size()))
	s.logger.Info().
		Int64("fileID", file.ID).
		Str("fileType", fileType.Alias).
		Int64("ownerID", req.OwnerID).
		Str("name", req.Name).
		Int64("size", staged.Size()).
		Msg("File stored")

	return file.ID, nil
}

// validate checks req in a fixed order and returns the resolved file type
func (s *fileStoreImpl) validate(ctx context.Context, req AddFileRequest) (*models.FileType, error) {
	if req.OwnerID <= 0 {
		return nil, apperrors.ErrOwnerIDRequired
	}

	fileType, err := s.catalog.Resolve(ctx, req.FileTypeAlias)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.ErrFileNameRequired
	}
	if !isSingleSegment(req.Name) || len(req.Name) > maxFileNameBytes {
		return nil, apperrors.ErrInvalidFileName
	}

	if req.Content == nil {
		return nil, apperrors.ErrFileContentRequired
	}

	if !s.extensions.Allows(models.ExtensionOf(req.Name)) {
		return nil, apperrors.ErrExtensionNotAllowed
	}

	if models.OwnerKind(fileType.Alias) == models.OwnerKindUser {
		exists, err := s.users.Exists(ctx, req.OwnerID)
		if err != nil {
			return nil, serverError(s.logger, "check owner", err)
		}
		if !exists {
			return nil, apperrors.ErrOwnerNotFound
		}
	}

	return fileType, nil
}

// rewind resets seekable input so the caller can read it again
func (s *fileStoreImpl) rewind(r io.Reader) {
	seeker, ok := r.(io.Seeker)
	if !ok {
		return
	}
	if _, err := seeker.Seek(0, io.SeekStart); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to rewind upload stream")
	}
}

func (s *fileStoreImpl) discard(staged filestorage.StagedFile) {
	if err := staged.Discard(); err != nil {
		s.logger.Error().Err(err).Str("path", staged.Path()).Msg("Failed to discard staged file")
	}
}

// compensate removes metadata whose blob could not be published. It runs
// even if the request context was cancelled.
func (s *fileStoreImpl) compensate(ctx context.Context, fileID int64) {
	err := s.tx.WithTransaction(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.links.DeleteByFileID(ctx, fileID); err != nil {
			return err
		}
		return s.files.Delete(ctx, fileID)
	})
	if err != nil {
		fileCompensationsTotal.WithLabelValues("failed").Inc()
		s.logger.Error().Err(err).Int64("fileID", fileID).Msg("Failed to remove metadata of unpublished file")
		return
	}
	fileCompensationsTotal.WithLabelValues("ok").Inc()
	s.logger.Warn().Int64("fileID", fileID).Msg("Removed metadata of unpublished file")
}

// maxFileNameBytes matches the NAME_MAX of common filesystems
const maxFileNameBytes = 255

// isSingleSegment rejects names that would escape the owner directory
func isSingleSegment(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}
