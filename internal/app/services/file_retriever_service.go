package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/yigit/lorebase/internal/app/repositories"
	"github.com/yigit/lorebase/internal/pkg/apperrors"
	"github.com/yigit/lorebase/internal/pkg/filestorage"
)

// FileContent is a loaded file ready to be served
type FileContent struct {
	FileID      int64
	Name        string
	ContentType string
	Data        []byte
}

// FileRetriever defines the download path
type FileRetriever interface {
	// Get loads the file with fileID. A non-nil ownerID must match the
	// stored owner.
	Get(ctx context.Context, fileID int64, ownerID *int64) (*FileContent, error)
}

// fileRetrieverImpl implements FileRetriever
type fileRetrieverImpl struct {
	files        repositories.IFileRepository
	contentTypes filestorage.ContentTypeResolver
	blobs        filestorage.BlobStore
	serveDeleted bool
	logger       zerolog.Logger
}

// NewFileRetriever creates a new FileRetriever. serveDeleted controls
// whether soft-deleted files can still be downloaded.
func NewFileRetriever(
	files repositories.IFileRepository,
	contentTypes filestorage.ContentTypeResolver,
	blobs filestorage.BlobStore,
	serveDeleted bool,
	logger zerolog.Logger,
) FileRetriever {
	return &fileRetrieverImpl{
		files:        files,
		contentTypes: contentTypes,
		blobs:        blobs,
		serveDeleted: serveDeleted,
		logger:       logger,
	}
}

func (s *fileRetrieverImpl) Get(ctx context.Context, fileID int64, ownerID *int64) (content *FileContent, err error) {
	defer func() { observeFileOperation("get", err) }()

	if fileID <= 0 {
		return nil, apperrors.ErrFileIDRequired
	}

	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		if apperrors.IsClientError(err) {
			return nil, err
		}
		return nil, serverError(s.logger, "load file", err)
	}

	if ownerID != nil && *ownerID != file.OwnerID {
		return nil, apperrors.ErrFileNotFound
	}
	if file.IsDeleted && !s.serveDeleted {
		return nil, apperrors.ErrFileNotFound
	}

	contentType, err := s.contentTypes.Resolve(file.Extension)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(file.FileType.RootPath, strconv.FormatInt(file.OwnerID, 10), file.Name)
	data, err := s.blobs.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Warn().Int64("fileID", file.ID).Str("path", path).Msg("File metadata exists but blob is missing")
			return nil, apperrors.ErrFileNotFound
		}
		return nil, serverError(s.logger, "read file", err)
	}

	return &FileContent{
		FileID:      file.ID,
		Name:        file.Name,
		ContentType: contentType,
		Data:        data,
	}, nil
}
