package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/lorebase/internal/app/repositories"
	"github.com/yigit/lorebase/internal/pkg/apperrors"
)

// FileLifecycleManager defines soft delete and restore
type FileLifecycleManager interface {
	// SetDeleted moves the file into the requested state. A nil deleted
	// leaves it untouched. Repeating a call is a no-op. Returns fileID.
	SetDeleted(ctx context.Context, actingUserID, fileID int64, deleted *bool) (int64, error)
}

// fileLifecycleImpl implements FileLifecycleManager
type fileLifecycleImpl struct {
	tx     Transactor
	files  repositories.IFileRepository
	now    func() time.Time
	logger zerolog.Logger
}

// NewFileLifecycleManager creates a new FileLifecycleManager
func NewFileLifecycleManager(tx Transactor, files repositories.IFileRepository, logger zerolog.Logger) FileLifecycleManager {
	return &fileLifecycleImpl{
		tx:     tx,
		files:  files,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

func (s *fileLifecycleImpl) SetDeleted(ctx context.Context, actingUserID, fileID int64, deleted *bool) (id int64, err error) {
	defer func() { observeFileOperation("set_deleted", err) }()

	if actingUserID <= 0 {
		return 0, apperrors.ErrActingUserRequired
	}
	if fileID <= 0 {
		return 0, apperrors.ErrFileIDRequired
	}

	changed := false
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		file, err := s.files.GetByIDForUpdate(ctx, fileID)
		if err != nil {
			return err
		}

		if deleted == nil || !file.SetDeleted(*deleted, actingUserID, s.now()) {
			return nil
		}

		changed = true
		return s.files.UpdateDeletedState(ctx, file)
	})
	if err != nil {
		if apperrors.IsClientError(err) {
			return 0, err
		}
		return 0, serverError(s.logger, "update file deleted state", err)
	}

	if changed {
		s.logger.Info().
			Int64("fileID", fileID).
			Int64("actingUserID", actingUserID).
			Bool("isDeleted", *deleted).
			Msg("File deleted state changed")
	}

	return fileID, nil
}
