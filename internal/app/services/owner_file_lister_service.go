package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/yigit/lorebase/internal/app/models"
	"github.com/yigit/lorebase/internal/app/models/dto"
	"github.com/yigit/lorebase/internal/app/repositories"
	"github.com/yigit/lorebase/internal/pkg/apperrors"
)

// OwnerFileLister defines the per-owner listing
type OwnerFileLister interface {
	// List returns the owner's active files in upload order
	List(ctx context.Context, ownerKind string, ownerID int64) ([]dto.FileListItem, error)
}

// ownerFileListerImpl implements OwnerFileLister
type ownerFileListerImpl struct {
	catalog             FileTypeCatalog
	links               repositories.IFileLinkRepository
	emptyListingIsError bool
	logger              zerolog.Logger
}

// NewOwnerFileLister creates a new OwnerFileLister. With emptyListingIsError
// an owner without active files yields ErrNoFilesForOwner instead of an
// empty list.
func NewOwnerFileLister(
	catalog FileTypeCatalog,
	links repositories.IFileLinkRepository,
	emptyListingIsError bool,
	logger zerolog.Logger,
) OwnerFileLister {
	return &ownerFileListerImpl{
		catalog:             catalog,
		links:               links,
		emptyListingIsError: emptyListingIsError,
		logger:              logger,
	}
}

func (s *ownerFileListerImpl) List(ctx context.Context, ownerKind string, ownerID int64) (items []dto.FileListItem, err error) {
	defer func() { observeFileOperation("list", err) }()

	if ownerID <= 0 {
		return nil, apperrors.ErrOwnerIDRequired
	}

	fileType, err := s.catalog.Resolve(ctx, ownerKind)
	if err != nil {
		return nil, err
	}

	files, err := s.links.ListActiveFiles(ctx, models.Owner{
		Kind: models.OwnerKind(fileType.Alias),
		ID:   ownerID,
	})
	if err != nil {
		return nil, serverError(s.logger, "list owner files", err)
	}

	if len(files) == 0 && s.emptyListingIsError {
		return nil, apperrors.ErrNoFilesForOwner
	}

	return toFileListItems(files), nil
}

func toFileListItems(files []*models.File) []dto.FileListItem {
	return lo.Map(files, func(f *models.File, _ int) dto.FileListItem {
		return dto.FileListItem{ID: f.ID, Name: f.Name}
	})
}
