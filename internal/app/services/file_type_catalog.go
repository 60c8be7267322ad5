package services

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"github.com/yigit/lorebase/internal/app/models"
	"github.com/yigit/lorebase/internal/app/repositories"
	"github.com/yigit/lorebase/internal/pkg/apperrors"
)

// FileTypeCatalog resolves owner-kind aliases to file types
type FileTypeCatalog interface {
	// Resolve returns the file type for alias, failing with
	// ErrFileTypeRequired or ErrUnknownFileType
	Resolve(ctx context.Context, alias string) (*models.FileType, error)
	List(ctx context.Context) ([]*models.FileType, error)
}

// fileTypeCatalogImpl implements FileTypeCatalog
type fileTypeCatalogImpl struct {
	repo   repositories.IFileTypeRepository
	cache  *expirable.LRU[string, *models.FileType]
	logger zerolog.Logger
}

// NewFileTypeCatalog creates a FileTypeCatalog caching up to size entries for ttl
func NewFileTypeCatalog(repo repositories.IFileTypeRepository, size int, ttl time.Duration, logger zerolog.Logger) FileTypeCatalog {
	if size <= 0 {
		size = 64
	}
	return &fileTypeCatalogImpl{
		repo:   repo,
		cache:  expirable.NewLRU[string, *models.FileType](size, nil, ttl),
		logger: logger,
	}
}

// Resolve looks alias up in the cache, then in the database
func (c *fileTypeCatalogImpl) Resolve(ctx context.Context, alias string) (*models.FileType, error) {
	if strings.TrimSpace(alias) == "" {
		return nil, apperrors.ErrFileTypeRequired
	}

	if ft, ok := c.cache.Get(alias); ok {
		catalogCacheHitsTotal.Inc()
		return copyFileType(ft), nil
	}
	catalogCacheMissesTotal.Inc()

	ft, err := c.repo.GetByAlias(ctx, alias)
	if err != nil {
		return nil, serverError(c.logger, "resolve file type", err)
	}
	if ft == nil {
		return nil, apperrors.ErrUnknownFileType
	}

	c.cache.Add(alias, ft)
	return copyFileType(ft), nil
}

// List reads every file type from the database and refreshes the cache
func (c *fileTypeCatalogImpl) List(ctx context.Context) ([]*models.FileType, error) {
	fileTypes, err := c.repo.List(ctx)
	if err != nil {
		return nil, serverError(c.logger, "list file types", err)
	}

	for _, ft := range fileTypes {
		c.cache.Add(ft.Alias, copyFileType(ft))
	}
	return fileTypes, nil
}

// copyFileType keeps callers from mutating cached entries
func copyFileType(ft *models.FileType) *models.FileType {
	cp := *ft
	return &cp
}
