package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/lorebase/internal/app/models"
	"github.com/yigit/lorebase/internal/db"
	"github.com/yigit/lorebase/internal/pkg/dberrors"
	"github.com/yigit/lorebase/internal/pkg/logger"
)

var fileTypeColumns = []string{"id", "alias", "name", "root_path", "created_at"}

// IFileTypeRepository defines the file type catalog queries
type IFileTypeRepository interface {
	Upsert(ctx context.Context, fileType *models.FileType) (int64, error)
	GetByAlias(ctx context.Context, alias string) (*models.FileType, error)
	List(ctx context.Context) ([]*models.FileType, error)
}

// FileTypeRepository handles file type database operations
type FileTypeRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewFileTypeRepository creates a new FileTypeRepository
func NewFileTypeRepository(db *pgxpool.Pool) *FileTypeRepository {
	return &FileTypeRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// Upsert inserts a file type or refreshes name and root path of the
// existing row with the same alias
func (r *FileTypeRepository) Upsert(ctx context.Context, fileType *models.FileType) (int64, error) {
	sql, args, err := r.sb.Insert("file_types").
		Columns("alias", "name", "root_path").
		Values(fileType.Alias, fileType.Name, fileType.RootPath).
		Suffix("ON CONFLICT (alias) DO UPDATE SET name = EXCLUDED.name, root_path = EXCLUDED.root_path RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build upsert file type query: %w", err)
	}

	var id int64
	if err := db.Conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Str("alias", fileType.Alias).Msg("Error upserting file type")
		return 0, fmt.Errorf("error upserting file type: %w", err)
	}

	fileType.ID = id
	return id, nil
}

// GetByAlias returns the file type registered under alias, or nil when
// there is none
func (r *FileTypeRepository) GetByAlias(ctx context.Context, alias string) (*models.FileType, error) {
	sql, args, err := r.sb.Select(fileTypeColumns...).
		From("file_types").
		Where(squirrel.Eq{"alias": alias}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get file type query: %w", err)
	}

	ft := &models.FileType{}
	err = db.Conn(ctx, r.db).QueryRow(ctx, sql, args...).
		Scan(&ft.ID, &ft.Alias, &ft.Name, &ft.RootPath, &ft.CreatedAt)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, nil
		}
		logger.Error().Err(err).Str("alias", alias).Msg("Error getting file type")
		return nil, fmt.Errorf("error getting file type by alias: %w", err)
	}

	return ft, nil
}

// List returns every registered file type ordered by alias
func (r *FileTypeRepository) List(ctx context.Context) ([]*models.FileType, error) {
	sql, args, err := r.sb.Select(fileTypeColumns...).
		From("file_types").
		OrderBy("alias ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list file types query: %w", err)
	}

	rows, err := db.Conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying file types")
		return nil, fmt.Errorf("error querying file types: %w", err)
	}
	defer rows.Close()

	fileTypes := []*models.FileType{}
	for rows.Next() {
		ft := &models.FileType{}
		if err := rows.Scan(&ft.ID, &ft.Alias, &ft.Name, &ft.RootPath, &ft.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning file type row: %w", err)
		}
		fileTypes = append(fileTypes, ft)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating file type rows: %w", err)
	}

	return fileTypes, nil
}
