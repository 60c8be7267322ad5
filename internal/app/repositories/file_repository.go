package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/lorebase/internal/app/models"
	"github.com/yigit/lorebase/internal/db"
	"github.com/yigit/lorebase/internal/pkg/apperrors"
	"github.com/yigit/lorebase/internal/pkg/dberrors"
	"github.com/yigit/lorebase/internal/pkg/logger"
)

// FilesOwnerNameConstraint keeps one name per owner within a file type
const FilesOwnerNameConstraint = "files_file_type_owner_name_key"

var fileWithTypeColumns = []string{
	"f.id", "f.name", "f.extension", "f.file_type_id", "f.owner_id", "f.is_deleted",
	"f.created_by", "f.created_at", "f.updated_by", "f.updated_at", "f.deleted_by", "f.deleted_at",
	"ft.id", "ft.alias", "ft.name", "ft.root_path", "ft.created_at",
}

// IFileRepository defines the file metadata queries
type IFileRepository interface {
	Create(ctx context.Context, file *models.File) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.File, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.File, error)
	UpdateDeletedState(ctx context.Context, file *models.File) error
	Delete(ctx context.Context, id int64) error
}

// FileRepository handles database operations for files
type FileRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewFileRepository creates a new FileRepository
func NewFileRepository(db *pgxpool.Pool) *FileRepository {
	return &FileRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// Create inserts a file row and sets file.ID and file.CreatedAt
func (r *FileRepository) Create(ctx context.Context, file *models.File) (int64, error) {
	sql, args, err := r.sb.Insert("files").
		Columns("name", "extension", "file_type_id", "owner_id", "is_deleted", "created_by").
		Values(file.Name, file.Extension, file.FileTypeID, file.OwnerID, file.IsDeleted, file.CreatedBy).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create file query: %w", err)
	}

	err = db.Conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&file.ID, &file.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, FilesOwnerNameConstraint) {
			return 0, apperrors.ErrDuplicateFile
		}
		logger.Error().Err(err).Str("name", file.Name).Int64("ownerID", file.OwnerID).Msg("Error creating file")
		return 0, fmt.Errorf("error creating file: %w", err)
	}

	return file.ID, nil
}

// GetByID loads a file together with its file type
func (r *FileRepository) GetByID(ctx context.Context, id int64) (*models.File, error) {
	return r.get(ctx, id, "")
}

// GetByIDForUpdate loads a file and locks its row until the surrounding
// transaction ends
func (r *FileRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.File, error) {
	return r.get(ctx, id, "FOR UPDATE OF f")
}

func (r *FileRepository) get(ctx context.Context, id int64, suffix string) (*models.File, error) {
	query := r.sb.Select(fileWithTypeColumns...).
		From("files f").
		Join("file_types ft ON ft.id = f.file_type_id").
		Where(squirrel.Eq{"f.id": id})
	if suffix != "" {
		query = query.Suffix(suffix)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get file query: %w", err)
	}

	file, err := scanFileWithType(db.Conn(ctx, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrFileNotFound
		}
		logger.Error().Err(err).Int64("fileID", id).Msg("Error getting file")
		return nil, fmt.Errorf("error getting file: %w", err)
	}

	return file, nil
}

// UpdateDeletedState persists the soft-delete flag and its audit columns
func (r *FileRepository) UpdateDeletedState(ctx context.Context, file *models.File) error {
	sql, args, err := r.sb.Update("files").
		Set("is_deleted", file.IsDeleted).
		Set("updated_by", file.UpdatedBy).
		Set("updated_at", file.UpdatedAt).
		Set("deleted_by", file.DeletedBy).
		Set("deleted_at", file.DeletedAt).
		Where(squirrel.Eq{"id": file.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update file query: %w", err)
	}

	result, err := db.Conn(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("fileID", file.ID).Msg("Error updating file deleted state")
		return fmt.Errorf("error updating file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrFileNotFound
	}

	return nil
}

// Delete removes a file row. Used only to undo a file whose blob could not
// be published.
func (r *FileRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("files").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete file query: %w", err)
	}

	result, err := db.Conn(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrFileNotFound
	}

	return nil
}

func scanFileWithType(row pgx.Row) (*models.File, error) {
	f := &models.File{FileType: &models.FileType{}}
	err := row.Scan(
		&f.ID, &f.Name, &f.Extension, &f.FileTypeID, &f.OwnerID, &f.IsDeleted,
		&f.CreatedBy, &f.CreatedAt, &f.UpdatedBy, &f.UpdatedAt, &f.DeletedBy, &f.DeletedAt,
		&f.FileType.ID, &f.FileType.Alias, &f.FileType.Name, &f.FileType.RootPath, &f.FileType.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}
