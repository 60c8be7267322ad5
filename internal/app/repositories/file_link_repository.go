package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/lorebase/internal/app/models"
	"github.com/yigit/lorebase/internal/db"
	"github.com/yigit/lorebase/internal/pkg/logger"
)

// IFileLinkRepository defines the ownership link queries
type IFileLinkRepository interface {
	Create(ctx context.Context, link *models.FileLink) (int64, error)
	ListActiveFiles(ctx context.Context, owner models.Owner) ([]*models.File, error)
	DeleteByFileID(ctx context.Context, fileID int64) error
}

// FileLinkRepository handles the polymorphic file ownership table
type FileLinkRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewFileLinkRepository creates a new FileLinkRepository
func NewFileLinkRepository(db *pgxpool.Pool) *FileLinkRepository {
	return &FileLinkRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// Create inserts a link row and sets link.ID and link.CreatedAt
func (r *FileLinkRepository) Create(ctx context.Context, link *models.FileLink) (int64, error) {
	sql, args, err := r.sb.Insert("file_links").
		Columns("file_id", "owner_kind", "owner_id").
		Values(link.FileID, string(link.OwnerKind), link.OwnerID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create file link query: %w", err)
	}

	if err := db.Conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&link.ID, &link.CreatedAt); err != nil {
		logger.Error().Err(err).Int64("fileID", link.FileID).Msg("Error creating file link")
		return 0, fmt.Errorf("error creating file link: %w", err)
	}

	return link.ID, nil
}

// ListActiveFiles returns the files linked to owner whose link is live and
// whose file is not soft-deleted, in link insertion order
func (r *FileLinkRepository) ListActiveFiles(ctx context.Context, owner models.Owner) ([]*models.File, error) {
	sql, args, err := r.sb.Select("f.id", "f.name", "f.extension", "f.file_type_id", "f.owner_id", "f.is_deleted", "f.created_at").
		From("file_links l").
		Join("files f ON f.id = l.file_id").
		Where(squirrel.Eq{
			"l.owner_kind": string(owner.Kind),
			"l.owner_id":   owner.ID,
			"l.deleted_at": nil,
			"f.is_deleted": false,
		}).
		OrderBy("l.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list owner files query: %w", err)
	}

	rows, err := db.Conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("ownerKind", string(owner.Kind)).Int64("ownerID", owner.ID).Msg("Error querying owner files")
		return nil, fmt.Errorf("error querying owner files: %w", err)
	}
	defer rows.Close()

	files := []*models.File{}
	for rows.Next() {
		f := &models.File{}
		if err := rows.Scan(&f.ID, &f.Name, &f.Extension, &f.FileTypeID, &f.OwnerID, &f.IsDeleted, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning owner file row: %w", err)
		}
		files = append(files, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating owner file rows: %w", err)
	}

	return files, nil
}

// DeleteByFileID removes every link of a file. Used when undoing a file
// whose blob could not be published.
func (r *FileLinkRepository) DeleteByFileID(ctx context.Context, fileID int64) error {
	sql, args, err := r.sb.Delete("file_links").
		Where(squirrel.Eq{"file_id": fileID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete file links query: %w", err)
	}

	if _, err := db.Conn(ctx, r.db).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error deleting file links: %w", err)
	}

	return nil
}
