package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	FileTypeRepository *FileTypeRepository
	FileRepository     *FileRepository
	FileLinkRepository *FileLinkRepository
	UserRepository     *UserRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		FileTypeRepository: NewFileTypeRepository(db),
		FileRepository:     NewFileRepository(db),
		FileLinkRepository: NewFileLinkRepository(db),
		UserRepository:     NewUserRepository(db),
	}
}

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
