package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/lorebase/internal/db"
)

// Services defined in this package:
// - FileTypeCatalog: cached lookup of file types by alias
// - FileStore: uploads a file and links it to its owner
// - FileRetriever: loads the content of a stored file
// - FileLifecycleManager: soft-deletes and restores files
// - OwnerFileLister: lists the active files of one owner
// - AuthService: issues access tokens for seeded users

// Transactor runs fn inside one database transaction. Repositories called
// with the ctx handed to fn take part in it.
type Transactor interface {
	WithTransaction(ctx context.Context, fn db.TransactionFn) error
}

// serverError logs an unexpected failure and wraps it with the operation name
func serverError(log zerolog.Logger, op string, err error) error {
	log.Error().Err(err).Str("operation", op).Msg("File operation failed")
	return fmt.Errorf("%s: %w", op, err)
}
