package repositories

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/yigit/lorebase/internal/app/migrations"
	"github.com/yigit/lorebase/internal/app/models"
	"github.com/yigit/lorebase/internal/config"
	"github.com/yigit/lorebase/internal/db"
	"github.com/yigit/lorebase/internal/pkg/apperrors"
)

// setupTestDB starts PostgreSQL in a container and applies the schema.
// Skipped unless TEST_INTEGRATION is set.
func setupTestDB(t *testing.T) *db.PostgresDB {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Skipping integration test: TEST_INTEGRATION is not set")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("lorebase_test"),
		postgres.WithUsername("lorebase"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Database.Host = host
	cfg.Database.Port = port.Port()
	cfg.Database.User = "lorebase"
	cfg.Database.Password = "test-password"
	cfg.Database.DBName = "lorebase_test"
	cfg.Database.SSLMode = "disable"
	cfg.Database.MaxOpenConns = 4
	cfg.Database.MaxIdleConns = 1
	cfg.Database.ConnMaxLifetime = "5m"

	pg, err := db.NewPostgresDB(cfg)
	require.NoError(t, err)
	t.Cleanup(pg.Close)

	require.NoError(t, migrations.NewMigrator(pg.Pool).Migrate(ctx))
	// Running twice must be a no-op
	require.NoError(t, migrations.NewMigrator(pg.Pool).Migrate(ctx))

	return pg
}

func TestRepositories_FileLifecycle(t *testing.T) {
	pg := setupTestDB(t)
	ctx := context.Background()
	repos := NewRepositories(pg.Pool)

	userID, err := repos.UserRepository.Create(ctx, &models.User{
		Email:    "author@lorebase.local",
		Password: "hash",
		IsActive: true,
	})
	require.NoError(t, err)

	exists, err := repos.UserRepository.Exists(ctx, userID)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repos.UserRepository.Exists(ctx, userID+1000)
	require.NoError(t, err)
	assert.False(t, exists)

	ftID, err := repos.FileTypeRepository.Upsert(ctx, &models.FileType{Alias: "User", Name: "User files", RootPath: "uploads/users"})
	require.NoError(t, err)
	againID, err := repos.FileTypeRepository.Upsert(ctx, &models.FileType{Alias: "User", Name: "Renamed", RootPath: "/srv/users"})
	require.NoError(t, err)
	assert.Equal(t, ftID, againID)

	ft, err := repos.FileTypeRepository.GetByAlias(ctx, "User")
	require.NoError(t, err)
	require.NotNil(t, ft)
	assert.Equal(t, "/srv/users", ft.RootPath)

	missing, err := repos.FileTypeRepository.GetByAlias(ctx, "Nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	owner := models.Owner{Kind: models.OwnerKindUser, ID: userID}
	var fileID int64
	err = pg.WithTransaction(ctx, func(ctx context.Context) error {
		f := models.NewFile("avatar.png", ft, userID, &userID)
		if _, err := repos.FileRepository.Create(ctx, f); err != nil {
			return err
		}
		fileID = f.ID
		_, err := repos.FileLinkRepository.Create(ctx, &models.FileLink{FileID: f.ID, OwnerKind: owner.Kind, OwnerID: owner.ID})
		return err
	})
	require.NoError(t, err)

	// Same name for the same owner and type violates the unique constraint
	_, err = repos.FileRepository.Create(ctx, models.NewFile("avatar.png", ft, userID, nil))
	assert.ErrorIs(t, err, apperrors.ErrDuplicateFile)

	got, err := repos.FileRepository.GetByID(ctx, fileID)
	require.NoError(t, err)
	assert.Equal(t, ".png", got.Extension)
	assert.Equal(t, "User", got.FileType.Alias)

	files, err := repos.FileLinkRepository.ListActiveFiles(ctx, owner)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, fileID, files[0].ID)

	err = pg.WithTransaction(ctx, func(ctx context.Context) error {
		f, err := repos.FileRepository.GetByIDForUpdate(ctx, fileID)
		if err != nil {
			return err
		}
		f.SetDeleted(true, userID, time.Now())
		return repos.FileRepository.UpdateDeletedState(ctx, f)
	})
	require.NoError(t, err)

	files, err = repos.FileLinkRepository.ListActiveFiles(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, files)

	require.NoError(t, repos.FileLinkRepository.DeleteByFileID(ctx, fileID))
	require.NoError(t, repos.FileRepository.Delete(ctx, fileID))
	_, err = repos.FileRepository.GetByID(ctx, fileID)
	assert.ErrorIs(t, err, apperrors.ErrFileNotFound)
}

func TestRepositories_TransactionRollback(t *testing.T) {
	pg := setupTestDB(t)
	ctx := context.Background()
	repos := NewRepositories(pg.Pool)

	ft := &models.FileType{Alias: "NewsDetail", Name: "News files", RootPath: "uploads/news"}
	_, err := repos.FileTypeRepository.Upsert(ctx, ft)
	require.NoError(t, err)

	var fileID int64
	err = pg.WithTransaction(ctx, func(ctx context.Context) error {
		f := models.NewFile("map.png", ft, 5, nil)
		if _, err := repos.FileRepository.Create(ctx, f); err != nil {
			return err
		}
		fileID = f.ID
		return apperrors.ErrConflict
	})
	require.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = repos.FileRepository.GetByID(ctx, fileID)
	assert.ErrorIs(t, err, apperrors.ErrFileNotFound)
}
