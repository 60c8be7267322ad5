package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/lorebase/internal/app/controllers"
	appMigrations "github.com/yigit/lorebase/internal/app/migrations"
	appRepos "github.com/yigit/lorebase/internal/app/repositories"
	appRoutes "github.com/yigit/lorebase/internal/app/routes"
	appServices "github.com/yigit/lorebase/internal/app/services"
	"github.com/yigit/lorebase/internal/config"
	"github.com/yigit/lorebase/internal/db"
	appMiddleware "github.com/yigit/lorebase/internal/middleware"
	pkgAuth "github.com/yigit/lorebase/internal/pkg/auth"
	"github.com/yigit/lorebase/internal/pkg/filestorage"
	"github.com/yigit/lorebase/internal/pkg/helpers"
	"github.com/yigit/lorebase/internal/pkg/logger"
	"github.com/yigit/lorebase/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Catalog        appServices.FileTypeCatalog
	FileStore      appServices.FileStore
	FileRetriever  appServices.FileRetriever
	FileLifecycle  appServices.FileLifecycleManager
	FileLister     appServices.OwnerFileLister
	AuthService    *appServices.AuthService
	FileController *appControllers.FileController
	AuthController *appControllers.AuthController
	AuthMiddleware *appMiddleware.AuthMiddleware
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	BlobStore      filestorage.BlobStore
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds default data through the returned repositories.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, *appRepos.Repositories, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database.Pool).Migrate(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	repos := appRepos.NewRepositories(database.Pool)

	if err := seed.CreateDefaultData(ctx, cfg, repos.FileTypeRepository, repos.UserRepository, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, repos, nil
}

// BuildDependencies initializes services and controllers on top of repos.
func BuildDependencies(
	cfg *config.Config,
	database *db.PostgresDB,
	repos *appRepos.Repositories,
	lgr zerolog.Logger,
) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, Repos: repos}
	deps.BlobStore = filestorage.NewLocalStorage()

	for _, ft := range cfg.Storage.FileTypes {
		if err := deps.BlobStore.EnsureDir(ft.RootPath); err != nil {
			lgr.Error().Err(err).Str("path", ft.RootPath).Msg("Failed to initialize file storage")
			return nil, fmt.Errorf("failed to initialize file storage: %w", err)
		}
	}

	fileLog := logger.Component("files")

	deps.Catalog = appServices.NewFileTypeCatalog(
		deps.Repos.FileTypeRepository,
		cfg.Storage.CatalogCacheSize,
		cfg.Storage.CatalogCacheTTL,
		fileLog,
	)
	deps.FileStore = appServices.NewFileStore(
		database,
		deps.Catalog,
		filestorage.NewExtensionPolicy(cfg.Storage.AllowedExtensions),
		deps.BlobStore,
		deps.Repos.FileRepository,
		deps.Repos.FileLinkRepository,
		deps.Repos.UserRepository,
		fileLog,
	)
	deps.FileRetriever = appServices.NewFileRetriever(
		deps.Repos.FileRepository,
		filestorage.DefaultContentTypes(),
		deps.BlobStore,
		cfg.Files.ServeDeleted,
		fileLog,
	)
	deps.FileLifecycle = appServices.NewFileLifecycleManager(database, deps.Repos.FileRepository, fileLog)
	deps.FileLister = appServices.NewOwnerFileLister(
		deps.Catalog,
		deps.Repos.FileLinkRepository,
		cfg.Files.EmptyListingIsError,
		fileLog,
	)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, deps.JWTService, logger.Component("auth"))
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.FileController = appControllers.NewFileController(
		deps.FileStore,
		deps.FileRetriever,
		deps.FileLifecycle,
		deps.FileLister,
		deps.Catalog,
		fileLog,
	)
	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(), appMiddleware.Metrics())
	// Multipart framing adds a little on top of the file itself
	router.Use(appMiddleware.MaxBodySize(cfg.MaxUploadBytes() + 1<<20))
	router.MaxMultipartMemory = cfg.MaxUploadBytes()

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.FileController, deps.AuthController, deps.AuthMiddleware)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
