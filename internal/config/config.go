package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileTypeConfig seeds one row of the file type catalog
type FileTypeConfig struct {
	Alias    string `yaml:"alias"`
	Name     string `yaml:"name"`
	RootPath string `yaml:"root_path"`
}

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string `yaml:"port" env:"SERVER_PORT"`
		Mode            string `yaml:"mode" env:"SERVER_MODE"`
		MaxUploadSizeMB int    `yaml:"max_upload_size_mb" env:"SERVER_MAX_UPLOAD_SIZE_MB"`
	} `yaml:"server"`

	Database struct {
		Driver          string `yaml:"driver" env:"DB_DRIVER"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Storage struct {
		AllowedExtensions []string         `yaml:"allowed_extensions" env:"STORAGE_ALLOWED_EXTENSIONS"`
		FileTypes         []FileTypeConfig `yaml:"file_types"`
		CatalogCacheSize  int              `yaml:"catalog_cache_size" env:"STORAGE_CATALOG_CACHE_SIZE"`
		CatalogCacheTTL   time.Duration    `yaml:"catalog_cache_ttl" env:"STORAGE_CATALOG_CACHE_TTL"`
	} `yaml:"storage"`

	Files struct {
		// ServeDeleted lets downloads return soft-deleted files
		ServeDeleted bool `yaml:"serve_deleted" env:"FILES_SERVE_DELETED"`
		// EmptyListingIsError makes owner listings with no active files fail with not found
		EmptyListingIsError bool `yaml:"empty_listing_is_error" env:"FILES_EMPTY_LISTING_IS_ERROR"`
	} `yaml:"files"`

	Seed struct {
		AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	config.Storage.AllowedExtensions = normalizeExtensions(config.Storage.AllowedExtensions)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.MaxUploadSizeMB = 32

	config.Database.Driver = "postgres"
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "lorebase"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.Issuer = "lorebase.app"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Storage.AllowedExtensions = []string{
		".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg",
		".pdf", ".txt", ".md", ".doc", ".docx",
	}
	config.Storage.FileTypes = []FileTypeConfig{
		{Alias: "User", Name: "User files", RootPath: "uploads/users"},
		{Alias: "InformationArticleDetail", Name: "Information article files", RootPath: "uploads/articles"},
		{Alias: "NewsDetail", Name: "News files", RootPath: "uploads/news"},
	}
	config.Storage.CatalogCacheSize = 64
	config.Storage.CatalogCacheTTL = 5 * time.Minute

	config.Files.ServeDeleted = true
	config.Files.EmptyListingIsError = true

	config.Seed.AdminEmail = "admin@lorebase.local"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if len(config.Storage.AllowedExtensions) == 0 {
		return fmt.Errorf("at least one allowed file extension is required")
	}

	seen := make(map[string]struct{}, len(config.Storage.FileTypes))
	for i, ft := range config.Storage.FileTypes {
		if ft.Alias == "" || ft.RootPath == "" {
			return fmt.Errorf("storage.file_types[%d]: alias and root_path are required", i)
		}
		if _, dup := seen[ft.Alias]; dup {
			return fmt.Errorf("storage.file_types[%d]: duplicate alias %q", i, ft.Alias)
		}
		seen[ft.Alias] = struct{}{}
	}

	return nil
}

// normalizeExtensions lowercases entries and makes sure each has a leading dot
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// MaxUploadBytes returns the multipart memory limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadSizeMB) << 20
}
