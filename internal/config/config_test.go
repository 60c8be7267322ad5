package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_DefaultsWithSecretFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	assert.Contains(t, cfg.Storage.AllowedExtensions, ".png")
	assert.Len(t, cfg.Storage.FileTypes, 3)
	assert.True(t, cfg.Files.ServeDeleted)
	assert.True(t, cfg.Files.EmptyListingIsError)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes())
}

func TestLoadConfig_FileThenEnvOverride(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	path := writeConfig(t, `
server:
  port: "9090"
storage:
  allowed_extensions: ["PNG", "pdf"]
  catalog_cache_ttl: 30s
  file_types:
    - alias: User
      name: Users
      root_path: /data/users
files:
  empty_listing_is_error: false
`)
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("FILES_SERVE_DELETED", "false")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, []string{".png", ".pdf"}, cfg.Storage.AllowedExtensions)
	assert.Equal(t, 30*time.Second, cfg.Storage.CatalogCacheTTL)
	require.Len(t, cfg.Storage.FileTypes, 1)
	assert.Equal(t, "/data/users", cfg.Storage.FileTypes[0].RootPath)
	assert.False(t, cfg.Files.ServeDeleted)
	assert.False(t, cfg.Files.EmptyListingIsError)
}

func TestLoadConfig_ExtensionListFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("STORAGE_ALLOWED_EXTENSIONS", ".txt, JPG ,")
	t.Setenv("STORAGE_CATALOG_CACHE_TTL", "1m")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{".txt", ".jpg"}, cfg.Storage.AllowedExtensions)
	assert.Equal(t, time.Minute, cfg.Storage.CatalogCacheTTL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing secret", body: "server:\n  port: \"1\"\n"},
		{name: "duplicate alias", body: `
jwt:
  secret: s
storage:
  file_types:
    - {alias: User, root_path: a}
    - {alias: User, root_path: b}
`},
		{name: "file type without root", body: `
jwt:
  secret: s
storage:
  file_types:
    - {alias: User}
`},
		{name: "bad expiration", body: "jwt:\n  secret: s\n  access_token_expiration: soon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.name == "missing secret" {
				t.Setenv("JWT_SECRET", "")
			}
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_BadEnvValue(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("DB_MAX_OPEN_CONNS", "many")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
