package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "http:\n  port: 9090\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 10, cfg.HTTP.ReadTimeoutSec)
	assert.Equal(t, int64(10<<20), cfg.HTTP.MaxBodyBytes)
	assert.Equal(t, "./catalog_data", cfg.Storage.DataDir)
	assert.Equal(t, "local", cfg.Logging.Env)
	assert.Equal(t, 20, cfg.Catalog.DefaultPageSize)
	assert.Equal(t, 100, cfg.Catalog.MaxPageSize)
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("CATALOG_DATA_DIR", "/var/lib/catalog")
	path := writeConfig(t, "storage:\n  data_dir: ${CATALOG_DATA_DIR}\nlogging:\n  env: prod\n  level: ${CATALOG_UNSET_LEVEL}\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/catalog", cfg.Storage.DataDir)
	assert.Equal(t, "prod", cfg.Logging.Env)
	assert.Equal(t, "", cfg.Logging.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "port out of range", body: "http:\n  port: 70000\n"},
		{name: "unknown env", body: "logging:\n  env: staging\n"},
		{name: "page sizes inverted", body: "catalog:\n  default_page_size: 50\n  max_page_size: 10\n"},
		{name: "malformed yaml", body: "http: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 8080, cfg.HTTP.Port)
}
