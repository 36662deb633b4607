package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.DatabaseDriver)
	assert.Equal(t, "data/lemmabank.db", cfg.DatabaseURL)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"el", "en", "es", "fr", "de", "it", "ru"}, cfg.SupportedLanguages)
	assert.Equal(t, 1600, cfg.ImageMaxDimension)
	assert.Equal(t, time.Hour, cfg.StatsRefreshInterval)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.True(t, cfg.AutoMigrate)
	assert.False(t, cfg.AllowPrivateURLs)
	assert.True(t, cfg.IsSupported("el"))
	assert.False(t, cfg.IsSupported("xx"))
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("SUPPORTED_LANGUAGES", " EN, fr ,en,")
	t.Setenv("DIGEST_HOUR", "21")
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/lemmabank")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "fr"}, cfg.SupportedLanguages)
	assert.Equal(t, 21, cfg.DigestHour)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
}

func TestLoadDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_ADDR=:9999\nUPLOAD_DIR=/tmp/up\n"), 0644))
	t.Setenv("UPLOAD_DIR", "/srv/uploads")
	// godotenv sets variables for the whole process.
	t.Cleanup(func() { os.Unsetenv("HTTP_ADDR") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "/srv/uploads", cfg.UploadDir, "the environment wins over the file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"driver", map[string]string{"DATABASE_DRIVER": "mysql"}},
		{"digest hour", map[string]string{"DIGEST_HOUR": "24"}},
		{"language code", map[string]string{"SUPPORTED_LANGUAGES": "english"}},
		{"no languages", map[string]string{"SUPPORTED_LANGUAGES": " , "}},
		{"image size", map[string]string{"IMAGE_MAX_DIMENSION": "0"}},
		{"duration", map[string]string{"FETCH_TIMEOUT": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}
