package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServer_Defaults(t *testing.T) {
	t.Setenv("LISTWISE_JWT_SECRET", "0123456789abcdef")
	t.Setenv("LISTWISE_PORT", "")
	t.Setenv("LISTWISE_SESSION_TTL", "")

	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "listwise.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
}

func TestLoadServer_Overrides(t *testing.T) {
	t.Setenv("LISTWISE_JWT_SECRET", "0123456789abcdef")
	t.Setenv("LISTWISE_PORT", "9090")
	t.Setenv("LISTWISE_SESSION_TTL", "90m")
	t.Setenv("LISTWISE_LOG_FORMAT", "json")

	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadServer_RequiresSecret(t *testing.T) {
	t.Setenv("LISTWISE_JWT_SECRET", "")

	_, err := LoadServer()
	assert.ErrorContains(t, err, "JWT_SECRET is required")
}

func TestLoadServer_InvalidDuration(t *testing.T) {
	t.Setenv("LISTWISE_JWT_SECRET", "0123456789abcdef")
	t.Setenv("LISTWISE_SESSION_TTL", "soon")

	_, err := LoadServer()
	assert.ErrorContains(t, err, "LISTWISE_SESSION_TTL")
}

func TestServerValidate(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Server
		valid bool
	}{
		{"ok", Server{Port: "8080", JWTSecret: "0123456789abcdef", SessionTTL: time.Hour}, true},
		{"short secret", Server{Port: "8080", JWTSecret: "short", SessionTTL: time.Hour}, false},
		{"zero ttl", Server{Port: "8080", JWTSecret: "0123456789abcdef"}, false},
		{"bad port", Server{Port: "http", JWTSecret: "0123456789abcdef", SessionTTL: time.Hour}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLoadClient(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LISTWISE_API_URL", "http://example.test:8080/")
	t.Setenv("LISTWISE_PREFS_DIR", dir)
	t.Setenv("LISTWISE_ERROR_TTL", "2s")

	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "http://example.test:8080", cfg.APIURL)
	assert.Equal(t, dir, cfg.PrefsDir)
	assert.Equal(t, 2*time.Second, cfg.ErrorTTL)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LISTWISE_TEST_ONLY=from-file\n"), 0o600))
	t.Setenv("LISTWISE_TEST_ONLY", "")
	os.Unsetenv("LISTWISE_TEST_ONLY")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("LISTWISE_TEST_ONLY"))

	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}
