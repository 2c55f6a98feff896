package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("UPLOAD_DIR", t.TempDir())
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, 1000, cfg.MaxMessageLength)
	assert.Equal(t, "0.0.0.0:3000", cfg.HTTPAddr())
	assert.Len(t, cfg.CORSOrigins, 2)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("UPLOAD_DIR", t.TempDir())
	t.Setenv("STORE_DRIVER", "Mongo")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("MAX_MESSAGE_LENGTH", "20")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 20, cfg.MaxMessageLength)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("UPLOAD_DIR", t.TempDir())

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := &Config{JWTSecret: "s", StoreDriver: "redis", MaxMessageLength: 10}
	assert.ErrorContains(t, cfg.Validate(), "STORE_DRIVER")
}
