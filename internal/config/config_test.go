package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	require.Equal(t, "uploads", cfg.UploadDir)
	require.Equal(t, int64(0), cfg.MaxUploadBytes)
	require.Empty(t, cfg.RedisAddr)
	require.True(t, cfg.UsingFallbackSecret())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("JWT_SECRET", "unit-test-secret")
	t.Setenv("UPLOAD_DIR", "/tmp/kukuri-uploads")
	t.Setenv("MAX_UPLOAD_BYTES", "1048576")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 8081, cfg.Port)
	require.Equal(t, "unit-test-secret", cfg.JWTSecret)
	require.Equal(t, "/tmp/kukuri-uploads", cfg.UploadDir)
	require.Equal(t, int64(1048576), cfg.MaxUploadBytes)
	require.False(t, cfg.UsingFallbackSecret())
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("PORT", "99999")

	_, err := Load()
	require.Error(t, err)
}
