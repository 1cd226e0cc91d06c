package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_OverridesOnlySetVariables(t *testing.T) {
	isolateEnv(t)

	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("APP_ENV", "production")
	t.Setenv("S3_BUCKET", "files")

	c := defaults()
	require.NoError(t, parseEnv(c))

	want := defaults()
	want.EndpointAddrHTTP = ":9999"
	want.AccessTokenValidityDuration = 5 * time.Minute
	want.Environment = "production"
	want.S3Bucket = "files"

	assert.Empty(t, cmp.Diff(want, c))
	assert.True(t, c.IsProduction())
}

func TestParseEnv_ReadsDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("RESET_TOKEN_TTL=90m\nGRPC_ADDR=:6000\n"), 0o600))

	orig := envFile
	envFile = path
	t.Cleanup(func() {
		envFile = orig
		// godotenv writes into the process environment
		_ = os.Unsetenv("RESET_TOKEN_TTL")
		_ = os.Unsetenv("GRPC_ADDR")
	})

	c := defaults()
	require.NoError(t, parseEnv(c))

	assert.Equal(t, 90*time.Minute, c.ResetTokenValidityDuration)
	assert.Equal(t, ":6000", c.EndpointAddrGRPC)
}

func TestParseEnv_ProcessEnvBeatsDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_BACKEND=slog\n"), 0o600))

	orig := envFile
	envFile = path
	t.Cleanup(func() { envFile = orig })

	t.Setenv("LOG_BACKEND", "zap")

	c := defaults()
	c.LogBackend = "unset"
	require.NoError(t, parseEnv(c))
	assert.Equal(t, "zap", c.LogBackend)
}

func TestParseEnv_InvalidDuration(t *testing.T) {
	isolateEnv(t)
	t.Setenv("REFRESH_TOKEN_TTL", "forever")

	assert.Error(t, parseEnv(defaults()))
}
