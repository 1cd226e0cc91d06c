package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerURL)
	assert.Equal(t, "orgchat-session.db", c.SessionFile)
	assert.Equal(t, 10*time.Second, c.Timeout)
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"server_url":   "http://json:9000",
		"session_file": "json.db",
		"timeout":      "3s",
	})

	cfg, rest, err := LoadConfig([]string{"-c", path, "-a", "http://flag:1", "login", "-u", "alice"})
	require.NoError(t, err)

	want := &Config{ServerURL: "http://flag:1", SessionFile: "json.db", Timeout: 3 * time.Second}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"login", "-u", "alice"}, rest)
}

func TestLoadConfig_CommandFlagsAreNotGlobal(t *testing.T) {
	cfg, rest, err := LoadConfig([]string{"me", "-a", "ignored", "-t", "99"})
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8080", cfg.ServerURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"me", "-a", "ignored", "-t", "99"}, rest)
}

func TestLoadConfig_TimeoutFlag(t *testing.T) {
	cfg, _, err := LoadConfig([]string{"-t", "30", "me"})
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestLoadConfig_Errors(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{ not json`), 0o600))

	tests := map[string][]string{
		"unknown global flag": {"-z", "me"},
		"bad timeout":         {"-t", "soon", "me"},
		"missing file":        {"-c", filepath.Join(t.TempDir(), "absent.json"), "me"},
		"invalid json":        {"-c", bad, "me"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := LoadConfig(args)
			assert.Error(t, err)
		})
	}
}
