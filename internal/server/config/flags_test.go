package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    func() *Config
		wantErr bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:8081", "-G", "127.0.0.1:9090", "-d", "db", "-s", "secret",
				"-t", "1", "-r", "3", "-x", "30", "-m", "production", "-l", "slog", "-v", "debug",
				"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
			},
			want: func() *Config {
				return &Config{
					EndpointAddrHTTP:             "127.0.0.1:8081",
					EndpointAddrGRPC:             "127.0.0.1:9090",
					DatabaseDSN:                  "db",
					SecretKey:                    "secret",
					AccessTokenValidityDuration:  1 * time.Minute,
					RefreshTokenValidityDuration: 3 * time.Minute,
					ResetTokenValidityDuration:   30 * time.Minute,
					Environment:                  "production",
					LogBackend:                   "slog",
					LogLevel:                     "debug",
					S3RootUser:                   "user",
					S3RootPassword:               "password",
					S3Bucket:                     "bucket",
					S3Region:                     "us-west-1",
					S3BaseEndpoint:               "http://endpoint",
				}
			},
		},
		{
			name: "unrelated flags ignored",
			args: []string{"-c", "cfg.json", "-unknown", "x", "-s", "k"},
			want: func() *Config {
				c := defaults()
				c.SecretKey = "k"
				return c
			},
		},
		{
			name:    "bad integer",
			args:    []string{"-r", "many"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := defaults()
			err := parseFlags(config, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.want(), config))
		})
	}
}
