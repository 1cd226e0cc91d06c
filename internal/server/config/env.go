package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// envFile is loaded before the environment is read; variables already set
// in the process take priority over the file.
var envFile = ".env"

// EnvConfig is the environment-variable view of Config. Unset variables
// leave the corresponding Config field untouched.
type EnvConfig struct {
	EndpointAddrHTTP             string        `env:"HTTP_ADDR"`
	EndpointAddrGRPC             string        `env:"GRPC_ADDR"`
	DatabaseDSN                  string        `env:"DATABASE_DSN"`
	SecretKey                    string        `env:"AUTH_SECRET_KEY"`
	AccessTokenValidityDuration  time.Duration `env:"ACCESS_TOKEN_TTL"`
	RefreshTokenValidityDuration time.Duration `env:"REFRESH_TOKEN_TTL"`
	ResetTokenValidityDuration   time.Duration `env:"RESET_TOKEN_TTL"`
	Environment                  string        `env:"APP_ENV"`
	LogBackend                   string        `env:"LOG_BACKEND"`
	LogLevel                     string        `env:"LOG_LEVEL"`
	S3RootUser                   string        `env:"S3_ROOT_USER"`
	S3RootPassword               string        `env:"S3_ROOT_PASSWORD"`
	S3Bucket                     string        `env:"S3_BUCKET"`
	S3Region                     string        `env:"S3_REGION"`
	S3BaseEndpoint               string        `env:"S3_BASE_ENDPOINT"`
}

func parseEnv(config *Config) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading %s: %w", envFile, err)
	}

	e := &EnvConfig{}
	if err := cleanenv.ReadEnv(e); err != nil {
		return fmt.Errorf("error reading environment: %w", err)
	}

	setString(&config.EndpointAddrHTTP, e.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, e.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, e.DatabaseDSN)
	setString(&config.SecretKey, e.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, e.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, e.RefreshTokenValidityDuration)
	setDuration(&config.ResetTokenValidityDuration, e.ResetTokenValidityDuration)
	setString(&config.Environment, e.Environment)
	setString(&config.LogBackend, e.LogBackend)
	setString(&config.LogLevel, e.LogLevel)
	setString(&config.S3RootUser, e.S3RootUser)
	setString(&config.S3RootPassword, e.S3RootPassword)
	setString(&config.S3Bucket, e.S3Bucket)
	setString(&config.S3Region, e.S3Region)
	setString(&config.S3BaseEndpoint, e.S3BaseEndpoint)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
