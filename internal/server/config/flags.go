package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/orgchat/internal/flagx"
)

// parseFlags overlays values from short command-line flags:
//
//	-a string   HTTP listen address (":8080")
//	-G string   gRPC listen address (":50051")
//	-d string   PostgreSQL DSN
//	-s string   token HMAC secret
//	-t int      access token lifetime, minutes
//	-r int      refresh token lifetime, minutes
//	-x int      password reset token lifetime, minutes
//	-m string   environment ("development" or "production")
//	-l string   log backend ("zap" or "slog")
//	-v string   log level
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint
//
// Only these flags are picked out of args, so -c/-config and foreign flags
// do not cause parse errors.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-G", "-d", "-s", "-t", "-r", "-x", "-m", "-l", "-v", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP listen address")
	fs.StringVar(&config.EndpointAddrGRPC, "G", config.EndpointAddrGRPC, "gRPC listen address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (minutes)")
	refreshTokenValidity := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (minutes)")
	resetTokenValidity := fs.Int("x", int(config.ResetTokenValidityDuration.Minutes()), "password reset token validity (minutes)")

	fs.StringVar(&config.Environment, "m", config.Environment, "environment")
	fs.StringVar(&config.LogBackend, "l", config.LogBackend, "log backend (zap|slog)")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidity) * time.Minute
	config.ResetTokenValidityDuration = time.Duration(*resetTokenValidity) * time.Minute

	return nil
}
