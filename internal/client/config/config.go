// Package config assembles the CLI settings: built-in defaults, an optional
// JSON file (-c/-config) and global short flags given before the command.
package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/orgchat/internal/flagx"
)

// Config holds runtime settings for the OrgChat CLI.
//
// Fields:
//   - ServerURL: base URL of the REST API.
//   - SessionFile: SQLite file that keeps the current tokens between runs.
//   - Timeout: per-request HTTP timeout.
type Config struct {
	ServerURL   string
	SessionFile string
	Timeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.SessionFile = "orgchat-session.db"
	c.Timeout = 10 * time.Second
}

// LoadConfig applies defaults, then JSON, then flags found in args before
// the first non-flag argument. It returns the remaining arguments, which
// start with the command name.
func LoadConfig(args []string) (*Config, []string, error) {
	rest, err := commandArgs(args)
	if err != nil {
		return nil, nil, err
	}
	global := args[:len(args)-len(rest)]

	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, flagx.ConfigFileFlag(global)); err != nil {
		return nil, nil, err
	}
	if err := parseFlags(cfg, global); err != nil {
		return nil, nil, err
	}
	return cfg, rest, nil
}

// commandArgs returns args with the leading global flags stripped.
func commandArgs(args []string) ([]string, error) {
	fs := newFlagSet(&Config{})
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return fs.Args(), nil
}

func newFlagSet(cfg *Config) *flag.FlagSet {
	fs := flag.NewFlagSet("orgchat-cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.String("c", "", "path to JSON config file")
	fs.String("config", "", "path to JSON config file")
	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the API server")
	fs.StringVar(&cfg.SessionFile, "f", cfg.SessionFile, "session database file")
	fs.Func("t", "request timeout in seconds", func(s string) error {
		d, err := time.ParseDuration(s + "s")
		if err != nil {
			return err
		}
		cfg.Timeout = d
		return nil
	})
	return fs
}
