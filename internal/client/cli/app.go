// Package cli implements the orgchat-cli commands: login, token refresh,
// logout, password reset and a "who am I" check against the server.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/orgchat/internal/client/api"
	"github.com/dmitrijs2005/orgchat/internal/client/session"
)

// ErrUnknownCommand is returned for an empty or unrecognised command name.
var ErrUnknownCommand = errors.New("unknown command")

// API is the part of the REST client the commands use.
type API interface {
	Login(ctx context.Context, username, password string) (*api.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*api.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	RequestPasswordReset(ctx context.Context, email string) (*api.ResetRequestResult, error)
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) (string, error)
	Me(ctx context.Context, accessToken string) (*api.User, error)
	Health(ctx context.Context) error
}

// SessionStore keeps the login between runs.
type SessionStore interface {
	Save(ctx context.Context, s session.Session) error
	Load(ctx context.Context) (session.Session, error)
	Clear(ctx context.Context) error
}

var (
	_ API          = (*api.Client)(nil)
	_ SessionStore = (*session.Store)(nil)
)

type App struct {
	api    API
	store  SessionStore
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(client API, store SessionStore, in io.Reader, out io.Writer) *App {
	return &App{api: client, store: store, reader: bufio.NewReader(in), out: out}
}

type command struct {
	usage string
	run   func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"login":         {"login [-u username]", (*App).login},
	"refresh":       {"refresh", (*App).refresh},
	"logout":        {"logout", (*App).logout},
	"reset-request": {"reset-request [-e email]", (*App).resetRequest},
	"reset-confirm": {"reset-confirm [-token token]", (*App).resetConfirm},
	"me":            {"me [-token access_token]", (*App).me},
	"health":        {"health", (*App).health},
}

var commandOrder = []string{"login", "refresh", "logout", "reset-request", "reset-confirm", "me", "health"}

// Run executes the command named by args[0] with the remaining arguments.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return ErrUnknownCommand
	}

	name := args[0]
	if name == "help" || name == "-h" || name == "--help" {
		a.usage()
		return nil
	}

	cmd, ok := commands[name]
	if !ok {
		a.usage()
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return cmd.run(a, ctx, args[1:])
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "Usage: orgchat-cli [-a url] [-f session.db] [-t seconds] [-c config.json] <command>")
	fmt.Fprintln(a.out, "Commands:")
	for _, name := range commandOrder {
		fmt.Fprintf(a.out, "  %s\n", commands[name].usage)
	}
}
