package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/orgchat/internal/client/api"
	"github.com/dmitrijs2005/orgchat/internal/client/session"
	"github.com/dmitrijs2005/orgchat/internal/common"
)

func newCommandFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// prompt returns value when set, otherwise asks for it.
func (a *App) prompt(value, text string) (string, error) {
	if value != "" {
		return value, nil
	}
	v, err := GetSimpleText(a.reader, text, a.out)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("%s must not be empty", text)
	}
	return v, nil
}

func (a *App) readPassword(text string) (string, error) {
	pw, err := GetPassword(text, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	if len(pw) == 0 {
		return "", fmt.Errorf("%s must not be empty", text)
	}
	return string(pw), nil
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := newCommandFlags("login")
	username := fs.String("u", "", "username or email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	name, err := a.prompt(*username, "Username")
	if err != nil {
		return err
	}
	password, err := a.readPassword("Password")
	if err != nil {
		return err
	}

	pair, err := a.api.Login(ctx, name, password)
	if err != nil {
		return err
	}
	if err := a.store.Save(ctx, sessionFrom(name, pair)); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", name)
	return nil
}

func (a *App) refresh(ctx context.Context, args []string) error {
	sess, err := a.store.Load(ctx)
	if err != nil {
		return err
	}
	if _, err := a.rotate(ctx, sess); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Tokens refreshed")
	return nil
}

// rotate exchanges the stored refresh token and saves the new pair.
func (a *App) rotate(ctx context.Context, sess session.Session) (session.Session, error) {
	pair, err := a.api.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		return session.Session{}, err
	}
	next := sessionFrom(sess.Username, pair)
	if err := a.store.Save(ctx, next); err != nil {
		return session.Session{}, err
	}
	return next, nil
}

func (a *App) logout(ctx context.Context, args []string) error {
	sess, err := a.store.Load(ctx)
	if err != nil {
		return err
	}

	// the server side may already be gone; drop the local copy either way
	if err := a.api.Logout(ctx, sess.RefreshToken); err != nil && !errors.Is(err, common.ErrorUnauthorized) {
		return err
	}
	if err := a.store.Clear(ctx); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) resetRequest(ctx context.Context, args []string) error {
	fs := newCommandFlags("reset-request")
	email := fs.String("e", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	addr, err := a.prompt(*email, "Email")
	if err != nil {
		return err
	}

	res, err := a.api.RequestPasswordReset(ctx, addr)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, res.Detail)
	if res.ResetToken != "" {
		fmt.Fprintf(a.out, "Reset token: %s\n", res.ResetToken)
	}
	return nil
}

func (a *App) resetConfirm(ctx context.Context, args []string) error {
	fs := newCommandFlags("reset-confirm")
	token := fs.String("token", "", "reset token")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tok, err := a.prompt(*token, "Reset token")
	if err != nil {
		return err
	}
	password, err := a.readPassword("New password")
	if err != nil {
		return err
	}

	msg, err := a.api.ConfirmPasswordReset(ctx, tok, password)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *App) me(ctx context.Context, args []string) error {
	fs := newCommandFlags("me")
	token := fs.String("token", "", "access token to use instead of the stored session")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *token != "" {
		u, err := a.api.Me(ctx, *token)
		if err != nil {
			return err
		}
		a.printUser(u)
		return nil
	}

	sess, err := a.store.Load(ctx)
	if err != nil {
		return err
	}

	u, err := a.api.Me(ctx, sess.AccessToken)
	if errors.Is(err, common.ErrorUnauthorized) && sess.RefreshToken != "" {
		// access token is short-lived; retry once with a fresh pair
		if sess, err = a.rotate(ctx, sess); err != nil {
			return err
		}
		u, err = a.api.Me(ctx, sess.AccessToken)
	}
	if err != nil {
		return err
	}

	a.printUser(u)
	return nil
}

func (a *App) health(ctx context.Context, args []string) error {
	if err := a.api.Health(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Server is healthy")
	return nil
}

func (a *App) printUser(u *api.User) {
	fmt.Fprintf(a.out, "ID:       %s\n", u.ID)
	fmt.Fprintf(a.out, "Username: %s\n", u.Username)
	fmt.Fprintf(a.out, "Email:    %s\n", u.Email)
	if u.Name != nil {
		fmt.Fprintf(a.out, "Name:     %s\n", *u.Name)
	}
	if u.Department != nil {
		fmt.Fprintf(a.out, "Dept:     %s\n", *u.Department)
	}
	fmt.Fprintf(a.out, "Active:   %t\n", u.IsActive)
}

func sessionFrom(username string, pair *api.TokenPair) session.Session {
	return session.Session{
		Username:     username,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
}
