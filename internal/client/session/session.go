// Package session persists the CLI's current login (tokens and username)
// between invocations in a local SQLite database.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/orgchat/internal/client/migrations"
	"github.com/dmitrijs2005/orgchat/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/orgchat/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUsername     = "username"
)

// ErrNoSession is returned by Load when nobody is logged in.
var ErrNoSession = errors.New("not logged in")

var gooseUpContext = goose.UpContext

// InitDatabase opens (creating if needed) the SQLite file at path and
// applies the embedded migrations.
func InitDatabase(ctx context.Context, path string) (*sql.DB, error) {
	path, err := filex.EnsureParentDir(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening session database: %w", err)
	}
	db.SetMaxOpenConns(1)

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error migrating session database: %w", err)
	}

	return db, nil
}

// Session is the login state kept between CLI runs.
type Session struct {
	Username     string
	AccessToken  string
	RefreshToken string
}

// Store reads and writes a Session through the metadata repository.
type Store struct {
	repo metadata.Repository
}

func NewStore(repo metadata.Repository) *Store {
	return &Store{repo: repo}
}

// Save replaces the stored session.
func (s *Store) Save(ctx context.Context, sess Session) error {
	values := map[string]string{
		keyUsername:     sess.Username,
		keyAccessToken:  sess.AccessToken,
		keyRefreshToken: sess.RefreshToken,
	}
	for k, v := range values {
		if err := s.repo.Set(ctx, k, []byte(v)); err != nil {
			return err
		}
	}
	return nil
}

// Load returns ErrNoSession when no access token is stored.
func (s *Store) Load(ctx context.Context) (Session, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return Session{}, err
	}

	sess := Session{
		Username:     string(all[keyUsername]),
		AccessToken:  string(all[keyAccessToken]),
		RefreshToken: string(all[keyRefreshToken]),
	}
	if sess.AccessToken == "" {
		return Session{}, ErrNoSession
	}
	return sess, nil
}

// Clear forgets the stored session.
func (s *Store) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}
