// Package auth issues and verifies the signed access and refresh tokens used
// by the server, and hashes user passwords.
//
// The Manager is stateless: it never touches storage. Comparing a presented
// refresh token with the one stored on the user record is the caller's job.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/orgchat/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

// Token types carried in the typ claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the set of fields embedded in every token. Subject (sub) holds
// the user id; Username is only set on access tokens. Type is stamped by the
// Manager at issue time and cannot be chosen by the caller.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
	Type     string `json:"typ"`
}

// Config is the immutable token configuration loaded once at startup.
type Config struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Manager signs and verifies HS256 tokens. Safe for concurrent use.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewManager validates cfg and returns a Manager holding a private copy of
// the secret. Zero TTLs fall back to the defaults.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	if cfg.AccessTTL < 0 || cfg.RefreshTTL < 0 {
		return nil, errors.New("token lifetimes must not be negative")
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	return &Manager{
		secret:     secret,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}, nil
}

// AccessTTL reports the configured access-token lifetime.
func (m *Manager) AccessTTL() time.Duration { return m.accessTTL }

// RefreshTTL reports the configured refresh-token lifetime.
func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

// IssueAccessToken signs claims with exp = now + access lifetime.
func (m *Manager) IssueAccessToken(claims Claims) (string, error) {
	return m.issue(claims, TokenTypeAccess, m.accessTTL)
}

// IssueRefreshToken signs claims with exp = now + refresh lifetime.
func (m *Manager) IssueRefreshToken(claims Claims) (string, error) {
	return m.issue(claims, TokenTypeRefresh, m.refreshTTL)
}

func (m *Manager) issue(claims Claims, typ string, ttl time.Duration) (string, error) {
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: empty subject", common.ErrInvalidToken)
	}

	claims.Type = typ
	now := m.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	// jti keeps tokens issued for the same subject within one second distinct.
	claims.ID = uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks signature, algorithm and expiry and returns the embedded
// claims. Errors match common.ErrTokenExpired for a correctly signed token
// past its exp, and common.ErrInvalidToken for everything else.
func (m *Manager) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", common.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", common.ErrInvalidToken)
	}

	return claims, nil
}

// VerifyAccessToken is VerifyToken restricted to access tokens.
func (m *Manager) VerifyAccessToken(tokenString string) (*Claims, error) {
	return m.verifyType(tokenString, TokenTypeAccess)
}

// VerifyRefreshToken is VerifyToken restricted to refresh tokens.
func (m *Manager) VerifyRefreshToken(tokenString string) (*Claims, error) {
	return m.verifyType(tokenString, TokenTypeRefresh)
}

func (m *Manager) verifyType(tokenString, typ string) (*Claims, error) {
	claims, err := m.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != typ {
		return nil, fmt.Errorf("%w: want %s token, got %q", common.ErrInvalidToken, typ, claims.Type)
	}
	return claims, nil
}
