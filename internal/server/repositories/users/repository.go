package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/orgchat/internal/server/models"
)

// Repository persists user accounts. Lookups return common.ErrorNotFound
// when no row matches; updates return it when no row was touched.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByLogin matches either the username or the email.
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByResetToken(ctx context.Context, token string) (*models.User, error)

	// UpdateRefreshToken overwrites the stored refresh token; nil clears it.
	UpdateRefreshToken(ctx context.Context, id string, token *string) error
	SetResetToken(ctx context.Context, id, token string, expires time.Time) error
	// ResetPassword stores the new hash and clears both reset fields in one
	// statement.
	ResetPassword(ctx context.Context, id, hashedPassword string) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, offset, limit int) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
}
