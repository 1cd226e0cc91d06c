// Package http exposes the services over a JSON REST API built on gin.
package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/orgchat/internal/server/auth"
	"github.com/dmitrijs2005/orgchat/internal/server/models"
	"github.com/dmitrijs2005/orgchat/internal/server/services"
)

// The handlers depend on these method sets; the services package provides
// the implementations.

type AuthAPI interface {
	Login(ctx context.Context, req services.LoginRequest) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	RequestPasswordReset(ctx context.Context, email string) (*services.ResetRequestResult, error)
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	Register(ctx context.Context, req services.RegisterRequest) (*models.User, error)
	Validate(ctx context.Context, accessToken string) (*auth.Claims, error)
}

type UserAPI interface {
	Get(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, page, size int) (*services.UserPage, error)
	SetActive(ctx context.Context, id string, enabled bool) (string, error)
	Delete(ctx context.Context, id string) error
}

type NotificationAPI interface {
	Create(ctx context.Context, userID string, typ models.NotificationType, data json.RawMessage) (*models.Notification, error)
	Get(ctx context.Context, userID, id string) (*models.Notification, error)
	List(ctx context.Context, userID string, filter models.NotificationFilter, page, size int) (*services.NotificationPage, error)
	Update(ctx context.Context, userID, id string, status *models.NotificationStatus, data json.RawMessage) (*models.Notification, error)
	MarkRead(ctx context.Context, userID, id string) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
}

type StorageAPI interface {
	Upload(ctx context.Context, userID, fileName, contentType string, size int64, body io.Reader) (*models.File, string, error)
	List(ctx context.Context, userID string) ([]*models.File, error)
	DownloadURL(ctx context.Context, userID, id string) (string, error)
	Delete(ctx context.Context, userID, id string) error
}

// Pinger reports database reachability for /health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

var (
	_ AuthAPI         = (*services.AuthService)(nil)
	_ UserAPI         = (*services.UserService)(nil)
	_ NotificationAPI = (*services.NotificationService)(nil)
	_ StorageAPI      = (*services.StorageService)(nil)
)

// RequestObserver receives one call per finished request.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// MetricsAPI is a RequestObserver that can also serve its metrics.
type MetricsAPI interface {
	RequestObserver
	Handler() http.Handler
}
