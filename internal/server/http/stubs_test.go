package http

import (
	"context"
	"encoding/json"
	"io"

	"github.com/dmitrijs2005/orgchat/internal/common"
	"github.com/dmitrijs2005/orgchat/internal/server/auth"
	"github.com/dmitrijs2005/orgchat/internal/server/models"
	"github.com/dmitrijs2005/orgchat/internal/server/services"
	"github.com/golang-jwt/jwt/v5"
)

const (
	goodAccessToken = "good-access"
	stubUserID      = "11111111-1111-1111-1111-111111111111"
)

type stubAuth struct {
	login    func(req services.LoginRequest) (*services.TokenPair, error)
	refresh  func(token string) (*services.TokenPair, error)
	logout   func(token string) error
	reset    func(email string) (*services.ResetRequestResult, error)
	confirm  func(token, pw string) error
	register func(req services.RegisterRequest) (*models.User, error)
}

func (s *stubAuth) Login(_ context.Context, req services.LoginRequest) (*services.TokenPair, error) {
	return s.login(req)
}

func (s *stubAuth) Refresh(_ context.Context, token string) (*services.TokenPair, error) {
	return s.refresh(token)
}

func (s *stubAuth) Logout(_ context.Context, token string) error { return s.logout(token) }

func (s *stubAuth) RequestPasswordReset(_ context.Context, email string) (*services.ResetRequestResult, error) {
	return s.reset(email)
}

func (s *stubAuth) ConfirmPasswordReset(_ context.Context, token, pw string) error {
	return s.confirm(token, pw)
}

func (s *stubAuth) Register(_ context.Context, req services.RegisterRequest) (*models.User, error) {
	return s.register(req)
}

// Validate accepts only goodAccessToken.
func (s *stubAuth) Validate(_ context.Context, token string) (*auth.Claims, error) {
	if token != goodAccessToken {
		return nil, common.ErrorUnauthorized
	}
	return &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: stubUserID}, Username: "alice"}, nil
}

type stubUsers struct {
	get       func(id string) (*models.User, error)
	list      func(page, size int) (*services.UserPage, error)
	setActive func(id string, enabled bool) (string, error)
	del       func(id string) error
}

func (s *stubUsers) Get(_ context.Context, id string) (*models.User, error) { return s.get(id) }
func (s *stubUsers) List(_ context.Context, page, size int) (*services.UserPage, error) {
	return s.list(page, size)
}
func (s *stubUsers) SetActive(_ context.Context, id string, enabled bool) (string, error) {
	return s.setActive(id, enabled)
}
func (s *stubUsers) Delete(_ context.Context, id string) error { return s.del(id) }

type stubNotifications struct {
	create      func(userID string, typ models.NotificationType, data json.RawMessage) (*models.Notification, error)
	get         func(userID, id string) (*models.Notification, error)
	list        func(userID string, f models.NotificationFilter, page, size int) (*services.NotificationPage, error)
	update      func(userID, id string, status *models.NotificationStatus, data json.RawMessage) (*models.Notification, error)
	markRead    func(userID, id string) (*models.Notification, error)
	markAllRead func(userID string) (int64, error)
	del         func(userID, id string) error
}

func (s *stubNotifications) Create(_ context.Context, userID string, typ models.NotificationType, data json.RawMessage) (*models.Notification, error) {
	return s.create(userID, typ, data)
}
func (s *stubNotifications) Get(_ context.Context, userID, id string) (*models.Notification, error) {
	return s.get(userID, id)
}
func (s *stubNotifications) List(_ context.Context, userID string, f models.NotificationFilter, page, size int) (*services.NotificationPage, error) {
	return s.list(userID, f, page, size)
}
func (s *stubNotifications) Update(_ context.Context, userID, id string, status *models.NotificationStatus, data json.RawMessage) (*models.Notification, error) {
	return s.update(userID, id, status, data)
}
func (s *stubNotifications) MarkRead(_ context.Context, userID, id string) (*models.Notification, error) {
	return s.markRead(userID, id)
}
func (s *stubNotifications) MarkAllRead(_ context.Context, userID string) (int64, error) {
	return s.markAllRead(userID)
}
func (s *stubNotifications) Delete(_ context.Context, userID, id string) error {
	return s.del(userID, id)
}

type stubStorage struct {
	upload   func(userID, name, contentType string, size int64, body io.Reader) (*models.File, string, error)
	list     func(userID string) ([]*models.File, error)
	download func(userID, id string) (string, error)
	del      func(userID, id string) error
}

func (s *stubStorage) Upload(_ context.Context, userID, name, contentType string, size int64, body io.Reader) (*models.File, string, error) {
	return s.upload(userID, name, contentType, size, body)
}
func (s *stubStorage) List(_ context.Context, userID string) ([]*models.File, error) {
	return s.list(userID)
}
func (s *stubStorage) DownloadURL(_ context.Context, userID, id string) (string, error) {
	return s.download(userID, id)
}
func (s *stubStorage) Delete(_ context.Context, userID, id string) error { return s.del(userID, id) }

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }
