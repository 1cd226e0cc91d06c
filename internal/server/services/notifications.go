package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/orgchat/internal/common"
	"github.com/dmitrijs2005/orgchat/internal/logging"
	"github.com/dmitrijs2005/orgchat/internal/server/models"
	"github.com/dmitrijs2005/orgchat/internal/server/repositories/repomanager"
)

// NotificationPage is one page of a user's notifications, newest first.
type NotificationPage struct {
	Items []*models.Notification `json:"items"`
	Total int                    `json:"total"`
	Page  int                    `json:"page"`
	Size  int                    `json:"size"`
	Pages int                    `json:"pages"`
}

type NotificationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewNotificationService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *NotificationService {
	return &NotificationService{db: db, repomanager: m, logger: logger.With("module", "notification_service")}
}

// Create adds an UNREAD notification for userID. An empty type means
// SYSTEM; nil data means an empty object.
func (s *NotificationService) Create(ctx context.Context, userID string, typ models.NotificationType, data json.RawMessage) (*models.Notification, error) {
	if typ == "" {
		typ = models.NotificationSystem
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: unknown notification type %q", common.ErrorValidation, typ)
	}
	if data == nil {
		data = json.RawMessage(`{}`)
	}
	if err := checkObject(data); err != nil {
		return nil, err
	}
	if !validID(userID) {
		return nil, common.ErrorNotFound
	}

	if _, err := s.repomanager.Users(s.db).GetByID(ctx, userID); err != nil {
		return nil, s.mapError(ctx, err)
	}

	n, err := s.repomanager.Notifications(s.db).Create(ctx, &models.Notification{
		UserID: userID,
		Type:   typ,
		Status: models.NotificationUnread,
		Data:   data,
	})
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return n, nil
}

func (s *NotificationService) Get(ctx context.Context, userID, id string) (*models.Notification, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	n, err := s.repomanager.Notifications(s.db).Get(ctx, userID, id)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return n, nil
}

func (s *NotificationService) List(ctx context.Context, userID string, filter models.NotificationFilter, page, size int) (*NotificationPage, error) {
	if err := checkPage(page, size); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", common.ErrorValidation, filter.Status)
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", common.ErrorValidation, filter.Type)
	}

	repo := s.repomanager.Notifications(s.db)
	total, err := repo.Count(ctx, userID, filter)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	items, err := repo.List(ctx, userID, filter, (page-1)*size, size)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	if items == nil {
		items = []*models.Notification{}
	}

	return &NotificationPage{
		Items: items,
		Total: total,
		Page:  page,
		Size:  size,
		Pages: (total + size - 1) / size,
	}, nil
}

// Update changes the status and/or data of one of the user's notifications.
func (s *NotificationService) Update(ctx context.Context, userID, id string, status *models.NotificationStatus, data json.RawMessage) (*models.Notification, error) {
	if status != nil && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", common.ErrorValidation, *status)
	}
	if data != nil {
		if err := checkObject(data); err != nil {
			return nil, err
		}
	}
	if !validID(id) {
		return nil, common.ErrorNotFound
	}

	n, err := s.repomanager.Notifications(s.db).Update(ctx, userID, id, status, data)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) (*models.Notification, error) {
	read := models.NotificationRead
	return s.Update(ctx, userID, id, &read, nil)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.repomanager.Notifications(s.db).MarkAllRead(ctx, userID)
	if err != nil {
		return 0, s.mapError(ctx, err)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return common.ErrorNotFound
	}
	if err := s.repomanager.Notifications(s.db).Delete(ctx, userID, id); err != nil {
		return s.mapError(ctx, err)
	}
	return nil
}

func (s *NotificationService) mapError(ctx context.Context, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	s.logger.Error(ctx, "notification storage error", "error", err)
	return common.ErrorInternal
}

// checkObject accepts only a JSON object.
func checkObject(data json.RawMessage) error {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return fmt.Errorf("%w: data must be a JSON object", common.ErrorValidation)
	}
	return nil
}
