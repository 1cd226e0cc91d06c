package notifications

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/orgchat/internal/server/models"
)

// Repository persists notifications. Every read and write is scoped to the
// recipient so users never see each other's notifications.
type Repository interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	Get(ctx context.Context, userID, id string) (*models.Notification, error)
	List(ctx context.Context, userID string, filter models.NotificationFilter, offset, limit int) ([]*models.Notification, error)
	Count(ctx context.Context, userID string, filter models.NotificationFilter) (int, error)
	// Update changes status and/or data; nil arguments keep the current
	// value. Moving to READ stamps read_at once.
	Update(ctx context.Context, userID, id string, status *models.NotificationStatus, data json.RawMessage) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
}
