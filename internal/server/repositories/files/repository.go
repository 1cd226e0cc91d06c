package files

import (
	"context"

	"github.com/dmitrijs2005/orgchat/internal/server/models"
)

// Repository stores metadata of objects kept in the storage bucket. Reads
// and deletes are scoped to the owning user.
type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	Get(ctx context.Context, userID, id string) (*models.File, error)
	ListByUser(ctx context.Context, userID string) ([]*models.File, error)
	Delete(ctx context.Context, userID, id string) error
}
