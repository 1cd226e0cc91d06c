package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/orgchat/internal/common"
	"github.com/dmitrijs2005/orgchat/internal/logging"
	"github.com/dmitrijs2005/orgchat/internal/server/models"
	"github.com/dmitrijs2005/orgchat/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// UserPage is one page of the user listing.
type UserPage struct {
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
	Users []*models.User `json:"users"`
}

// UserService manages accounts on behalf of authenticated callers.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *UserService {
	return &UserService{db: db, repomanager: m, logger: logger.With("module", "user_service")}
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	user, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return user, nil
}

// List returns page (1-based) of size users.
func (s *UserService) List(ctx context.Context, page, size int) (*UserPage, error) {
	if err := checkPage(page, size); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)
	total, err := repo.Count(ctx)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	users, err := repo.List(ctx, (page-1)*size, size)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	return &UserPage{Total: total, Page: page, Size: size, Users: users}, nil
}

// SetActive enables or disables an account. Disabled accounts can neither
// log in nor refresh.
func (s *UserService) SetActive(ctx context.Context, id string, enabled bool) (string, error) {
	if !validID(id) {
		return "", common.ErrorNotFound
	}
	if err := s.repomanager.Users(s.db).SetActive(ctx, id, enabled); err != nil {
		return "", s.mapError(ctx, err)
	}

	status := "disabled"
	if enabled {
		status = "enabled"
	}
	s.logger.Info(ctx, "user status changed", "user_id", id, "status", status)
	return fmt.Sprintf("User %s successfully", status), nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return common.ErrorNotFound
	}
	if err := s.repomanager.Users(s.db).Delete(ctx, id); err != nil {
		return s.mapError(ctx, err)
	}
	s.logger.Info(ctx, "user deleted", "user_id", id)
	return nil
}

func (s *UserService) mapError(ctx context.Context, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	s.logger.Error(ctx, "user storage error", "error", err)
	return common.ErrorInternal
}

// validID reports whether id can be a primary key; anything else cannot
// exist, and passing it to PostgreSQL would fail the uuid cast.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func checkPage(page, size int) error {
	if page < 1 {
		return fmt.Errorf("%w: page must be >= 1", common.ErrorValidation)
	}
	if size < 1 || size > MaxPageSize {
		return fmt.Errorf("%w: size must be between 1 and %d", common.ErrorValidation, MaxPageSize)
	}
	return nil
}
