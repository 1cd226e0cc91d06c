package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/orgchat/internal/common"
	"github.com/dmitrijs2005/orgchat/internal/dbx"
	"github.com/dmitrijs2005/orgchat/internal/server/models"
)

// PostgresRepository implements file metadata storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the record and fills in ID and CreatedAt.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	query := `
		INSERT INTO files (user_id, storage_key, file_name, content_type, size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		file.UserID, file.StorageKey, file.FileName, file.ContentType, file.Size).
		Scan(&file.ID, &file.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return file, nil
}

// Get returns the file with the given id if it belongs to userID.
func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.File, error) {
	query := `
		SELECT id, user_id, storage_key, file_name, content_type, size, created_at
		FROM files
		WHERE id = $1 AND user_id = $2
	`
	f := &models.File{}
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&f.ID, &f.UserID, &f.StorageKey, &f.FileName, &f.ContentType, &f.Size, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

// ListByUser returns the user's files, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.File, error) {
	query := `
		SELECT id, user_id, storage_key, file_name, content_type, size, created_at
		FROM files
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	var result []*models.File
	for rows.Next() {
		f := &models.File{}
		if err := rows.Scan(&f.ID, &f.UserID, &f.StorageKey, &f.FileName, &f.ContentType, &f.Size, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

// Delete removes the record; ErrorNotFound when the user owns no such file.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
