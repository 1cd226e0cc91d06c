package notifications

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/orgchat/internal/common"
	"github.com/dmitrijs2005/orgchat/internal/dbx"
	"github.com/dmitrijs2005/orgchat/internal/server/models"
)

const notificationColumns = `id, user_id, type, status, data, created_at, read_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (*models.Notification, error) {
	n := &models.Notification{}
	var data []byte
	if err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Status, &data, &n.CreatedAt, &n.ReadAt); err != nil {
		return nil, err
	}
	n.Data = json.RawMessage(data)
	return n, nil
}

func (r *PostgresRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	query := `
		INSERT INTO notifications (user_id, type, status, data)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, n.UserID, string(n.Type), string(n.Status), string(n.Data)).
		Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE id = $1 AND user_id = $2`

	n, err := scanNotification(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// where builds the WHERE clause shared by List and Count.
func where(userID string, filter models.NotificationFilter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{userID}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		conds = append(conds, "type = $"+strconv.Itoa(len(args)))
	}
	return strings.Join(conds, " AND "), args
}

func (r *PostgresRepository) List(ctx context.Context, userID string, filter models.NotificationFilter, offset, limit int) ([]*models.Notification, error) {
	cond, args := where(userID, filter)
	args = append(args, offset, limit)

	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE ` + cond + `
		ORDER BY created_at DESC
		OFFSET $` + strconv.Itoa(len(args)-1) + ` LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select notifications: %w", err)
	}
	defer rows.Close()

	var result []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context, userID string, filter models.NotificationFilter) (int, error) {
	cond, args := where(userID, filter)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE `+cond, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return total, nil
}

func (r *PostgresRepository) Update(ctx context.Context, userID, id string, status *models.NotificationStatus, data json.RawMessage) (*models.Notification, error) {
	query := `
		UPDATE notifications SET
			status = COALESCE($3, status),
			data = COALESCE($4::jsonb, data),
			read_at = CASE WHEN $3 = 'READ' AND read_at IS NULL THEN now() ELSE read_at END
		WHERE id = $1 AND user_id = $2
		RETURNING ` + notificationColumns

	var statusArg, dataArg any
	if status != nil {
		statusArg = string(*status)
	}
	if data != nil {
		dataArg = string(data)
	}

	n, err := scanNotification(r.db.QueryRowContext(ctx, query, id, userID, statusArg, dataArg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET status = 'READ', read_at = now()
		WHERE user_id = $1 AND status = 'UNREAD'`, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
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
