package repository

import (
	"context"
	"fmt"

	"tripmate-backend/database"
	"tripmate-backend/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	CreateBatch(ctx context.Context, notifications []models.Notification) error
	GetByUserID(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	WithTx(tx database.Querier) NotificationRepository
}

type notificationRepository struct {
	db *database.DB
	tx database.Querier
}

func NewNotificationRepository(db *database.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) WithTx(tx database.Querier) NotificationRepository {
	return &notificationRepository{db: r.db, tx: tx}
}

func (r *notificationRepository) getQuerier() database.Querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db.Pool
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `INSERT INTO notifications (id, user_id, group_id, kind, message)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING created_at`

	err := r.getQuerier().QueryRow(ctx, query, n.ID, n.UserID, n.GroupID, n.Kind, n.Message).
		Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []models.Notification) error {
	for i := range notifications {
		if err := r.Create(ctx, &notifications[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *notificationRepository) GetByUserID(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	query := `SELECT id, user_id, group_id, kind, message, is_read, created_at
	          FROM notifications
	          WHERE user_id = $1 AND ($2 = FALSE OR is_read = FALSE)
	          ORDER BY created_at DESC
	          LIMIT $3`

	rows, err := r.getQuerier().Query(ctx, query, userID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("getting notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.GroupID, &n.Kind, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`

	if err := r.getQuerier().QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`

	tag, err := r.getQuerier().Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("marking notification read: no rows affected")
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`

	if _, err := r.getQuerier().Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("marking all notifications read: %w", err)
	}
	return nil
}
