package postgres

import (
	"context"
	"database/sql"
	"time"

	"snapfind/internal/common"
	"snapfind/internal/domain/notification"
)

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) CreateNotification(ctx context.Context, userID common.UUID, ntype notification.Type, title, message, entityRef string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO notifications (id, user_id, notification_type, title, message, entity_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		common.NewUUID(), userID, ntype, title, message, entityRef, time.Now().UTC())
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to create notification", err)
	}
	return nil
}

var _ notification.Notifier = (*NotificationRepository)(nil)
