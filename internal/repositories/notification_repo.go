package repositories

import (
	"context"

	"github.com/BradenHooton/conecta/internal/models"
)

type NotificationRepository struct {
	tx Tx
}

func NewNotificationRepository(tx Tx) *NotificationRepository {
	return &NotificationRepository{tx: tx}
}

func (r *NotificationRepository) List(ctx context.Context) ([]models.Notification, error) {
	return loadList[models.Notification](ctx, r.tx, models.KeyNotifications)
}

func (r *NotificationRepository) Save(ctx context.Context, items []models.Notification) error {
	return PutJSON(ctx, r.tx, models.KeyNotifications, items)
}

func (r *NotificationRepository) Initialized(ctx context.Context) (bool, error) {
	return Exists(ctx, r.tx, models.KeyNotifications)
}
