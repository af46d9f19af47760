package store

import (
	"context"
	"time"

	"asafe-api/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationStore struct{ db *gorm.DB }

func (s *Store) Notifications() *NotificationStore { return &NotificationStore{db: s.DB} }

func (n *NotificationStore) Create(ctx context.Context, notif *domain.Notification) error {
	if notif.ID == uuid.Nil {
		notif.ID = uuid.New()
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now().UTC()
	}
	return translate(n.db.WithContext(ctx).Create(notif).Error)
}

// ListForUser returns the user's directed notifications, newest first.
func (n *NotificationStore) ListForUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Notification, error) {
	var out []domain.Notification
	err := n.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (n *NotificationStore) MarkRead(ctx context.Context, id uuid.UUID) error {
	res := n.db.WithContext(ctx).Model(&domain.Notification{}).Where("id = ?", id).Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (n *NotificationStore) Delete(ctx context.Context, id uuid.UUID) error {
	res := n.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
