package service

import (
	"context"

	"asafe-api/internal/domain"
	"asafe-api/internal/events"
)

type NotificationService interface {
	NotifyUser(ctx context.Context, userID domain.UserID, message string, alsoEmail bool) (*domain.Notification, error)
	NotifyAll(ctx context.Context, message string, alsoEmail bool) (*domain.Notification, error)
	ListForUser(ctx context.Context, userID domain.UserID, page, pageSize int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id domain.NotificationID) error
	Delete(ctx context.Context, id domain.NotificationID) error
	SetEmailPreference(ctx context.Context, userID domain.UserID, enabled bool) error
}

// RealtimePublisher delivers events to connected clients.
type RealtimePublisher interface {
	PublishToUser(userID domain.UserID, ev events.Notification) error
	Broadcast(ev events.Notification) error
}
