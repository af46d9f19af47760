package impl

import (
	"context"
	"time"

	"asafe-api/internal/domain"
	"asafe-api/internal/dto"
	"asafe-api/internal/events"
	"asafe-api/internal/observability/metrics"
	"asafe-api/internal/service"
	"asafe-api/internal/store"

	"github.com/google/uuid"
)

const (
	SubjectNotification          = "New Notification"
	SubjectBroadcastNotification = "New Broadcast Notification"
)

// NotificationServiceImpl persists notifications, then pushes and emails them.
// Only the persist step can fail a dispatch; later steps are best effort.
type NotificationServiceImpl struct {
	Store    dataStore
	Realtime service.RealtimePublisher
	Email    service.EmailService
	Reporter errorReporter

	Now func() time.Time
}

func NewNotificationServiceImpl(
	st *store.Store,
	realtime service.RealtimePublisher,
	email service.EmailService,
	reporter errorReporter,
) *NotificationServiceImpl {
	return &NotificationServiceImpl{
		Store:    newDataStore(st),
		Realtime: realtime,
		Email:    email,
		Reporter: reporter,
	}
}

func (s *NotificationServiceImpl) NotifyUser(ctx context.Context, userID domain.UserID, message string, alsoEmail bool) (*domain.Notification, error) {
	u, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, domain.ErrUserNotFound)
	}

	uid := u.ID
	n := &domain.Notification{ID: uuid.New(), UserID: &uid, Message: message, CreatedAt: s.now()}
	if err := s.Store.Notifications().Create(ctx, n); err != nil {
		metrics.NotificationsDispatchedTotal.WithLabelValues("user", "store", "failure").Inc()
		return nil, err
	}
	metrics.NotificationsDispatchedTotal.WithLabelValues("user", "store", "success").Inc()

	if s.Realtime != nil {
		s.step(ctx, "user", "realtime", s.Realtime.PublishToUser(uid, events.NewNotification(n)))
	}
	if alsoEmail && s.Email != nil && u.Email != "" {
		s.step(ctx, "user", "email", s.Email.SendNotification(ctx, u.Email, SubjectNotification, message))
	}
	logInfo(ctx, "notification sent", "notification_id", n.ID, "user_id", uid, "email", alsoEmail)
	return n, nil
}

func (s *NotificationServiceImpl) NotifyAll(ctx context.Context, message string, alsoEmail bool) (*domain.Notification, error) {
	n := &domain.Notification{ID: uuid.New(), Message: message, CreatedAt: s.now()}
	if err := s.Store.Notifications().Create(ctx, n); err != nil {
		metrics.NotificationsDispatchedTotal.WithLabelValues("all", "store", "failure").Inc()
		return nil, err
	}
	metrics.NotificationsDispatchedTotal.WithLabelValues("all", "store", "success").Inc()

	if s.Realtime != nil {
		s.step(ctx, "all", "realtime", s.Realtime.Broadcast(events.NewNotification(n)))
	}
	if alsoEmail && s.Email != nil {
		subscribers, err := s.Store.Users().ListEmailSubscribers(ctx)
		if err != nil {
			s.step(ctx, "all", "email", err)
		}
		for _, u := range subscribers {
			s.step(ctx, "all", "email", s.Email.SendNotification(ctx, u.Email, SubjectBroadcastNotification, message))
		}
	}
	logInfo(ctx, "broadcast notification sent", "notification_id", n.ID, "email", alsoEmail)
	return n, nil
}

func (s *NotificationServiceImpl) ListForUser(ctx context.Context, userID domain.UserID, page, pageSize int) ([]domain.Notification, error) {
	page, pageSize = dto.NormalizePage(page, pageSize)
	return s.Store.Notifications().ListForUser(ctx, userID, (page-1)*pageSize, pageSize)
}

// MarkRead and Delete do not check ownership; any authenticated caller may
// act on any notification id.
func (s *NotificationServiceImpl) MarkRead(ctx context.Context, id domain.NotificationID) error {
	return notFoundAs(s.Store.Notifications().MarkRead(ctx, id), domain.ErrNotificationNotFound)
}

func (s *NotificationServiceImpl) Delete(ctx context.Context, id domain.NotificationID) error {
	return notFoundAs(s.Store.Notifications().Delete(ctx, id), domain.ErrNotificationNotFound)
}

func (s *NotificationServiceImpl) SetEmailPreference(ctx context.Context, userID domain.UserID, enabled bool) error {
	return notFoundAs(s.Store.Users().SetEmailNotifications(ctx, userID, enabled), domain.ErrUserNotFound)
}

// step records the outcome of a best-effort delivery.
func (s *NotificationServiceImpl) step(ctx context.Context, scope, channel string, err error) {
	if err == nil {
		metrics.NotificationsDispatchedTotal.WithLabelValues(scope, channel, "success").Inc()
		return
	}
	metrics.NotificationsDispatchedTotal.WithLabelValues(scope, channel, "failure").Inc()
	logError(ctx, "notification delivery failed", err, "scope", scope, "channel", channel)
	if s.Reporter != nil {
		s.Reporter.Capture(ctx, err, map[string]string{"operation": "notify_" + scope, "channel": channel})
	}
}

func (s *NotificationServiceImpl) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
