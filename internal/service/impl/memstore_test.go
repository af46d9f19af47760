package impl

import (
	"context"
	"sort"
	"sync"
	"time"

	"asafe-api/internal/domain"
	"asafe-api/internal/events"
	"asafe-api/internal/store"

	"github.com/google/uuid"
)

// memoryStore is an in-process dataStore for service tests. It returns the
// same sentinel errors as the gorm store.
type memoryStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*domain.User
	posts         map[uuid.UUID]*domain.Post
	notifications map[uuid.UUID]*domain.Notification
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:         make(map[uuid.UUID]*domain.User),
		posts:         make(map[uuid.UUID]*domain.Post),
		notifications: make(map[uuid.UUID]*domain.Notification),
	}
}

func (m *memoryStore) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	m.mu.Lock()
	users := make(map[uuid.UUID]*domain.User, len(m.users))
	for id, u := range m.users {
		cp := *u
		users[id] = &cp
	}
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.users = users
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memoryStore) Users() userStore { return &memoryUserStore{m} }

func (m *memoryStore) Posts() postStore { return &memoryPostStore{m} }

func (m *memoryStore) Notifications() notificationStore { return &memoryNotificationStore{m} }

func (m *memoryStore) DeleteUserData(ctx context.Context, userID uuid.UUID) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return nil, store.ErrRecordNotFound
	}
	counts := map[string]int64{"users": 1}
	for id, p := range m.posts {
		if p.AuthorID == userID {
			delete(m.posts, id)
			counts["posts"]++
		}
	}
	for id, n := range m.notifications {
		if n.UserID != nil && *n.UserID == userID {
			delete(m.notifications, id)
			counts["notifications"]++
		}
	}
	delete(m.users, userID)
	return counts, nil
}

func (m *memoryStore) user(id uuid.UUID) (domain.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, false
	}
	return *u, true
}

func (m *memoryStore) userByEmail(email string) (domain.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return *u, true
		}
	}
	return domain.User{}, false
}

func (m *memoryStore) notificationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notifications)
}

type memoryUserStore struct{ m *memoryStore }

func (s *memoryUserStore) Create(ctx context.Context, usr *domain.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, u := range s.m.users {
		if u.Email == usr.Email {
			return store.ErrDuplicate
		}
	}
	if usr.ID == uuid.Nil {
		usr.ID = uuid.New()
	}
	cp := *usr
	s.m.users[usr.ID] = &cp
	return nil
}

func (s *memoryUserStore) find(match func(u *domain.User) bool) (*domain.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, u := range s.m.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrRecordNotFound
}

func (s *memoryUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.find(func(u *domain.User) bool { return u.ID == id })
}

func (s *memoryUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.find(func(u *domain.User) bool { return u.Email == email })
}

func (s *memoryUserStore) GetByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	return s.find(func(u *domain.User) bool {
		return u.EmailVerificationToken != nil && *u.EmailVerificationToken == token
	})
}

func (s *memoryUserStore) GetByResetToken(ctx context.Context, token string) (*domain.User, error) {
	return s.find(func(u *domain.User) bool {
		return u.ResetPasswordToken != nil && *u.ResetPasswordToken == token
	})
}

func (s *memoryUserStore) List(ctx context.Context) ([]domain.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := make([]domain.User, 0, len(s.m.users))
	for _, u := range s.m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memoryUserStore) ListEmailSubscribers(ctx context.Context) ([]domain.User, error) {
	all, _ := s.List(ctx)
	out := all[:0]
	for _, u := range all {
		if u.EmailNotificationEnabled {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *memoryUserStore) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	u, ok := s.m.users[id]
	if !ok {
		return store.ErrRecordNotFound
	}
	if email, ok := fields["email"].(string); ok {
		for _, other := range s.m.users {
			if other.ID != id && other.Email == email {
				return store.ErrDuplicate
			}
		}
	}
	for k, v := range fields {
		switch k {
		case "email":
			u.Email = v.(string)
		case "name":
			u.Name = v.(string)
		case "password_hash":
			u.PasswordHash = v.(string)
		case "email_verified":
			u.EmailVerified = v.(bool)
		case "email_notification_enabled":
			u.EmailNotificationEnabled = v.(bool)
		case "email_verification_token":
			u.EmailVerificationToken = tokenValue(v)
		case "reset_password_token":
			u.ResetPasswordToken = tokenValue(v)
		}
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func tokenValue(v any) *string {
	switch t := v.(type) {
	case *string:
		return t
	case string:
		return &t
	default:
		return nil
	}
}

func (s *memoryUserStore) SetEmailVerified(ctx context.Context, userID uuid.UUID) error {
	return s.Update(ctx, userID, map[string]any{"email_verified": true, "email_verification_token": nil})
}

func (s *memoryUserStore) SetResetToken(ctx context.Context, userID uuid.UUID, token *string) error {
	return s.Update(ctx, userID, map[string]any{"reset_password_token": token})
}

func (s *memoryUserStore) SetEmailNotifications(ctx context.Context, userID uuid.UUID, enabled bool) error {
	return s.Update(ctx, userID, map[string]any{"email_notification_enabled": enabled})
}

type memoryPostStore struct{ m *memoryStore }

func (s *memoryPostStore) Create(ctx context.Context, post *domain.Post) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	cp := *post
	s.m.posts[post.ID] = &cp
	return nil
}

func (s *memoryPostStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.posts[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memoryPostStore) ListPublished(ctx context.Context) ([]domain.Post, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []domain.Post
	for _, p := range s.m.posts {
		if p.Published {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memoryNotificationStore struct{ m *memoryStore }

func (s *memoryNotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	cp := *n
	s.m.notifications[n.ID] = &cp
	return nil
}

func (s *memoryNotificationStore) ListForUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Notification, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var all []domain.Notification
	for _, n := range s.m.notifications {
		if n.UserID != nil && *n.UserID == userID {
			all = append(all, *n)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *memoryNotificationStore) MarkRead(ctx context.Context, id uuid.UUID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	n, ok := s.m.notifications[id]
	if !ok {
		return store.ErrRecordNotFound
	}
	n.Read = true
	return nil
}

func (s *memoryNotificationStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.notifications[id]; !ok {
		return store.ErrRecordNotFound
	}
	delete(s.m.notifications, id)
	return nil
}

type sentEmail struct {
	kind    string
	to      string
	subject string
	body    string
}

type stubEmailService struct {
	mu   sync.Mutex
	err  error
	sent []sentEmail
}

func (s *stubEmailService) record(e sentEmail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, e)
	return s.err
}

func (s *stubEmailService) SendVerification(ctx context.Context, to, link string) error {
	return s.record(sentEmail{kind: "verification", to: to, body: link})
}

func (s *stubEmailService) SendPasswordReset(ctx context.Context, to, link string) error {
	return s.record(sentEmail{kind: "reset", to: to, body: link})
}

func (s *stubEmailService) SendNotification(ctx context.Context, to, subject, message string) error {
	return s.record(sentEmail{kind: "notification", to: to, subject: subject, body: message})
}

type published struct {
	userID    *uuid.UUID
	broadcast bool
	event     events.Notification
}

type stubRealtime struct {
	mu     sync.Mutex
	err    error
	pushes []published
}

func (s *stubRealtime) PublishToUser(userID domain.UserID, ev events.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := userID
	s.pushes = append(s.pushes, published{userID: &uid, event: ev})
	return s.err
}

func (s *stubRealtime) Broadcast(ev events.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushes = append(s.pushes, published{broadcast: true, event: ev})
	return s.err
}

type stubReporter struct {
	mu       sync.Mutex
	captured []error
}

func (s *stubReporter) Capture(ctx context.Context, err error, tags map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captured = append(s.captured, err)
}

func seedUser(m *memoryStore, email string, role domain.Role, verified bool, hash string) domain.User {
	u := domain.User{
		ID:            uuid.New(),
		Email:         email,
		Name:          "Seed",
		PasswordHash:  hash,
		Role:          role,
		EmailVerified: verified,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	m.mu.Lock()
	m.users[u.ID] = &u
	m.mu.Unlock()
	return u
}
