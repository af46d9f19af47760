package store

import (
	"context"
	"time"

	"asafe-api/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserStore struct{ db *gorm.DB }

func (s *Store) Users() *UserStore { return &UserStore{db: s.DB} }

func (u *UserStore) Create(ctx context.Context, usr *domain.User) error {
	if usr.ID == uuid.Nil {
		usr.ID = uuid.New()
	}
	now := time.Now().UTC()
	if usr.CreatedAt.IsZero() {
		usr.CreatedAt = now
	}
	usr.UpdatedAt = now
	return translate(u.db.WithContext(ctx).Create(usr).Error)
}

func (u *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return u.first(ctx, "id = ?", id)
}

func (u *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return u.first(ctx, "email = ?", email)
}

func (u *UserStore) GetByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	return u.first(ctx, "email_verification_token = ?", token)
}

func (u *UserStore) GetByResetToken(ctx context.Context, token string) (*domain.User, error) {
	return u.first(ctx, "reset_password_token = ?", token)
}

func (u *UserStore) first(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (u *UserStore) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := u.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListEmailSubscribers returns users who opted in to email notifications.
func (u *UserStore) ListEmailSubscribers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := u.db.WithContext(ctx).
		Where("email_notification_enabled = ?", true).
		Order("created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Update applies the given column values. A map is used so that false and
// nil values are written rather than skipped.
func (u *UserStore) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	fields["updated_at"] = time.Now().UTC()
	res := u.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (u *UserStore) SetEmailVerified(ctx context.Context, userID uuid.UUID) error {
	return u.Update(ctx, userID, map[string]any{
		"email_verified":           true,
		"email_verification_token": nil,
	})
}

func (u *UserStore) SetResetToken(ctx context.Context, userID uuid.UUID, token *string) error {
	return u.Update(ctx, userID, map[string]any{"reset_password_token": token})
}

func (u *UserStore) SetEmailNotifications(ctx context.Context, userID uuid.UUID, enabled bool) error {
	return u.Update(ctx, userID, map[string]any{"email_notification_enabled": enabled})
}
