package impl

import (
	"context"

	"asafe-api/internal/domain"
	"asafe-api/internal/store"

	"github.com/google/uuid"
)

type dataStore interface {
	WithTx(ctx context.Context, fn func(tx storeTx) error) error
	storeTx
}

type storeTx interface {
	Users() userStore
	Posts() postStore
	Notifications() notificationStore
	DeleteUserData(ctx context.Context, userID uuid.UUID) (map[string]int64, error)
}

type userStore interface {
	Create(ctx context.Context, usr *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*domain.User, error)
	GetByResetToken(ctx context.Context, token string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	ListEmailSubscribers(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	SetEmailVerified(ctx context.Context, userID uuid.UUID) error
	SetResetToken(ctx context.Context, userID uuid.UUID, token *string) error
	SetEmailNotifications(ctx context.Context, userID uuid.UUID, enabled bool) error
}

type postStore interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	ListPublished(ctx context.Context) ([]domain.Post, error)
}

type notificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListForUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// newDataStore adapts the gorm store to the services' narrow interfaces.
func newDataStore(st *store.Store) dataStore { return gormStoreAdapter{gormTxAdapter{tx: st}} }

type gormStoreAdapter struct {
	gormTxAdapter
}

func (g gormStoreAdapter) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	if g.tx == nil {
		return ErrNilStore
	}
	return g.tx.WithTx(ctx, func(tx *store.Store) error {
		return fn(gormTxAdapter{tx: tx})
	})
}

type gormTxAdapter struct {
	tx *store.Store
}

func (g gormTxAdapter) Users() userStore { return g.tx.Users() }

func (g gormTxAdapter) Posts() postStore { return g.tx.Posts() }

func (g gormTxAdapter) Notifications() notificationStore { return g.tx.Notifications() }

func (g gormTxAdapter) DeleteUserData(ctx context.Context, userID uuid.UUID) (map[string]int64, error) {
	return g.tx.DeleteUserData(ctx, userID)
}

type errorReporter interface {
	Capture(ctx context.Context, err error, tags map[string]string)
}
