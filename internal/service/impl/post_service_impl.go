package impl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"asafe-api/internal/domain"
	"asafe-api/internal/dto"
	"asafe-api/internal/store"

	"github.com/google/uuid"
)

type PostServiceImpl struct {
	Store dataStore
	Now   func() time.Time
}

func NewPostServiceImpl(st *store.Store) *PostServiceImpl {
	return &PostServiceImpl{Store: newDataStore(st)}
}

func (p *PostServiceImpl) Create(ctx context.Context, authorID domain.UserID, r dto.CreatePostRequest) (*domain.Post, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	// A token outlives its account; reject authors that no longer exist.
	if _, err := p.Store.Users().GetByID(ctx, authorID); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", domain.ErrUnauthenticated)
		}
		return nil, err
	}

	now := time.Now().UTC()
	if p.Now != nil {
		now = p.Now().UTC()
	}
	post := &domain.Post{
		ID:        uuid.New(),
		Title:     r.Title,
		Content:   r.Content,
		Published: r.Published,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Store.Posts().Create(ctx, post); err != nil {
		return nil, err
	}
	logInfo(ctx, "post created", "post_id", post.ID, "author_id", authorID)
	return post, nil
}

func (p *PostServiceImpl) List(ctx context.Context) ([]domain.Post, error) {
	return p.Store.Posts().ListPublished(ctx)
}

func (p *PostServiceImpl) Get(ctx context.Context, id domain.PostID) (*domain.Post, error) {
	post, err := p.Store.Posts().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return post, nil
}
