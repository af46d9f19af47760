package store

import (
	"context"
	"time"

	"asafe-api/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostStore struct{ db *gorm.DB }

func (s *Store) Posts() *PostStore { return &PostStore{db: s.DB} }

func (p *PostStore) Create(ctx context.Context, post *domain.Post) error {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	now := time.Now().UTC()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now
	return translate(p.db.WithContext(ctx).Create(post).Error)
}

func (p *PostStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	var post domain.Post
	if err := p.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (p *PostStore) ListPublished(ctx context.Context) ([]domain.Post, error) {
	var posts []domain.Post
	err := p.db.WithContext(ctx).
		Where("published = ?", true).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}
