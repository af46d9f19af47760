package service

import (
	"context"

	"asafe-api/internal/domain"
	"asafe-api/internal/dto"
)

type PostService interface {
	Create(ctx context.Context, authorID domain.UserID, r dto.CreatePostRequest) (*domain.Post, error)
	List(ctx context.Context) ([]domain.Post, error)
	// Get returns nil, nil when the post does not exist.
	Get(ctx context.Context, id domain.PostID) (*domain.Post, error)
}
