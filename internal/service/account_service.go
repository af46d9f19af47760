package service

import (
	"context"

	"asafe-api/internal/domain"
	"asafe-api/internal/dto"
)

type AccountService interface {
	Register(ctx context.Context, r dto.RegisterRequest) (*dto.UserProjection, error)
	// Authenticate soft-fails: a rejected login returns a result with a nil
	// token and a message, not an error.
	Authenticate(ctx context.Context, email, password string) (*dto.LoginResult, error)
	GetAll(ctx context.Context) ([]dto.UserProjection, error)
	// GetOne returns nil, nil when the user does not exist.
	GetOne(ctx context.Context, id domain.UserID) (*dto.UserProjection, error)
	Update(ctx context.Context, id domain.UserID, patch dto.UpdateUserRequest, requesterID domain.UserID, requesterRole domain.Role) (*dto.UserProjection, error)
	Delete(ctx context.Context, id domain.UserID, requesterRole domain.Role) (*dto.UserProjection, error)
	ResetPassword(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) (bool, error)
	VerifyEmail(ctx context.Context, token string) (bool, error)
}
