package service

import "context"

type EmailService interface {
	SendVerification(ctx context.Context, to, link string) error
	SendPasswordReset(ctx context.Context, to, link string) error
	SendNotification(ctx context.Context, to, subject, message string) error
}
