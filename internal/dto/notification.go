package dto

import (
	"strings"

	"asafe-api/internal/domain"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxMessageLen   = 2000
)

// NotifyRequest targets one user when UserID is set, otherwise everyone.
type NotifyRequest struct {
	UserID  *string `json:"userId,omitempty"`
	Message string  `json:"message"`
	Email   bool    `json:"email"`
}

func (r NotifyRequest) Validate() error {
	v := &domain.ValidationError{}
	if r.UserID != nil {
		if _, err := ParseID("userId", *r.UserID); err != nil {
			v.Add("userId", "Invalid uuid")
		}
	}
	if msg := lengthMessage(strings.TrimSpace(r.Message), 1, MaxMessageLen); msg != "" {
		v.Add("message", msg)
	}
	return v.Err()
}

type PreferencesRequest struct {
	EmailEnabled *bool `json:"emailEnabled"`
}

func (r PreferencesRequest) Validate() error {
	if r.EmailEnabled == nil {
		return invalid("emailEnabled", "Required")
	}
	return nil
}

type NotificationPage struct {
	Page          int                   `json:"page"`
	PageSize      int                   `json:"pageSize"`
	Notifications []domain.Notification `json:"notifications"`
}

// NormalizePage clamps pagination input to sane bounds.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}
