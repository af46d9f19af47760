package domain

import "github.com/google/uuid"

type UserID = uuid.UUID
type PostID = uuid.UUID
type NotificationID = uuid.UUID

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}
