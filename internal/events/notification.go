package events

import (
	"time"

	"asafe-api/internal/domain"
)

const TypeNotification = "notification"

// Notification is the realtime envelope pushed to websocket clients.
type Notification struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	UserID    *string   `json:"userId,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewNotification(n *domain.Notification) Notification {
	ev := Notification{
		Type:      TypeNotification,
		ID:        n.ID.String(),
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
	}
	if n.UserID != nil {
		uid := n.UserID.String()
		ev.UserID = &uid
	}
	return ev
}

// Broadcast reports whether the event is addressed to every client.
func (n Notification) Broadcast() bool { return n.UserID == nil }
