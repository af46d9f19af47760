package domain

import "time"

// Notification is a directed (UserID set) or broadcast (UserID nil) message.
type Notification struct {
	ID        NotificationID `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	UserID    *UserID        `gorm:"type:uuid;index:ix_notifications_user_created,priority:1" db:"user_id" json:"userId"`
	User      *User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Message   string         `gorm:"type:text;not null" db:"message" json:"message"`
	Read      bool           `gorm:"not null;default:false" db:"read" json:"read"`
	CreatedAt time.Time      `gorm:"not null;index:ix_notifications_user_created,priority:2" db:"created_at" json:"createdAt"`
}

func (Notification) TableName() string { return "notifications" }
