package domain

import "time"

type User struct {
	ID                       UserID    `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	Email                    string    `gorm:"type:text;not null;uniqueIndex:ux_users_email" db:"email" json:"email"`
	Name                     string    `gorm:"type:text;not null" db:"name" json:"name"`
	PasswordHash             string    `gorm:"type:text;not null" db:"password_hash" json:"-"`
	Role                     Role      `gorm:"type:text;not null;default:USER" db:"role" json:"role"`
	EmailVerified            bool      `gorm:"not null;default:false" db:"email_verified" json:"emailVerified"`
	EmailVerificationToken   *string   `gorm:"type:text;uniqueIndex:ux_users_email_verification_token" db:"email_verification_token" json:"-"`
	ResetPasswordToken       *string   `gorm:"type:text;uniqueIndex:ux_users_reset_password_token" db:"reset_password_token" json:"-"`
	EmailNotificationEnabled bool      `gorm:"not null;default:false" db:"email_notification_enabled" json:"emailNotificationEnabled"`
	CreatedAt                time.Time `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt                time.Time `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (User) TableName() string { return "users" }
