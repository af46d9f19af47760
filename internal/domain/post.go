package domain

import "time"

type Post struct {
	ID        PostID    `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	Title     string    `gorm:"type:text;not null" db:"title" json:"title"`
	Content   string    `gorm:"type:text;not null" db:"content" json:"content"`
	Published bool      `gorm:"not null;default:false" db:"published" json:"published"`
	AuthorID  UserID    `gorm:"type:uuid;not null;index" db:"author_id" json:"authorId"`
	Author    *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (Post) TableName() string { return "posts" }
