package models

import (
	"time"
)

type Study struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	// Writer is the author's nickname denormalized for display. Edit/delete
	// authorization compares UserID, never this string.
	Writer      string    `gorm:"size:50;not null" json:"writer"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Category    string    `gorm:"size:50;not null" json:"category"`
	MemberCount int       `gorm:"not null" json:"member_count"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	ChatLink    string    `json:"chat_link"` // Optional open-chat URL
	IsClosed    bool      `gorm:"default:false" json:"is_closed"`
	CreatedAt   time.Time `json:"created_at"`

	// Filled at query time, not a database column
	CommentCount int `gorm:"-" json:"comment_count"`
}
