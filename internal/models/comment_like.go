package models

import (
	"time"
)

// CommentLike 좋아요 - one row means "this user likes this comment".
// The composite unique index is what makes the toggle race-safe: a second
// concurrent insert for the same pair fails instead of duplicating.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_user_comment" json:"user_id"`
	CommentID uint      `gorm:"not null;index;uniqueIndex:idx_user_comment" json:"comment_id"`
	Comment   Comment   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
