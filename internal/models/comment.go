package models

import (
	"time"
)

type Comment struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	StudyID  uint     `gorm:"not null;index" json:"study_id"`
	Study    Study    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"study"`
	UserID   uint     `gorm:"not null;index" json:"user_id"`
	User     User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	ParentID *uint    `gorm:"index" json:"parent_id"` // Nullable for top-level comments
	Parent   *Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"parent"`
	// Writer keeps the nickname at posting time for display; ownership checks
	// always go through UserID.
	Writer    string    `gorm:"size:50;not null" json:"writer"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	// Comments are never edited, so no UpdatedAt
}
