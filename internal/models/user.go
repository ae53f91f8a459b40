package models

import (
	"time"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LoginID   string    `gorm:"uniqueIndex;size:50;not null" json:"login_id"`
	Password  string    `gorm:"not null" json:"-"` // Hash
	Nickname  string    `gorm:"size:50;not null" json:"nickname"`
	Email     string    `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Bio       string    `gorm:"size:200" json:"bio"`
	CreatedAt time.Time `json:"created_at"`
	// No UpdatedAt: no handler edits an account after signup
}
