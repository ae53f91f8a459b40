package models

import (
	"time"
)

type EnrollmentStatus string

const (
	EnrollmentPending  EnrollmentStatus = "pending"
	EnrollmentAccepted EnrollmentStatus = "accepted"
	EnrollmentRejected EnrollmentStatus = "rejected"
)

// Enrollment is a join request: a user asking to be let into a study group.
type Enrollment struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index;uniqueIndex:idx_user_study" json:"user_id"`
	User      User             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	StudyID   uint             `gorm:"not null;index;uniqueIndex:idx_user_study" json:"study_id"`
	Study     Study            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"study"`
	Status    EnrollmentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}
