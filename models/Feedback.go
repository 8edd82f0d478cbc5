package models

import "time"

// Feedback holds the free-text content submitted against one assignment.
// An assignment accumulates at most one feedback row; resubmission
// overwrites the content in place and bumps UpdatedAt.
type Feedback struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	AssignmentID uint       `json:"assignmentID" gorm:"index;not null"`
	Assignment   Assignment `json:"-" gorm:"foreignKey:AssignmentID"`
	Content      string     `json:"content" gorm:"type:text;not null"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
