package models

import "time"

// OperationLog is an append-only record of notable actions, e.g. "Login",
// "Create Item", "Delete User".
type OperationLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userID" gorm:"index"`
	Action    string    `json:"action" gorm:"size:64"`
	TargetID  string    `json:"targetID" gorm:"size:64"`
	CreatedAt time.Time `json:"timestamp"`
}
