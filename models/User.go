package models

import "time"

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:64;not null"`
	Name         string    `json:"name" gorm:"size:128"`
	PasswordHash string    `json:"-" gorm:"size:128"`
	Role         string    `json:"role" gorm:"type:varchar(20);default:feedbacker;index"` // admin, creator, feedbacker
	Group        string    `json:"group" gorm:"size:128;index"`                           // free-text department label, empty = unassigned
	CreatedAt    time.Time `json:"createdAt"`
}

const (
	RoleAdmin      = "admin"
	RoleCreator    = "creator"
	RoleFeedbacker = "feedbacker"
)
