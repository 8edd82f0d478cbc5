package models

import "time"

// Group is a named collection of users. Org groups (IsOrg) are managed by
// administrators and visible to everyone; personal groups belong to their
// owner. Independent of the free-text User.Group label used for stats.
type Group struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:128;index;not null"`
	Description string    `json:"description" gorm:"type:text"`
	IsOrg       bool      `json:"isOrg" gorm:"index"`
	OwnerID     *uint     `json:"ownerID" gorm:"index"`
	Owner       *User     `json:"-" gorm:"foreignKey:OwnerID"`
	Users       []User    `json:"-" gorm:"many2many:group_users"`
	CreatedAt   time.Time `json:"createdAt"`
}
