package models

import (
	"time"

	"gorm.io/datatypes"
)

// Item is a task that requires acknowledgement from its assigned users.
// Status is derived: it flips to finished when the last assignment is done
// (see services.SubmitFeedback), though a direct edit may still override it.
type Item struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Title        string         `json:"title" gorm:"size:200;not null"`
	Description  string         `json:"description" gorm:"type:text"`
	Status       string         `json:"status" gorm:"size:16;default:ongoing;index"` // ongoing, finished
	MustFeedback bool           `json:"mustFeedback" gorm:"default:true"`
	Deadline     time.Time      `json:"deadline" gorm:"index"`
	CreatorID    uint           `json:"creatorID" gorm:"index;not null"`
	Creator      User           `json:"-" gorm:"foreignKey:CreatorID"`
	Attachments  datatypes.JSON `json:"attachments"` // [{"name": "file.pdf", "path": "/uploads/xxx"}]
	CreatedAt    time.Time      `json:"createdAt"`
}

const (
	ItemStatusOngoing  = "ongoing"
	ItemStatusFinished = "finished"
)

// Attachment is the metadata stored per uploaded file; the files themselves
// live outside this service.
type Attachment struct {
	Name string `json:"name"`
	Path string `json:"path"`
}
