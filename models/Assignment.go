package models

import "time"

// Assignment pairs one item with one assigned user and carries that user's
// feedback state. The pair is unique; assignments are bulk-created with the
// item and never re-created. Status only moves pending -> done.
//
// Historical rows may carry "completed" instead of "done"; the two are
// equivalent on read and NormalizeFeedbackStatus folds the alias away at the
// boundary.
type Assignment struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	ItemID           uint       `json:"itemID" gorm:"uniqueIndex:idx_assignments_item_user;not null"`
	Item             Item       `json:"-" gorm:"foreignKey:ItemID"`
	UserID           uint       `json:"userID" gorm:"uniqueIndex:idx_assignments_item_user;not null"`
	User             User       `json:"-" gorm:"foreignKey:UserID"`
	Status           string     `json:"status" gorm:"size:16;default:pending;index"` // pending, done (alias: completed)
	LastFeedbackTime *time.Time `json:"lastFeedbackTime"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

const (
	FeedbackPending   = "pending"
	FeedbackDone      = "done"
	FeedbackDoneAlias = "completed"
)

// DoneStatuses lists every stored value that counts as done. Use it in
// queries; use NormalizeFeedbackStatus when handing a status to a caller.
func DoneStatuses() []string {
	return []string{FeedbackDone, FeedbackDoneAlias}
}

func NormalizeFeedbackStatus(status string) string {
	if status == FeedbackDoneAlias {
		return FeedbackDone
	}
	return status
}
