package services

import (
	"errors"
	"strings"
	"time"

	"item-feedback-server/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubmitFeedback records feedback for one assignment and marks it done.
//
// The status update and the item finish check run inside one transaction,
// serialized per item on the parent row: when the last two assignees submit
// concurrently, one of them must observe the other's update or the item
// would never finalize. Resubmitting for an already-done assignment
// overwrites the stored content in place.
func SubmitFeedback(db *gorm.DB, assignmentID uint, content string) (*models.Assignment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, invalid("content", "must not be empty")
	}

	var assignment models.Assignment
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&assignment, assignmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("assignment", assignmentID)
			}
			return err
		}

		// Lock the parent item row. Under read committed, two final
		// submitters would otherwise each count the other's row as
		// still pending and neither would finish the item. sqlite
		// permits one writer at a time and has no FOR UPDATE syntax.
		itemLock := tx
		if tx.Dialector.Name() == "postgres" {
			itemLock = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var item models.Item
		if err := itemLock.First(&item, assignment.ItemID).Error; err != nil {
			return err
		}

		var fb models.Feedback
		switch err := tx.Where("assignment_id = ?", assignmentID).First(&fb).Error; {
		case err == nil:
			fb.Content = content
			if err := tx.Save(&fb).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			fb = models.Feedback{AssignmentID: assignmentID, Content: content}
			if err := tx.Create(&fb).Error; err != nil {
				return err
			}
		default:
			return err
		}

		now := time.Now().UTC()
		assignment.Status = models.FeedbackDone
		assignment.LastFeedbackTime = &now
		if err := tx.Save(&assignment).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&models.Assignment{}).
			Where("item_id = ? AND status NOT IN ?", assignment.ItemID, models.DoneStatuses()).
			Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			if err := tx.Model(&models.Item{}).
				Where("id = ?", assignment.ItemID).
				Update("status", models.ItemStatusFinished).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// TodoItem is an item with the caller's own assignment id injected so the
// client can submit feedback straight from the todo list.
type TodoItem struct {
	models.Item
	AssignmentID uint `json:"assignmentID"`
}

// ListTodos returns the items for which the user still has a pending
// assignment, each with that assignment's id injected. Submitting feedback
// removes the item from this list.
func ListTodos(db *gorm.DB, userID uint) ([]TodoItem, error) {
	todos := []TodoItem{}
	err := db.Model(&models.Assignment{}).
		Select("items.*, assignments.id AS assignment_id").
		Joins("JOIN items ON items.id = assignments.item_id").
		Where("assignments.user_id = ? AND assignments.status = ?", userID, models.FeedbackPending).
		Order("assignments.id ASC").
		Scan(&todos).Error
	if err != nil {
		return nil, err
	}
	return todos, nil
}

// ListFeedbacks pages through raw feedback rows, newest last.
func ListFeedbacks(db *gorm.DB, skip, limit int) ([]models.Feedback, error) {
	var list []models.Feedback
	q := db.Order("id ASC")
	if skip > 0 {
		q = q.Offset(skip)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
