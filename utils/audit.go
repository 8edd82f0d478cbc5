package utils

import (
	"strconv"

	"item-feedback-server/models"
	"item-feedback-server/storage"
)

// LogOperation appends an action-log row, e.g. "Login", "Create Item".
// Logging failures are swallowed: the action log never blocks the action.
func LogOperation(userID uint, action string, targetID uint) {
	entry := models.OperationLog{
		UserID:   userID,
		Action:   action,
		TargetID: strconv.FormatUint(uint64(targetID), 10),
	}
	storage.DB.Create(&entry)
}
