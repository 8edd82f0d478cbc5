package services

import (
	"log"
	"time"

	"item-feedback-server/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Reminder periodically scans for assignments that are still pending while
// their item's deadline is inside the warning window, and logs a line per
// hit. It only reads: a passed deadline never closes an item or flips an
// assignment.
type Reminder struct {
	db     *gorm.DB
	window time.Duration
	cron   *cron.Cron
}

func NewReminder(db *gorm.DB) *Reminder {
	return &Reminder{db: db, window: 24 * time.Hour, cron: cron.New()}
}

func (r *Reminder) Start() error {
	if _, err := r.cron.AddFunc("@every 1h", r.scan); err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

func (r *Reminder) Stop() {
	r.cron.Stop()
}

func (r *Reminder) scan() {
	due, err := PendingWithinDeadline(r.db, r.window)
	if err != nil {
		log.Println("reminder scan failed:", err)
		return
	}
	for _, p := range due {
		log.Printf("reminder: user %d has not responded to item %d (%q), deadline %s",
			p.UserID, p.ItemID, p.Title, p.Deadline.Format(time.RFC3339))
	}
}

// PendingReminder is one pending assignment joined with its item's title and
// deadline.
type PendingReminder struct {
	AssignmentID uint
	UserID       uint
	ItemID       uint
	Title        string
	Deadline     time.Time
}

// PendingWithinDeadline lists pending assignments whose item deadline falls
// before now+window.
func PendingWithinDeadline(db *gorm.DB, window time.Duration) ([]PendingReminder, error) {
	cutoff := time.Now().UTC().Add(window)
	var due []PendingReminder
	err := db.Model(&models.Assignment{}).
		Select("assignments.id AS assignment_id, assignments.user_id, assignments.item_id, items.title, items.deadline").
		Joins("JOIN items ON items.id = assignments.item_id").
		Where("assignments.status = ? AND items.deadline <= ?", models.FeedbackPending, cutoff).
		Order("items.deadline ASC").
		Scan(&due).Error
	return due, err
}
