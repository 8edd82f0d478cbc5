package services

import (
	"encoding/json"
	"errors"
	"time"

	"item-feedback-server/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// CreateItemInput carries everything needed to create an item and its
// assignments in one shot.
type CreateItemInput struct {
	Title        string
	Description  string
	Deadline     time.Time
	MustFeedback bool
	CreatorID    uint
	AssigneeIDs  []uint
	Attachments  []models.Attachment
}

// CreateItem inserts the item and bulk-creates one pending assignment per
// assignee. Duplicate ids in AssigneeIDs collapse to one assignment.
func CreateItem(db *gorm.DB, in CreateItemInput) (*models.Item, error) {
	if in.Title == "" {
		return nil, invalid("title", "must not be empty")
	}
	if in.CreatorID == 0 {
		return nil, invalid("creator_id", "must reference a user")
	}

	var attachments datatypes.JSON
	if len(in.Attachments) > 0 {
		raw, err := json.Marshal(in.Attachments)
		if err != nil {
			return nil, err
		}
		attachments = datatypes.JSON(raw)
	}

	item := models.Item{
		Title:        in.Title,
		Description:  in.Description,
		Status:       models.ItemStatusOngoing,
		MustFeedback: in.MustFeedback,
		Deadline:     in.Deadline,
		CreatorID:    in.CreatorID,
		Attachments:  attachments,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		seen := make(map[uint]struct{}, len(in.AssigneeIDs))
		assignments := make([]models.Assignment, 0, len(in.AssigneeIDs))
		for _, uid := range in.AssigneeIDs {
			if _, dup := seen[uid]; dup {
				continue
			}
			seen[uid] = struct{}{}
			assignments = append(assignments, models.Assignment{
				ItemID: item.ID,
				UserID: uid,
				Status: models.FeedbackPending,
			})
		}
		if len(assignments) == 0 {
			return nil
		}
		return tx.Create(&assignments).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItemsOptions describes one listing request: scope, AND-conjoined
// filters, sort key/direction and the pagination window.
type ListItemsOptions struct {
	Scope   string
	ActorID uint
	Role    string

	CreatorID       uint
	CreatorName     string // substring match against user display names
	ParticipantID   uint
	ParticipantName string // substring match against assignee display names
	TitleLike       string
	Status          string
	CreatedFrom     string // calendar dates, YYYY-MM-DD, inclusive
	CreatedTo       string
	DeadlineFrom    string
	DeadlineTo      string

	SortBy    string // title, created_at, deadline, status
	SortOrder string // asc, desc
	Skip      int
	Limit     int
}

// ListItems returns the requested window plus the total count of rows
// matching all filters before pagination.
func ListItems(db *gorm.DB, opts ListItemsOptions) ([]models.Item, int64, error) {
	q := db.Model(&models.Item{}).Scopes(ScopeItems(opts.Scope, opts.ActorID, opts.Role))

	if opts.CreatorID != 0 {
		q = q.Where("creator_id = ?", opts.CreatorID)
	}
	if opts.CreatorName != "" {
		ids, err := userIDsByName(db, opts.CreatorName)
		if err != nil {
			return nil, 0, err
		}
		if len(ids) > 0 {
			q = q.Where("creator_id IN ?", ids)
		} else {
			// no user matched: that is an empty result, not an absent filter
			q = q.Where("creator_id = -1")
		}
	}
	if opts.ParticipantID != 0 {
		q = q.Where("id IN (?)", assignmentItemIDs(db).Where("user_id = ?", opts.ParticipantID))
	}
	if opts.ParticipantName != "" {
		ids, err := userIDsByName(db, opts.ParticipantName)
		if err != nil {
			return nil, 0, err
		}
		if len(ids) > 0 {
			q = q.Where("id IN (?)", assignmentItemIDs(db).Where("user_id IN ?", ids))
		} else {
			q = q.Where("id = -1")
		}
	}
	if opts.TitleLike != "" {
		q = q.Where("title LIKE ?", "%"+opts.TitleLike+"%")
	}
	if opts.Status != "" {
		q = q.Where("status = ?", opts.Status)
	}

	for _, rng := range []struct {
		value  string
		clause string
		field  string
	}{
		{opts.CreatedFrom, "created_at >= ?", "created_from"},
		{opts.CreatedTo, "created_at <= ?", "created_to"},
		{opts.DeadlineFrom, "deadline >= ?", "deadline_from"},
		{opts.DeadlineTo, "deadline <= ?", "deadline_to"},
	} {
		if rng.value == "" {
			continue
		}
		day, err := parseDay(rng.field, rng.value)
		if err != nil {
			return nil, 0, err
		}
		q = q.Where(rng.clause, day)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column := "created_at"
	switch opts.SortBy {
	case "title", "deadline", "status":
		column = opts.SortBy
	}
	direction := "DESC"
	if opts.SortOrder == "asc" {
		direction = "ASC"
	}
	q = q.Order(column + " " + direction).Order("id " + direction)

	if opts.Skip > 0 {
		q = q.Offset(opts.Skip)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	var items []models.Item
	if err := q.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ItemParticipant is one row of the item detail view: the assignee joined
// with their feedback, if any.
type ItemParticipant struct {
	AssignmentID      uint       `json:"assignmentID"`
	UserID            uint       `json:"userID"`
	UserName          string     `json:"userName"`
	Status            string     `json:"status"`
	Content           *string    `json:"content"`
	LastFeedbackTime  *time.Time `json:"lastFeedbackTime"`
	FeedbackCreatedAt *time.Time `json:"feedbackCreatedAt"`
}

func GetItemDetail(db *gorm.DB, itemID uint) (*models.Item, []ItemParticipant, error) {
	var item models.Item
	if err := db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, notFound("item", itemID)
		}
		return nil, nil, err
	}

	participants := []ItemParticipant{}
	err := db.Model(&models.Assignment{}).
		Select("assignments.id AS assignment_id, assignments.user_id, users.name AS user_name, assignments.status, assignments.last_feedback_time, feedbacks.content, feedbacks.created_at AS feedback_created_at").
		Joins("JOIN users ON users.id = assignments.user_id").
		Joins("LEFT JOIN feedbacks ON feedbacks.assignment_id = assignments.id").
		Where("assignments.item_id = ?", itemID).
		Order("assignments.id ASC").
		Scan(&participants).Error
	if err != nil {
		return nil, nil, err
	}
	for i := range participants {
		participants[i].Status = models.NormalizeFeedbackStatus(participants[i].Status)
	}
	return &item, participants, nil
}

// UpdateItemInput mirrors the editable item fields. Status may override the
// derived value; it is validated but otherwise applied as-is.
type UpdateItemInput struct {
	Title        string
	Description  string
	Deadline     time.Time
	MustFeedback bool
	Status       string
}

func UpdateItem(db *gorm.DB, itemID uint, in UpdateItemInput) (*models.Item, error) {
	if in.Title == "" {
		return nil, invalid("title", "must not be empty")
	}
	if in.Status != "" && in.Status != models.ItemStatusOngoing && in.Status != models.ItemStatusFinished {
		return nil, invalid("status", "must be ongoing or finished")
	}

	var item models.Item
	if err := db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("item", itemID)
		}
		return nil, err
	}

	item.Title = in.Title
	item.Description = in.Description
	item.Deadline = in.Deadline
	item.MustFeedback = in.MustFeedback
	if in.Status != "" {
		item.Status = in.Status
	}
	if err := db.Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes the item together with its assignments and their
// feedback: feedback first, then assignments, then the item, all inside one
// transaction. A partial cascade must never survive. The deleted item is
// returned so callers can log against it.
func DeleteItem(db *gorm.DB, itemID uint) (*models.Item, error) {
	var item models.Item
	if err := db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("item", itemID)
		}
		return nil, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		sub := tx.Session(&gorm.Session{NewDB: true}).
			Model(&models.Assignment{}).
			Select("id").
			Where("item_id = ?", itemID)
		if err := tx.Where("assignment_id IN (?)", sub).Delete(&models.Feedback{}).Error; err != nil {
			return err
		}
		if err := tx.Where("item_id = ?", itemID).Delete(&models.Assignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Item{}, itemID).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func parseDay(field, value string) (time.Time, error) {
	day, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, invalid(field, "expected "+dateLayout)
	}
	return day, nil
}

func userIDsByName(db *gorm.DB, name string) ([]uint, error) {
	var ids []uint
	err := db.Model(&models.User{}).
		Where("name LIKE ?", "%"+name+"%").
		Pluck("id", &ids).Error
	return ids, err
}

func assignmentItemIDs(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&models.Assignment{}).
		Select("item_id")
}
