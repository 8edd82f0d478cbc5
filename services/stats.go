package services

import (
	"fmt"
	"sort"

	"item-feedback-server/models"

	"gorm.io/gorm"
)

// UnassignedGroup is the dept_ranking bucket for assignees without a group
// label.
const UnassignedGroup = "unassigned"

type ItemComparison struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Rate  int    `json:"rate"`
	Total int64  `json:"total"`
	Done  int64  `json:"done"`
}

type DeptRanking struct {
	Name  string `json:"name"`
	Rate  int    `json:"rate"`
	Total int64  `json:"total"`
	Done  int64  `json:"done"`
}

type Summary struct {
	TotalItems     int64            `json:"total_items"`
	TotalFeedbacks int64            `json:"total_feedbacks"`
	CompletionRate string           `json:"completion_rate"`
	ItemComparison []ItemComparison `json:"item_comparison"`
	DeptRanking    []DeptRanking    `json:"dept_ranking"`
}

// StatsSummary computes the dashboard numbers for one scope: base counts,
// overall completion rate, the 7 most recent items with per-item rates, and
// the per-department ranking. Grouped numbers come from single aggregate
// queries so the report stays cheap at tens of thousands of assignments.
func StatsSummary(db *gorm.DB, scope string, actorID uint, role string) (*Summary, error) {
	pred := ScopeItems(scope, actorID, role)
	scopedItemIDs := func() *gorm.DB {
		return db.Session(&gorm.Session{NewDB: true}).
			Model(&models.Item{}).
			Scopes(pred).
			Select("items.id")
	}

	summary := &Summary{
		ItemComparison: []ItemComparison{},
		DeptRanking:    []DeptRanking{},
	}

	if err := db.Model(&models.Item{}).Scopes(pred).Count(&summary.TotalItems).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Feedback{}).
		Joins("JOIN assignments ON assignments.id = feedbacks.assignment_id").
		Where("assignments.item_id IN (?)", scopedItemIDs()).
		Count(&summary.TotalFeedbacks).Error; err != nil {
		return nil, err
	}

	var totalAssignments, doneAssignments int64
	if err := db.Model(&models.Assignment{}).
		Where("item_id IN (?)", scopedItemIDs()).
		Count(&totalAssignments).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Assignment{}).
		Where("item_id IN (?)", scopedItemIDs()).
		Where("status IN ?", models.DoneStatuses()).
		Count(&doneAssignments).Error; err != nil {
		return nil, err
	}
	summary.CompletionRate = fmt.Sprintf("%d%%", rate(doneAssignments, totalAssignments))

	comparison, err := itemComparison(db, pred)
	if err != nil {
		return nil, err
	}
	summary.ItemComparison = comparison

	ranking, err := deptRanking(db, scopedItemIDs())
	if err != nil {
		return nil, err
	}
	summary.DeptRanking = ranking

	return summary, nil
}

// itemComparison loads the 7 most recent in-scope items and resolves their
// per-item counts in one grouped query.
func itemComparison(db *gorm.DB, pred func(*gorm.DB) *gorm.DB) ([]ItemComparison, error) {
	var recent []models.Item
	if err := db.Model(&models.Item{}).Scopes(pred).
		Order("created_at DESC").Order("id DESC").
		Limit(7).
		Find(&recent).Error; err != nil {
		return nil, err
	}
	if len(recent) == 0 {
		return []ItemComparison{}, nil
	}

	ids := make([]uint, len(recent))
	for i, item := range recent {
		ids[i] = item.ID
	}

	var rows []struct {
		ItemID uint
		Total  int64
		Done   int64
	}
	err := db.Model(&models.Assignment{}).
		Select("item_id, COUNT(*) AS total, SUM(CASE WHEN status IN (?) THEN 1 ELSE 0 END) AS done", models.DoneStatuses()).
		Where("item_id IN ?", ids).
		Group("item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]struct{ total, done int64 }, len(rows))
	for _, row := range rows {
		counts[row.ItemID] = struct{ total, done int64 }{row.Total, row.Done}
	}

	comparison := make([]ItemComparison, 0, len(recent))
	for _, item := range recent {
		c := counts[item.ID]
		comparison = append(comparison, ItemComparison{
			ID:    item.ID,
			Title: item.Title,
			Rate:  rate(c.done, c.total),
			Total: c.total,
			Done:  c.done,
		})
	}
	return comparison, nil
}

// deptRanking groups in-scope assignments by the assignee's group label in a
// single GROUP BY pass and ranks the buckets by completion rate.
func deptRanking(db *gorm.DB, scopedItemIDs *gorm.DB) ([]DeptRanking, error) {
	var rows []struct {
		Name  string
		Total int64
		Done  int64
	}
	err := db.Model(&models.Assignment{}).
		Select(`users."group" AS name, COUNT(*) AS total, SUM(CASE WHEN assignments.status IN (?) THEN 1 ELSE 0 END) AS done`, models.DoneStatuses()).
		Joins("JOIN users ON users.id = assignments.user_id").
		Where("assignments.item_id IN (?)", scopedItemIDs).
		Group(`users."group"`).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	ranking := make([]DeptRanking, 0, len(rows))
	for _, row := range rows {
		name := row.Name
		if name == "" {
			name = UnassignedGroup
		}
		ranking = append(ranking, DeptRanking{
			Name:  name,
			Rate:  rate(row.Done, row.Total),
			Total: row.Total,
			Done:  row.Done,
		})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Rate > ranking[j].Rate
	})
	return ranking, nil
}

// rate is integer percent with truncating division. Every call site carries
// its own zero guard via this helper.
func rate(done, total int64) int {
	if total == 0 {
		return 0
	}
	return int(done * 100 / total)
}
