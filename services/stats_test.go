package services

import (
	"fmt"
	"testing"

	"item-feedback-server/models"
)

func TestStatsSummaryEmptyScope(t *testing.T) {
	db := setupTestDB(t)

	summary, err := StatsSummary(db, ScopeAll, 0, "")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.TotalItems != 0 || summary.TotalFeedbacks != 0 {
		t.Errorf("expected zero counts, got items=%d feedbacks=%d", summary.TotalItems, summary.TotalFeedbacks)
	}
	if summary.CompletionRate != "0%" {
		t.Errorf("expected 0%% with no assignments, got %s", summary.CompletionRate)
	}
	if len(summary.ItemComparison) != 0 || len(summary.DeptRanking) != 0 {
		t.Errorf("expected empty lists, got %d/%d", len(summary.ItemComparison), len(summary.DeptRanking))
	}
}

func TestStatsSummaryTruncatesRate(t *testing.T) {
	db := setupTestDB(t)
	creator := createTestUser(t, db, "boss", "Boss", models.RoleCreator, "")
	users := []*models.User{
		createTestUser(t, db, "u1", "User One", models.RoleFeedbacker, ""),
		createTestUser(t, db, "u2", "User Two", models.RoleFeedbacker, ""),
		createTestUser(t, db, "u3", "User Three", models.RoleFeedbacker, ""),
	}
	item := createTestItem(t, db, "quarterly survey", creator.ID, users[0].ID, users[1].ID, users[2].ID)

	for _, u := range users[:2] {
		a := assignmentFor(t, db, item.ID, u.ID)
		if _, err := SubmitFeedback(db, a.ID, "filled"); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	summary, err := StatsSummary(db, ScopeAll, 0, "")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	// 2 of 3 done: 66, not 67
	if summary.CompletionRate != "66%" {
		t.Errorf("expected 66%%, got %s", summary.CompletionRate)
	}
	if summary.TotalItems != 1 {
		t.Errorf("expected 1 item, got %d", summary.TotalItems)
	}
	if summary.TotalFeedbacks != 2 {
		t.Errorf("expected 2 feedbacks, got %d", summary.TotalFeedbacks)
	}
	if len(summary.ItemComparison) != 1 {
		t.Fatalf("expected 1 comparison row, got %d", len(summary.ItemComparison))
	}
	row := summary.ItemComparison[0]
	if row.Total != 3 || row.Done != 2 || row.Rate != 66 {
		t.Errorf("unexpected comparison row %+v", row)
	}
}

func TestStatsSummaryDeptRanking(t *testing.T) {
	db := setupTestDB(t)
	creator := createTestUser(t, db, "boss", "Boss", models.RoleCreator, "ops")
	sales1 := createTestUser(t, db, "s1", "Sales One", models.RoleFeedbacker, "sales")
	sales2 := createTestUser(t, db, "s2", "Sales Two", models.RoleFeedbacker, "sales")
	hr := createTestUser(t, db, "h1", "HR One", models.RoleFeedbacker, "hr")
	drifter := createTestUser(t, db, "d1", "Drifter", models.RoleFeedbacker, "")

	item := createTestItem(t, db, "policy ack", creator.ID, sales1.ID, sales2.ID, hr.ID, drifter.ID)

	// hr 1/1 done, sales 1/2, drifter 0/1
	for _, u := range []*models.User{hr, sales1} {
		a := assignmentFor(t, db, item.ID, u.ID)
		if _, err := SubmitFeedback(db, a.ID, "read"); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	summary, err := StatsSummary(db, ScopeAll, 0, "")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if len(summary.DeptRanking) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(summary.DeptRanking))
	}
	if summary.DeptRanking[0].Name != "hr" || summary.DeptRanking[0].Rate != 100 {
		t.Errorf("expected hr first at 100, got %+v", summary.DeptRanking[0])
	}
	if summary.DeptRanking[1].Name != "sales" || summary.DeptRanking[1].Rate != 50 {
		t.Errorf("expected sales second at 50, got %+v", summary.DeptRanking[1])
	}
	last := summary.DeptRanking[2]
	if last.Name != UnassignedGroup || last.Rate != 0 || last.Total != 1 {
		t.Errorf("expected unassigned bucket last, got %+v", last)
	}
}

func TestStatsSummaryComparisonKeepsSevenRecent(t *testing.T) {
	db := setupTestDB(t)
	creator := createTestUser(t, db, "boss", "Boss", models.RoleCreator, "")
	u1 := createTestUser(t, db, "u1", "User One", models.RoleFeedbacker, "")

	var last *models.Item
	for i := 0; i < 10; i++ {
		last = createTestItem(t, db, fmt.Sprintf("item %02d", i), creator.ID, u1.ID)
	}

	summary, err := StatsSummary(db, ScopeAll, 0, "")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if len(summary.ItemComparison) != 7 {
		t.Fatalf("expected comparison capped at 7, got %d", len(summary.ItemComparison))
	}
	if summary.ItemComparison[0].ID != last.ID {
		t.Errorf("expected most recent item first, got id %d", summary.ItemComparison[0].ID)
	}
	for _, row := range summary.ItemComparison {
		if row.Total != 1 || row.Done != 0 || row.Rate != 0 {
			t.Errorf("unexpected counts for %q: %+v", row.Title, row)
		}
	}
}

func TestStatsSummaryScoped(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice", "Alice", models.RoleCreator, "")
	bob := createTestUser(t, db, "bob", "Bob", models.RoleCreator, "")
	mine := createTestItem(t, db, "alice's item", alice.ID, bob.ID)
	createTestItem(t, db, "bob's item", bob.ID, alice.ID)

	a := assignmentFor(t, db, mine.ID, bob.ID)
	if _, err := SubmitFeedback(db, a.ID, "done"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	summary, err := StatsSummary(db, ScopeMineCreated, alice.ID, models.RoleCreator)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.TotalItems != 1 {
		t.Errorf("expected 1 scoped item, got %d", summary.TotalItems)
	}
	if summary.TotalFeedbacks != 1 {
		t.Errorf("expected 1 scoped feedback, got %d", summary.TotalFeedbacks)
	}
	if summary.CompletionRate != "100%" {
		t.Errorf("expected 100%% in scope, got %s", summary.CompletionRate)
	}

	summary, err = StatsSummary(db, ScopeMineAssigned, alice.ID, models.RoleCreator)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.TotalItems != 1 || summary.CompletionRate != "0%" {
		t.Errorf("mine_assigned: expected 1 item at 0%%, got %d / %s", summary.TotalItems, summary.CompletionRate)
	}
}
