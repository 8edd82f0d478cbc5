package services

import (
	"strings"
	"testing"

	"item-feedback-server/models"
)

func TestCreateGroupDowngradesOrgFlagForNonAdmins(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner", "Owner", models.RoleCreator, "")
	member := createTestUser(t, db, "m1", "Member One", models.RoleFeedbacker, "")

	view, err := CreateGroup(db, GroupInput{
		Name:    "project crew",
		IsOrg:   true,
		UserIDs: []uint{member.ID},
	}, owner.ID, models.RoleCreator)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if view.IsOrg {
		t.Error("expected org flag downgraded for non-admin creator")
	}
	if len(view.UserIDs) != 1 || view.UserIDs[0] != member.ID {
		t.Errorf("unexpected membership %v", view.UserIDs)
	}

	admin := createTestUser(t, db, "admin", "Admin", models.RoleAdmin, "")
	view, err = CreateGroup(db, GroupInput{Name: "whole company", IsOrg: true}, admin.ID, models.RoleAdmin)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !view.IsOrg {
		t.Error("expected admin to create an org group")
	}

	if _, err := CreateGroup(db, GroupInput{}, owner.ID, models.RoleCreator); !IsValidation(err) {
		t.Errorf("expected validation error for empty name, got %v", err)
	}
}

func TestListGroupsVisibility(t *testing.T) {
	db := setupTestDB(t)
	admin := createTestUser(t, db, "admin", "Admin", models.RoleAdmin, "")
	owner := createTestUser(t, db, "owner", "Owner", models.RoleCreator, "")
	other := createTestUser(t, db, "other", "Other", models.RoleCreator, "")

	if _, err := CreateGroup(db, GroupInput{Name: "org wide", IsOrg: true}, admin.ID, models.RoleAdmin); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := CreateGroup(db, GroupInput{Name: "owner's"}, owner.ID, models.RoleCreator); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := CreateGroup(db, GroupInput{Name: "other's"}, other.ID, models.RoleCreator); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	groups, err := ListGroups(db, admin.ID, models.RoleAdmin)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(groups) != 3 {
		t.Errorf("admin: expected all 3 groups, got %d", len(groups))
	}

	groups, err = ListGroups(db, owner.ID, models.RoleCreator)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("owner: expected org group plus own, got %d", len(groups))
	}
	for _, g := range groups {
		if g.Name == "other's" {
			t.Error("owner must not see another user's private group")
		}
	}
}

func TestUpdateGroupPermissions(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner", "Owner", models.RoleCreator, "")
	stranger := createTestUser(t, db, "stranger", "Stranger", models.RoleCreator, "")
	member := createTestUser(t, db, "m1", "Member One", models.RoleFeedbacker, "")

	view, err := CreateGroup(db, GroupInput{Name: "before"}, owner.ID, models.RoleCreator)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := UpdateGroup(db, view.ID, GroupUpdate{}, stranger.ID, models.RoleCreator); !IsForbidden(err) {
		t.Errorf("expected forbidden for non-owner, got %v", err)
	}

	newName := "after"
	isOrg := true
	updated, err := UpdateGroup(db, view.ID, GroupUpdate{
		Name:    &newName,
		IsOrg:   &isOrg,
		UserIDs: []uint{member.ID},
	}, owner.ID, models.RoleCreator)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "after" {
		t.Errorf("unexpected name %q", updated.Name)
	}
	if updated.IsOrg {
		t.Error("non-admin must not promote a group to org")
	}
	if len(updated.UserIDs) != 1 || updated.UserIDs[0] != member.ID {
		t.Errorf("unexpected membership %v", updated.UserIDs)
	}

	// nil UserIDs leaves membership untouched
	desc := "notes"
	updated, err = UpdateGroup(db, view.ID, GroupUpdate{Description: &desc}, owner.ID, models.RoleCreator)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(updated.UserIDs) != 1 {
		t.Errorf("expected membership preserved, got %v", updated.UserIDs)
	}

	if _, err := UpdateGroup(db, 999, GroupUpdate{}, owner.ID, models.RoleCreator); !IsNotFound(err) {
		t.Errorf("expected not-found for unknown group, got %v", err)
	}
}

func TestDeleteGroupClearsMembership(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner", "Owner", models.RoleCreator, "")
	stranger := createTestUser(t, db, "stranger", "Stranger", models.RoleCreator, "")
	member := createTestUser(t, db, "m1", "Member One", models.RoleFeedbacker, "")

	view, err := CreateGroup(db, GroupInput{Name: "doomed", UserIDs: []uint{member.ID}}, owner.ID, models.RoleCreator)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := DeleteGroup(db, view.ID, stranger.ID, models.RoleCreator); !IsForbidden(err) {
		t.Errorf("expected forbidden for non-owner, got %v", err)
	}
	if err := DeleteGroup(db, view.ID, owner.ID, models.RoleCreator); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	ids, err := groupMemberIDs(db, view.ID)
	if err != nil {
		t.Fatalf("member lookup failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected join rows cleared, got %v", ids)
	}

	// the member user row survives
	var user models.User
	if err := db.First(&user, member.ID).Error; err != nil {
		t.Errorf("expected member user to survive group deletion: %v", err)
	}
}

func TestSyncOrgGroups(t *testing.T) {
	db := setupTestDB(t)
	createTestUser(t, db, "s1", "Sales One", models.RoleFeedbacker, "sales")
	createTestUser(t, db, "s2", "Sales Two", models.RoleFeedbacker, "sales")
	createTestUser(t, db, "h1", "HR One", models.RoleFeedbacker, "hr")
	createTestUser(t, db, "d1", "Drifter", models.RoleFeedbacker, "")

	created, totalOrg, err := SyncOrgGroups(db)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if created != 2 || totalOrg != 2 {
		t.Errorf("expected 2 groups created, got created=%d total=%d", created, totalOrg)
	}

	var sales models.Group
	if err := db.Preload("Users").Where("name = ?", "sales").First(&sales).Error; err != nil {
		t.Fatalf("sales group missing: %v", err)
	}
	if !sales.IsOrg || len(sales.Users) != 2 {
		t.Errorf("expected org sales group with 2 members, got org=%v members=%d", sales.IsOrg, len(sales.Users))
	}

	// user moves departments: a second sync re-homes them
	if err := db.Model(&models.User{}).Where("username = ?", "s2").Update("group", "hr").Error; err != nil {
		t.Fatalf("move failed: %v", err)
	}
	created, totalOrg, err = SyncOrgGroups(db)
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if created != 0 || totalOrg != 2 {
		t.Errorf("expected idempotent sync, got created=%d total=%d", created, totalOrg)
	}
	var hr models.Group
	if err := db.Preload("Users").Where("name = ?", "hr").First(&hr).Error; err != nil {
		t.Fatalf("hr group missing: %v", err)
	}
	if len(hr.Users) != 2 {
		t.Errorf("expected moved user in hr group, got %d members", len(hr.Users))
	}
}

func TestImportGroupsCSV(t *testing.T) {
	db := setupTestDB(t)
	createTestUser(t, db, "existing", "Existing", models.RoleFeedbacker, "sales")

	input := strings.Join([]string{
		"username,name,password,role,group",
		"alice,Alice,pw1,creator,sales",
		"existing,Someone Else,pw2,admin,sales",
		"bob,,,,hr",
		"",
	}, "\n")

	stats, err := ImportGroupsCSV(db, strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if stats.RowsProcessed != 3 {
		t.Errorf("expected 3 rows processed, got %d", stats.RowsProcessed)
	}
	if stats.GroupsCreated != 2 {
		t.Errorf("expected 2 groups created, got %d", stats.GroupsCreated)
	}
	if stats.UsersCreated != 2 {
		t.Errorf("expected 2 users created, got %d", stats.UsersCreated)
	}

	// existing user skipped, not overwritten
	var existing models.User
	db.Where("username = ?", "existing").First(&existing)
	if existing.Name != "Existing" || existing.Role != models.RoleFeedbacker {
		t.Errorf("existing user must be untouched, got %+v", existing)
	}

	// blank fields fall back to defaults
	var bob models.User
	if err := db.Where("username = ?", "bob").First(&bob).Error; err != nil {
		t.Fatalf("bob missing: %v", err)
	}
	if bob.Name != "bob" || bob.Role != models.RoleFeedbacker || bob.Group != "hr" {
		t.Errorf("unexpected defaults %+v", bob)
	}
	if _, err := Authenticate(db, "bob", "admin"); err != nil {
		t.Errorf("expected default password to work: %v", err)
	}

	// re-running the same file only links, never duplicates
	stats, err = ImportGroupsCSV(db, strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	if stats.GroupsCreated != 0 || stats.UsersCreated != 0 {
		t.Errorf("expected resumable import, got %+v", stats)
	}

	var sales models.Group
	if err := db.Preload("Users").Where("name = ?", "sales").First(&sales).Error; err != nil {
		t.Fatalf("sales group missing: %v", err)
	}
	if len(sales.Users) != 2 {
		t.Errorf("expected alice and existing in sales, got %d members", len(sales.Users))
	}
}

func TestImportGroupsCSVHeaderVariants(t *testing.T) {
	db := setupTestDB(t)

	input := "\ufeffUsername,Group_Name\ncarol,finance\n"
	stats, err := ImportGroupsCSV(db, strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if stats.UsersCreated != 1 || stats.GroupsCreated != 1 {
		t.Errorf("expected carol imported, got %+v", stats)
	}

	if _, err := ImportGroupsCSV(db, strings.NewReader(""), nil); !IsValidation(err) {
		t.Errorf("expected validation error for empty file, got %v", err)
	}
}
