package services

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"item-feedback-server/models"

	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// GroupView is a group with its member ids flattened out, the shape clients
// consume.
type GroupView struct {
	models.Group
	UserIDs []uint `json:"userIDs"`
}

type GroupInput struct {
	Name        string
	Description string
	IsOrg       bool
	UserIDs     []uint
}

// ListGroups returns every group for admins; others see org groups plus the
// groups they own.
func ListGroups(db *gorm.DB, actorID uint, role string) ([]GroupView, error) {
	q := db.Preload("Users")
	if role != models.RoleAdmin {
		q = q.Where("is_org = ? OR owner_id = ?", true, actorID)
	}
	var groups []models.Group
	if err := q.Order("id ASC").Find(&groups).Error; err != nil {
		return nil, err
	}
	views := make([]GroupView, 0, len(groups))
	for _, g := range groups {
		views = append(views, toGroupView(g))
	}
	return views, nil
}

// CreateGroup creates a group owned by the actor. Non-admins cannot create
// org groups; the flag is silently downgraded rather than rejected. Members
// come from a lookup of the requested ids, so the membership can only
// reference existing users.
func CreateGroup(db *gorm.DB, in GroupInput, ownerID uint, role string) (*GroupView, error) {
	if in.Name == "" {
		return nil, invalid("name", "must not be empty")
	}
	isOrg := in.IsOrg
	if role != models.RoleAdmin {
		isOrg = false
	}

	group := models.Group{
		Name:        in.Name,
		Description: in.Description,
		IsOrg:       isOrg,
		OwnerID:     &ownerID,
	}
	if len(in.UserIDs) > 0 {
		users, err := usersByIDs(db, in.UserIDs)
		if err != nil {
			return nil, err
		}
		group.Users = users
	}
	if err := db.Create(&group).Error; err != nil {
		return nil, err
	}
	view := toGroupView(group)
	return &view, nil
}

type GroupUpdate struct {
	Name        *string
	Description *string
	IsOrg       *bool
	UserIDs     []uint // nil means leave membership untouched
}

func UpdateGroup(db *gorm.DB, groupID uint, in GroupUpdate, actorID uint, role string) (*GroupView, error) {
	var group models.Group
	if err := db.Preload("Users").First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("group", groupID)
		}
		return nil, err
	}
	if !canManageGroup(&group, actorID, role) {
		return nil, forbidden("not allowed to update this group")
	}

	if in.Name != nil {
		group.Name = *in.Name
	}
	if in.Description != nil {
		group.Description = *in.Description
	}
	if in.IsOrg != nil && role == models.RoleAdmin {
		group.IsOrg = *in.IsOrg
	}
	if err := db.Save(&group).Error; err != nil {
		return nil, err
	}

	if in.UserIDs != nil {
		users, err := usersByIDs(db, in.UserIDs)
		if err != nil {
			return nil, err
		}
		if err := db.Model(&group).Association("Users").Replace(users); err != nil {
			return nil, err
		}
		group.Users = users
	}

	view := toGroupView(group)
	return &view, nil
}

func DeleteGroup(db *gorm.DB, groupID uint, actorID uint, role string) error {
	var group models.Group
	if err := db.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("group", groupID)
		}
		return err
	}
	if !canManageGroup(&group, actorID, role) {
		return forbidden("not allowed to delete this group")
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&group).Association("Users").Clear(); err != nil {
			return err
		}
		return tx.Delete(&group).Error
	})
}

// SyncOrgGroups materializes one org group per distinct user group label and
// resets each group's membership to the users carrying that label.
func SyncOrgGroups(db *gorm.DB) (created int, totalOrg int64, err error) {
	var names []string
	if err = db.Model(&models.User{}).
		Distinct(`"group"`).
		Where(`"group" <> ''`).
		Pluck(`"group"`, &names).Error; err != nil {
		return 0, 0, err
	}

	for _, name := range names {
		var group models.Group
		switch err = db.Where("name = ? AND is_org = ?", name, true).First(&group).Error; {
		case errors.Is(err, gorm.ErrRecordNotFound):
			group = models.Group{Name: name, IsOrg: true}
			if err = db.Create(&group).Error; err != nil {
				return created, 0, err
			}
			created++
		case err != nil:
			return created, 0, err
		}

		var members []models.User
		if err = db.Where(`"group" = ?`, name).Find(&members).Error; err != nil {
			return created, 0, err
		}
		if err = db.Model(&group).Association("Users").Replace(members); err != nil {
			return created, 0, err
		}
	}

	if err = db.Model(&models.Group{}).Where("is_org = ?", true).Count(&totalOrg).Error; err != nil {
		return created, 0, err
	}
	return created, totalOrg, nil
}

// ImportStats reports what a CSV import actually did; rows that referenced
// existing usernames are simply skipped, so a partially imported file can be
// re-run.
type ImportStats struct {
	RowsProcessed int `json:"rows_processed"`
	GroupsCreated int `json:"groups_created"`
	UsersCreated  int `json:"users_created"`
}

// ImportGroupsCSV reads rows of username,name,password,role,group and
// creates missing org groups and users, linking each user to their group.
// The batch is deliberately not atomic — skip-existing keeps it resumable.
func ImportGroupsCSV(db *gorm.DB, r io.Reader, ownerID *uint) (*ImportStats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, invalid("file", "empty or unreadable CSV")
	}
	col := map[string]int{}
	for i, name := range header {
		// strip the BOM spreadsheet exports like to prepend
		col[strings.TrimPrefix(strings.TrimSpace(strings.ToLower(name)), "\ufeff")] = i
	}

	field := func(row []string, names ...string) string {
		for _, name := range names {
			if i, ok := col[name]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
		}
		return ""
	}

	stats := &ImportStats{}
	groupCache := map[string]*models.Group{}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, invalid("file", "malformed CSV row: "+err.Error())
		}
		stats.RowsProcessed++

		username := field(row, "username")
		groupName := field(row, "group", "group_name")
		if username == "" || groupName == "" {
			continue
		}
		name := field(row, "name")
		if name == "" {
			name = username
		}
		password := field(row, "password")
		if password == "" {
			password = "admin"
		}
		role := field(row, "role")
		if role == "" {
			role = models.RoleFeedbacker
		}

		group, ok := groupCache[groupName]
		if !ok {
			var g models.Group
			switch err := db.Where("name = ?", groupName).First(&g).Error; {
			case errors.Is(err, gorm.ErrRecordNotFound):
				g = models.Group{Name: groupName, IsOrg: true, OwnerID: ownerID}
				if err := db.Create(&g).Error; err != nil {
					return stats, err
				}
				stats.GroupsCreated++
			case err != nil:
				return stats, err
			}
			group = &g
			groupCache[groupName] = group
		}

		var user models.User
		switch err := db.Where("username = ?", username).First(&user).Error; {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created, err := CreateUser(db, CreateUserInput{
				Username: username,
				Name:     name,
				Password: password,
				Role:     role,
				Group:    groupName,
			})
			if err != nil {
				return stats, err
			}
			user = *created
			stats.UsersCreated++
		case err != nil:
			return stats, err
		}

		memberIDs, err := groupMemberIDs(db, group.ID)
		if err != nil {
			return stats, err
		}
		if !slices.Contains(memberIDs, user.ID) {
			if err := db.Model(group).Association("Users").Append(&user); err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}

func canManageGroup(group *models.Group, actorID uint, role string) bool {
	if role == models.RoleAdmin {
		return true
	}
	return group.OwnerID != nil && *group.OwnerID == actorID
}

func usersByIDs(db *gorm.DB, ids []uint) ([]models.User, error) {
	var users []models.User
	if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func groupMemberIDs(db *gorm.DB, groupID uint) ([]uint, error) {
	var ids []uint
	err := db.Table("group_users").
		Where("group_id = ?", groupID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func toGroupView(g models.Group) GroupView {
	ids := make([]uint, 0, len(g.Users))
	for _, u := range g.Users {
		ids = append(ids, u.ID)
	}
	g.Users = nil
	return GroupView{Group: g, UserIDs: ids}
}
