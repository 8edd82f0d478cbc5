package routes

import (
	"strings"

	"item-feedback-server/services"
	"item-feedback-server/storage"
	"item-feedback-server/utils"

	"github.com/kataras/iris/v12"
)

// GET /api/groups?user_id=&role=
func ListGroups(ctx iris.Context) {
	actorID := uint(ctx.URLParamIntDefault("user_id", 0))
	role := ctx.URLParam("role")

	groups, err := services.ListGroups(storage.DB, actorID, role)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(groups)
}

// POST /api/groups?owner_id=&role=
func CreateGroup(ctx iris.Context) {
	ownerID := uint(ctx.URLParamIntDefault("owner_id", 0))
	role := ctx.URLParam("role")

	var input GroupInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	group, err := services.CreateGroup(storage.DB, services.GroupInput{
		Name:        input.Name,
		Description: input.Description,
		IsOrg:       input.IsOrg,
		UserIDs:     input.UserIDs,
	}, ownerID, role)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(group)
}

// PUT /api/groups/{id}?user_id=&role=
func UpdateGroup(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}
	actorID := uint(ctx.URLParamIntDefault("user_id", 0))
	role := ctx.URLParam("role")

	var input GroupUpdateInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	group, err := services.UpdateGroup(storage.DB, id, services.GroupUpdate{
		Name:        input.Name,
		Description: input.Description,
		IsOrg:       input.IsOrg,
		UserIDs:     input.UserIDs,
	}, actorID, role)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(group)
}

// DELETE /api/groups/{id}?user_id=&role=
func DeleteGroup(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}
	actorID := uint(ctx.URLParamIntDefault("user_id", 0))
	role := ctx.URLParam("role")

	if err := services.DeleteGroup(storage.DB, id, actorID, role); err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"message": "Group deleted"})
}

// POST /api/groups/sync_org
func SyncOrgGroups(ctx iris.Context) {
	created, totalOrg, err := services.SyncOrgGroups(storage.DB)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"created": created, "total_org_groups": totalOrg})
}

// POST /api/groups/import — multipart CSV of username,name,password,role,group
func ImportGroups(ctx iris.Context) {
	file, header, err := ctx.FormFile("file")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_payload", "file is required")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_payload", "Only CSV files are allowed")
		return
	}

	var ownerID *uint
	if id := ctx.URLParamIntDefault("owner_id", 0); id > 0 {
		v := uint(id)
		ownerID = &v
	}

	stats, err := services.ImportGroupsCSV(storage.DB, file, ownerID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(stats)
}

type GroupInput struct {
	Name        string `json:"name" validate:"required,max=128"`
	Description string `json:"description"`
	IsOrg       bool   `json:"is_org"`
	UserIDs     []uint `json:"user_ids"`
}

type GroupUpdateInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsOrg       *bool   `json:"is_org"`
	UserIDs     []uint  `json:"user_ids"`
}
