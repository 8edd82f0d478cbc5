package routes

import (
	"time"

	"item-feedback-server/models"
	"item-feedback-server/services"
	"item-feedback-server/storage"
	"item-feedback-server/utils"

	"github.com/kataras/iris/v12"
)

const deadlineLayout = "2006-01-02 15:04:05"

// GET /api/items
func ListItems(ctx iris.Context) {
	opts := services.ListItemsOptions{
		Scope:           ctx.URLParamDefault("scope", services.ScopeAll),
		ActorID:         uint(ctx.URLParamIntDefault("user_id", 0)),
		Role:            ctx.URLParam("role"),
		CreatorID:       uint(ctx.URLParamIntDefault("creator_id", 0)),
		CreatorName:     ctx.URLParam("creator_name"),
		ParticipantID:   uint(ctx.URLParamIntDefault("participant_id", 0)),
		ParticipantName: ctx.URLParam("participant_name"),
		TitleLike:       ctx.URLParam("title_like"),
		Status:          ctx.URLParam("status"),
		CreatedFrom:     ctx.URLParam("created_from"),
		CreatedTo:       ctx.URLParam("created_to"),
		DeadlineFrom:    ctx.URLParam("deadline_from"),
		DeadlineTo:      ctx.URLParam("deadline_to"),
		SortBy:          ctx.URLParamDefault("sort_by", "created_at"),
		SortOrder:       ctx.URLParamDefault("sort_order", "desc"),
		Skip:            ctx.URLParamIntDefault("skip", 0),
		Limit:           ctx.URLParamIntDefault("limit", 100),
	}

	items, total, err := services.ListItems(storage.DB, opts)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	if items == nil {
		items = []models.Item{}
	}
	ctx.JSON(iris.Map{"items": items, "total": total})
}

// GET /api/items/{id}
func GetItemDetail(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}
	item, participants, err := services.GetItemDetail(storage.DB, id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"item": item, "feedbacks": participants})
}

// POST /api/items
func CreateItem(ctx iris.Context) {
	var input CreateItemInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	deadline, err := time.Parse(deadlineLayout, input.Deadline)
	if err != nil {
		utils.JSONError(ctx, iris.StatusUnprocessableEntity, "validation_error", "deadline: expected "+deadlineLayout)
		return
	}

	mustFeedback := true
	if input.MustFeedback != nil {
		mustFeedback = *input.MustFeedback
	}

	item, err := services.CreateItem(storage.DB, services.CreateItemInput{
		Title:        input.Title,
		Description:  input.Description,
		Deadline:     deadline,
		MustFeedback: mustFeedback,
		CreatorID:    input.CreatorID,
		AssigneeIDs:  input.UserIDs,
		Attachments:  input.Attachments,
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.LogOperation(input.CreatorID, "Create Item", item.ID)
	ctx.JSON(item)
}

// PUT /api/items/{id}
func UpdateItem(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}

	var input UpdateItemInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	deadline, err := time.Parse(deadlineLayout, input.Deadline)
	if err != nil {
		utils.JSONError(ctx, iris.StatusUnprocessableEntity, "validation_error", "deadline: expected "+deadlineLayout)
		return
	}

	mustFeedback := true
	if input.MustFeedback != nil {
		mustFeedback = *input.MustFeedback
	}

	item, err := services.UpdateItem(storage.DB, id, services.UpdateItemInput{
		Title:        input.Title,
		Description:  input.Description,
		Deadline:     deadline,
		MustFeedback: mustFeedback,
		Status:       input.Status,
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(item)
}

// DELETE /api/items/{id}
func DeleteItem(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}

	item, err := services.DeleteItem(storage.DB, id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.LogOperation(item.CreatorID, "Delete Item", id)
	ctx.JSON(iris.Map{"detail": "Item deleted"})
}

type CreateItemInput struct {
	Title        string              `json:"title" validate:"required,max=200"`
	Description  string              `json:"description"`
	Deadline     string              `json:"deadline" validate:"required"`
	MustFeedback *bool               `json:"must_feedback"`
	CreatorID    uint                `json:"creator_id" validate:"required"`
	UserIDs      []uint              `json:"user_ids"`
	Attachments  []models.Attachment `json:"attachments"`
}

type UpdateItemInput struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description"`
	Deadline     string `json:"deadline" validate:"required"`
	MustFeedback *bool  `json:"must_feedback"`
	Status       string `json:"status" validate:"omitempty,oneof=ongoing finished"`
}
