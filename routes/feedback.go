package routes

import (
	"item-feedback-server/models"
	"item-feedback-server/services"
	"item-feedback-server/storage"
	"item-feedback-server/utils"

	"github.com/kataras/iris/v12"
)

// GET /api/feedbacks
func ListFeedbacks(ctx iris.Context) {
	skip := ctx.URLParamIntDefault("skip", 0)
	limit := ctx.URLParamIntDefault("limit", 100)

	list, err := services.ListFeedbacks(storage.DB, skip, limit)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	if list == nil {
		list = []models.Feedback{}
	}
	ctx.JSON(list)
}

// POST /api/feedbacks — submit feedback for one assignment; may cascade the
// parent item to finished.
func CreateFeedback(ctx iris.Context) {
	var input SubmitFeedbackInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	assignment, err := services.SubmitFeedback(storage.DB, input.AssignmentID, input.Content)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(assignment)
}

// GET /api/todos?user_id=
func ListTodos(ctx iris.Context) {
	userID := ctx.URLParamIntDefault("user_id", 0)
	if userID <= 0 {
		utils.JSONError(ctx, iris.StatusUnprocessableEntity, "validation_error", "user_id is required")
		return
	}

	todos, err := services.ListTodos(storage.DB, uint(userID))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(todos)
}

type SubmitFeedbackInput struct {
	AssignmentID uint   `json:"assignment_id" validate:"required"`
	Content      string `json:"content" validate:"required"`
}
