package routes

import (
	"item-feedback-server/services"
	"item-feedback-server/utils"

	"github.com/kataras/iris/v12"
)

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Anything unclassified is an internal fault, not an input error.
func respondServiceError(ctx iris.Context, err error) {
	switch {
	case services.IsNotFound(err):
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", err.Error())
	case services.IsValidation(err):
		utils.JSONError(ctx, iris.StatusUnprocessableEntity, "validation_error", err.Error())
	case services.IsConflict(err):
		utils.JSONError(ctx, iris.StatusConflict, "conflict", err.Error())
	case services.IsForbidden(err):
		utils.JSONError(ctx, iris.StatusForbidden, "forbidden", err.Error())
	default:
		utils.JSONError(ctx, iris.StatusInternalServerError, "server_error", err.Error())
	}
}
