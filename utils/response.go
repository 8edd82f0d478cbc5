package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

func JSONError(ctx iris.Context, status int, code, message string) {
	ctx.StatusCode(status)
	ctx.JSON(iris.Map{"error": code, "message": message})
}

// HandleValidationErrors turns a ReadJSON failure into a structured 422 when
// it carries validator field errors, otherwise a plain 400.
func HandleValidationErrors(err error, ctx iris.Context) {
	if errs, ok := err.(validator.ValidationErrors); ok {
		fields := make([]string, 0, len(errs))
		for _, fe := range errs {
			fields = append(fields, fe.Field())
		}
		JSONError(ctx, iris.StatusUnprocessableEntity, "validation_error", "invalid fields: "+strings.Join(fields, ", "))
		return
	}
	JSONError(ctx, iris.StatusBadRequest, "invalid_payload", err.Error())
}
