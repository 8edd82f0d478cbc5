package routes

import (
	"errors"

	"item-feedback-server/services"
	"item-feedback-server/storage"
	"item-feedback-server/utils"

	"github.com/kataras/iris/v12"
)

// POST /api/login
func Login(ctx iris.Context) {
	var input LoginInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	user, err := services.Authenticate(storage.DB, input.Username, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrBadCredentials) {
			utils.JSONError(ctx, iris.StatusUnauthorized, "bad_credentials", err.Error())
			return
		}
		respondServiceError(ctx, err)
		return
	}

	tokenPair, tokenErr := utils.CreateTokenPair(user.ID)
	if tokenErr != nil {
		utils.JSONError(ctx, iris.StatusInternalServerError, "server_error", "could not sign token pair")
		return
	}

	utils.LogOperation(user.ID, "Login", user.ID)

	ctx.JSON(iris.Map{
		"access_token":  string(tokenPair.AccessToken),
		"refresh_token": string(tokenPair.RefreshToken),
		"token_type":    "bearer",
		"role":          user.Role,
		"user_id":       user.ID,
		"name":          user.Name,
	})
}

// GET /api/users
func ListUsers(ctx iris.Context) {
	users, err := services.ListUsers(storage.DB)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(users)
}

// POST /api/users
func CreateUser(ctx iris.Context) {
	var input CreateUserInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	user, err := services.CreateUser(storage.DB, services.CreateUserInput{
		Username: input.Username,
		Name:     input.Name,
		Password: input.Password,
		Role:     input.Role,
		Group:    input.Group,
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(user)
}

// DELETE /api/users/{id}
func DeleteUser(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}
	if err := services.DeleteUser(storage.DB, id); err != nil {
		respondServiceError(ctx, err)
		return
	}

	if actorID, err := ctx.Values().GetUint("userID"); err == nil {
		utils.LogOperation(actorID, "Delete User", id)
	}
	ctx.JSON(iris.Map{"detail": "User deleted"})
}

// GET /api/users/export — CSV of all users
func ExportUsers(ctx iris.Context) {
	ctx.Header("Content-Disposition", "attachment; filename=users_export.csv")
	ctx.ContentType("text/csv")

	if err := services.ExportUsersCSV(storage.DB, ctx.ResponseWriter()); err != nil {
		utils.JSONError(ctx, iris.StatusInternalServerError, "server_error", "user export failed")
		return
	}
}

// GET /api/operation_logs
func ListOperationLogs(ctx iris.Context) {
	limit := ctx.URLParamIntDefault("limit", 200)
	logs, err := services.ListOperationLogs(storage.DB, limit)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(logs)
}

type LoginInput struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=256"`
}

type CreateUserInput struct {
	Username string `json:"username" validate:"required,max=64"`
	Name     string `json:"name" validate:"max=128"`
	Password string `json:"password" validate:"required,max=256"`
	Role     string `json:"role" validate:"omitempty,oneof=admin creator feedbacker"`
	Group    string `json:"group" validate:"max=128"`
}
