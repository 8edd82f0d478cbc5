package routes

import (
	"item-feedback-server/services"
	"item-feedback-server/storage"

	"github.com/kataras/iris/v12"
)

// GET /api/items/stats/summary?scope=&user_id=&role=
//
// Shares the scope resolver with the items listing so a dashboard and its
// list view always agree on what is in scope.
func GetStatsSummary(ctx iris.Context) {
	scope := ctx.URLParamDefault("scope", services.ScopeAll)
	actorID := uint(ctx.URLParamIntDefault("user_id", 0))
	role := ctx.URLParam("role")

	summary, err := services.StatsSummary(storage.DB, scope, actorID, role)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(summary)
}
