package main

import (
	"fmt"
	"log"
	"os"

	"item-feedback-server/routes"
	"item-feedback-server/services"
	"item-feedback-server/storage"
	"item-feedback-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	db := storage.InitializeDB()
	storage.InitializeRedis()

	reminder := services.NewReminder(db)
	if err := reminder.Start(); err != nil {
		log.Fatalf("failed to start reminder runner: %v", err)
	}
	defer reminder.Stop()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		if err := ctx.ReadJSON(&tokenInput); err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	api := app.Party("/api")
	{
		api.Post("/login", routes.Login)
		api.Post("/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

		api.Get("/users", routes.ListUsers)
		api.Post("/users", routes.CreateUser)
		api.Get("/users/export", routes.ExportUsers)
		api.Delete("/users/{id:uint}", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware, routes.DeleteUser)
		api.Get("/operation_logs", routes.ListOperationLogs)

		api.Get("/items", routes.ListItems)
		api.Post("/items", routes.CreateItem)
		api.Get("/items/stats/summary", routes.GetStatsSummary)
		api.Get("/items/{id:uint}", routes.GetItemDetail)
		api.Put("/items/{id:uint}", routes.UpdateItem)
		api.Delete("/items/{id:uint}", routes.DeleteItem)

		api.Get("/feedbacks", routes.ListFeedbacks)
		api.Post("/feedbacks", routes.CreateFeedback)
		api.Get("/todos", routes.ListTodos)

		api.Post("/groups/sync_org", routes.SyncOrgGroups)
		api.Post("/groups/import", routes.ImportGroups)
		api.Get("/groups", routes.ListGroups)
		api.Post("/groups", routes.CreateGroup)
		api.Put("/groups/{id:uint}", routes.UpdateGroup)
		api.Delete("/groups/{id:uint}", routes.DeleteGroup)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
