package utils

import (
	"context"
	"os"
	"strconv"
	"time"

	"item-feedback-server/models"
	"item-feedback-server/storage"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

var bgContext = context.Background()

// AccessToken is the claims payload embedded in access tokens.
type AccessToken struct {
	ID   uint   `json:"id"`
	Role string `json:"role"`
}

type RefreshTokenInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// CreateTokenPair signs an access/refresh pair for the user and parks the
// refresh token in redis so it can be revoked on use.
func CreateTokenPair(id uint) (*jwt.TokenPair, error) {
	accessTokenSigner := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 24*time.Hour)
	refreshTokenSigner := jwt.NewSigner(jwt.HS256, os.Getenv("REFRESH_TOKEN_SECRET"), 365*24*time.Hour)

	userID := strconv.FormatUint(uint64(id), 10)
	refreshClaims := jwt.Claims{Subject: userID}

	role := models.RoleFeedbacker
	var u models.User
	if err := storage.DB.Select("id, role").First(&u, id).Error; err == nil && u.Role != "" {
		role = u.Role
	}

	accessToken, err := accessTokenSigner.Sign(AccessToken{ID: id, Role: role})
	if err != nil {
		return nil, err
	}

	refreshToken, err := refreshTokenSigner.Sign(refreshClaims)
	if err != nil {
		return nil, err
	}

	var tokenPair jwt.TokenPair
	tokenPair.AccessToken = accessToken
	tokenPair.RefreshToken = refreshToken

	storage.Redis.Set(bgContext, string(refreshToken), "true", 365*24*time.Hour+5*time.Minute)

	return &tokenPair, nil
}

// RefreshToken rotates a verified refresh token for a fresh pair. Spent
// tokens are removed from redis so each one works exactly once.
func RefreshToken(ctx iris.Context) {
	token := jwt.GetVerifiedToken(ctx)
	tokenStr := string(token.Token)

	validToken, tokenErr := storage.Redis.Get(bgContext, tokenStr).Result()
	if tokenErr != nil {
		JSONError(ctx, iris.StatusNotFound, "not_found", "unknown refresh token")
		return
	}
	if validToken != "true" {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	storage.Redis.Del(bgContext, tokenStr)
	userID, parseErr := strconv.ParseUint(token.StandardClaims.Subject, 10, 32)
	if parseErr != nil {
		JSONError(ctx, iris.StatusInternalServerError, "server_error", "bad token subject")
		return
	}

	tokenPair, tokenPairErr := CreateTokenPair(uint(userID))
	if tokenPairErr != nil {
		JSONError(ctx, iris.StatusInternalServerError, "server_error", "could not sign token pair")
		return
	}

	ctx.JSON(iris.Map{
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}
