package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/storefront/internal/auth"
	"github.com/geocoder89/storefront/internal/config"
	"github.com/geocoder89/storefront/internal/domain/user"
	"github.com/geocoder89/storefront/internal/security"
	"github.com/gin-gonic/gin"
)

type UserAccounts interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

type TokenIssuer interface {
	GenerateAccessToken(id auth.Identity) (string, error)
}

type AuthHandler struct {
	users UserAccounts
	jwt   TokenIssuer
}

func NewAuthHandler(users UserAccounts, jwt TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !bindJSONWithMessage(ctx, &req, "All fields are required") {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	email := user.NormalizeEmail(req.Email)

	if _, err := h.users.GetByEmail(cctx, email); err == nil {
		RespondConflict(ctx, "email_taken", "User already exists")
		return
	} else if !errors.Is(err, user.ErrNotFound) {
		respondStoreFailure(ctx, "users.get_by_email", err)
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.users.Create(cctx, user.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleUser,
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "email_taken", "User already exists")
			return
		}
		respondStoreFailure(ctx, "users.create", err)
		return
	}

	ctx.JSON(http.StatusCreated, u)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !bindJSONWithMessage(ctx, &req, "All fields are required") {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	found, err := h.users.GetByEmail(cctx, user.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		respondStoreFailure(ctx, "users.get_by_email", err)
		return
	}

	if err := security.CheckPassword(found.PasswordHash, req.Password); err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Wrong password!")
		return
	}

	token, err := h.jwt.GenerateAccessToken(auth.Identity{
		UserID: found.ID,
		Email:  found.Email,
		Name:   found.Name,
		Role:   found.Role,
	})
	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"_id":     found.ID,
		"token":   token,
		"name":    found.Name,
		"email":   found.Email,
		"role":    found.Role,
	})
}
