package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/storefront/internal/config"
	"github.com/geocoder89/storefront/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type UserReader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type UsersHandler struct {
	users UserReader
}

func NewUsersHandler(users UserReader) *UsersHandler {
	return &UsersHandler{users: users}
}

func (h *UsersHandler) GetUser(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, ctx.Param("_id"))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		respondStoreFailure(ctx, "users.get_by_id", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}
