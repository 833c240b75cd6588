package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/storefront/internal/config"
	"github.com/geocoder89/storefront/internal/domain/order"
	"github.com/geocoder89/storefront/internal/domain/user"
	"github.com/geocoder89/storefront/internal/notifications"
	"github.com/geocoder89/storefront/internal/utils"
	"github.com/gin-gonic/gin"
)

// checkoutAttempts bounds the read-then-swap loop when the cart keeps changing.
const checkoutAttempts = 3

type OrderStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	AppendOrder(ctx context.Context, userID string, o order.Order) (user.User, error)
	Checkout(ctx context.Context, userID string, cartVersion int64, o order.Order) (user.User, error)
}

type OrdersHandler struct {
	store    OrderStore
	notifier notifications.Notifier
	now      func() time.Time
}

func NewOrdersHandler(store OrderStore, notifier notifications.Notifier) *OrdersHandler {
	if notifier == nil {
		notifier = notifications.Nop{}
	}
	return &OrdersHandler{store: store, notifier: notifier, now: time.Now}
}

func (h *OrdersHandler) ListOrders(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.store.GetByID(cctx, ctx.Param("_id"))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		respondStoreFailure(ctx, "users.get_by_id", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"yourOrders": u.UserDatas.YourOrders})
}

func (h *OrdersHandler) AppendOrder(ctx *gin.Context) {
	var o order.Order

	if !bindJSONWithMessage(ctx, &o, "provide valid data") {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.store.AppendOrder(cctx, ctx.Param("_id"), o)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		respondStoreFailure(ctx, "users.orders_push", err)
		return
	}

	if n := len(u.UserDatas.YourOrders); n > 0 {
		h.publish(ctx, u, u.UserDatas.YourOrders[n-1])
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "ordered item added successfully",
		"user":    u,
	})
}

// Checkout turns the whole cart into one order and empties the cart in a single
// compare-and-swap on the user document.
func (h *OrdersHandler) Checkout(ctx *gin.Context) {
	userID := ctx.Param("_id")

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	for attempt := 0; attempt < checkoutAttempts; attempt++ {
		u, err := h.store.GetByID(cctx, userID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				RespondNotFound(ctx, "User not found")
				return
			}
			respondStoreFailure(ctx, "users.get_by_id", err)
			return
		}

		o, err := order.FromCart(utils.NewID(), u.UserDatas.CartList, h.now())
		if err != nil {
			RespondBadRequest(ctx, "Cart is empty", nil)
			return
		}

		updated, err := h.store.Checkout(cctx, userID, u.UserDatas.CartVersion, o)
		if errors.Is(err, order.ErrConcurrentCheckout) {
			continue
		}
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				RespondNotFound(ctx, "User not found")
				return
			}
			respondStoreFailure(ctx, "users.checkout", err)
			return
		}

		h.publish(ctx, updated, o)

		ctx.JSON(http.StatusCreated, gin.H{
			"message": "Order placed successfully",
			"order":   o,
			"user":    updated,
		})
		return
	}

	RespondConflict(ctx, "cart_changed", "Cart changed during checkout, please retry")
}

// publish is best effort; a broker failure never fails the request.
func (h *OrdersHandler) publish(ctx *gin.Context, u user.User, o order.Order) {
	pctx := context.WithoutCancel(ctx.Request.Context())
	if err := h.notifier.NotifyOrderPlaced(pctx, notifications.NewOrderPlaced(u, o)); err != nil {
		slog.Default().WarnContext(pctx, "order_event_publish_failed",
			"order_id", o.ID,
			"user_id", u.ID,
			"err", err,
		)
	}
}
