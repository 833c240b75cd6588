package notifications

import (
	"context"
	"time"

	"github.com/geocoder89/storefront/internal/domain/order"
	"github.com/geocoder89/storefront/internal/domain/user"
)

const SubjectOrderPlaced = "orders.placed"

// OrderPlaced is the payload published for every order appended to a user.
type OrderPlaced struct {
	UserID    string    `json:"userId"`
	OrderID   string    `json:"orderId"`
	Email     string    `json:"email"`
	Total     float64   `json:"total"`
	ItemCount int       `json:"itemCount"`
	PlacedAt  time.Time `json:"placedAt"`
}

func NewOrderPlaced(u user.User, o order.Order) OrderPlaced {
	ev := OrderPlaced{
		UserID:    u.ID,
		OrderID:   o.ID,
		Email:     u.Email,
		ItemCount: o.ItemCount(),
		PlacedAt:  o.CreatedAt,
	}
	if o.Total != nil {
		ev.Total = *o.Total
	}
	if len(o.Items) == 0 {
		// free-form orders count as one line
		ev.ItemCount = 1
	}
	return ev
}

type Notifier interface {
	NotifyOrderPlaced(ctx context.Context, ev OrderPlaced) error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) NotifyOrderPlaced(context.Context, OrderPlaced) error { return nil }
