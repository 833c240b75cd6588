package store

import (
	"github.com/geocoder89/storefront/internal/domain/cart"
	"github.com/geocoder89/storefront/internal/domain/order"
	"github.com/geocoder89/storefront/internal/domain/product"
	"github.com/geocoder89/storefront/internal/domain/user"
)

// Cart status values track the quantity update request only.
const (
	StatusIdle      = "idle"
	StatusLoading   = "loading"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Session replaces the jwtToken, userId and userRole cookies.
type Session struct {
	Token  string
	UserID string
	Role   string
	Name   string
	Email  string
}

type CartState struct {
	Items     []cart.Item
	UserDatas user.UserDatas
	Loading   bool
	Status    string
	Error     string
}

type ProductState struct {
	Items   []product.Product
	Loading bool
	Error   string
}

type AuthState struct {
	Session *Session
	Loading bool
	Error   string
}

type OrdersState struct {
	OrderedItems []order.Order
	Loading      bool
	Error        string
}

type State struct {
	Cart    CartState
	Product ProductState
	Auth    AuthState
	Orders  OrdersState
}

func initialState() State {
	return State{
		Cart:    CartState{Items: []cart.Item{}, UserDatas: user.EmptyUserDatas(), Status: StatusIdle},
		Product: ProductState{Items: []product.Product{}},
		Orders:  OrdersState{OrderedItems: []order.Order{}},
	}
}

func (s State) clone() State {
	out := s
	out.Cart.Items = cart.CloneItems(s.Cart.Items)
	out.Cart.UserDatas = user.User{UserDatas: s.Cart.UserDatas}.Clone().UserDatas
	out.Product.Items = append([]product.Product{}, s.Product.Items...)
	if s.Auth.Session != nil {
		sess := *s.Auth.Session
		out.Auth.Session = &sess
	}
	out.Orders.OrderedItems = make([]order.Order, len(s.Orders.OrderedItems))
	for i := range s.Orders.OrderedItems {
		out.Orders.OrderedItems[i] = s.Orders.OrderedItems[i].Clone()
	}
	return out
}

// CartTotal sums price × quantity, counting a quantity below one as one.
func CartTotal(items []cart.Item) float64 {
	return cart.Total(items)
}
