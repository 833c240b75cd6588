package user

import (
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/storefront/internal/domain/cart"
	"github.com/geocoder89/storefront/internal/domain/order"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         string    `json:"role"`
	UserDatas    UserDatas `json:"userDatas"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserDatas holds the two embedded arrays. CartVersion is bumped by every cart
// mutation and guards checkout.
type UserDatas struct {
	CartList    []cart.Item   `json:"cartList" bson:"cartList"`
	YourOrders  []order.Order `json:"yourOrders" bson:"yourOrders"`
	CartVersion int64         `json:"-" bson:"cartVersion"`
}

// EmptyUserDatas returns arrays that encode as [] rather than null.
func EmptyUserDatas() UserDatas {
	return UserDatas{CartList: []cart.Item{}, YourOrders: []order.Order{}}
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u User) Clone() User {
	out := u
	out.UserDatas.CartList = cart.CloneItems(u.UserDatas.CartList)
	out.UserDatas.YourOrders = make([]order.Order, len(u.UserDatas.YourOrders))
	for i := range u.UserDatas.YourOrders {
		out.UserDatas.YourOrders[i] = u.UserDatas.YourOrders[i].Clone()
	}
	return out
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
