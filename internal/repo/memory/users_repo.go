package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/storefront/internal/domain/cart"
	"github.com/geocoder89/storefront/internal/domain/order"
	"github.com/geocoder89/storefront/internal/domain/user"
	"github.com/geocoder89/storefront/internal/utils"
)

// UsersRepo keeps users in a map. Every mutation of the embedded arrays runs in one
// critical section, mirroring the single-document atomicity of the mongo repo.
type UsersRepo struct {
	mu      sync.RWMutex
	items   map[string]user.User
	byEmail map[string]string
	now     func() time.Time
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items:   make(map[string]user.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (r *UsersRepo) Create(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u.Email = user.NormalizeEmail(u.Email)
	key := u.Email
	if _, exists := r.byEmail[key]; exists {
		return user.User{}, user.ErrEmailTaken
	}

	now := r.now().UTC()
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	if u.Role == "" {
		u.Role = user.RoleUser
	}
	u.UserDatas = user.EmptyUserDatas()
	u.CreatedAt = now
	u.UpdatedAt = now

	r.items[u.ID] = u
	r.byEmail[key] = u.ID
	return u.Clone(), nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[user.NormalizeEmail(email)]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return r.items[id].Clone(), nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u.Clone(), nil
}

// mutate applies fn to the stored user under the write lock and persists the result
// only when fn succeeds.
func (r *UsersRepo) mutate(id string, fn func(u *user.User) error) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	u := stored.Clone()
	if err := fn(&u); err != nil {
		return user.User{}, err
	}
	u.UpdatedAt = r.now().UTC()
	r.items[id] = u
	return u.Clone(), nil
}

func (r *UsersRepo) AddCartItem(_ context.Context, userID string, item cart.Item) (user.User, error) {
	item, err := item.Normalize()
	if err != nil {
		return user.User{}, err
	}
	if item.ID == "" {
		item.ID = utils.NewID()
	}

	return r.mutate(userID, func(u *user.User) error {
		list := u.UserDatas.CartList
		if i := cart.IndexOf(list, item.ID); i >= 0 {
			list[i].Quantity += item.Quantity
		} else {
			u.UserDatas.CartList = append(list, item.Clone())
		}
		u.UserDatas.CartVersion++
		return nil
	})
}

func (r *UsersRepo) SetCartItemQuantity(_ context.Context, userID, itemID string, quantity int) (user.User, error) {
	if quantity < 1 {
		return user.User{}, cart.ErrInvalidQuantity
	}
	return r.mutate(userID, func(u *user.User) error {
		i := cart.IndexOf(u.UserDatas.CartList, itemID)
		if i < 0 {
			return cart.ErrItemNotFound
		}
		u.UserDatas.CartList[i].Quantity = quantity
		u.UserDatas.CartVersion++
		return nil
	})
}

func (r *UsersRepo) RemoveCartItem(_ context.Context, userID, itemID string) (user.User, error) {
	return r.mutate(userID, func(u *user.User) error {
		kept := u.UserDatas.CartList[:0]
		for _, it := range u.UserDatas.CartList {
			if it.ID != itemID {
				kept = append(kept, it)
			}
		}
		u.UserDatas.CartList = kept
		u.UserDatas.CartVersion++
		return nil
	})
}

func (r *UsersRepo) ClearCart(_ context.Context, userID string) (user.User, error) {
	return r.mutate(userID, func(u *user.User) error {
		u.UserDatas.CartList = []cart.Item{}
		u.UserDatas.CartVersion++
		return nil
	})
}

func (r *UsersRepo) AppendOrder(_ context.Context, userID string, o order.Order) (user.User, error) {
	if o.ID == "" {
		o.ID = utils.NewID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = r.now().UTC()
	}
	return r.mutate(userID, func(u *user.User) error {
		u.UserDatas.YourOrders = append(u.UserDatas.YourOrders, o.Clone())
		return nil
	})
}

// Checkout moves the cart into a new order when the cart is still at cartVersion.
func (r *UsersRepo) Checkout(_ context.Context, userID string, cartVersion int64, o order.Order) (user.User, error) {
	return r.mutate(userID, func(u *user.User) error {
		if u.UserDatas.CartVersion != cartVersion {
			return order.ErrConcurrentCheckout
		}
		u.UserDatas.YourOrders = append(u.UserDatas.YourOrders, o.Clone())
		u.UserDatas.CartList = []cart.Item{}
		u.UserDatas.CartVersion++
		return nil
	})
}
