package store

import (
	"context"

	"github.com/geocoder89/storefront/internal/domain/cart"
	"github.com/geocoder89/storefront/internal/domain/order"
	"github.com/geocoder89/storefront/internal/domain/user"
)

func (s *Store) Login(ctx context.Context, email, password string) error {
	seq := s.begin(authSlice, nil)

	res, err := s.api.Login(ctx, email, password)

	s.settle(authSlice, seq, err, func(st *State) {
		st.Auth.Error = ""
		st.Auth.Session = &Session{
			Token:  res.Token,
			UserID: res.ID,
			Role:   res.Role,
			Name:   res.Name,
			Email:  res.Email,
		}
	})
	return err
}

// Register creates the account without logging in.
func (s *Store) Register(ctx context.Context, name, email, password string) (user.User, error) {
	seq := s.begin(authSlice, nil)

	u, err := s.api.Register(ctx, name, email, password)

	s.settle(authSlice, seq, err, func(st *State) {
		st.Auth.Error = ""
	})
	return u, err
}

// Logout clears the session and resets the cart, orders and auth slices. Requests
// still in flight for those slices are ignored when they finish.
func (s *Store) Logout() {
	s.update(func(st *State) bool {
		for _, id := range []sliceID{cartSlice, ordersSlice, authSlice} {
			s.fences[id].reset()
		}
		st.Cart = CartState{Items: []cart.Item{}, UserDatas: user.EmptyUserDatas(), Status: StatusIdle}
		st.Orders = OrdersState{OrderedItems: []order.Order{}}
		st.Auth = AuthState{}
		return true
	})
}
