package store

import (
	"context"

	"github.com/geocoder89/storefront/internal/domain/cart"
	"github.com/geocoder89/storefront/internal/domain/user"
)

func orEmpty(items []cart.Item) []cart.Item {
	if items == nil {
		return []cart.Item{}
	}
	return items
}

// FetchCart loads the session user's cart. Without a session it yields an empty cart.
func (s *Store) FetchCart(ctx context.Context) error {
	seq := s.begin(cartSlice, nil)

	sess := s.session()
	if sess == nil {
		s.settle(cartSlice, seq, nil, func(st *State) {
			st.Cart.Items = []cart.Item{}
		})
		return nil
	}

	u, err := s.authed(sess).GetUser(ctx, sess.UserID)

	s.settle(cartSlice, seq, err, func(st *State) {
		st.Cart.Items = orEmpty(u.UserDatas.CartList)
		st.Cart.UserDatas = u.UserDatas
	})
	return err
}

func (s *Store) AddItemCart(ctx context.Context, item cart.Item) error {
	seq := s.begin(cartSlice, nil)

	sess := s.session()
	if sess == nil {
		s.settle(cartSlice, seq, ErrNotLoggedIn, nil)
		return ErrNotLoggedIn
	}

	u, err := s.authed(sess).AddCartItem(ctx, sess.UserID, item)

	s.settle(cartSlice, seq, err, func(st *State) {
		st.Cart.Items = orEmpty(u.UserDatas.CartList)
		st.Cart.UserDatas = u.UserDatas
	})
	return err
}

func (s *Store) RemoveItemCart(ctx context.Context, itemID string) error {
	seq := s.begin(cartSlice, nil)

	sess := s.session()
	if sess == nil {
		s.settle(cartSlice, seq, ErrNotLoggedIn, nil)
		return ErrNotLoggedIn
	}

	items, err := s.authed(sess).RemoveCartItem(ctx, sess.UserID, itemID)

	s.settle(cartSlice, seq, err, func(st *State) {
		st.Cart.Items = orEmpty(items)
	})
	return err
}

// UpdateQuantity also drives the cart status field.
func (s *Store) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	seq := s.begin(cartSlice, func(st *State) {
		st.Cart.Status = StatusLoading
	})

	sess := s.session()
	var (
		items []cart.Item
		err   error
	)
	if sess == nil {
		err = ErrNotLoggedIn
	} else {
		items, err = s.authed(sess).UpdateQuantity(ctx, sess.UserID, itemID, quantity)
	}

	s.settleWith(cartSlice, seq, func(st *State) {
		if err != nil {
			st.Cart.Status = StatusFailed
			st.Cart.Error = err.Error()
			return
		}
		st.Cart.Status = StatusSucceeded
		st.Cart.Items = orEmpty(items)
	})
	return err
}

// EmptyCart clears the server cart. Without a session it yields an empty cart.
func (s *Store) EmptyCart(ctx context.Context) error {
	seq := s.begin(cartSlice, nil)

	sess := s.session()
	if sess == nil {
		s.settle(cartSlice, seq, nil, func(st *State) {
			st.Cart.Items = []cart.Item{}
		})
		return nil
	}

	u, err := s.authed(sess).EmptyCart(ctx, sess.UserID)

	s.settle(cartSlice, seq, err, func(st *State) {
		st.Cart.Items = orEmpty(u.UserDatas.CartList)
		st.Cart.UserDatas = u.UserDatas
	})
	return err
}

// IncrementQuantity is local only.
func (s *Store) IncrementQuantity(itemID string) {
	s.update(func(st *State) bool {
		i := cart.IndexOf(st.Cart.Items, itemID)
		if i < 0 {
			return false
		}
		st.Cart.Items[i].Quantity++
		return true
	})
}

// DecrementQuantity is local only and drops the item instead of going below one.
func (s *Store) DecrementQuantity(itemID string) {
	s.update(func(st *State) bool {
		i := cart.IndexOf(st.Cart.Items, itemID)
		if i < 0 {
			return false
		}
		if st.Cart.Items[i].Quantity > 1 {
			st.Cart.Items[i].Quantity--
			return true
		}
		st.Cart.Items = append(st.Cart.Items[:i], st.Cart.Items[i+1:]...)
		return true
	})
}

func (s *Store) SetUserDatas(ud user.UserDatas) {
	s.update(func(st *State) bool {
		st.Cart.UserDatas = user.User{UserDatas: ud}.Clone().UserDatas
		return true
	})
}
