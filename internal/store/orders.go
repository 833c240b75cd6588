package store

import (
	"context"

	"github.com/geocoder89/storefront/internal/domain/order"
)

func ordersOrEmpty(list []order.Order) []order.Order {
	if list == nil {
		return []order.Order{}
	}
	return list
}

// FetchOrders loads the order history. Without a session it yields no orders.
func (s *Store) FetchOrders(ctx context.Context) error {
	seq := s.begin(ordersSlice, nil)

	sess := s.session()
	if sess == nil {
		s.settle(ordersSlice, seq, nil, func(st *State) {
			st.Orders.OrderedItems = []order.Order{}
		})
		return nil
	}

	list, err := s.authed(sess).ListOrders(ctx, sess.UserID)

	s.settle(ordersSlice, seq, err, func(st *State) {
		st.Orders.OrderedItems = ordersOrEmpty(list)
	})
	return err
}

// PlaceOrder appends a free-form order to the history.
func (s *Store) PlaceOrder(ctx context.Context, o order.Order) error {
	seq := s.begin(ordersSlice, nil)

	sess := s.session()
	if sess == nil {
		s.settle(ordersSlice, seq, ErrNotLoggedIn, nil)
		return ErrNotLoggedIn
	}

	u, err := s.authed(sess).AppendOrder(ctx, sess.UserID, o)

	s.settle(ordersSlice, seq, err, func(st *State) {
		st.Orders.OrderedItems = ordersOrEmpty(u.UserDatas.YourOrders)
	})
	return err
}

// Checkout turns the whole server cart into one order and refreshes both slices.
func (s *Store) Checkout(ctx context.Context) (order.Order, error) {
	ordersSeq := s.begin(ordersSlice, nil)
	cartSeq := s.begin(cartSlice, nil)

	sess := s.session()
	if sess == nil {
		s.settle(ordersSlice, ordersSeq, ErrNotLoggedIn, nil)
		s.settle(cartSlice, cartSeq, ErrNotLoggedIn, nil)
		return order.Order{}, ErrNotLoggedIn
	}

	res, err := s.authed(sess).Checkout(ctx, sess.UserID)

	s.settle(ordersSlice, ordersSeq, err, func(st *State) {
		st.Orders.OrderedItems = ordersOrEmpty(res.User.UserDatas.YourOrders)
	})
	s.settle(cartSlice, cartSeq, err, func(st *State) {
		st.Cart.Items = orEmpty(res.User.UserDatas.CartList)
		st.Cart.UserDatas = res.User.UserDatas
	})
	return res.Order, err
}
