package store

import (
	"errors"
	"sync"

	"github.com/geocoder89/storefront/internal/client"
)

// ErrNotLoggedIn rejects mutations dispatched without a session.
var ErrNotLoggedIn = errors.New("User not logged in")

type Listener func(State)

// Store is the client-side state container. Thunks block on the HTTP call and may
// be run concurrently; reducers run under the store lock.
type Store struct {
	api *client.Client

	mu        sync.Mutex
	state     State
	fences    [numSlices]*fence
	// product writes that finished while a product fetch was in flight
	productLog []productPatch
	listeners map[int]Listener
	nextID    int
}

func New(api *client.Client) *Store {
	s := &Store{
		api:       api,
		state:     initialState(),
		listeners: make(map[int]Listener),
	}
	for i := range s.fences {
		s.fences[i] = newFence()
	}
	return s
}

// State returns a snapshot that callers may keep and modify.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers l for every state change and returns its cancel func.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// update applies fn under the lock and notifies listeners outside it.
func (s *Store) update(fn func(st *State) bool) {
	s.mu.Lock()
	changed := fn(&s.state)
	if !changed {
		s.mu.Unlock()
		return
	}
	snap := s.state.clone()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.mu.Unlock()

	for _, l := range ls {
		l(snap)
	}
}

func (s *Store) session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Auth.Session == nil {
		return nil
	}
	sess := *s.state.Auth.Session
	return &sess
}

func (s *Store) authed(sess *Session) *client.Client {
	if sess == nil {
		return s.api
	}
	return s.api.WithToken(sess.Token)
}

// begin marks a request of the slice in flight and runs the optional pending reducer.
func (s *Store) begin(id sliceID, pending func(st *State)) uint64 {
	var seq uint64
	s.update(func(st *State) bool {
		seq = s.fences[id].begin()
		setLoading(st, id, true)
		if pending != nil {
			pending(st)
		}
		return true
	})
	return seq
}

// settleWith runs apply unless a newer outcome of the slice was already applied.
func (s *Store) settleWith(id sliceID, seq uint64, apply func(st *State)) {
	s.update(func(st *State) bool {
		f := s.fences[id]
		fresh := f.settle(seq)
		s.syncLoading(st, id)
		if fresh {
			apply(st)
		}
		return true
	})
}

// settle records err as the slice error, or runs fulfilled on success.
func (s *Store) settle(id sliceID, seq uint64, err error, fulfilled func(st *State)) {
	s.settleWith(id, seq, func(st *State) {
		if err != nil {
			setError(st, id, err.Error())
			return
		}
		fulfilled(st)
	})
}

func (s *Store) syncLoading(st *State, id sliceID) {
	switch id {
	case productSlice, productWrites:
		setLoading(st, productSlice, s.fences[productSlice].loading() || s.fences[productWrites].loading())
	default:
		setLoading(st, id, s.fences[id].loading())
	}
}

func setLoading(st *State, id sliceID, v bool) {
	switch id {
	case cartSlice:
		st.Cart.Loading = v
	case productSlice, productWrites:
		st.Product.Loading = v
	case authSlice:
		st.Auth.Loading = v
	case ordersSlice:
		st.Orders.Loading = v
	}
}

func setError(st *State, id sliceID, msg string) {
	switch id {
	case cartSlice:
		st.Cart.Error = msg
	case productSlice, productWrites:
		st.Product.Error = msg
	case authSlice:
		st.Auth.Error = msg
	case ordersSlice:
		st.Orders.Error = msg
	}
}
