package store

import (
	"context"

	"github.com/geocoder89/storefront/internal/domain/product"
)

// productPatch is a finished product write. doneAt is the last fetch sequence issued
// when it finished; fetches dispatched at or before that point may not include it.
type productPatch struct {
	doneAt uint64
	apply  func([]product.Product) []product.Product
}

func clearProductError(st *State) { st.Product.Error = "" }

func (s *Store) FetchProducts(ctx context.Context) error {
	seq := s.begin(productSlice, clearProductError)

	list, err := s.api.ListProducts(ctx)

	s.update(func(st *State) bool {
		f := s.fences[productSlice]
		fresh := f.settle(seq)
		s.syncLoading(st, productSlice)

		if fresh {
			if err != nil {
				st.Product.Error = err.Error()
			} else {
				items := append([]product.Product{}, list...)
				for _, p := range s.productLog {
					if p.doneAt >= seq {
						items = p.apply(items)
					}
				}
				st.Product.Items = items
			}
		}
		s.pruneProductLog()
		return true
	})
	return err
}

// pruneProductLog drops patches that no in-flight fetch can still miss.
func (s *Store) pruneProductLog() {
	f := s.fences[productSlice]
	kept := s.productLog[:0]
	for _, p := range s.productLog {
		for seq := range f.inflight {
			if seq <= p.doneAt {
				kept = append(kept, p)
				break
			}
		}
	}
	s.productLog = kept
}

// settleProductWrite applies patch to the current list and keeps it for any fetch
// still in flight, whose result would otherwise overwrite it.
func (s *Store) settleProductWrite(seq uint64, err error, patch func([]product.Product) []product.Product) {
	s.update(func(st *State) bool {
		s.fences[productWrites].done(seq)
		s.syncLoading(st, productWrites)

		if err != nil {
			st.Product.Error = err.Error()
			return true
		}
		st.Product.Items = patch(st.Product.Items)

		reads := s.fences[productSlice]
		if reads.loading() {
			s.productLog = append(s.productLog, productPatch{doneAt: reads.issued, apply: patch})
		}
		return true
	})
}

// AddProduct needs an admin session.
func (s *Store) AddProduct(ctx context.Context, req product.CreateProductRequest) (product.Product, error) {
	seq := s.begin(productWrites, clearProductError)

	p, err := s.authed(s.session()).AddProduct(ctx, req)

	s.settleProductWrite(seq, err, func(items []product.Product) []product.Product {
		for i := range items {
			if items[i].ID == p.ID {
				items[i] = p
				return items
			}
		}
		return append(items, p)
	})
	return p, err
}

func (s *Store) UpdateProduct(ctx context.Context, id string, req product.UpdateProductRequest) (product.Product, error) {
	seq := s.begin(productWrites, clearProductError)

	p, err := s.authed(s.session()).UpdateProduct(ctx, id, req)

	s.settleProductWrite(seq, err, func(items []product.Product) []product.Product {
		for i := range items {
			if items[i].ID == p.ID {
				items[i] = p
			}
		}
		return items
	})
	return p, err
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	seq := s.begin(productWrites, clearProductError)

	err := s.authed(s.session()).DeleteProduct(ctx, id)

	s.settleProductWrite(seq, err, func(items []product.Product) []product.Product {
		kept := make([]product.Product, 0, len(items))
		for _, p := range items {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		return kept
	})
	return err
}
