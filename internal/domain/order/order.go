package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/storefront/internal/domain/cart"
	"github.com/geocoder89/storefront/internal/domain/freeform"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrConcurrentCheckout = errors.New("cart changed during checkout")
	ErrInvalidField       = errors.New("invalid order field")
)

// Order is one element of a user's yourOrders history. Orders appended by callers
// are free-form; checkout orders carry Items and Total.
type Order struct {
	ID        string         `bson:"_id"`
	CreatedAt time.Time      `bson:"createdAt"`
	Items     []cart.Item    `bson:"items,omitempty"`
	Total     *float64       `bson:"total,omitempty"`
	Fields    map[string]any `bson:",inline"`
}

// FromCart builds the order recorded by checkout.
func FromCart(id string, items []cart.Item, now time.Time) (Order, error) {
	if len(items) == 0 {
		return Order{}, ErrEmptyCart
	}
	total := cart.Total(items)
	return Order{
		ID:        id,
		CreatedAt: now.UTC(),
		Items:     cart.CloneItems(items),
		Total:     &total,
		Fields:    map[string]any{},
	}, nil
}

func (o Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

func (o Order) Clone() Order {
	out := o
	if o.Items != nil {
		out.Items = cart.CloneItems(o.Items)
	}
	if o.Total != nil {
		t := *o.Total
		out.Total = &t
	}
	out.Fields = freeform.Clone(o.Fields)
	return out
}

func (o Order) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(o.Fields)+4)
	for k, v := range o.Fields {
		out[k] = v
	}
	out["_id"] = o.ID
	if !o.CreatedAt.IsZero() {
		out["createdAt"] = o.CreatedAt
	}
	if o.Items != nil {
		out["items"] = o.Items
	}
	if o.Total != nil {
		out["total"] = *o.Total
	}
	return json.Marshal(out)
}

// UnmarshalJSON keeps every field verbatim except the reserved _id, createdAt, items
// and total. A reserved field that does not decode fails with ErrInvalidField.
func (o *Order) UnmarshalJSON(raw []byte) error {
	m, err := freeform.DecodeObject(raw)
	if err != nil {
		return err
	}

	ord := Order{}
	ord.ID, _ = freeform.PopString(m, "_id")

	if v, ok := m["createdAt"]; ok {
		delete(m, "createdAt")
		s, _ := v.(string)
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("%w: createdAt must be an RFC3339 timestamp", ErrInvalidField)
		}
		ord.CreatedAt = t
	}

	if v, ok := m["items"]; ok {
		delete(m, "items")
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("%w: items: %v", ErrInvalidField, err)
		}
		var items []cart.Item
		if _, isList := v.([]any); !isList || json.Unmarshal(b, &items) != nil {
			return fmt.Errorf("%w: items must be a list of cart item objects", ErrInvalidField)
		}
		ord.Items = items
	}

	t, ok, err := freeform.PopNumber(m, "total")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	if ok {
		ord.Total = &t
	}

	ord.Fields = m
	*o = ord
	return nil
}
