package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/geocoder89/storefront/internal/domain/freeform"
	"go.mongodb.org/mongo-driver/bson"
)

var (
	ErrItemNotFound    = errors.New("cart item not found")
	ErrInvalidQuantity = errors.New("quantity must be a whole number of at least 1")
)

// Item is one element of a user's cartList. Apart from the identifier, quantity and
// a numeric price every caller-supplied field is kept verbatim in Fields. A price that
// is not a number stays in Fields and counts as missing.
type Item struct {
	ID       string
	Quantity int
	Price    *float64
	Fields   map[string]any
}

func (i Item) document() map[string]any {
	out := make(map[string]any, len(i.Fields)+3)
	for k, v := range i.Fields {
		out[k] = v
	}
	out["_id"] = i.ID
	out["quantity"] = i.Quantity
	if i.Price != nil {
		out["price"] = *i.Price
	}
	return out
}

func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.document())
}

func (i Item) MarshalBSON() ([]byte, error) {
	return bson.Marshal(bson.M(i.document()))
}

// UnmarshalBSON goes through relaxed extended JSON so stored items decode with the
// same rules as request bodies.
func (i *Item) UnmarshalBSON(raw []byte) error {
	j, err := bson.MarshalExtJSON(bson.Raw(raw), false, false)
	if err != nil {
		return err
	}
	return i.UnmarshalJSON(j)
}

func (i *Item) UnmarshalJSON(raw []byte) error {
	m, err := freeform.DecodeObject(raw)
	if err != nil {
		return err
	}

	item := Item{}
	item.ID, _ = freeform.PopString(m, "_id")

	q, ok, err := freeform.PopNumber(m, "quantity")
	if err != nil {
		return err
	}
	if ok {
		if q != math.Trunc(q) {
			return ErrInvalidQuantity
		}
		item.Quantity = int(q)
	}

	if p, ok := freeform.TakeNumber(m, "price"); ok {
		item.Price = &p
	}

	item.Fields = m
	*i = item
	return nil
}

// Normalize applies the defaults for a freshly appended item.
func (i Item) Normalize() (Item, error) {
	if i.Quantity == 0 {
		i.Quantity = 1
	}
	if i.Quantity < 1 {
		return Item{}, fmt.Errorf("%w: got %d", ErrInvalidQuantity, i.Quantity)
	}
	if i.Fields == nil {
		i.Fields = map[string]any{}
	}
	return i, nil
}

func (i Item) Clone() Item {
	out := i
	if i.Price != nil {
		p := *i.Price
		out.Price = &p
	}
	out.Fields = freeform.Clone(i.Fields)
	return out
}

// LineTotal is price × quantity, counting a missing or zero quantity as one.
func (i Item) LineTotal() float64 {
	if i.Price == nil {
		return 0
	}
	q := i.Quantity
	if q < 1 {
		q = 1
	}
	return *i.Price * float64(q)
}

func Total(items []Item) float64 {
	var sum float64
	for _, it := range items {
		sum += it.LineTotal()
	}
	// cents precision
	return math.Round(sum*100) / 100
}

func CloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i := range items {
		out[i] = items[i].Clone()
	}
	return out
}

func IndexOf(items []Item, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
